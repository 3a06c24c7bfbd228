package models

import "time"

// SearchTask is one position/location pair from the search frontier
type SearchTask struct {
	Position string `json:"position"`
	Location string `json:"location"`
}

// ApplyMethod identifies how a listing accepts applications
type ApplyMethod string

const (
	ApplyMethodWizard   ApplyMethod = "wizard"
	ApplyMethodExternal ApplyMethod = "external"
)

// JobListing is one discovered listing on a results page. Identity is the
// canonical link (query string stripped).
type JobListing struct {
	Title         string      `json:"title"`
	Company       string      `json:"company"`
	Location      string      `json:"location"`
	CanonicalLink string      `json:"canonical_link"`
	ApplyMethod   ApplyMethod `json:"apply_method"`
}

// OutcomeResult classifies how an attempted listing ended
type OutcomeResult string

const (
	ResultApplied OutcomeResult = "applied"
	ResultFailed  OutcomeResult = "failed"
	ResultSkipped OutcomeResult = "skipped"
)

// OutcomeRecord is the append-only record of one attempted listing. Records
// are never mutated once written.
type OutcomeRecord struct {
	Task      SearchTask    `json:"task"`
	Listing   JobListing    `json:"listing"`
	Result    OutcomeResult `json:"result"`
	Reason    string        `json:"reason,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}
