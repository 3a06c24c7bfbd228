package engine

import (
	"net/url"
	"strings"
)

// SeenSet is the run-scoped, insert-only set of canonical links already
// processed. It is constructed once per run and passed by reference; it is
// never reset mid-run.
type SeenSet struct {
	links map[string]struct{}
}

// NewSeenSet creates an empty seen set
func NewSeenSet() *SeenSet {
	return &SeenSet{links: make(map[string]struct{})}
}

// Add inserts a canonical link. Inserting an existing link is a no-op.
func (s *SeenSet) Add(canonicalLink string) {
	s.links[canonicalLink] = struct{}{}
}

// Contains reports whether the canonical link was already processed
func (s *SeenSet) Contains(canonicalLink string) bool {
	_, ok := s.links[canonicalLink]
	return ok
}

// Len returns the number of distinct links seen
func (s *SeenSet) Len() int {
	return len(s.links)
}

// Canonicalize strips the query string and fragment from a listing URL so
// tracking parameters do not defeat deduplication.
func Canonicalize(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return strings.TrimSpace(rawURL)
	}

	parsed.RawQuery = ""
	parsed.Fragment = ""
	return strings.TrimSuffix(parsed.String(), "/")
}
