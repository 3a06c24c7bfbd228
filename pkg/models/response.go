package models

import "time"

// RunResult is the output contract of an application engine run. Logs holds
// the ordered human-readable progress lines emitted during the run.
type RunResult struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Logs    []string `json:"logs"`
}

// UpdateResult is the output contract of the profile update flow
type UpdateResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Headline string `json:"headline,omitempty"`
}

// RunState tracks an asynchronous engine run through the status store
type RunState string

const (
	RunStateAccepted  RunState = "accepted"
	RunStateRunning   RunState = "running"
	RunStateCompleted RunState = "completed"
	RunStateFailed    RunState = "failed"
)

// RunStatus is the stored status of an asynchronous engine run
type RunStatus struct {
	RunID     string     `json:"run_id"`
	State     RunState   `json:"state"`
	Result    *RunResult `json:"result,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// AcceptedResponse acknowledges an asynchronous run submission
type AcceptedResponse struct {
	RunID     string    `json:"run_id"`
	State     RunState  `json:"state"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    time.Duration     `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}
