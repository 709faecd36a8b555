package domain

import "time"

// RunStatus is the executor's terminal (or in-flight) state.
type RunStatus string

const (
	StatusNotStarted RunStatus = "not_started"
	StatusRunning    RunStatus = "running"
	StatusCompleted  RunStatus = "completed"
	// StatusFailed means a node failed; the result carries a degraded
	// report and whatever state had accumulated before the failure.
	StatusFailed RunStatus = "failed"
	// StatusCancelled means cancellation was requested between nodes. No
	// report is fabricated for a cancelled run.
	StatusCancelled RunStatus = "cancelled"
)

// Terminal reports whether the status is final.
func (s RunStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Result is the outcome of one workflow run. Invoking a workflow never
// panics or returns a node error; callers distinguish success from
// degradation via Status and Error, not via error handling.
type Result struct {
	RunID    string    `json:"run_id"`
	Pipeline string    `json:"pipeline,omitempty"`
	Status   RunStatus `json:"status"`

	// State is the final snapshot: the container after the terminal
	// node's update, or the partial state at the point of failure.
	State Snapshot `json:"state,omitempty"`

	// Report is the aggregate report (degraded on failure, nil when
	// cancelled or when the graph produces none).
	Report *Report `json:"report,omitempty"`

	// Error is set for failed and cancelled runs.
	Error string `json:"error,omitempty"`

	// Steps is the number of node executions performed.
	Steps int `json:"steps"`

	// Events is the recorded progress trail, in emission order.
	Events []ProgressEvent `json:"events,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
