package domain

import (
	"context"
	"time"
)

// ProgressEvent is emitted once per node execution, after the node's update
// has been applied. Purely observational; consumers must not use it for
// control flow.
type ProgressEvent struct {
	RunID string `json:"run_id,omitempty"`
	// Step is 1-based and strictly increasing within a run.
	Step int `json:"step"`
	// Total is the declared node count. For linear graphs it equals the
	// number of steps in a successful run; under branching it is an
	// estimate.
	Total     int       `json:"total"`
	Node      string    `json:"node"`
	Label     string    `json:"label"`
	Timestamp time.Time `json:"timestamp"`
}

// NodeEvent carries start/end details of a single node execution.
type NodeEvent struct {
	RunID    string
	Node     string
	Label    string
	Step     int
	Duration time.Duration
	Err      error
}

// LifecycleHooks defines optional callbacks for engine observability:
// logging, metrics, UIs. Nil hooks are skipped.
type LifecycleHooks struct {
	OnNodeStart func(context.Context, *NodeEvent)
	OnNodeEnd   func(context.Context, *NodeEvent)
	OnRunEnd    func(context.Context, *Result)
}
