package domain

import (
	"errors"
	"fmt"
)

// ErrRunNotFound is returned when a run ID cannot be found in the store.
var ErrRunNotFound = errors.New("run not found")

// ErrNodeTimeout marks a node execution that exceeded its configured timeout.
// It is always wrapped in a *NodeExecutionError.
var ErrNodeTimeout = errors.New("node execution timed out")

// ErrStepBudgetExceeded marks a run that hit its iteration cap before
// reaching the terminal edge.
var ErrStepBudgetExceeded = errors.New("step budget exceeded")

// UnknownFieldError reports an update (or initial state) referencing a field
// that was never declared in the schema. This is a configuration error: the
// engine refuses to store values it has no merge policy for.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown state field %q", e.Field)
}

// UnknownNodeError reports a graph definition referencing a node that was
// never declared. Raised at construction time, before any node executes.
type UnknownNodeError struct {
	Node string
	// Referrer identifies where the dangling reference came from
	// (an edge source, or "entry point").
	Referrer string
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("%s references unknown node %q", e.Referrer, e.Node)
}

// NodeExecutionError wraps a failure inside a node body with the node's name.
// The executor captures it and degrades the run instead of propagating.
type NodeExecutionError struct {
	Node string
	Err  error
}

func (e *NodeExecutionError) Error() string {
	return fmt.Sprintf("node %q failed: %v", e.Node, e.Err)
}

func (e *NodeExecutionError) Unwrap() error {
	return e.Err
}
