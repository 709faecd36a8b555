package domain

import "context"

// End is the terminal pseudo-node. An edge targeting End (or a node with no
// outgoing edge) completes the run.
const End = "__end__"

// Func is a node body: a pure function from the current state snapshot to a
// partial update. External collaborators (LLM client, search client,
// notifier) are injected at construction time and closed over; the body must
// not mutate the snapshot or reach for globals.
type Func func(ctx context.Context, state Snapshot) (Update, error)

// Node is a named unit of work in the graph.
type Node struct {
	// ID is unique within a graph.
	ID string

	// Label is the human-readable progress label. Defaults to ID.
	Label string

	// Writes declares the state fields this node may update. Empty means
	// any schema field. A non-empty write set must be a subset of the
	// schema, checked at graph validation time.
	Writes []string

	// Func is the node body.
	Func Func
}

// DisplayLabel returns Label, falling back to ID.
func (n Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

func (n Node) mayWrite(field string) bool {
	if len(n.Writes) == 0 {
		return true
	}
	for _, w := range n.Writes {
		if w == field {
			return true
		}
	}
	return false
}

// CheckWrites verifies an update stays inside the node's declared write set.
func (n Node) CheckWrites(u Update) error {
	for k := range u {
		if !n.mayWrite(k) {
			return &UnknownFieldError{Field: k}
		}
	}
	return nil
}
