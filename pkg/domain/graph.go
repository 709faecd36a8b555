package domain

import "fmt"

// Predicate decides whether a conditional edge is taken, evaluated against
// the state after the source node's update has been applied.
type Predicate func(Snapshot) bool

// Edge is a directed transition between two nodes. A nil When makes the edge
// unconditional. Conditional edges win over unconditional ones; within each
// class, declaration order decides.
type Edge struct {
	From string
	To   string
	When Predicate
}

// GraphOption configures graph construction.
type GraphOption func(*Graph)

// WithMaxSteps sets an explicit iteration cap, required for graphs with
// cycles. Without it the executor caps a run at the declared node count.
func WithMaxSteps(n int) GraphOption {
	return func(g *Graph) {
		g.maxSteps = n
	}
}

// Graph is an immutable set of nodes and edges with a single entry point.
// Construction fails fast on dangling references, before any node executes.
type Graph struct {
	nodes    map[string]Node
	order    []string
	edges    map[string][]Edge
	entry    string
	maxSteps int
}

// NewGraph validates and builds a graph.
func NewGraph(entry string, nodes []Node, edges []Edge, opts ...GraphOption) (*Graph, error) {
	g := &Graph{
		nodes: make(map[string]Node, len(nodes)),
		edges: make(map[string][]Edge),
		entry: entry,
	}
	for _, opt := range opts {
		opt(g)
	}

	for _, n := range nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("node with empty ID")
		}
		if n.ID == End {
			return nil, fmt.Errorf("node ID %q is reserved", End)
		}
		if _, dup := g.nodes[n.ID]; dup {
			return nil, fmt.Errorf("duplicate node %q", n.ID)
		}
		if n.Func == nil {
			return nil, fmt.Errorf("node %q has no body", n.ID)
		}
		g.nodes[n.ID] = n
		g.order = append(g.order, n.ID)
	}

	if _, ok := g.nodes[entry]; !ok {
		return nil, &UnknownNodeError{Node: entry, Referrer: "entry point"}
	}

	for _, e := range edges {
		if _, ok := g.nodes[e.From]; !ok {
			return nil, &UnknownNodeError{Node: e.From, Referrer: "edge source"}
		}
		if e.To != End {
			if _, ok := g.nodes[e.To]; !ok {
				return nil, &UnknownNodeError{Node: e.To, Referrer: fmt.Sprintf("edge from %q", e.From)}
			}
		}
		g.edges[e.From] = append(g.edges[e.From], e)
	}

	return g, nil
}

// Validate checks node write sets against the state schema. Called by the
// executor at construction time so a misdeclared node fails before any run.
func (g *Graph) Validate(schema *Schema) error {
	for _, id := range g.order {
		for _, field := range g.nodes[id].Writes {
			if !schema.Has(field) {
				return fmt.Errorf("node %q: %w", id, &UnknownFieldError{Field: field})
			}
		}
	}
	return nil
}

// Entry returns the entry node ID.
func (g *Graph) Entry() string {
	return g.entry
}

// Node looks up a node by ID.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns nodes in declaration order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Edges returns outgoing edges of a node in declaration order.
func (g *Graph) Edges(from string) []Edge {
	return g.edges[from]
}

// Len returns the number of declared nodes.
func (g *Graph) Len() int {
	return len(g.order)
}

// MaxSteps returns the explicit iteration cap, or 0 if unset.
func (g *Graph) MaxSteps() int {
	return g.maxSteps
}

// Next resolves the node following from, given the state after from's
// update. Conditional edges are evaluated first in declaration order, then
// the first unconditional edge; a node with no matching edge terminates.
func (g *Graph) Next(from string, state Snapshot) string {
	for _, e := range g.edges[from] {
		if e.When != nil && e.When(state) {
			return e.To
		}
	}
	for _, e := range g.edges[from] {
		if e.When == nil {
			return e.To
		}
	}
	return End
}
