package dsl

import (
	"github.com/weftlabs/weft/pkg/domain"
)

// Builder manages graph construction. The first added node becomes the
// entry point unless Entry is called.
type Builder struct {
	entry    string
	order    []string
	nodes    map[string]*NodeBuilder
	edges    []domain.Edge
	maxSteps int
}

// New creates a new graph builder.
func New(entry string) *Builder {
	return &Builder{
		entry: entry,
		nodes: make(map[string]*NodeBuilder),
	}
}

// Entry overrides the entry node ID.
func (b *Builder) Entry(id string) *Builder {
	b.entry = id
	return b
}

// MaxSteps sets the iteration cap, required for graphs with cycles.
func (b *Builder) MaxSteps(n int) *Builder {
	b.maxSteps = n
	return b
}

// Node adds (or returns) a node with the given body.
func (b *Builder) Node(id string, fn domain.Func) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		if fn != nil {
			nb.node.Func = fn
		}
		return nb
	}
	nb := &NodeBuilder{
		node:    domain.Node{ID: id, Func: fn},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	if b.entry == "" {
		b.entry = id
	}
	return nb
}

// Add registers a prebuilt node (e.g. report.Spec.Node output).
func (b *Builder) Add(node domain.Node) *NodeBuilder {
	nb := b.Node(node.ID, node.Func)
	nb.node = node
	return nb
}

// Build compiles and validates the graph.
func (b *Builder) Build() (*domain.Graph, error) {
	nodes := make([]domain.Node, 0, len(b.order))
	for _, id := range b.order {
		nodes = append(nodes, b.nodes[id].node)
	}
	var opts []domain.GraphOption
	if b.maxSteps > 0 {
		opts = append(opts, domain.WithMaxSteps(b.maxSteps))
	}
	return domain.NewGraph(b.entry, nodes, b.edges, opts...)
}

// NodeBuilder configures a single node and its outgoing edges.
type NodeBuilder struct {
	node    domain.Node
	builder *Builder
}

// Label sets the human-readable progress label.
func (nb *NodeBuilder) Label(label string) *NodeBuilder {
	nb.node.Label = label
	return nb
}

// Writes declares the node's write set.
func (nb *NodeBuilder) Writes(fields ...string) *NodeBuilder {
	nb.node.Writes = fields
	return nb
}

// Then adds an unconditional edge to the given node.
func (nb *NodeBuilder) Then(to string) *NodeBuilder {
	nb.builder.edges = append(nb.builder.edges, domain.Edge{From: nb.node.ID, To: to})
	return nb
}

// When adds a conditional edge, evaluated before unconditional ones in
// declaration order.
func (nb *NodeBuilder) When(pred domain.Predicate, to string) *NodeBuilder {
	nb.builder.edges = append(nb.builder.edges, domain.Edge{From: nb.node.ID, To: to, When: pred})
	return nb
}

// End adds an unconditional edge to the terminal pseudo-node. A node with
// no outgoing edges terminates implicitly; End makes it explicit.
func (nb *NodeBuilder) End() *NodeBuilder {
	return nb.Then(domain.End)
}

// Node continues building on the parent builder.
func (nb *NodeBuilder) Node(id string, fn domain.Func) *NodeBuilder {
	return nb.builder.Node(id, fn)
}

// Add continues with a prebuilt node on the parent builder.
func (nb *NodeBuilder) Add(node domain.Node) *NodeBuilder {
	return nb.builder.Add(node)
}

// Build delegates to the parent builder.
func (nb *NodeBuilder) Build() (*domain.Graph, error) {
	return nb.builder.Build()
}
