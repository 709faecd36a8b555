// Package registry maps declarative node kinds (the "kind" key of a YAML
// pipeline node) to factories that build node bodies from parameters and
// injected collaborators.
package registry

import (
	"fmt"
	"sort"

	"github.com/weftlabs/weft/pkg/domain"
	"github.com/weftlabs/weft/pkg/ports"
)

// Factory builds a node body from decoded parameters and the collaborator
// bundle. A factory must fail here, at construction time, when a required
// collaborator or parameter is missing — never mid-run.
type Factory func(params map[string]any, c ports.Collaborators) (domain.Func, error)

// Registry holds the known node kinds.
type Registry struct {
	kinds map[string]Factory
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{kinds: make(map[string]Factory)}
}

// Default returns a registry with the built-in kinds: llm, search, notify,
// aggregate.
func Default() *Registry {
	r := New()
	r.MustRegister("llm", llmFactory)
	r.MustRegister("search", searchFactory)
	r.MustRegister("notify", notifyFactory)
	r.MustRegister("aggregate", aggregateFactory)
	return r
}

// Register adds a kind. Re-registering an existing kind is an error.
func (r *Registry) Register(kind string, f Factory) error {
	if kind == "" {
		return fmt.Errorf("empty node kind")
	}
	if f == nil {
		return fmt.Errorf("nil factory for kind %q", kind)
	}
	if _, exists := r.kinds[kind]; exists {
		return fmt.Errorf("node kind %q already registered", kind)
	}
	r.kinds[kind] = f
	return nil
}

// MustRegister panics on registration errors. For package init wiring.
func (r *Registry) MustRegister(kind string, f Factory) {
	if err := r.Register(kind, f); err != nil {
		panic(err)
	}
}

// Resolve returns the factory for a kind.
func (r *Registry) Resolve(kind string) (Factory, error) {
	f, ok := r.kinds[kind]
	if !ok {
		return nil, fmt.Errorf("unknown node kind %q (known: %v)", kind, r.Kinds())
	}
	return f, nil
}

// Kinds returns the registered kind names, sorted.
func (r *Registry) Kinds() []string {
	out := make([]string, 0, len(r.kinds))
	for k := range r.kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
