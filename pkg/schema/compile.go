package schema

import (
	"fmt"

	"github.com/weftlabs/weft/pkg/domain"
	"github.com/weftlabs/weft/pkg/ports"
	"github.com/weftlabs/weft/pkg/registry"
	"github.com/weftlabs/weft/pkg/report"
)

// Schema builds the domain state schema from the pipeline's field
// declarations.
func (p *Pipeline) Schema() *domain.Schema {
	s := domain.NewSchema()
	for _, f := range p.State {
		switch f.Policy {
		case PolicyAppend:
			s.Append(f.Name)
		case PolicyUnion:
			s.Reduce(f.Name, domain.UnionReducer, []any{})
		default:
			s.Overwrite(f.Name)
		}
	}
	return s
}

// Compile resolves each node's kind through the registry, injecting the
// collaborators, and builds the validated graph. Factory errors (missing
// collaborators or params) surface here, before any run.
func (p *Pipeline) Compile(reg *registry.Registry, c ports.Collaborators) (*domain.Graph, error) {
	nodes := make([]domain.Node, 0, len(p.Nodes))
	for _, def := range p.Nodes {
		factory, err := reg.Resolve(def.Kind)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", def.ID, err)
		}
		fn, err := factory(def.Params, c)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", def.ID, err)
		}
		nodes = append(nodes, domain.Node{
			ID:     def.ID,
			Label:  def.Label,
			Writes: def.Writes,
			Func:   fn,
		})
	}

	edges := make([]domain.Edge, 0, len(p.Edges))
	for _, def := range p.Edges {
		to := def.To
		if EndAliases[to] {
			to = domain.End
		}
		var pred domain.Predicate
		if def.When != "" {
			var err error
			pred, err = CompileCondition(def.When)
			if err != nil {
				return nil, fmt.Errorf("edge %q -> %q: %w", def.From, def.To, err)
			}
		}
		edges = append(edges, domain.Edge{From: def.From, To: to, When: pred})
	}

	var opts []domain.GraphOption
	if p.MaxSteps > 0 {
		opts = append(opts, domain.WithMaxSteps(p.MaxSteps))
	}
	return domain.NewGraph(p.EntryNode(), nodes, edges, opts...)
}

// ReportSpec extracts the aggregator spec and its output field from the
// pipeline's aggregate node, if it has one. The engine uses it to attach the
// terminal report to results and to degrade failed runs in the same shape.
func (p *Pipeline) ReportSpec() (spec report.Spec, field string, found bool, err error) {
	for _, def := range p.Nodes {
		if def.Kind != "aggregate" {
			continue
		}
		s, f, rerr := registry.AggregateSpec(def.Params)
		if rerr != nil {
			return report.Spec{}, "", false, fmt.Errorf("node %q: %w", def.ID, rerr)
		}
		return s, f, true, nil
	}
	return report.Spec{}, "", false, nil
}
