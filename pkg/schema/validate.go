package schema

import "fmt"

// Validate performs structural checks: duplicate names, unknown policies,
// edges referencing undeclared nodes, missing entry point. It does not know
// about node kinds; that is the registry's job during Compile.
func (p *Pipeline) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("pipeline has no name")
	}
	if len(p.Nodes) == 0 {
		return fmt.Errorf("pipeline %q declares no nodes", p.Name)
	}

	fields := make(map[string]bool, len(p.State))
	for _, f := range p.State {
		if f.Name == "" {
			return fmt.Errorf("state field with empty name")
		}
		if fields[f.Name] {
			return fmt.Errorf("duplicate state field %q", f.Name)
		}
		fields[f.Name] = true
		switch f.Policy {
		case "", PolicyOverwrite, PolicyAppend, PolicyUnion:
		default:
			return fmt.Errorf("state field %q: unknown policy %q", f.Name, f.Policy)
		}
	}

	nodes := make(map[string]bool, len(p.Nodes))
	for _, n := range p.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node with empty id")
		}
		if nodes[n.ID] {
			return fmt.Errorf("duplicate node %q", n.ID)
		}
		if n.Kind == "" {
			return fmt.Errorf("node %q has no kind", n.ID)
		}
		for _, w := range n.Writes {
			if !fields[w] {
				return fmt.Errorf("node %q writes undeclared field %q", n.ID, w)
			}
		}
		nodes[n.ID] = true
	}

	entry := p.EntryNode()
	if !nodes[entry] {
		return fmt.Errorf("entry point references unknown node %q", entry)
	}

	for _, e := range p.Edges {
		if !nodes[e.From] {
			return fmt.Errorf("edge source references unknown node %q", e.From)
		}
		if !EndAliases[e.To] && !nodes[e.To] {
			return fmt.Errorf("edge from %q references unknown node %q", e.From, e.To)
		}
		if e.When != "" {
			if _, err := CompileCondition(e.When); err != nil {
				return fmt.Errorf("edge %q -> %q: %w", e.From, e.To, err)
			}
		}
	}

	if p.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be non-negative")
	}

	return nil
}

// EntryNode returns the declared entry, defaulting to the first node.
func (p *Pipeline) EntryNode() string {
	if p.Entry != "" {
		return p.Entry
	}
	if len(p.Nodes) > 0 {
		return p.Nodes[0].ID
	}
	return ""
}
