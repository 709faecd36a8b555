package schema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weftlabs/weft/pkg/domain"
	"github.com/weftlabs/weft/pkg/ports"
	"github.com/weftlabs/weft/pkg/registry"
)

const critiquePipeline = `
name: design-critique
entry: visual
max_steps: 8
state:
  - name: url
  - name: visual_report
  - name: ux_report
  - name: findings
    policy: append
  - name: sources
    policy: union
  - name: report
nodes:
  - id: visual
    label: Analyzing Visuals
    kind: llm
    writes: [visual_report]
    params:
      prompt: "Critique the visuals of {{url}}"
      output: visual_report
      parse_json: true
  - id: ux
    label: Evaluating UX
    kind: llm
    writes: [ux_report]
    params:
      prompt: "Critique the UX of {{url}}"
      output: ux_report
      parse_json: true
  - id: aggregator
    label: Aggregating Results
    kind: aggregate
    writes: [report]
    params:
      output: report
      sources:
        - name: visual
          field: visual_report
          weight: 0.5
        - name: ux
          field: ux_report
          weight: 0.5
      sections:
        - source: visual
          section: design
          cap: 3
          priority: high
edges:
  - from: visual
    to: ux
  - from: ux
    to: aggregator
  - from: aggregator
    to: end
`

type staticLLM struct{ text string }

func (s staticLLM) Complete(ctx context.Context, req ports.CompletionRequest) (ports.Completion, error) {
	return ports.Completion{Text: s.text, Model: "static"}, nil
}

func TestParseValidPipeline(t *testing.T) {
	p, err := Parse([]byte(critiquePipeline))
	require.NoError(t, err)

	assert.Equal(t, "design-critique", p.Name)
	assert.Equal(t, "visual", p.EntryNode())
	assert.Equal(t, 8, p.MaxSteps)
	assert.Len(t, p.State, 6)
	assert.Len(t, p.Nodes, 3)
	assert.Len(t, p.Edges, 3)
}

func TestParseRejectsInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("nodes: [}"))
	assert.ErrorContains(t, err, "invalid pipeline YAML")
}

func TestValidateStructuralErrors(t *testing.T) {
	base := func() *Pipeline {
		p, err := Parse([]byte(critiquePipeline))
		require.NoError(t, err)
		return p
	}

	t.Run("missing name", func(t *testing.T) {
		p := base()
		p.Name = ""
		assert.ErrorContains(t, p.Validate(), "no name")
	})

	t.Run("duplicate node", func(t *testing.T) {
		p := base()
		p.Nodes = append(p.Nodes, p.Nodes[0])
		assert.ErrorContains(t, p.Validate(), "duplicate node")
	})

	t.Run("duplicate state field", func(t *testing.T) {
		p := base()
		p.State = append(p.State, FieldDef{Name: "url"})
		assert.ErrorContains(t, p.Validate(), "duplicate state field")
	})

	t.Run("unknown policy", func(t *testing.T) {
		p := base()
		p.State[0].Policy = "merge"
		assert.ErrorContains(t, p.Validate(), "unknown policy")
	})

	t.Run("writes undeclared field", func(t *testing.T) {
		p := base()
		p.Nodes[0].Writes = []string{"nonexistent"}
		assert.ErrorContains(t, p.Validate(), "undeclared field")
	})

	t.Run("unknown entry", func(t *testing.T) {
		p := base()
		p.Entry = "ghost"
		assert.ErrorContains(t, p.Validate(), "unknown node")
	})

	t.Run("edge to unknown node", func(t *testing.T) {
		p := base()
		p.Edges[0].To = "ghost"
		assert.ErrorContains(t, p.Validate(), "unknown node")
	})

	t.Run("bad condition", func(t *testing.T) {
		p := base()
		p.Edges[0].When = "<<nonsense"
		assert.ErrorContains(t, p.Validate(), "condition")
	})
}

func TestSchemaMapsPolicies(t *testing.T) {
	p, err := Parse([]byte(critiquePipeline))
	require.NoError(t, err)

	s := p.Schema()
	spec, ok := s.Spec("url")
	require.True(t, ok)
	assert.Equal(t, domain.PolicyOverwrite, spec.Policy)

	spec, ok = s.Spec("findings")
	require.True(t, ok)
	assert.Equal(t, domain.PolicyReduce, spec.Policy)

	spec, ok = s.Spec("sources")
	require.True(t, ok)
	assert.Equal(t, domain.PolicyReduce, spec.Policy)
}

func TestCompileBuildsRunnableGraph(t *testing.T) {
	p, err := Parse([]byte(critiquePipeline))
	require.NoError(t, err)

	c := ports.Collaborators{LLM: staticLLM{text: `{"overall_score": 80}`}}
	g, err := p.Compile(registry.Default(), c)
	require.NoError(t, err)

	assert.Equal(t, "visual", g.Entry())
	assert.Equal(t, 3, g.Len())
	assert.Equal(t, 8, g.MaxSteps())
	assert.Equal(t, "ux", g.Next("visual", domain.Snapshot{}))
	assert.Equal(t, domain.End, g.Next("aggregator", domain.Snapshot{}), `"end" alias resolves to the terminal pseudo-node`)

	node, ok := g.Node("visual")
	require.True(t, ok)
	update, err := node.Func(context.Background(), domain.Snapshot{"url": "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"overall_score": 80.0}, update["visual_report"])
}

func TestCompileFailsWithoutRequiredCollaborator(t *testing.T) {
	p, err := Parse([]byte(critiquePipeline))
	require.NoError(t, err)

	_, err = p.Compile(registry.Default(), ports.Collaborators{})
	require.Error(t, err, "llm nodes must fail at compile time, not mid-run")
	assert.ErrorContains(t, err, "collaborator")
}

func TestCompileUnknownKind(t *testing.T) {
	p, err := Parse([]byte(critiquePipeline))
	require.NoError(t, err)
	p.Nodes[0].Kind = "quantum"

	_, err = p.Compile(registry.Default(), ports.Collaborators{LLM: staticLLM{}})
	assert.ErrorContains(t, err, "unknown node kind")
}

func TestReportSpecExtractedFromAggregateNode(t *testing.T) {
	p, err := Parse([]byte(critiquePipeline))
	require.NoError(t, err)

	spec, field, found, err := p.ReportSpec()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "report", field)
	require.Len(t, spec.Sources, 2)
	assert.Equal(t, 0.5, spec.Sources[0].Weight)
	require.Len(t, spec.Sections, 1)
	assert.Equal(t, "design", spec.Sections[0].Section)
}

func TestReportSpecAbsentWithoutAggregateNode(t *testing.T) {
	p, err := Parse([]byte(critiquePipeline))
	require.NoError(t, err)
	p.Nodes = p.Nodes[:2]

	_, _, found, err := p.ReportSpec()
	require.NoError(t, err)
	assert.False(t, found)
}
