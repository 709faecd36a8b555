package schema

// Pipeline is the root of a YAML pipeline definition.
type Pipeline struct {
	Name     string     `yaml:"name"`
	Entry    string     `yaml:"entry"`
	MaxSteps int        `yaml:"max_steps,omitempty"`
	State    []FieldDef `yaml:"state"`
	Nodes    []NodeDef  `yaml:"nodes"`
	Edges    []EdgeDef  `yaml:"edges"`
}

// FieldDef declares one state field and its update policy.
type FieldDef struct {
	Name string `yaml:"name"`
	// Policy is one of "overwrite" (default), "append", "union".
	Policy string `yaml:"policy,omitempty"`
}

// NodeDef declares one node: its kind selects a registered factory, params
// configure it.
type NodeDef struct {
	ID     string         `yaml:"id"`
	Label  string         `yaml:"label,omitempty"`
	Kind   string         `yaml:"kind"`
	Writes []string       `yaml:"writes,omitempty"`
	Params map[string]any `yaml:"params,omitempty"`
}

// EdgeDef declares one edge. To may be "end" (or "__end__") for the
// terminal edge; When holds a condition expression for conditional edges.
type EdgeDef struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
	When string `yaml:"when,omitempty"`
}

// Field policies accepted in FieldDef.Policy.
const (
	PolicyOverwrite = "overwrite"
	PolicyAppend    = "append"
	PolicyUnion     = "union"
)

// EndAliases are accepted spellings of the terminal edge target.
var EndAliases = map[string]bool{"end": true, "__end__": true, "END": true}
