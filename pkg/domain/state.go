package domain

// UpdatePolicy decides how a new value for a field is combined with the
// previous one when a node's update is applied.
type UpdatePolicy string

const (
	// PolicyOverwrite replaces the previous value (write-wins).
	PolicyOverwrite UpdatePolicy = "overwrite"
	// PolicyReduce combines the previous value with the contribution via the
	// field's declared reducer.
	PolicyReduce UpdatePolicy = "reduce"
)

// Reducer combines the accumulated value with a node's contribution.
// Must be associative; the executor guarantees application order.
type Reducer func(prev, next any) any

// AppendReducer concatenates list contributions. Scalars are treated as
// single-element lists, so a node may contribute either one item or a slice.
func AppendReducer(prev, next any) any {
	out := asList(prev)
	out = append(out, asList(next)...)
	return out
}

// UnionReducer merges string contributions as a set, preserving first-seen
// order. Useful for source URLs collected by multiple search nodes.
func UnionReducer(prev, next any) any {
	seen := make(map[string]struct{})
	out := make([]any, 0)
	for _, v := range append(asList(prev), asList(next)...) {
		s, ok := v.(string)
		if !ok {
			out = append(out, v)
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func asList(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	default:
		return []any{v}
	}
}

// FieldSpec declares a single state field: its merge policy and, for reducer
// fields, the reducer and starting value.
type FieldSpec struct {
	Policy  UpdatePolicy
	Reducer Reducer
	Zero    any
}

// Schema is the central registry of state fields. Every field has exactly
// one update policy, fixed at definition time; nodes cannot introduce
// fields the schema does not know about.
type Schema struct {
	fields map[string]FieldSpec
	order  []string
}

// NewSchema creates an empty schema.
func NewSchema() *Schema {
	return &Schema{fields: make(map[string]FieldSpec)}
}

// Overwrite declares a write-wins field.
func (s *Schema) Overwrite(names ...string) *Schema {
	for _, name := range names {
		s.declare(name, FieldSpec{Policy: PolicyOverwrite})
	}
	return s
}

// Append declares a reducer field accumulated by list concatenation.
func (s *Schema) Append(names ...string) *Schema {
	for _, name := range names {
		s.declare(name, FieldSpec{Policy: PolicyReduce, Reducer: AppendReducer, Zero: []any{}})
	}
	return s
}

// Reduce declares a reducer field with a custom reducer and starting value.
func (s *Schema) Reduce(name string, r Reducer, zero any) *Schema {
	s.declare(name, FieldSpec{Policy: PolicyReduce, Reducer: r, Zero: zero})
	return s
}

func (s *Schema) declare(name string, spec FieldSpec) {
	if _, exists := s.fields[name]; !exists {
		s.order = append(s.order, name)
	}
	s.fields[name] = spec
}

// Has reports whether the field is declared.
func (s *Schema) Has(name string) bool {
	_, ok := s.fields[name]
	return ok
}

// Spec returns the declaration for a field.
func (s *Schema) Spec(name string) (FieldSpec, bool) {
	spec, ok := s.fields[name]
	return spec, ok
}

// Fields returns field names in declaration order.
func (s *Schema) Fields() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Update is a partial state mapping produced by a node. Keys must be
// declared in the schema; the executor applies each key according to the
// field's policy.
type Update map[string]any

// State is the shared record of accumulated workflow artifacts. It is owned
// exclusively by one executor for the lifetime of a run; nodes only ever see
// snapshots.
type State struct {
	schema *Schema
	values map[string]any
}

// NewState creates a state from caller-supplied initial fields. Reducer
// fields start from their declared zero value; an initial value for a
// reducer field replaces that base. An undeclared initial field is a
// configuration error.
func NewState(schema *Schema, initial Update) (*State, error) {
	st := &State{schema: schema, values: make(map[string]any)}
	for _, name := range schema.order {
		spec := schema.fields[name]
		if spec.Policy == PolicyReduce {
			st.values[name] = spec.Zero
		}
	}
	for k, v := range initial {
		if !schema.Has(k) {
			return nil, &UnknownFieldError{Field: k}
		}
		st.values[k] = v
	}
	return st, nil
}

// Get returns the current value of a field, or nil if unset.
func (st *State) Get(field string) any {
	return st.values[field]
}

// Apply merges a node's partial update into the state. Overwrite fields are
// replaced; reducer fields are combined via their declared reducer. An
// unknown key aborts the whole update before any key is applied.
func (st *State) Apply(u Update) error {
	for k := range u {
		if !st.schema.Has(k) {
			return &UnknownFieldError{Field: k}
		}
	}
	for k, v := range u {
		spec := st.schema.fields[k]
		if spec.Policy == PolicyReduce {
			st.values[k] = spec.Reducer(st.values[k], v)
		} else {
			st.values[k] = v
		}
	}
	return nil
}

// Snapshot returns a read-only copy of the state for a node body. Top-level
// slices are copied so reducer fields cannot be extended behind the
// executor's back; nested values must be treated as immutable by nodes.
func (st *State) Snapshot() Snapshot {
	snap := make(Snapshot, len(st.values))
	for k, v := range st.values {
		if list, ok := v.([]any); ok {
			cp := make([]any, len(list))
			copy(cp, list)
			snap[k] = cp
			continue
		}
		snap[k] = v
	}
	return snap
}
