package domain

import "encoding/json"

// Snapshot is an immutable view of the state handed to node bodies and edge
// predicates. Accessors tolerate missing fields and the usual JSON numeric
// ambiguity (int vs float64 vs json.Number).
type Snapshot map[string]any

// Get returns the raw value, or nil.
func (s Snapshot) Get(field string) any {
	return s[field]
}

// String returns the field as a string, or "" when absent or not a string.
func (s Snapshot) String(field string) string {
	v, _ := s[field].(string)
	return v
}

// Float returns the field coerced to float64, or 0.
func (s Snapshot) Float(field string) float64 {
	return toFloat(s[field])
}

// Int returns the field coerced to int, or 0.
func (s Snapshot) Int(field string) int {
	return int(toFloat(s[field]))
}

// List returns the field as a slice, or nil.
func (s Snapshot) List(field string) []any {
	v, _ := s[field].([]any)
	return v
}

// Map returns the field as a mapping, or nil.
func (s Snapshot) Map(field string) map[string]any {
	v, _ := s[field].(map[string]any)
	return v
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		f, _ := t.Float64()
		return f
	default:
		return 0
	}
}
