package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/weftlabs/weft/pkg/domain"
)

// CompileCondition turns an edge condition expression into a predicate over
// the state. Supported forms:
//
//	<field> <op> <literal>   with op in ==, !=, <, <=, >, >=
//	defined(<field>)         field is present and non-nil
//	empty(<field>)           field is nil, "", or an empty list
//
// Literals: numbers, single/double-quoted strings, true/false, bare words
// (treated as strings). Ordered comparisons coerce both sides to float and
// are false when the field is not numeric.
func CompileCondition(expr string) (domain.Predicate, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty condition")
	}

	if field, ok := unaryArg(expr, "defined"); ok {
		return func(s domain.Snapshot) bool {
			v, present := s[field]
			return present && v != nil
		}, nil
	}
	if field, ok := unaryArg(expr, "empty"); ok {
		return func(s domain.Snapshot) bool {
			switch v := s[field].(type) {
			case nil:
				return true
			case string:
				return v == ""
			case []any:
				return len(v) == 0
			default:
				return false
			}
		}, nil
	}

	// Longest operators first so ">=" is not split as ">".
	for _, op := range []string{"==", "!=", "<=", ">=", "<", ">"} {
		idx := strings.Index(expr, op)
		if idx <= 0 {
			continue
		}
		field := strings.TrimSpace(expr[:idx])
		lit := strings.TrimSpace(expr[idx+len(op):])
		if field == "" || lit == "" {
			return nil, fmt.Errorf("malformed condition %q", expr)
		}
		return comparison(field, op, lit), nil
	}

	return nil, fmt.Errorf("unsupported condition %q", expr)
}

func unaryArg(expr, fn string) (string, bool) {
	if !strings.HasPrefix(expr, fn+"(") || !strings.HasSuffix(expr, ")") {
		return "", false
	}
	return strings.TrimSpace(expr[len(fn)+1 : len(expr)-1]), true
}

func comparison(field, op, lit string) domain.Predicate {
	num, numeric := parseNumber(lit)
	str := unquote(lit)

	return func(s domain.Snapshot) bool {
		v := s[field]
		switch op {
		case "==", "!=":
			var equal bool
			if numeric {
				equal = isNumber(v) && toComparable(v) == num
			} else if b, isBool := parseBool(lit); isBool {
				actual, ok := v.(bool)
				equal = ok && actual == b
			} else {
				equal = fmt.Sprint(v) == str
			}
			if op == "==" {
				return equal
			}
			return !equal
		default:
			if !numeric || !isNumber(v) {
				return false
			}
			actual := toComparable(v)
			switch op {
			case "<":
				return actual < num
			case "<=":
				return actual <= num
			case ">":
				return actual > num
			case ">=":
				return actual >= num
			}
			return false
		}
	}
}

func parseNumber(lit string) (float64, bool) {
	f, err := strconv.ParseFloat(lit, 64)
	return f, err == nil
}

func parseBool(lit string) (bool, bool) {
	switch lit {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func unquote(lit string) string {
	if len(lit) >= 2 {
		if (lit[0] == '\'' && lit[len(lit)-1] == '\'') || (lit[0] == '"' && lit[len(lit)-1] == '"') {
			return lit[1 : len(lit)-1]
		}
	}
	return lit
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int32, int64, float32, float64:
		return true
	}
	return false
}

func toComparable(v any) float64 {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case float32:
		return float64(t)
	case float64:
		return t
	}
	return 0
}
