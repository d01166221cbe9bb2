package tool

import (
	"fmt"

	"github.com/loglens/loglens/internal/logstore"
)

// Args is the planner-supplied parameter map, possibly enriched by the
// orchestrator's auto-injection. Accessors coerce the loose JSON types.
type Args map[string]any

// Has reports whether a parameter was supplied (even if nil).
func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// String returns a string parameter.
func (a Args) String(name string) (string, bool) {
	v, ok := a[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int returns an int parameter, coercing JSON's float64.
func (a Args) Int(name string) (int, bool) {
	switch v := a[name].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// Float returns a float parameter, coercing int.
func (a Args) Float(name string) (float64, bool) {
	switch v := a[name].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// Bool returns a bool parameter.
func (a Args) Bool(name string) (bool, bool) {
	v, ok := a[name].(bool)
	return v, ok
}

// StringList returns a list parameter, coercing []any elements to strings.
func (a Args) StringList(name string) ([]string, bool) {
	switch v := a[name].(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			} else {
				out = append(out, fmt.Sprintf("%v", item))
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// Table returns a working-set parameter.
func (a Args) Table(name string) (*logstore.WorkingSet, bool) {
	ws, ok := a[name].(*logstore.WorkingSet)
	if !ok || ws == nil {
		return nil, false
	}
	return ws, true
}
