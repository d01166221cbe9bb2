// Package tool defines the typed tool contract, the uniform result
// envelope, and the registry the planner's catalog is generated from.
package tool

import (
	"context"
	"fmt"
	"strings"
)

// ParamType tags a parameter for validation and catalog rendering.
type ParamType string

const (
	TypeString ParamType = "string"
	TypeInt    ParamType = "int"
	TypeBool   ParamType = "bool"
	TypeList   ParamType = "list<string>"
	TypeTable  ParamType = "table"
	TypeAny    ParamType = "any"
)

// ParamSpec describes a single tool parameter.
type ParamSpec struct {
	Name        string
	Type        ParamType
	Required    bool
	Default     any // applied when the planner omits the parameter
	Description string
}

// Tool is the unified interface for all tools. Expected failure modes are
// reported through Result{OK:false}; Execute returns a Go error only for
// programmer or I/O faults, which the orchestrator converts to a failed
// result without crashing the loop.
type Tool interface {
	// Name returns the tool identifier the planner uses to invoke it.
	Name() string

	// Description returns a one-line natural-language description.
	Description() string

	// Params returns the ordered parameter specifications.
	Params() []ParamSpec

	// RequiresLogs reports whether the tool operates on a working set the
	// orchestrator should auto-inject when the planner omits it.
	RequiresLogs() bool

	// Execute runs the tool with validated arguments.
	Execute(ctx context.Context, args Args) (Result, error)
}

// PrepareArgs validates raw planner arguments against the specs: required
// parameters must be present (after auto-injection), defaults are applied,
// and int-typed values are coerced from JSON's float64. Returns a copy.
func PrepareArgs(specs []ParamSpec, raw Args) (Args, error) {
	args := make(Args, len(raw))
	for k, v := range raw {
		args[k] = v
	}
	var missing []string
	for _, spec := range specs {
		v, ok := args[spec.Name]
		if !ok || v == nil {
			if spec.Required {
				missing = append(missing, spec.Name)
			} else if spec.Default != nil {
				args[spec.Name] = spec.Default
			}
			continue
		}
		if spec.Type == TypeInt {
			if f, isFloat := v.(float64); isFloat {
				args[spec.Name] = int(f)
			}
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required parameter(s): %s", strings.Join(missing, ", "))
	}
	return args, nil
}
