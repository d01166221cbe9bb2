package tool

import (
	"context"
	"strings"
	"testing"
)

type fakeTool struct {
	name string
	desc string
}

func (f *fakeTool) Name() string        { return f.name }
func (f *fakeTool) Description() string { return f.desc }
func (f *fakeTool) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "pattern", Type: TypeString, Required: true, Description: "search pattern"},
		{Name: "max_results", Type: TypeInt, Default: 50},
	}
}
func (f *fakeTool) RequiresLogs() bool { return false }
func (f *fakeTool) Execute(_ context.Context, _ Args) (Result, error) {
	return Ok(DataMetadata, &TextData{Text: "ok"}, "done"), nil
}

func TestPrepareArgs_DefaultsAndCoercion(t *testing.T) {
	ft := &fakeTool{name: "t"}

	args, err := PrepareArgs(ft.Params(), Args{"pattern": "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := args.Int("max_results"); v != 50 {
		t.Errorf("default not applied: %v", args["max_results"])
	}

	// JSON numbers arrive as float64 and must coerce for int params.
	args, err = PrepareArgs(ft.Params(), Args{"pattern": "x", "max_results": float64(7)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, ok := args.Int("max_results"); !ok || v != 7 {
		t.Errorf("float64 not coerced: %v", args["max_results"])
	}
}

func TestPrepareArgs_MissingRequired(t *testing.T) {
	ft := &fakeTool{name: "t"}
	_, err := PrepareArgs(ft.Params(), Args{})
	if err == nil || !strings.Contains(err.Error(), "pattern") {
		t.Errorf("expected missing-parameter error naming pattern, got %v", err)
	}
}

func TestPrepareArgs_DoesNotMutateInput(t *testing.T) {
	ft := &fakeTool{name: "t"}
	raw := Args{"pattern": "x"}
	if _, err := PrepareArgs(ft.Params(), raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := raw["max_results"]; ok {
		t.Error("PrepareArgs must not mutate the caller's map")
	}
}

func TestArgs_StringListCoercion(t *testing.T) {
	a := Args{"values": []any{"a", "b", float64(3)}}
	got, ok := a.StringList("values")
	if !ok || len(got) != 3 || got[2] != "3" {
		t.Errorf("got (%v, %v)", got, ok)
	}
}

func TestRegistry_Catalogs(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeTool{name: "grep_logs", desc: "search the log file"})
	r.Register(&fakeTool{name: "count_values", desc: "count unique values"})

	compact := r.CatalogCompact()
	if !strings.Contains(compact, "grep_logs: search the log file") {
		t.Errorf("compact catalog missing entry:\n%s", compact)
	}
	// Sorted by name: count_values first.
	if strings.Index(compact, "count_values") > strings.Index(compact, "grep_logs") {
		t.Errorf("catalog not sorted:\n%s", compact)
	}

	detailed := r.CatalogDetailed()
	if !strings.Contains(detailed, "pattern (string, required)") {
		t.Errorf("detailed catalog missing signature:\n%s", detailed)
	}
	if !strings.Contains(detailed, "default 50") {
		t.Errorf("detailed catalog missing default:\n%s", detailed)
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Get("nope"); ok {
		t.Error("unknown tool should not resolve")
	}
}

func TestResult_Helpers(t *testing.T) {
	r := Fail("field %q not found", "X")
	if r.OK || !strings.Contains(r.Message, `"X"`) {
		t.Errorf("unexpected fail result: %+v", r)
	}

	r = Ok(DataFinalCount, &CountData{Unique: 3, Total: 5}, "3 unique").WithExtra("field", "F")
	if !r.OK || r.Meta.DataType != DataFinalCount || r.Meta.Extra["field"] != "F" {
		t.Errorf("unexpected ok result: %+v", r)
	}
	if _, ok := r.Table(); ok {
		t.Error("non-tabular result must not expose a table")
	}
}
