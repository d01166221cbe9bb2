package builtin

import (
	"context"
	"strings"

	"github.com/loglens/loglens/internal/logstore"
	"github.com/loglens/loglens/internal/tool"
)

// resolveValueInput handles the shared input convention of the value tools:
// the values list is normally injected from the last result, but when the
// planner mistakenly passed field names instead of values and a working set
// is available, the field is parsed implicitly first.
// Returns the values, the originating field (when implicit parsing ran),
// and a failure result when nothing usable exists.
func resolveValueInput(args tool.Args) ([]string, string, *tool.Result) {
	values, hasValues := args.StringList("values")
	ws, hasLogs := args.Table("logs")

	if hasValues && looksLikeFieldNames(values) && hasLogs && ws.Len() > 0 {
		for _, candidate := range values {
			canonical, parsed := collectFieldValues(ws, candidate)
			if len(parsed) > 0 {
				return parsed, canonical, nil
			}
		}
		// Fall through: PascalCase-looking actual values are legitimate.
	}

	if hasValues && len(values) > 0 {
		return values, "", nil
	}
	r := tool.Fail("no values provided and no previous value list available; run parse_json_field first")
	return nil, "", &r
}

// ExtractUniqueTool deduplicates a value list preserving first occurrence.
type ExtractUniqueTool struct{}

func NewExtractUniqueTool() *ExtractUniqueTool { return &ExtractUniqueTool{} }

func (t *ExtractUniqueTool) Name() string { return "extract_unique" }
func (t *ExtractUniqueTool) Description() string {
	return "Deduplicate a list of values, preserving first-occurrence order."
}

func (t *ExtractUniqueTool) Params() []tool.ParamSpec {
	return []tool.ParamSpec{
		{Name: "values", Type: tool.TypeList, Description: "values to deduplicate; defaults to the previous result"},
		{Name: "logs", Type: tool.TypeTable, Description: "working set; injected automatically"},
	}
}

func (t *ExtractUniqueTool) RequiresLogs() bool { return false }

func (t *ExtractUniqueTool) Execute(_ context.Context, args tool.Args) (tool.Result, error) {
	values, fromField, failure := resolveValueInput(args)
	if failure != nil {
		return *failure, nil
	}

	unique := uniqueValues(values)
	res := tool.Ok(tool.DataUniqueValues, &tool.ValueList{Values: unique},
		"%d unique values (from %d total)", len(unique), len(values)).
		WithExtra("unique_count", len(unique)).
		WithExtra("total_count", len(values))
	if fromField != "" {
		res = res.WithExtra("field", fromField)
		res.Message += "; input looked like a field name, so " + fromField + " was parsed from the working set first"
	}
	return res, nil
}

// CountValuesTool reports the unique and total counts of a value list.
type CountValuesTool struct{}

func NewCountValuesTool() *CountValuesTool { return &CountValuesTool{} }

func (t *CountValuesTool) Name() string { return "count_values" }
func (t *CountValuesTool) Description() string {
	return "Count the unique values in a list; reports unique and total counts."
}

func (t *CountValuesTool) Params() []tool.ParamSpec {
	return []tool.ParamSpec{
		{Name: "values", Type: tool.TypeList, Description: "values to count; defaults to the previous result"},
		{Name: "logs", Type: tool.TypeTable, Description: "working set; injected automatically"},
	}
}

func (t *CountValuesTool) RequiresLogs() bool { return false }

func (t *CountValuesTool) Execute(_ context.Context, args tool.Args) (tool.Result, error) {
	values, fromField, failure := resolveValueInput(args)
	if failure != nil {
		return *failure, nil
	}

	unique := uniqueValues(values)
	res := tool.Ok(tool.DataFinalCount, &tool.CountData{Unique: len(unique), Total: len(values)},
		"%d unique values (from %d total)", len(unique), len(values)).
		WithExtra("unique_count", len(unique)).
		WithExtra("total_count", len(values))
	if fromField != "" {
		res = res.WithExtra("field", fromField)
	}
	return res, nil
}

// GrepAndParseTool composes grep_logs and parse_json_field in one step.
// Semantics equal the two-step chain; this is purely an optimization.
type GrepAndParseTool struct {
	store *logstore.Store
}

func NewGrepAndParseTool(store *logstore.Store) *GrepAndParseTool {
	return &GrepAndParseTool{store: store}
}

func (t *GrepAndParseTool) Name() string { return "grep_and_parse" }
func (t *GrepAndParseTool) Description() string {
	return "Search the log file and extract a payload field from the matches in one step."
}

func (t *GrepAndParseTool) Params() []tool.ParamSpec {
	return []tool.ParamSpec{
		{Name: "pattern", Type: tool.TypeString, Required: true, Description: "substring to search for"},
		{Name: "field_name", Type: tool.TypeString, Required: true, Description: "payload field to extract"},
		{Name: "unique_only", Type: tool.TypeBool, Default: false, Description: "deduplicate the extracted values"},
		{Name: "case_sensitive", Type: tool.TypeBool, Default: false},
		{Name: "max_results", Type: tool.TypeInt, Default: 0, Description: "stop after this many matching rows (0 = all)"},
	}
}

func (t *GrepAndParseTool) RequiresLogs() bool { return false }

func (t *GrepAndParseTool) Execute(ctx context.Context, args tool.Args) (tool.Result, error) {
	pattern, _ := args.String("pattern")
	field, _ := args.String("field_name")
	if pattern == "" || field == "" {
		return tool.Fail("pattern and field_name are both required"), nil
	}
	uniqueOnly, _ := args.Bool("unique_only")
	caseSensitive, _ := args.Bool("case_sensitive")
	maxResults, _ := args.Int("max_results")

	ws, scanned, err := t.store.Search(ctx, pattern, logstore.SearchOptions{
		CaseSensitive: caseSensitive,
		MaxMatches:    maxResults,
	})
	if err != nil {
		return failOrAbort(err)
	}
	if ws.Len() == 0 {
		return tool.Fail("no rows matched %q (scanned %d lines)", pattern, scanned), nil
	}

	canonical, values := collectFieldValues(ws, field)
	if len(values) == 0 {
		available := observedFields(ws)
		return tool.Fail("field %q not found in the %d matching rows; available fields: %s",
			field, ws.Len(), strings.Join(available, ", ")), nil
	}

	if uniqueOnly {
		unique := uniqueValues(values)
		return tool.Ok(tool.DataUniqueValues, &tool.ValueList{Values: unique},
			"%d unique %s values (from %d rows matching %q)", len(unique), canonical, ws.Len(), pattern).
			WithExtra("field", canonical).
			WithExtra("unique_count", len(unique)).
			WithExtra("total_count", len(values)), nil
	}
	return tool.Ok(tool.DataRawValues, &tool.ValueList{Values: values},
		"Extracted %d %s values from %d rows matching %q (duplicates possible)",
		len(values), canonical, ws.Len(), pattern).
		WithExtra("field", canonical).
		WithExtra("raw_count", len(values)), nil
}
