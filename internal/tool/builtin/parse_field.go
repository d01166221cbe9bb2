package builtin

import (
	"context"
	"strings"

	"github.com/loglens/loglens/internal/tool"
)

// ParseJSONFieldTool extracts one named field from the embedded JSON of
// every row in the working set.
type ParseJSONFieldTool struct{}

func NewParseJSONFieldTool() *ParseJSONFieldTool { return &ParseJSONFieldTool{} }

func (t *ParseJSONFieldTool) Name() string { return "parse_json_field" }
func (t *ParseJSONFieldTool) Description() string {
	return "Extract a named field from the JSON payload of each row in the working set; output may contain duplicates."
}

func (t *ParseJSONFieldTool) Params() []tool.ParamSpec {
	return []tool.ParamSpec{
		{Name: "field_name", Type: tool.TypeString, Required: true, Description: "payload field to extract (case-insensitive)"},
		{Name: "logs", Type: tool.TypeTable, Description: "working set; injected automatically"},
	}
}

func (t *ParseJSONFieldTool) RequiresLogs() bool { return true }

func (t *ParseJSONFieldTool) Execute(_ context.Context, args tool.Args) (tool.Result, error) {
	ws, failure := requireLogs(args)
	if failure != nil {
		return *failure, nil
	}
	field, _ := args.String("field_name")
	if field == "" {
		return tool.Fail("field_name cannot be empty"), nil
	}

	canonical, values := collectFieldValues(ws, field)
	if len(values) == 0 {
		available := observedFields(ws)
		if len(available) == 0 {
			return tool.Fail("no JSON fields found in the current %d rows; the payloads may not contain JSON", ws.Len()), nil
		}
		return tool.Fail("field %q not found in any row; available fields: %s",
			field, strings.Join(available, ", ")), nil
	}

	return tool.Ok(tool.DataRawValues, &tool.ValueList{Values: values},
		"Extracted %d values for %s from %d rows (duplicates possible; use count_values for a unique count)",
		len(values), canonical, ws.Len()).
		WithExtra("field", canonical).
		WithExtra("raw_count", len(values)), nil
}
