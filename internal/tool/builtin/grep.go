package builtin

import (
	"context"

	"github.com/loglens/loglens/internal/logstore"
	"github.com/loglens/loglens/internal/tool"
)

// GrepLogsTool streams the log file and returns matching rows as the new
// working set.
type GrepLogsTool struct {
	store *logstore.Store
}

func NewGrepLogsTool(store *logstore.Store) *GrepLogsTool {
	return &GrepLogsTool{store: store}
}

func (t *GrepLogsTool) Name() string { return "grep_logs" }
func (t *GrepLogsTool) Description() string {
	return "Search the log file for rows matching a pattern; the matches become the current working set."
}

func (t *GrepLogsTool) Params() []tool.ParamSpec {
	return []tool.ParamSpec{
		{Name: "pattern", Type: tool.TypeString, Required: true, Description: "substring or regex to search for"},
		{Name: "case_sensitive", Type: tool.TypeBool, Default: false, Description: "match case exactly"},
		{Name: "regex", Type: tool.TypeBool, Default: false, Description: "treat pattern as a regular expression"},
		{Name: "max_results", Type: tool.TypeInt, Default: 0, Description: "stop after this many matches (0 = all)"},
		{Name: "columns", Type: tool.TypeList, Description: "restrict matching to these columns"},
	}
}

func (t *GrepLogsTool) RequiresLogs() bool { return false }

func (t *GrepLogsTool) Execute(ctx context.Context, args tool.Args) (tool.Result, error) {
	pattern, _ := args.String("pattern")
	if pattern == "" {
		return tool.Fail("pattern cannot be empty"), nil
	}
	caseSensitive, _ := args.Bool("case_sensitive")
	regex, _ := args.Bool("regex")
	maxResults, _ := args.Int("max_results")
	columns, _ := args.StringList("columns")

	ws, scanned, err := t.store.Search(ctx, pattern, logstore.SearchOptions{
		Columns:       columns,
		CaseSensitive: caseSensitive,
		Regex:         regex,
		MaxMatches:    maxResults,
	})
	if err != nil {
		return failOrAbort(err)
	}

	return tool.Ok(tool.DataRawLogs, &tool.TableData{Set: ws},
		"Found %d rows matching %q (scanned %d lines). Rows may contain duplicate entities; parse and deduplicate before counting.",
		ws.Len(), pattern, scanned), nil
}

// CountMatchingTool counts matching rows without materializing them.
type CountMatchingTool struct {
	store *logstore.Store
}

func NewCountMatchingTool(store *logstore.Store) *CountMatchingTool {
	return &CountMatchingTool{store: store}
}

func (t *CountMatchingTool) Name() string { return "count_matching_rows" }
func (t *CountMatchingTool) Description() string {
	return "Count log rows matching a pattern without loading them (counts rows, not unique entities)."
}

func (t *CountMatchingTool) Params() []tool.ParamSpec {
	return []tool.ParamSpec{
		{Name: "pattern", Type: tool.TypeString, Required: true, Description: "substring to search for"},
		{Name: "case_sensitive", Type: tool.TypeBool, Default: false},
		{Name: "columns", Type: tool.TypeList, Description: "restrict matching to these columns"},
	}
}

func (t *CountMatchingTool) RequiresLogs() bool { return false }

func (t *CountMatchingTool) Execute(ctx context.Context, args tool.Args) (tool.Result, error) {
	pattern, _ := args.String("pattern")
	if pattern == "" {
		return tool.Fail("pattern cannot be empty"), nil
	}
	caseSensitive, _ := args.Bool("case_sensitive")
	columns, _ := args.StringList("columns")

	count, scanned, err := t.store.CountMatches(ctx, pattern, logstore.SearchOptions{
		Columns:       columns,
		CaseSensitive: caseSensitive,
	})
	if err != nil {
		return failOrAbort(err)
	}

	return tool.Ok(tool.DataFinalCount, &tool.CountData{Unique: count, Total: scanned},
		"%d of %d rows match %q", count, scanned, pattern), nil
}
