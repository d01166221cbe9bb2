package builtin

import (
	"context"

	"github.com/loglens/loglens/internal/entity"
	"github.com/loglens/loglens/internal/summary"
	"github.com/loglens/loglens/internal/tool"
)

// SummarizeLogsTool produces the statistical digest of the working set on
// demand. The orchestrator also summarizes automatically above the row
// threshold; this tool exists for queries that explicitly ask for an
// overview.
type SummarizeLogsTool struct {
	catalog *entity.Catalog
	opts    summary.Options
}

func NewSummarizeLogsTool(catalog *entity.Catalog, opts summary.Options) *SummarizeLogsTool {
	return &SummarizeLogsTool{catalog: catalog, opts: opts}
}

func (t *SummarizeLogsTool) Name() string { return "summarize_logs" }
func (t *SummarizeLogsTool) Description() string {
	return "Produce a statistical overview of the working set: severity counts, time span, entities involved, representative rows."
}

func (t *SummarizeLogsTool) Params() []tool.ParamSpec {
	return []tool.ParamSpec{
		{Name: "query", Type: tool.TypeString, Default: "", Description: "original question, for relevance"},
		{Name: "logs", Type: tool.TypeTable, Description: "working set; injected automatically"},
	}
}

func (t *SummarizeLogsTool) RequiresLogs() bool { return true }

func (t *SummarizeLogsTool) Execute(_ context.Context, args tool.Args) (tool.Result, error) {
	ws, failure := requireLogs(args)
	if failure != nil {
		return *failure, nil
	}
	query, _ := args.String("query")

	s := summary.Summarize(ws, query, t.catalog, t.opts)
	return tool.Ok(tool.DataMetadata, &tool.TextData{Text: s.Text},
		"Summarized %d rows", ws.Len()).
		WithExtra("summary", s.Text), nil
}
