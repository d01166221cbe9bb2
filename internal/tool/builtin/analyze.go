package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/loglens/loglens/internal/entity"
	"github.com/loglens/loglens/internal/llm"
	"github.com/loglens/loglens/internal/summary"
	"github.com/loglens/loglens/internal/tool"
	"github.com/loglens/loglens/internal/util"
)

const analyzeSystemPrompt = `You are a log analysis expert. You receive a digest of log rows and a sample of the raw rows. Identify patterns, anomalies, and a likely root cause.

Respond with a single JSON object:
{"patterns": ["..."], "anomalies": ["..."], "root_cause": "...", "summary": "..."}`

// Analysis is the structured output of the analyzer model.
type Analysis struct {
	Patterns  []string `json:"patterns"`
	Anomalies []string `json:"anomalies"`
	RootCause string   `json:"root_cause"`
	Summary   string   `json:"summary"`
}

// AnalyzeLogsTool hands a sampled slice of the working set to the analyzer
// model for qualitative interpretation. This is the one tool whose output
// is non-deterministic.
type AnalyzeLogsTool struct {
	provider    llm.Provider
	catalog     *entity.Catalog
	model       string
	sampleCap   int
	temperature float32
}

func NewAnalyzeLogsTool(provider llm.Provider, catalog *entity.Catalog, model string, sampleCap int) *AnalyzeLogsTool {
	return &AnalyzeLogsTool{
		provider:    provider,
		catalog:     catalog,
		model:       model,
		sampleCap:   sampleCap,
		temperature: 0.2,
	}
}

func (t *AnalyzeLogsTool) Name() string { return "analyze_logs" }
func (t *AnalyzeLogsTool) Description() string {
	return "Ask the analysis model to interpret the working set: patterns, anomalies, likely root cause."
}

func (t *AnalyzeLogsTool) Params() []tool.ParamSpec {
	return []tool.ParamSpec{
		{Name: "question", Type: tool.TypeString, Default: "", Description: "what to look for; defaults to a general analysis"},
		{Name: "logs", Type: tool.TypeTable, Description: "working set; injected automatically"},
	}
}

func (t *AnalyzeLogsTool) RequiresLogs() bool { return true }

func (t *AnalyzeLogsTool) Execute(ctx context.Context, args tool.Args) (tool.Result, error) {
	ws, failure := requireLogs(args)
	if failure != nil {
		return *failure, nil
	}
	question, _ := args.String("question")
	if question == "" {
		question = "What stands out in these logs?"
	}

	// Reuse the summarizer's importance-weighted sampling so severe and
	// time-spread rows reach the model even when the set is large.
	digest := summary.Summarize(ws, question, t.catalog, summary.Options{
		SampleBudget:     t.sampleCap,
		ImportanceWeight: 0.7,
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\nDigest:\n%s\n", question, digest.Text)
	if len(digest.Samples) > 0 {
		fmt.Fprintf(&b, "\nSampled rows (%d of %d):\n", len(digest.Samples), ws.Len())
		for _, s := range digest.Samples {
			b.WriteString(s)
			b.WriteString("\n")
		}
	}

	raw, err := t.provider.Complete(ctx, llm.Request{
		Model:       t.model,
		Temperature: t.temperature,
		MaxTokens:   1024,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: analyzeSystemPrompt},
			{Role: llm.RoleUser, Content: b.String()},
		},
	})
	if err != nil {
		return failOrAbort(err)
	}

	var analysis Analysis
	jsonText := llm.ExtractLastJSON(llm.StripReasoning(raw))
	if jsonText != "" && json.Unmarshal([]byte(jsonText), &analysis) == nil && analysis.Summary != "" {
		return tool.Ok(tool.DataAnalysis, &tool.TextData{Text: renderAnalysis(analysis)},
			"%s", analysis.Summary).
			WithExtra("root_cause", analysis.RootCause), nil
	}

	// The model ignored the format; its prose is still useful.
	text := strings.TrimSpace(llm.StripReasoning(raw))
	if text == "" {
		return tool.Fail("analysis model returned an empty response"), nil
	}
	return tool.Ok(tool.DataAnalysis, &tool.TextData{Text: text},
		"%s", util.FirstLine(text)), nil
}

func renderAnalysis(a Analysis) string {
	var b strings.Builder
	if len(a.Patterns) > 0 {
		b.WriteString("Patterns:\n")
		for _, p := range a.Patterns {
			fmt.Fprintf(&b, "  - %s\n", p)
		}
	}
	if len(a.Anomalies) > 0 {
		b.WriteString("Anomalies:\n")
		for _, an := range a.Anomalies {
			fmt.Fprintf(&b, "  - %s\n", an)
		}
	}
	if a.RootCause != "" {
		fmt.Fprintf(&b, "Likely root cause: %s\n", a.RootCause)
	}
	if a.Summary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", a.Summary)
	}
	return b.String()
}
