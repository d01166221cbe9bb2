package builtin

import (
	"context"
	"strings"
	"testing"

	"github.com/loglens/loglens/internal/config"
	"github.com/loglens/loglens/internal/llm"
	"github.com/loglens/loglens/internal/tool"
)

// stubProvider returns canned completions in order.
type stubProvider struct {
	responses []string
	calls     int
	lastReq   llm.Request
}

func (p *stubProvider) Complete(_ context.Context, req llm.Request) (string, error) {
	p.lastReq = req
	if p.calls >= len(p.responses) {
		return "", nil
	}
	r := p.responses[p.calls]
	p.calls++
	return r, nil
}

func TestAnalyzeLogs_StructuredResponse(t *testing.T) {
	provider := &stubProvider{responses: []string{
		`<think>looking at the rows</think>
{"patterns":["repeated ranging failures"],"anomalies":["modem flapping"],"root_cause":"RF noise on the upstream","summary":"Upstream noise is causing ranging failures."}`,
	}}
	ws := makeWS([]string{
		`2024-03-01T10:00:00 ERROR ranging failed {"CmMacAddress":"m1"}`,
		`2024-03-01T10:00:01 ERROR ranging failed {"CmMacAddress":"m2"}`,
	})

	tl := NewAnalyzeLogsTool(provider, testCatalog(), "analyzer-model", 50)
	res := runOK(t, tl, tool.Args{
		"question": "why are modems failing?",
		"logs":     ws,
	})

	if res.Meta.DataType != tool.DataAnalysis {
		t.Errorf("unexpected data type %s", res.Meta.DataType)
	}
	if res.Message != "Upstream noise is causing ranging failures." {
		t.Errorf("summary should be the message, got: %s", res.Message)
	}
	text := res.Data.(*tool.TextData).Text
	if !strings.Contains(text, "RF noise") {
		t.Errorf("root cause missing from rendered analysis:\n%s", text)
	}
	if provider.lastReq.Model != "analyzer-model" {
		t.Errorf("wrong model: %s", provider.lastReq.Model)
	}
	if !strings.Contains(provider.lastReq.Messages[1].Content, "ranging failed") {
		t.Error("sampled rows should reach the model")
	}
}

func TestAnalyzeLogs_ProseFallback(t *testing.T) {
	provider := &stubProvider{responses: []string{
		"The logs show a burst of ranging failures.\nNo JSON here.",
	}}
	ws := makeWS([]string{`2024-03-01T10:00:00 ERROR ranging failed`})

	tl := NewAnalyzeLogsTool(provider, testCatalog(), "m", 50)
	res := runOK(t, tl, tool.Args{"logs": ws})

	if !strings.Contains(res.Data.(*tool.TextData).Text, "burst of ranging failures") {
		t.Errorf("prose should be kept: %v", res.Data)
	}
}

func TestAnalyzeLogs_EmptyResponse(t *testing.T) {
	provider := &stubProvider{responses: []string{""}}
	ws := makeWS([]string{`2024-03-01T10:00:00 ERROR x`})

	tl := NewAnalyzeLogsTool(provider, testCatalog(), "m", 50)
	runFail(t, tl, tool.Args{"logs": ws})
}

func TestRegisterAll(t *testing.T) {
	store := writeStore(t, []string{`2024-03-01T10:00:00 INFO x`})
	reg := tool.NewRegistry()
	settings := &config.Settings{
		MaxIterations:    10,
		SummaryThreshold: 50,
		SampleBudget:     10,
		ImportanceWeight: 0.6,
		WalkerGrepBudget: 24,
		WalkerMaxDepth:   4,
		AnalyzeSampleCap: 50,
		PlannerModel:     "m",
		AnalyzerModel:    "m",
	}
	RegisterAll(reg, store, testCatalog(), &stubProvider{}, settings)

	names := []string{
		"grep_logs", "count_matching_rows", "parse_json_field", "extract_unique",
		"count_values", "grep_and_parse", "find_relationship_chain",
		"count_via_relationship", "count_unique_per_group", "aggregate_by_field",
		"sort_by_time", "extract_time_range", "summarize_logs", "analyze_logs",
		"return_logs", "finalize_answer",
	}
	for _, name := range names {
		if _, ok := reg.Get(name); !ok {
			t.Errorf("tool %s not registered", name)
		}
	}
	if got := len(reg.List()); got != len(names) {
		t.Errorf("expected %d tools, got %d", len(names), got)
	}
}
