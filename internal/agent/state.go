// Package agent implements the iterative query loop: a planner decision
// node, a tool execution node, and a finalize node wired into a flow. The
// planner LLM drives tool selection; all state transitions happen here, not
// inside tools.
package agent

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/loglens/loglens/internal/llm"
	"github.com/loglens/loglens/internal/logstore"
	"github.com/loglens/loglens/internal/tool"
	"github.com/loglens/loglens/internal/util"
)

// maxHistoryInPrompt bounds how many past steps the planner sees.
const maxHistoryInPrompt = 5

// cycleWindow and cycleLimit define the repeated-call guard: the same call
// key appearing cycleLimit times within the last cycleWindow steps, with no
// observable state change, forces finalization.
const (
	cycleWindow = 8
	cycleLimit  = 3
)

// maxStateSamples bounds the raw rows echoed into the prompt.
const maxStateSamples = 2

// FieldExtraction tracks per-field bookkeeping so the planner is reminded
// whether a value list has been deduplicated yet.
type FieldExtraction struct {
	RawCount     int
	Deduplicated bool
	UniqueCount  int
}

// HistoryEntry is one completed step of the investigation.
type HistoryEntry struct {
	Iteration int
	Tool      string
	Params    string // redacted rendering, safe for prompts
	Summary   string
	OK        bool
	// CallKey identifies the invocation for the repeated-call guard.
	CallKey string
	// StateMark fingerprints the observable state after the step.
	StateMark string
}

// QueryState is the shared state of one query's flow run.
type QueryState struct {
	Query         string
	MaxIterations int

	// Iteration counts planner decisions made so far.
	Iteration int

	// CurrentLogs is the single active working set; nil before the first
	// successful search.
	CurrentLogs *logstore.WorkingSet
	// CurrentSummary replaces raw rows in the prompt once the working set
	// outgrows the summary threshold.
	CurrentSummary string
	// AvailableFields are the payload field names observed in CurrentLogs.
	AvailableFields []string
	// LogSamples are a couple of raw rows for small working sets.
	LogSamples []string

	// LastResult holds the most recent successful non-tabular output (value
	// lists, counts, aggregations, analysis text). Tabular results go to
	// CurrentLogs instead, and failures never land here, so an extracted
	// value list survives intervening sorts, filters and failed calls.
	LastResult *tool.Result
	// LastStep is the most recent result of any kind, success or failure.
	// It feeds the prompt's last-result line and the loop guard's state
	// fingerprint, never auto-injection.
	LastStep *tool.Result

	FieldExtractions map[string]*FieldExtraction

	History []HistoryEntry

	// Decision is the planner's current choice, set by the decide node and
	// consumed by the tool / finalize nodes.
	Decision llm.Decision

	// ParseFailures counts consecutive invalid planner responses.
	ParseFailures int

	// ForcedReason is set when the loop terminates for a reason other than
	// the planner choosing to finalize.
	ForcedReason string

	// SummaryCount tracks how many times auto-summarization ran.
	SummaryCount int

	// Final outcome.
	Answer    string
	DataType  tool.DataType
	Cancelled bool
}

// NewQueryState initializes the state for one query.
func NewQueryState(query string, maxIterations int) *QueryState {
	return &QueryState{
		Query:            query,
		MaxIterations:    maxIterations,
		FieldExtractions: make(map[string]*FieldExtraction),
	}
}

// ToolSequence lists the tools executed, in order. Iterations aborted on an
// invalid planner response are in the history but ran no tool.
func (s *QueryState) ToolSequence() []string {
	seq := make([]string, 0, len(s.History))
	for _, h := range s.History {
		if h.Tool == llm.InvalidAction {
			continue
		}
		seq = append(seq, h.Tool)
	}
	return seq
}

// callKey builds the deterministic identity of a tool invocation: the tool
// name plus its parameters rendered with sorted keys. Injected working sets
// are excluded, they are not planner input.
func callKey(toolName string, params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "logs" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(toolName)
	for _, k := range keys {
		raw, err := json.Marshal(params[k])
		if err != nil {
			raw = []byte(fmt.Sprintf("%v", params[k]))
		}
		fmt.Fprintf(&b, "|%s=%s", k, raw)
	}
	return b.String()
}

// stateMark fingerprints the observable state: working set size plus the
// last result message. A repeated call that changes neither is going in
// circles.
func (s *QueryState) stateMark() string {
	msg := ""
	if s.LastStep != nil {
		msg = s.LastStep.Message
	}
	return fmt.Sprintf("%d|%s", s.CurrentLogs.Len(), msg)
}

// repeatedCall reports whether the decision would be the cycleLimit-th
// occurrence of the same call key in the recent window without any state
// change in between.
func (s *QueryState) repeatedCall(key string) bool {
	start := len(s.History) - (cycleWindow - 1)
	if start < 0 {
		start = 0
	}
	mark := s.stateMark()
	count := 0
	for _, h := range s.History[start:] {
		if h.CallKey == key && h.StateMark == mark {
			count++
		}
	}
	return count >= cycleLimit-1
}

// redactParams renders a parameter map for history lines and prompts: keys
// sorted, long lists collapsed to their length.
func redactParams(params map[string]any) string {
	if len(params) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "logs" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, redactValue(params[k])))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func redactValue(v any) string {
	switch val := v.(type) {
	case []any:
		if len(val) > 3 {
			return fmt.Sprintf("{%d items}", len(val))
		}
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, fmt.Sprintf("%v", item))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []string:
		if len(val) > 3 {
			return fmt.Sprintf("{%d items}", len(val))
		}
		return "[" + strings.Join(val, ", ") + "]"
	case string:
		return util.TruncateRunes(val, 60)
	default:
		return fmt.Sprintf("%v", val)
	}
}
