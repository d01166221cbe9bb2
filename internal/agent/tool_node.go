package agent

import (
	"context"
	"log"

	"github.com/loglens/loglens/internal/core"
	"github.com/loglens/loglens/internal/entity"
	"github.com/loglens/loglens/internal/logstore"
	"github.com/loglens/loglens/internal/summary"
	"github.com/loglens/loglens/internal/tool"
	"github.com/loglens/loglens/internal/util"
)

// historySummaryRunes bounds one history line's result summary.
const historySummaryRunes = 160

// tinySampleLimit: a planner-supplied values list this short, when a larger
// extraction is available, is almost always the prompt's sample rows echoed
// back rather than a deliberate selection.
const tinySampleLimit = 3

// toolCall is one prepared invocation.
type toolCall struct {
	name    string
	impl    tool.Tool
	args    tool.Args
	prepErr string
}

// ToolNode executes the planner's chosen tool and commits the result to the
// query state. Tools never touch the state themselves.
type ToolNode struct {
	registry         *tool.Registry
	catalog          *entity.Catalog
	summaryThreshold int
	summaryOpts      summary.Options
}

func NewToolNode(registry *tool.Registry, catalog *entity.Catalog, summaryThreshold int, summaryOpts summary.Options) *ToolNode {
	return &ToolNode{
		registry:         registry,
		catalog:          catalog,
		summaryThreshold: summaryThreshold,
		summaryOpts:      summaryOpts,
	}
}

// Prep resolves the tool and validates its arguments, auto-injecting the
// working set and the previous value list where the planner omitted them.
// Planner-supplied parameters are never overwritten.
func (n *ToolNode) Prep(state *QueryState) []toolCall {
	name := state.Decision.Action
	impl, ok := n.registry.Get(name)
	if !ok {
		return []toolCall{{name: name, prepErr: "unknown tool " + name}}
	}

	raw := make(tool.Args, len(state.Decision.Params))
	for k, v := range state.Decision.Params {
		raw[k] = v
	}
	n.inject(state, impl, raw)

	args, err := tool.PrepareArgs(impl.Params(), raw)
	if err != nil {
		return []toolCall{{name: name, impl: impl, prepErr: err.Error()}}
	}
	return []toolCall{{name: name, impl: impl, args: args}}
}

func (n *ToolNode) inject(state *QueryState, impl tool.Tool, args tool.Args) {
	var hasLogs, hasValues, hasQuery bool
	for _, spec := range impl.Params() {
		switch spec.Name {
		case "logs":
			hasLogs = true
		case "values":
			hasValues = true
		case "query":
			hasQuery = true
		}
	}

	if (hasLogs || impl.RequiresLogs()) && !args.Has("logs") && state.CurrentLogs.Len() > 0 {
		args["logs"] = state.CurrentLogs
	}
	if hasQuery && !args.Has("query") {
		args["query"] = state.Query
	}
	if !hasValues {
		return
	}

	full := lastValueList(state)
	supplied, ok := args.StringList("values")
	switch {
	case !args.Has("values") && len(full) > 0:
		args["values"] = full
	case ok && len(supplied) > 0 && len(supplied) <= tinySampleLimit && len(full) > len(supplied):
		// The planner echoed the prompt's samples; substitute the full list.
		log.Printf("[Tool] Replacing %d sampled values with the full list of %d", len(supplied), len(full))
		args["values"] = full
	}
}

func lastValueList(state *QueryState) []string {
	if state.LastResult == nil || !state.LastResult.OK {
		return nil
	}
	vl, ok := state.LastResult.Data.(*tool.ValueList)
	if !ok {
		return nil
	}
	return vl.Values
}

// Exec runs the tool. Prep failures short-circuit into a failed result.
func (n *ToolNode) Exec(ctx context.Context, call toolCall) (tool.Result, error) {
	if call.prepErr != "" {
		return tool.Fail("%s", call.prepErr), nil
	}
	return call.impl.Execute(ctx, call.args)
}

// ExecFallback converts an unexpected tool error into a failed result so
// the loop survives and the planner sees what went wrong.
func (n *ToolNode) ExecFallback(err error) tool.Result {
	log.Printf("[Tool] Execution error: %v", err)
	return tool.Fail("tool execution error: %v", err)
}

// Post records exactly one history entry and applies the state transition
// rules for the result's data type.
func (n *ToolNode) Post(state *QueryState, prepRes []toolCall, execResults ...tool.Result) core.Action {
	if len(prepRes) == 0 || len(execResults) == 0 {
		return core.ActionContinue
	}
	call := prepRes[0]
	result := execResults[0]

	state.LastStep = &result
	if result.OK {
		n.commit(state, result)
		// Only non-tabular successes occupy the last-result slot; tabular
		// output lives in CurrentLogs and failures stay out of state.
		if _, tabular := result.Data.(*tool.TableData); !tabular {
			state.LastResult = &result
		}
	}

	// Exactly one history entry per invocation. StateMark fingerprints the
	// post-step state so the repeated-call guard can tell progress from
	// spinning.
	state.History = append(state.History, HistoryEntry{
		Iteration: state.Iteration,
		Tool:      call.name,
		Params:    redactParams(state.Decision.Params),
		Summary:   util.TruncateRunes(util.FirstLine(result.Message), historySummaryRunes),
		OK:        result.OK,
		CallKey:   callKey(call.name, state.Decision.Params),
		StateMark: state.stateMark(),
	})

	if result.Meta.DataType == tool.DataTerminal {
		if td, ok := result.Data.(*tool.TextData); ok {
			state.Answer = td.Text
		}
		state.DataType = tool.DataTerminal
		return core.ActionFinalize
	}
	return core.ActionContinue
}

// commit applies the working-set and bookkeeping updates of a successful
// result.
func (n *ToolNode) commit(state *QueryState, result tool.Result) {
	if ws, ok := result.Table(); ok {
		state.CurrentLogs = ws
		state.AvailableFields = payloadFields(ws)
		state.LogSamples = nil
		state.CurrentSummary = ""
		if ws.Len() > n.summaryThreshold {
			s := summary.Summarize(ws, state.Query, n.catalog, n.summaryOpts)
			state.CurrentSummary = s.Text
			state.SummaryCount++
			log.Printf("[Tool] Working set of %d rows summarized for the prompt", ws.Len())
		} else {
			for i, row := range ws.Rows() {
				if i >= maxStateSamples {
					break
				}
				state.LogSamples = append(state.LogSamples, util.TruncateRunes(ws.Payload(row), 160))
			}
		}
	}

	extra := result.Meta.Extra
	field, _ := extra["field"].(string)
	if field == "" {
		return
	}
	fe := state.FieldExtractions[field]
	if fe == nil {
		fe = &FieldExtraction{}
		state.FieldExtractions[field] = fe
	}
	if raw, ok := extra["raw_count"].(int); ok {
		fe.RawCount = raw
		fe.Deduplicated = false
	}
	if unique, ok := extra["unique_count"].(int); ok {
		fe.UniqueCount = unique
		fe.Deduplicated = true
		if total, ok := extra["total_count"].(int); ok && fe.RawCount == 0 {
			fe.RawCount = total
		}
	}
}

// payloadFieldScanCap bounds the rows scanned when refreshing the
// available-fields list after a working-set change.
const payloadFieldScanCap = 200

func payloadFields(ws *logstore.WorkingSet) []string {
	seen := make(map[string]bool)
	var fields []string
	for i, row := range ws.Rows() {
		if i >= payloadFieldScanCap {
			break
		}
		ev := logstore.ParseEvent(ws.Payload(row))
		for k := range ev.Fields {
			if !seen[k] {
				seen[k] = true
				fields = append(fields, k)
			}
		}
	}
	return fields
}
