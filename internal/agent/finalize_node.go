package agent

import (
	"context"
	"fmt"
	"log"

	"github.com/loglens/loglens/internal/core"
	"github.com/loglens/loglens/internal/tool"
)

// FinalizeNode terminates the query: it accepts the planner's answer, or
// synthesizes a best-effort one when the loop was cut short.
type FinalizeNode struct{}

func NewFinalizeNode() *FinalizeNode { return &FinalizeNode{} }

func (n *FinalizeNode) Prep(state *QueryState) []struct{} {
	return []struct{}{{}}
}

func (n *FinalizeNode) Exec(_ context.Context, _ struct{}) (struct{}, error) {
	return struct{}{}, nil
}

func (n *FinalizeNode) ExecFallback(_ error) struct{} { return struct{}{} }

// Post writes the final answer into the state. Finalization is pure state
// work; no model call happens here.
func (n *FinalizeNode) Post(state *QueryState, _ []struct{}, _ ...struct{}) core.Action {
	if state.Answer != "" {
		// A terminal tool result already set the answer.
		return core.ActionEnd
	}

	if state.ForcedReason == "" && state.Decision.Action == "finalize_answer" {
		if answer, ok := state.Decision.Params["answer"].(string); ok && answer != "" {
			state.Answer = answer
			state.DataType = tool.DataTerminal
			state.History = append(state.History, HistoryEntry{
				Iteration: state.Iteration,
				Tool:      "finalize_answer",
				Params:    redactParams(state.Decision.Params),
				Summary:   "answer delivered",
				OK:        true,
			})
			return core.ActionEnd
		}
		state.ForcedReason = "planner finalized without an answer"
	}

	state.Answer = bestEffortAnswer(state)
	state.DataType = tool.DataTerminal
	log.Printf("[Finalize] Forced (%s)", state.ForcedReason)
	return core.ActionEnd
}

// bestEffortAnswer assembles what the investigation found so far, preferring
// concrete counts and aggregations over raw messages.
func bestEffortAnswer(state *QueryState) string {
	prefix := ""
	if state.ForcedReason != "" {
		prefix = fmt.Sprintf("The investigation stopped early (%s). ", state.ForcedReason)
	}

	if r := state.LastResult; r != nil && r.OK {
		switch r.Meta.DataType {
		case tool.DataFinalCount, tool.DataAggregated, tool.DataAnalysis, tool.DataFormatted:
			return prefix + "Best finding so far: " + r.Message
		}
	}

	// Fall back to the most recent successful step of any kind.
	for i := len(state.History) - 1; i >= 0; i-- {
		if state.History[i].OK {
			return prefix + fmt.Sprintf("Best finding so far (from %s): %s",
				state.History[i].Tool, state.History[i].Summary)
		}
	}
	return prefix + "No usable results were produced. Try rephrasing the question or narrowing the search pattern."
}
