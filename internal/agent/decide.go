package agent

import (
	"context"
	"fmt"
	"log"

	"github.com/loglens/loglens/internal/core"
	"github.com/loglens/loglens/internal/entity"
	"github.com/loglens/loglens/internal/llm"
	"github.com/loglens/loglens/internal/tool"
)

const plannerSystemPrompt = `You are the planning component of a log analysis engine. You investigate a CSV log file by choosing one tool per step. Work incrementally: search, narrow down, extract, count, then finalize. Never invent log content; only conclude from tool results.`

// maxParseFailures is how many consecutive invalid planner responses are
// tolerated before the query aborts with a diagnostic.
const maxParseFailures = 3

// DecideNode asks the planner model for the next step and routes on the
// parsed decision.
type DecideNode struct {
	provider    llm.Provider
	registry    *tool.Registry
	catalog     *entity.Catalog
	model       string
	temperature float32
	maxTokens   int
}

func NewDecideNode(provider llm.Provider, registry *tool.Registry, catalog *entity.Catalog, model string, temperature float32, maxTokens int) *DecideNode {
	return &DecideNode{
		provider:    provider,
		registry:    registry,
		catalog:     catalog,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// Prep builds the planner request, or nothing when the iteration budget is
// exhausted.
func (n *DecideNode) Prep(state *QueryState) []llm.Request {
	if state.Iteration >= state.MaxIterations {
		state.ForcedReason = fmt.Sprintf("iteration budget of %d exhausted", state.MaxIterations)
		log.Printf("[Decide] %s, forcing finalization", state.ForcedReason)
		return nil
	}

	prompt := BuildPrompt(state, n.catalog, n.registry.CatalogDetailed())
	return []llm.Request{{
		Model:       n.model,
		Temperature: n.temperature,
		MaxTokens:   n.maxTokens,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: plannerSystemPrompt},
			{Role: llm.RoleUser, Content: prompt},
		},
	}}
}

// Exec calls the model and parses its decision. Transport errors propagate
// for retry; malformed output becomes the invalid sentinel.
func (n *DecideNode) Exec(ctx context.Context, req llm.Request) (llm.Decision, error) {
	raw, err := n.provider.Complete(ctx, req)
	if err != nil {
		return llm.Decision{}, err
	}
	return llm.ParseDecision(raw), nil
}

// ExecFallback turns an exhausted retry into an invalid decision so the
// failure counter, not a crash, decides the query's fate.
func (n *DecideNode) ExecFallback(err error) llm.Decision {
	log.Printf("[Decide] Planner call failed after retries: %v", err)
	return llm.Decision{Action: llm.InvalidAction}
}

// Post commits the decision and routes: tool execution, finalization, or a
// retry of the decision itself after an invalid response.
func (n *DecideNode) Post(state *QueryState, prepRes []llm.Request, execResults ...llm.Decision) core.Action {
	if len(prepRes) == 0 || len(execResults) == 0 {
		return core.ActionFinalize
	}
	decision := execResults[0]
	state.Iteration++

	if decision.Invalid() {
		state.ParseFailures++
		log.Printf("[Decide] Invalid planner response (%d/%d)", state.ParseFailures, maxParseFailures)
		// The aborted iteration still gets its history entry, so the planner
		// sees its own format error on the next attempt.
		state.History = append(state.History, HistoryEntry{
			Iteration: state.Iteration,
			Tool:      llm.InvalidAction,
			Params:    "{}",
			Summary:   "response was not a single JSON decision object",
			OK:        false,
			CallKey:   callKey(llm.InvalidAction, nil),
			StateMark: state.stateMark(),
		})
		if state.ParseFailures >= maxParseFailures {
			state.ForcedReason = fmt.Sprintf("planner produced %d consecutive invalid responses", state.ParseFailures)
			return core.ActionFinalize
		}
		if state.Iteration >= state.MaxIterations {
			state.ForcedReason = fmt.Sprintf("iteration budget of %d exhausted", state.MaxIterations)
			return core.ActionFinalize
		}
		return core.ActionContinue
	}
	state.ParseFailures = 0
	state.Decision = decision

	if decision.Action == "finalize_answer" {
		return core.ActionFinalize
	}

	key := callKey(decision.Action, decision.Params)
	if state.repeatedCall(key) {
		state.ForcedReason = fmt.Sprintf("loop detected: %s repeated %d times with no progress", decision.Action, cycleLimit)
		log.Printf("[Decide] %s, forcing finalization", state.ForcedReason)
		return core.ActionFinalize
	}

	return core.ActionTool
}
