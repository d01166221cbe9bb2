package agent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/loglens/loglens/internal/config"
	"github.com/loglens/loglens/internal/entity"
	"github.com/loglens/loglens/internal/llm"
	"github.com/loglens/loglens/internal/summary"
	"github.com/loglens/loglens/internal/tool"
	"github.com/loglens/loglens/internal/util"
)

// errEmptyQuery rejects blank input before any model call.
var errEmptyQuery = errors.New("query cannot be empty")

// Outcome is the result of one query run.
type Outcome struct {
	Answer       string
	Iterations   int
	ToolSequence []string
	Summaries    int
	DataType     tool.DataType
	// Forced names the reason the loop was cut short, "" when the planner
	// finalized on its own.
	Forced string
	// Cancelled is set when the context was cancelled mid-run.
	Cancelled bool
}

// Engine runs natural-language queries against one log file. Safe to reuse
// across queries; each Run gets fresh state.
type Engine struct {
	settings *config.Settings
	registry *tool.Registry
	catalog  *entity.Catalog
	provider llm.Provider
}

func NewEngine(settings *config.Settings, registry *tool.Registry, catalog *entity.Catalog, provider llm.Provider) *Engine {
	return &Engine{
		settings: settings,
		registry: registry,
		catalog:  catalog,
		provider: provider,
	}
}

// Run executes the iterative loop for one query.
func (e *Engine) Run(ctx context.Context, query string) (Outcome, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Outcome{}, errEmptyQuery
	}

	state := NewQueryState(query, e.settings.MaxIterations)
	flow := BuildQueryFlow(FlowConfig{
		Provider:         e.provider,
		Registry:         e.registry,
		Catalog:          e.catalog,
		PlannerModel:     e.settings.PlannerModel,
		Temperature:      e.settings.PlannerTemperature,
		MaxTokens:        e.settings.PlannerMaxTokens,
		SummaryThreshold: e.settings.SummaryThreshold,
		SummaryOpts: summary.Options{
			SampleBudget:     e.settings.SampleBudget,
			ImportanceWeight: e.settings.ImportanceWeight,
		},
	})

	log.Printf("[Engine] Query: %s", query)
	flow.Run(ctx, state)

	// The flow's own transition cap can abort before the finalize node runs;
	// the caller still gets a best-effort answer.
	if state.Answer == "" && ctx.Err() == nil {
		if state.ForcedReason == "" {
			state.ForcedReason = fmt.Sprintf("flow aborted after %d iterations without finalizing", state.Iteration)
		}
		state.Answer = bestEffortAnswer(state)
		state.DataType = tool.DataTerminal
	}

	outcome := Outcome{
		Answer:       state.Answer,
		Iterations:   state.Iteration,
		ToolSequence: state.ToolSequence(),
		Summaries:    state.SummaryCount,
		DataType:     state.DataType,
		Forced:       state.ForcedReason,
	}

	if err := ctx.Err(); err != nil {
		outcome.Cancelled = true
		if outcome.Answer == "" {
			outcome.Answer = "The query was cancelled before an answer was reached."
		}
		return outcome, err
	}
	log.Printf("[Engine] Done in %d iterations: %s", outcome.Iterations, util.FirstLine(outcome.Answer))
	return outcome, nil
}
