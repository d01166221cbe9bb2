package agent

import (
	"github.com/loglens/loglens/internal/core"
	"github.com/loglens/loglens/internal/entity"
	"github.com/loglens/loglens/internal/llm"
	"github.com/loglens/loglens/internal/summary"
	"github.com/loglens/loglens/internal/tool"
)

// FlowConfig carries everything the query flow needs.
type FlowConfig struct {
	Provider         llm.Provider
	Registry         *tool.Registry
	Catalog          *entity.Catalog
	PlannerModel     string
	Temperature      float32
	MaxTokens        int
	SummaryThreshold int
	SummaryOpts      summary.Options
}

// BuildQueryFlow wires the decide -> tool -> decide loop with finalize as
// the single exit:
//
//	decide --tool-----> tool --continue--> decide
//	decide --continue-> decide            (invalid response, retry)
//	decide --finalize-> finalize
//	tool   --finalize-> finalize          (terminal tool result)
func BuildQueryFlow(cfg FlowConfig) *core.Flow[QueryState] {
	decide := core.NewNode[QueryState, llm.Request, llm.Decision](
		NewDecideNode(cfg.Provider, cfg.Registry, cfg.Catalog, cfg.PlannerModel, cfg.Temperature, cfg.MaxTokens), 0)
	toolNode := core.NewNode[QueryState, toolCall, tool.Result](
		NewToolNode(cfg.Registry, cfg.Catalog, cfg.SummaryThreshold, cfg.SummaryOpts), 0)
	finalize := core.NewNode[QueryState, struct{}, struct{}](NewFinalizeNode(), 0)

	decide.AddSuccessor(toolNode, core.ActionTool)
	decide.AddSuccessor(decide, core.ActionContinue)
	decide.AddSuccessor(finalize, core.ActionFinalize)
	toolNode.AddSuccessor(decide, core.ActionContinue)
	toolNode.AddSuccessor(finalize, core.ActionFinalize)

	return core.NewFlow[QueryState](decide)
}
