package builtin

import (
	"github.com/loglens/loglens/internal/config"
	"github.com/loglens/loglens/internal/entity"
	"github.com/loglens/loglens/internal/llm"
	"github.com/loglens/loglens/internal/logstore"
	"github.com/loglens/loglens/internal/summary"
	"github.com/loglens/loglens/internal/tool"
)

// RegisterAll wires the complete tool set into the registry.
func RegisterAll(reg *tool.Registry, store *logstore.Store, catalog *entity.Catalog, provider llm.Provider, settings *config.Settings) {
	reg.Register(NewGrepLogsTool(store))
	reg.Register(NewCountMatchingTool(store))
	reg.Register(NewParseJSONFieldTool())
	reg.Register(NewExtractUniqueTool())
	reg.Register(NewCountValuesTool())
	reg.Register(NewGrepAndParseTool(store))
	reg.Register(NewFindRelationshipChainTool(store, catalog, settings.WalkerGrepBudget, settings.WalkerMaxDepth))
	reg.Register(NewCountViaRelationshipTool(store, catalog, settings.WalkerGrepBudget))
	reg.Register(NewCountUniquePerGroupTool())
	reg.Register(NewAggregateByFieldTool())
	reg.Register(NewSortByTimeTool())
	reg.Register(NewExtractTimeRangeTool())
	reg.Register(NewSummarizeLogsTool(catalog, summary.Options{
		SampleBudget:     settings.SampleBudget,
		ImportanceWeight: settings.ImportanceWeight,
	}))
	reg.Register(NewAnalyzeLogsTool(provider, catalog, settings.AnalyzerModel, settings.AnalyzeSampleCap))
	reg.Register(NewReturnLogsTool())
	reg.Register(NewFinalizeAnswerTool())
}
