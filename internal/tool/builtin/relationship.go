package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/loglens/loglens/internal/entity"
	"github.com/loglens/loglens/internal/logstore"
	"github.com/loglens/loglens/internal/tool"
	"github.com/loglens/loglens/internal/util"
)

// FindRelationshipChainTool walks the log graph from a start value to a
// target field via co-occurring (field, value) pairs.
type FindRelationshipChainTool struct {
	store      *logstore.Store
	catalog    *entity.Catalog
	grepBudget int
	maxDepth   int
}

func NewFindRelationshipChainTool(store *logstore.Store, catalog *entity.Catalog, grepBudget, maxDepth int) *FindRelationshipChainTool {
	return &FindRelationshipChainTool{store: store, catalog: catalog, grepBudget: grepBudget, maxDepth: maxDepth}
}

func (t *FindRelationshipChainTool) Name() string { return "find_relationship_chain" }
func (t *FindRelationshipChainTool) Description() string {
	return "Follow co-occurring identifiers across rows to connect a start value to a target field (e.g. CPE MAC to MdId)."
}

func (t *FindRelationshipChainTool) Params() []tool.ParamSpec {
	return []tool.ParamSpec{
		{Name: "start_value", Type: tool.TypeString, Required: true, Description: "value to start from"},
		{Name: "target_field", Type: tool.TypeString, Required: true, Description: "payload field to reach"},
		{Name: "max_depth", Type: tool.TypeInt, Default: t.maxDepth, Description: "maximum hops (1-5)"},
	}
}

func (t *FindRelationshipChainTool) RequiresLogs() bool { return false }

func (t *FindRelationshipChainTool) Execute(ctx context.Context, args tool.Args) (tool.Result, error) {
	startValue, _ := args.String("start_value")
	targetField, _ := args.String("target_field")
	if startValue == "" || targetField == "" {
		return tool.Fail("start_value and target_field are both required"), nil
	}
	maxDepth, ok := args.Int("max_depth")
	if !ok || maxDepth == 0 {
		maxDepth = t.maxDepth
	}
	maxDepth = util.Clamp(maxDepth, 1, 5)

	w := &walker{store: t.store, catalog: t.catalog, grepBudget: t.grepBudget}
	chain, err := w.run(ctx, startValue, targetField, maxDepth)
	if err != nil {
		return failOrAbort(err)
	}

	data := &tool.ChainData{
		Path:    chain.Path,
		Targets: chain.Targets,
		Depth:   chain.Depth,
		Found:   chain.Found,
	}
	if !chain.Found {
		return tool.Ok(tool.DataAggregated, data,
			"No %s reachable from %q within depth %d (%d greps used); try a larger max_depth or a different start value",
			targetField, startValue, maxDepth, chain.GrepCalls).
			WithExtra("found", false), nil
	}

	return tool.Ok(tool.DataAggregated, data,
		"Found %s = %s at depth %d via %s (%d greps used)",
		targetField, strings.Join(chain.Targets, ", "), chain.Depth,
		formatPath(chain.Path), chain.GrepCalls).
		WithExtra("found", true).
		WithExtra("targets", chain.Targets), nil
}

func formatPath(path []tool.Hop) string {
	parts := make([]string, 0, len(path))
	for _, h := range path {
		if h.Field == "" {
			parts = append(parts, h.Value)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%s", h.Field, h.Value))
	}
	return strings.Join(parts, " -> ")
}

// CountViaRelationshipTool aggregates relationship-walk results over every
// distinct value of a source field: per target value, how many sources map
// to it.
type CountViaRelationshipTool struct {
	store      *logstore.Store
	catalog    *entity.Catalog
	grepBudget int
}

// countViaSourceCap bounds how many distinct source values are walked.
const countViaSourceCap = 25

func NewCountViaRelationshipTool(store *logstore.Store, catalog *entity.Catalog, grepBudget int) *CountViaRelationshipTool {
	return &CountViaRelationshipTool{store: store, catalog: catalog, grepBudget: grepBudget}
}

func (t *CountViaRelationshipTool) Name() string { return "count_via_relationship" }
func (t *CountViaRelationshipTool) Description() string {
	return "For each distinct source-field value, walk the relationship graph to the target field and count sources per target."
}

func (t *CountViaRelationshipTool) Params() []tool.ParamSpec {
	return []tool.ParamSpec{
		{Name: "source_field", Type: tool.TypeString, Required: true, Description: "field whose distinct values are walked"},
		{Name: "target_field", Type: tool.TypeString, Required: true, Description: "field to reach from each source value"},
		{Name: "max_depth", Type: tool.TypeInt, Default: 2, Description: "maximum hops per source (1-5)"},
		{Name: "top_n", Type: tool.TypeInt, Default: 10, Description: "number of target groups to report"},
	}
}

func (t *CountViaRelationshipTool) RequiresLogs() bool { return false }

func (t *CountViaRelationshipTool) Execute(ctx context.Context, args tool.Args) (tool.Result, error) {
	sourceField, _ := args.String("source_field")
	targetField, _ := args.String("target_field")
	if sourceField == "" || targetField == "" {
		return tool.Fail("source_field and target_field are both required"), nil
	}
	maxDepth, ok := args.Int("max_depth")
	if !ok || maxDepth == 0 {
		maxDepth = 2
	}
	maxDepth = util.Clamp(maxDepth, 1, 5)
	topN, _ := args.Int("top_n")
	if topN <= 0 {
		topN = 10
	}

	// Discover the distinct source values by grepping for the field name.
	ws, _, err := t.store.Search(ctx, sourceField, logstore.SearchOptions{MaxMatches: 500})
	if err != nil {
		return failOrAbort(err)
	}
	canonical, values := collectFieldValues(ws, sourceField)
	if len(values) == 0 {
		return tool.Fail("no values of %q found in the log file", sourceField), nil
	}
	sources := uniqueValues(values)
	total := len(sources)
	if len(sources) > countViaSourceCap {
		sources = sources[:countViaSourceCap]
	}

	// Split the grep budget across sources; every source gets at least a
	// couple of calls so shallow chains still resolve.
	perSource := t.grepBudget / len(sources)
	if perSource < 2 {
		perSource = 2
	}

	counts := make(map[string]int)
	mapped := 0
	for _, src := range sources {
		if ctx.Err() != nil {
			return tool.Result{}, ctx.Err()
		}
		w := &walker{store: t.store, catalog: t.catalog, grepBudget: perSource}
		chain, err := w.run(ctx, src, targetField, maxDepth)
		if err != nil {
			return failOrAbort(err)
		}
		if chain.Found {
			mapped++
			for _, target := range chain.Targets {
				counts[target]++
			}
		}
	}

	groups := sortedGroups(counts, topN)
	coverage := fmt.Sprintf("%d/%d", mapped, len(sources))
	msg := fmt.Sprintf("Mapped %s source values of %s to %s; top targets: %s",
		coverage, canonical, targetField, formatGroups(groups))
	if total > len(sources) {
		msg += fmt.Sprintf(" (sampled %d of %d distinct sources)", len(sources), total)
	}
	return tool.Ok(tool.DataAggregated, &tool.GroupCounts{Groups: groups}, "%s", msg).
		WithExtra("coverage", coverage), nil
}
