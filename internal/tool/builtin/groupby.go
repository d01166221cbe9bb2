package builtin

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/loglens/loglens/internal/logstore"
	"github.com/loglens/loglens/internal/tool"
)

// sortedGroups orders a count map descending by count (key ascending on
// ties, for determinism) and truncates to topN. topN <= 0 keeps all.
func sortedGroups(counts map[string]int, topN int) []tool.Group {
	groups := make([]tool.Group, 0, len(counts))
	for k, v := range counts {
		groups = append(groups, tool.Group{Key: k, Count: v})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Key < groups[j].Key
	})
	if topN > 0 && len(groups) > topN {
		groups = groups[:topN]
	}
	return groups
}

func formatGroups(groups []tool.Group) string {
	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		parts = append(parts, fmt.Sprintf("%s=%d", g.Key, g.Count))
	}
	return strings.Join(parts, ", ")
}

// AggregateByFieldTool counts row occurrences per value of one field.
type AggregateByFieldTool struct{}

func NewAggregateByFieldTool() *AggregateByFieldTool { return &AggregateByFieldTool{} }

func (t *AggregateByFieldTool) Name() string { return "aggregate_by_field" }
func (t *AggregateByFieldTool) Description() string {
	return "Count rows per value of a payload field in the working set; returns the top groups."
}

func (t *AggregateByFieldTool) Params() []tool.ParamSpec {
	return []tool.ParamSpec{
		{Name: "field_name", Type: tool.TypeString, Required: true, Description: "field to group by"},
		{Name: "top_n", Type: tool.TypeInt, Default: 10, Description: "number of groups to report"},
		{Name: "logs", Type: tool.TypeTable, Description: "working set; injected automatically"},
	}
}

func (t *AggregateByFieldTool) RequiresLogs() bool { return true }

func (t *AggregateByFieldTool) Execute(_ context.Context, args tool.Args) (tool.Result, error) {
	ws, failure := requireLogs(args)
	if failure != nil {
		return *failure, nil
	}
	field, _ := args.String("field_name")
	if field == "" {
		return tool.Fail("field_name cannot be empty"), nil
	}
	topN, _ := args.Int("top_n")
	if topN <= 0 {
		topN = 10
	}

	canonical, values := collectFieldValues(ws, field)
	if len(values) == 0 {
		return tool.Fail("field %q not found in any row; available fields: %s",
			field, strings.Join(observedFields(ws), ", ")), nil
	}

	counts := make(map[string]int)
	for _, v := range values {
		if v != "" {
			counts[v]++
		}
	}
	groups := sortedGroups(counts, topN)

	return tool.Ok(tool.DataAggregated, &tool.GroupCounts{Groups: groups},
		"%d distinct %s values across %d rows; top: %s",
		len(counts), canonical, ws.Len(), formatGroups(groups)).
		WithExtra("field", canonical).
		WithExtra("distinct", len(counts)), nil
}

// CountUniquePerGroupTool counts distinct values of one field per value of
// another, over rows that carry both.
type CountUniquePerGroupTool struct{}

func NewCountUniquePerGroupTool() *CountUniquePerGroupTool { return &CountUniquePerGroupTool{} }

func (t *CountUniquePerGroupTool) Name() string { return "count_unique_per_group" }
func (t *CountUniquePerGroupTool) Description() string {
	return "Group rows by one field and count distinct values of another field per group (e.g. modems per RPD)."
}

func (t *CountUniquePerGroupTool) Params() []tool.ParamSpec {
	return []tool.ParamSpec{
		{Name: "group_by", Type: tool.TypeString, Required: true, Description: "field whose values define the groups"},
		{Name: "count_field", Type: tool.TypeString, Required: true, Description: "field whose distinct values are counted per group"},
		{Name: "top_n", Type: tool.TypeInt, Default: 10, Description: "number of groups to report"},
		{Name: "logs", Type: tool.TypeTable, Description: "working set; injected automatically"},
	}
}

func (t *CountUniquePerGroupTool) RequiresLogs() bool { return true }

func (t *CountUniquePerGroupTool) Execute(_ context.Context, args tool.Args) (tool.Result, error) {
	ws, failure := requireLogs(args)
	if failure != nil {
		return *failure, nil
	}
	groupBy, _ := args.String("group_by")
	countField, _ := args.String("count_field")
	if groupBy == "" || countField == "" {
		return tool.Fail("group_by and count_field are both required"), nil
	}
	topN, _ := args.Int("top_n")
	if topN <= 0 {
		topN = 10
	}

	perGroup := make(map[string]map[string]bool)
	rowsWithBoth := 0
	canonicalGroup, canonicalCount := "", ""
	for _, row := range ws.Rows() {
		ev := logstore.ParseEvent(ws.Payload(row))
		gVal, cVal := "", ""
		for k, v := range ev.Fields {
			if strings.EqualFold(k, groupBy) && v != "" {
				gVal = v
				if canonicalGroup == "" {
					canonicalGroup = k
				}
			}
			if strings.EqualFold(k, countField) && v != "" {
				cVal = v
				if canonicalCount == "" {
					canonicalCount = k
				}
			}
		}
		if gVal == "" || cVal == "" {
			continue
		}
		rowsWithBoth++
		if perGroup[gVal] == nil {
			perGroup[gVal] = make(map[string]bool)
		}
		perGroup[gVal][cVal] = true
	}

	if rowsWithBoth == 0 {
		return tool.Fail("no rows carry both %q and %q; available fields: %s",
			groupBy, countField, strings.Join(observedFields(ws), ", ")), nil
	}

	counts := make(map[string]int, len(perGroup))
	for g, set := range perGroup {
		counts[g] = len(set)
	}
	groups := sortedGroups(counts, topN)

	return tool.Ok(tool.DataAggregated, &tool.GroupCounts{Groups: groups},
		"%d groups of %s (from %d rows with both fields); distinct %s per group: %s",
		len(perGroup), canonicalGroup, rowsWithBoth, canonicalCount, formatGroups(groups)).
		WithExtra("group_by", canonicalGroup).
		WithExtra("count_field", canonicalCount), nil
}
