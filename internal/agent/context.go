package agent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/loglens/loglens/internal/entity"
	"github.com/loglens/loglens/internal/tool"
)

const decisionFormat = `Respond with exactly one JSON object and nothing after it:
{"reasoning": "<one sentence on why this step>", "action": "<tool name>", "params": {<tool parameters>}}

When the question is fully answered, use action "finalize_answer" with params {"answer": "<complete answer>", "confidence": <0..1>}.`

// BuildPrompt assembles the planner's per-iteration prompt from the query,
// the tool catalog, the recent history, and the current state, closing with
// a data-type-specific hint and the output format.
func BuildPrompt(s *QueryState, catalog *entity.Catalog, toolCatalog string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Question: %s\n", s.Query)
	writeQueryEntities(&b, s, catalog)
	fmt.Fprintf(&b, "\nIteration %d of %d.\n\n", s.Iteration+1, s.MaxIterations)

	b.WriteString(toolCatalog)
	b.WriteString("\n")

	if len(s.History) > 0 {
		b.WriteString("Steps so far:\n")
		start := len(s.History) - maxHistoryInPrompt
		if start > 0 {
			fmt.Fprintf(&b, "  (%d earlier steps omitted)\n", start)
		} else {
			start = 0
		}
		for _, h := range s.History[start:] {
			status := "ok"
			if !h.OK {
				status = "FAILED"
			}
			fmt.Fprintf(&b, "  %d. %s %s -> %s: %s\n", h.Iteration, h.Tool, h.Params, status, h.Summary)
		}
		b.WriteString("\n")
	}

	writeStateSection(&b, s, catalog)

	if hint := stateHint(s, catalog); hint != "" {
		fmt.Fprintf(&b, "Hint: %s\n\n", hint)
	}

	b.WriteString(decisionFormat)
	return b.String()
}

// writeQueryEntities names the entity kinds the question refers to, with
// their payload field names, so the planner greps and parses the right
// identifiers on the first try.
func writeQueryEntities(b *strings.Builder, s *QueryState, catalog *entity.Catalog) {
	if catalog == nil {
		return
	}
	for _, kind := range catalog.KindsInQuery(s.Query) {
		fields := catalog.FieldsForKind(kind)
		if len(fields) > 0 {
			fmt.Fprintf(b, "The question involves %s (payload fields: %s).\n", kind, strings.Join(fields, ", "))
		} else {
			fmt.Fprintf(b, "The question involves %s.\n", kind)
		}
	}
}

func writeStateSection(b *strings.Builder, s *QueryState, catalog *entity.Catalog) {
	b.WriteString("Current state:\n")
	if s.CurrentLogs.Len() == 0 {
		b.WriteString("  No working set yet; start with grep_logs or grep_and_parse.\n")
	} else {
		fmt.Fprintf(b, "  Working set: %d rows.\n", s.CurrentLogs.Len())
		writeFieldLines(b, s.AvailableFields, catalog)
		if s.CurrentSummary != "" {
			b.WriteString("  Working set digest:\n")
			for _, line := range strings.Split(strings.TrimRight(s.CurrentSummary, "\n"), "\n") {
				fmt.Fprintf(b, "    %s\n", line)
			}
		} else {
			for _, sample := range s.LogSamples {
				fmt.Fprintf(b, "  Sample: %s\n", sample)
			}
		}
	}
	if s.LastStep != nil {
		fmt.Fprintf(b, "  Last result (%s): %s\n", s.LastStep.Meta.DataType, s.LastStep.Message)
	}
	for _, field := range sortedExtractionFields(s) {
		fe := s.FieldExtractions[field]
		if fe.Deduplicated {
			fmt.Fprintf(b, "  Field %s: %d raw values, deduplicated to %d.\n", field, fe.RawCount, fe.UniqueCount)
		} else {
			fmt.Fprintf(b, "  Field %s: %d raw values, NOT deduplicated yet.\n", field, fe.RawCount)
		}
	}
	b.WriteString("\n")
}

// writeFieldLines lists the observed payload fields, bucketed by entity
// kind when a catalog is configured.
func writeFieldLines(b *strings.Builder, fields []string, catalog *entity.Catalog) {
	if len(fields) == 0 {
		return
	}
	if catalog == nil {
		fmt.Fprintf(b, "  Payload fields: %s.\n", strings.Join(fields, ", "))
		return
	}
	grouped, other := catalog.GroupFields(fields)
	for _, kind := range catalog.Kinds() {
		if fs := grouped[kind]; len(fs) > 0 {
			fmt.Fprintf(b, "  Fields for %s: %s.\n", kind, strings.Join(fs, ", "))
		}
	}
	if len(other) > 0 {
		fmt.Fprintf(b, "  Other payload fields: %s.\n", strings.Join(other, ", "))
	}
}

func sortedExtractionFields(s *QueryState) []string {
	fields := make([]string, 0, len(s.FieldExtractions))
	for f := range s.FieldExtractions {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// stateHint produces the single actionable hint, first match wins:
// counting query with nothing parsed yet, then the last step's data type,
// then a per-group query shape. These mirror the mistakes small local models
// actually make: grepping instead of parsing, counting duplicated values,
// re-deduplicating, or not finalizing a finished count.
func stateHint(s *QueryState, catalog *entity.Catalog) string {
	q := strings.ToLower(s.Query)

	if wantsCount(q) && len(s.FieldExtractions) == 0 && s.CurrentLogs.Len() > 0 && catalog != nil {
		for _, kind := range catalog.KindsInQuery(s.Query) {
			if fields := catalog.FieldsForKind(kind); len(fields) > 0 {
				return fmt.Sprintf("to count %s, parse_json_field with field_name %s first", kind, fields[0])
			}
		}
	}

	if hint := dataTypeHint(s); hint != "" {
		return hint
	}

	if strings.Contains(q, " per ") || strings.HasPrefix(q, "per ") || strings.Contains(q, "for each") || strings.Contains(q, "by each") {
		return "the question asks for a per-group breakdown; use aggregate_by_field or count_unique_per_group"
	}
	return ""
}

func wantsCount(q string) bool {
	return strings.Contains(q, "unique") || strings.Contains(q, "count") || strings.Contains(q, "how many")
}

func dataTypeHint(s *QueryState) string {
	if s.LastStep == nil {
		return ""
	}
	switch s.LastStep.Meta.DataType {
	case tool.DataRawValues:
		return "the extracted values may contain duplicates; use extract_unique or count_values before reporting a count"
	case tool.DataUniqueValues:
		return "these values are already deduplicated; do not extract_unique again, count or finalize"
	case tool.DataFinalCount:
		return "you have a final count; if it answers the question, use finalize_answer now"
	case tool.DataAggregated:
		return "you have aggregated results; if they answer the question, use finalize_answer now"
	case tool.DataRawLogs:
		if !s.LastStep.OK {
			return ""
		}
		return "to count or list entities in these rows, parse_json_field first; raw rows often repeat the same entity"
	}
	return ""
}
