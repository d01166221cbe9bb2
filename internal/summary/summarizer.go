// Package summary compresses a large working set into a compact, stable
// digest: aggregate statistics, the entity values involved, and a small
// importance-weighted sample of representative rows. The digest replaces
// the raw rows in the planner's context once the working set outgrows the
// configured threshold.
package summary

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/loglens/loglens/internal/entity"
	"github.com/loglens/loglens/internal/logstore"
	"github.com/loglens/loglens/internal/util"
)

// maxTextBytes caps the rendered digest so it never dominates the prompt.
const maxTextBytes = 2048

// entityValueCap bounds the distinct values listed per entity kind.
const entityValueCap = 8

// topFrequencyCap bounds the top-functions and top-messages lists.
const topFrequencyCap = 5

// Options tune the sampler.
type Options struct {
	// SampleBudget is the number of representative rows to keep.
	SampleBudget int
	// ImportanceWeight balances importance scoring against time-spread
	// coverage when picking samples, in [0, 1].
	ImportanceWeight float64
}

// DefaultOptions matches the engine defaults.
func DefaultOptions() Options {
	return Options{SampleBudget: 10, ImportanceWeight: 0.6}
}

// Stats are the aggregate numbers of a working set.
type Stats struct {
	Total      int
	BySeverity map[string]int
	First      *time.Time
	Last       *time.Time
}

// Frequency is one entry of a most-common list.
type Frequency struct {
	Value string
	Count int
}

// Summary is the full digest of one working set.
type Summary struct {
	Text     string
	Stats    Stats
	Entities map[string][]string
	// TopFunctions ranks the values of a "Function" payload field when the
	// rows carry one.
	TopFunctions []Frequency
	// TopMessages ranks message templates (variable numbers collapsed), so
	// repeated events group despite differing identifiers.
	TopMessages []Frequency
	Samples     []string
}

// ComputeStats makes one pass over the working set counting severities and
// tracking the covered time span.
func ComputeStats(ws *logstore.WorkingSet) Stats {
	stats := Stats{Total: ws.Len(), BySeverity: make(map[string]int)}
	for _, row := range ws.Rows() {
		ev := logstore.ParseEvent(ws.Payload(row))
		if ev.Severity != "" {
			stats.BySeverity[ev.Severity]++
		}
		if ev.Timestamp != nil {
			if stats.First == nil || ev.Timestamp.Before(*stats.First) {
				t := *ev.Timestamp
				stats.First = &t
			}
			if stats.Last == nil || ev.Timestamp.After(*stats.Last) {
				t := *ev.Timestamp
				stats.Last = &t
			}
		}
	}
	return stats
}

// ExtractEntities collects, per configured entity kind, the distinct values
// observed in the working set's payload fields and extraction patterns.
// Value lists are sorted and capped.
func ExtractEntities(ws *logstore.WorkingSet, catalog *entity.Catalog) map[string][]string {
	if catalog == nil {
		return nil
	}
	found := make(map[string]map[string]bool)
	note := func(kind, value string) {
		if value == "" {
			return
		}
		if found[kind] == nil {
			found[kind] = make(map[string]bool)
		}
		found[kind][value] = true
	}

	for _, row := range ws.Rows() {
		payload := ws.Payload(row)
		ev := logstore.ParseEvent(payload)
		for k, v := range ev.Fields {
			if kind, ok := catalog.KindForField(k); ok {
				note(kind, v)
			}
		}
		for _, kind := range catalog.Kinds() {
			for _, re := range catalog.PatternsForKind(kind) {
				for _, m := range re.FindAllString(payload, -1) {
					note(kind, m)
				}
			}
		}
	}

	entities := make(map[string][]string, len(found))
	for kind, set := range found {
		values := make([]string, 0, len(set))
		for v := range set {
			values = append(values, v)
		}
		sort.Strings(values)
		if len(values) > entityValueCap {
			values = values[:entityValueCap]
		}
		entities[kind] = values
	}
	return entities
}

// Summarize digests a working set. The same inputs always produce the same
// digest. query steers nothing today but is kept for future relevance
// scoring.
func Summarize(ws *logstore.WorkingSet, query string, catalog *entity.Catalog, opts Options) Summary {
	if opts.SampleBudget <= 0 {
		opts.SampleBudget = DefaultOptions().SampleBudget
	}
	if opts.ImportanceWeight <= 0 || opts.ImportanceWeight > 1 {
		opts.ImportanceWeight = DefaultOptions().ImportanceWeight
	}

	stats := ComputeStats(ws)
	entities := ExtractEntities(ws, catalog)
	functions, messages := topFunctionsAndMessages(ws)
	samples := pickSamples(ws, catalog, opts)

	s := Summary{
		Stats:        stats,
		Entities:     entities,
		TopFunctions: functions,
		TopMessages:  messages,
		Samples:      samples,
	}
	s.Text = render(s)
	return s
}

// topFunctionsAndMessages counts the emitting functions (a "Function"
// payload field, when present) and the message templates across the set.
func topFunctionsAndMessages(ws *logstore.WorkingSet) ([]Frequency, []Frequency) {
	functions := make(map[string]int)
	messages := make(map[string]int)
	for _, row := range ws.Rows() {
		ev := logstore.ParseEvent(ws.Payload(row))
		for k, v := range ev.Fields {
			if strings.EqualFold(k, "Function") && v != "" {
				functions[v]++
			}
		}
		if ev.Message != "" {
			messages[messageTemplate(ev.Message)]++
		}
	}
	return topFrequencies(functions), topFrequencies(messages)
}

func topFrequencies(counts map[string]int) []Frequency {
	out := make([]Frequency, 0, len(counts))
	for v, n := range counts {
		out = append(out, Frequency{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > topFrequencyCap {
		out = out[:topFrequencyCap]
	}
	return out
}

func render(s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d rows", s.Stats.Total)
	if s.Stats.First != nil && s.Stats.Last != nil {
		fmt.Fprintf(&b, " spanning %s to %s",
			s.Stats.First.Format(time.RFC3339), s.Stats.Last.Format(time.RFC3339))
	}
	b.WriteString("\n")

	if len(s.Stats.BySeverity) > 0 {
		sevs := make([]string, 0, len(s.Stats.BySeverity))
		for sev := range s.Stats.BySeverity {
			sevs = append(sevs, sev)
		}
		sort.Slice(sevs, func(i, j int) bool {
			return logstore.SeverityRank[sevs[i]] > logstore.SeverityRank[sevs[j]]
		})
		parts := make([]string, 0, len(sevs))
		for _, sev := range sevs {
			parts = append(parts, fmt.Sprintf("%s=%d", sev, s.Stats.BySeverity[sev]))
		}
		fmt.Fprintf(&b, "Severity: %s\n", strings.Join(parts, " "))
	}

	if len(s.Entities) > 0 {
		kinds := make([]string, 0, len(s.Entities))
		for kind := range s.Entities {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			values := s.Entities[kind]
			fmt.Fprintf(&b, "%s (%d): %s\n", kind, len(values), strings.Join(values, ", "))
		}
	}

	if len(s.TopFunctions) > 0 {
		parts := make([]string, 0, len(s.TopFunctions))
		for _, f := range s.TopFunctions {
			parts = append(parts, fmt.Sprintf("%s=%d", f.Value, f.Count))
		}
		fmt.Fprintf(&b, "Top functions: %s\n", strings.Join(parts, " "))
	}
	if len(s.TopMessages) > 0 {
		b.WriteString("Top messages:\n")
		for _, m := range s.TopMessages {
			fmt.Fprintf(&b, "  %dx %s\n", m.Count, util.TruncateRunes(m.Value, 120))
		}
	}

	if len(s.Samples) > 0 {
		b.WriteString("Representative rows:\n")
		for i, sample := range s.Samples {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, sample)
		}
	}

	text := b.String()
	if len(text) > maxTextBytes {
		text = text[:maxTextBytes-3] + "..."
	}
	return text
}
