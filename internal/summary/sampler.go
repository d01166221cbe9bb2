package summary

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/loglens/loglens/internal/entity"
	"github.com/loglens/loglens/internal/logstore"
)

// sampleLineRunes truncates each rendered sample row.
const sampleLineRunes = 160

var numberedToken = regexp.MustCompile(`(?:0x[0-9a-fA-F]+|\d+)`)

// scoredRow pairs a row with its importance score and timestamp.
type scoredRow struct {
	index int
	score float64
	ts    *time.Time
	text  string
}

// pickSamples selects an importance-weighted, time-spread subset of rows.
// ImportanceWeight splits the budget: that fraction of slots goes to the
// highest-scoring rows overall, the remainder to one row per time bucket so
// the sample still covers the whole span. Selection is deterministic: ties
// resolve by row order.
func pickSamples(ws *logstore.WorkingSet, catalog *entity.Catalog, opts Options) []string {
	rows := ws.Rows()
	if len(rows) == 0 {
		return nil
	}

	// Template frequency for the rarity component: messages that repeat
	// with only numbers changed are common noise.
	templates := make(map[string]int)
	events := make([]logstore.Event, len(rows))
	for i, row := range rows {
		ev := logstore.ParseEvent(ws.Payload(row))
		events[i] = ev
		templates[messageTemplate(ev.Message)]++
	}

	scored := make([]scoredRow, len(rows))
	for i, row := range rows {
		ev := events[i]
		scored[i] = scoredRow{
			index: i,
			score: scoreEvent(ev, templates, len(rows), catalog),
			ts:    ev.Timestamp,
			text:  renderSample(ws.Payload(row)),
		}
	}

	budget := opts.SampleBudget
	if budget >= len(rows) {
		out := make([]string, len(rows))
		for i, s := range scored {
			out[i] = s.text
		}
		return out
	}

	importanceSlots := int(float64(budget)*opts.ImportanceWeight + 0.5)
	if importanceSlots > budget {
		importanceSlots = budget
	}
	spreadSlots := budget - importanceSlots

	picked := make(map[int]bool)

	// Importance pass: best scores first, row order on ties.
	byScore := append([]scoredRow(nil), scored...)
	sort.SliceStable(byScore, func(i, j int) bool { return byScore[i].score > byScore[j].score })
	for _, s := range byScore {
		if len(picked) >= importanceSlots {
			break
		}
		picked[s.index] = true
	}

	// Coverage pass: one bucket per remaining slot across the time span;
	// in each bucket keep the best unpicked row. Rows without timestamps
	// fall into the overflow fill below.
	if spreadSlots > 0 {
		first, last := timeBounds(scored)
		if first != nil && last != nil && last.After(*first) {
			span := last.Sub(*first)
			bucketOf := func(ts time.Time) int {
				b := int(float64(spreadSlots) * float64(ts.Sub(*first)) / float64(span))
				if b >= spreadSlots {
					b = spreadSlots - 1
				}
				return b
			}
			best := make([]*scoredRow, spreadSlots)
			for i := range scored {
				s := &scored[i]
				if picked[s.index] || s.ts == nil {
					continue
				}
				b := bucketOf(*s.ts)
				if best[b] == nil || s.score > best[b].score {
					best[b] = s
				}
			}
			for _, s := range best {
				if s != nil {
					picked[s.index] = true
				}
			}
		}
	}

	// Fill any remaining slots (empty buckets, missing timestamps) with the
	// next best unpicked rows.
	for _, s := range byScore {
		if len(picked) >= budget {
			break
		}
		picked[s.index] = true
	}

	indices := make([]int, 0, len(picked))
	for i := range picked {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	out := make([]string, 0, len(indices))
	for _, i := range indices {
		out = append(out, scored[i].text)
	}
	return out
}

// scoreEvent combines severity, template rarity, and entity density.
func scoreEvent(ev logstore.Event, templates map[string]int, total int, catalog *entity.Catalog) float64 {
	score := float64(logstore.SeverityRank[ev.Severity])

	if n := templates[messageTemplate(ev.Message)]; n > 0 {
		score += 1.0 - float64(n)/float64(total)
	}

	if catalog != nil {
		kinds := make(map[string]bool)
		for k := range ev.Fields {
			if kind, ok := catalog.KindForField(k); ok {
				kinds[kind] = true
			}
		}
		// Rows tying several entity kinds together are the interesting ones.
		score += 0.5 * float64(len(kinds))
	}
	return score
}

func messageTemplate(msg string) string {
	return numberedToken.ReplaceAllString(msg, "#")
}

func timeBounds(scored []scoredRow) (*time.Time, *time.Time) {
	var first, last *time.Time
	for _, s := range scored {
		if s.ts == nil {
			continue
		}
		if first == nil || s.ts.Before(*first) {
			first = s.ts
		}
		if last == nil || s.ts.After(*last) {
			last = s.ts
		}
	}
	return first, last
}

func renderSample(payload string) string {
	payload = strings.ReplaceAll(payload, "\n", " ")
	runes := []rune(payload)
	if len(runes) > sampleLineRunes {
		payload = string(runes[:sampleLineRunes]) + "..."
	}
	return payload
}
