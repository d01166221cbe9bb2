package builtin

import (
	"context"
	"sort"
	"strings"

	"github.com/loglens/loglens/internal/entity"
	"github.com/loglens/loglens/internal/logstore"
	"github.com/loglens/loglens/internal/tool"
)

// walkerRowCap bounds the rows materialized per grep during a walk.
const walkerRowCap = 200

// walker performs bounded breadth-first search over the implicit log
// graph: values connect to the other (field, value) pairs they co-occur
// with in rows.
type walker struct {
	store      *logstore.Store
	catalog    *entity.Catalog
	grepBudget int
}

// walkNode is one frontier entry: a value to grep for, the path that led
// to it, and the per-hop neighbor-count signal used for tie-breaking.
type walkNode struct {
	field   string
	value   string
	path    []tool.Hop
	signals []int
	depth   int
}

// chainResult is the outcome of one walk.
type chainResult struct {
	Path      []tool.Hop
	Targets   []string
	Depth     int
	Found     bool
	GrepCalls int
	signals   []int
}

// run searches outward from startValue until targetField is populated in
// some reachable row, depth exceeds maxDepth, or the grep budget runs out.
// Cycles are avoided by a global (field, value) visited set.
func (w *walker) run(ctx context.Context, startValue, targetField string, maxDepth int) (chainResult, error) {
	visited := map[string]bool{visitKey("", startValue): true}
	frontier := []walkNode{{
		value: startValue,
		path:  []tool.Hop{{Field: "", Value: startValue}},
		depth: 0,
	}}

	result := chainResult{}
	var best *chainResult

	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var next []walkNode
		for _, node := range frontier {
			if result.GrepCalls >= w.grepBudget {
				break
			}
			if ctx.Err() != nil {
				return chainResult{}, ctx.Err()
			}

			ws, _, err := w.store.Search(ctx, node.value, logstore.SearchOptions{MaxMatches: walkerRowCap})
			result.GrepCalls++
			if err != nil {
				return chainResult{GrepCalls: result.GrepCalls}, err
			}

			pairs, targets := w.collectPairs(ws, targetField, node.value)
			if len(targets) > 0 {
				candidate := chainResult{
					Path:      node.path,
					Targets:   targets,
					Depth:     depth,
					Found:     true,
					GrepCalls: result.GrepCalls,
					signals:   append(append([]int(nil), node.signals...), len(pairs)),
				}
				if best == nil || betterChain(candidate, *best) {
					best = &candidate
				}
				continue
			}

			for _, p := range pairs {
				key := visitKey(p.field, p.value)
				if visited[key] {
					continue
				}
				visited[key] = true
				child := walkNode{
					field:   p.field,
					value:   p.value,
					path:    append(append([]tool.Hop(nil), node.path...), tool.Hop{Field: p.field, Value: p.value}),
					signals: append(append([]int(nil), node.signals...), len(pairs)),
					depth:   depth,
				}
				next = append(next, child)
			}
		}

		// BFS: anything found at this depth is a shortest path.
		if best != nil {
			best.GrepCalls = result.GrepCalls
			return *best, nil
		}
		w.orderFrontier(next)
		frontier = next
	}

	result.Depth = maxDepth
	return result, nil
}

// fieldPair is a discovered neighbor.
type fieldPair struct {
	field string
	value string
}

// collectPairs parses every row of the grep result, gathering the distinct
// (field, value) pairs and any values of the target field. The pair whose
// value equals the grepped value is excluded (self-edge).
func (w *walker) collectPairs(ws *logstore.WorkingSet, targetField, selfValue string) ([]fieldPair, []string) {
	seen := make(map[string]bool)
	var pairs []fieldPair
	targetSeen := make(map[string]bool)
	var targets []string

	for _, row := range ws.Rows() {
		ev := logstore.ParseEvent(ws.Payload(row))
		for k, v := range ev.Fields {
			if v == "" {
				continue
			}
			if strings.EqualFold(k, targetField) {
				if !targetSeen[v] {
					targetSeen[v] = true
					targets = append(targets, v)
				}
				continue
			}
			if strings.EqualFold(v, selfValue) {
				continue
			}
			key := visitKey(k, v)
			if !seen[key] {
				seen[key] = true
				pairs = append(pairs, fieldPair{field: k, value: v})
			}
		}
	}
	sort.Strings(targets)
	return pairs, targets
}

// orderFrontier prioritizes children whose field's entity kind is a
// configured neighbor of their parent's kind, then higher signals. The
// sort is stable so discovery order breaks remaining ties.
func (w *walker) orderFrontier(nodes []walkNode) {
	if w.catalog == nil {
		return
	}
	score := func(n walkNode) int {
		if len(n.path) < 2 {
			return 0
		}
		parentField := n.path[len(n.path)-2].Field
		parentKind, ok := w.catalog.KindForField(parentField)
		if !ok {
			return 0
		}
		childKind, ok := w.catalog.KindForField(n.field)
		if !ok {
			return 0
		}
		for _, neighbor := range w.catalog.Neighbors(parentKind) {
			if neighbor == childKind {
				return 1
			}
		}
		return 0
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		si, sj := score(nodes[i]), score(nodes[j])
		if si != sj {
			return si > sj
		}
		return lastSignal(nodes[i]) > lastSignal(nodes[j])
	})
}

func lastSignal(n walkNode) int {
	if len(n.signals) == 0 {
		return 0
	}
	return n.signals[len(n.signals)-1]
}

// betterChain implements the explicit tie-break: shortest path first; on
// equal depth, the path whose earlier hops carry the higher neighbor-count
// signal wins, compared hop by hop.
func betterChain(a, b chainResult) bool {
	if a.Depth != b.Depth {
		return a.Depth < b.Depth
	}
	for i := 0; i < len(a.signals) && i < len(b.signals); i++ {
		if a.signals[i] != b.signals[i] {
			return a.signals[i] > b.signals[i]
		}
	}
	return false // keep the earlier candidate
}

func visitKey(field, value string) string {
	return strings.ToLower(field) + "\x00" + strings.ToLower(value)
}
