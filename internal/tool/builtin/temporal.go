package builtin

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/loglens/loglens/internal/logstore"
	"github.com/loglens/loglens/internal/tool"
)

// SortByTimeTool orders the working set by event timestamp.
type SortByTimeTool struct{}

func NewSortByTimeTool() *SortByTimeTool { return &SortByTimeTool{} }

func (t *SortByTimeTool) Name() string { return "sort_by_time" }
func (t *SortByTimeTool) Description() string {
	return "Sort the working set chronologically; rows without a parseable timestamp go last in original order."
}

func (t *SortByTimeTool) Params() []tool.ParamSpec {
	return []tool.ParamSpec{
		{Name: "descending", Type: tool.TypeBool, Default: false, Description: "newest first"},
		{Name: "logs", Type: tool.TypeTable, Description: "working set; injected automatically"},
	}
}

func (t *SortByTimeTool) RequiresLogs() bool { return true }

func (t *SortByTimeTool) Execute(_ context.Context, args tool.Args) (tool.Result, error) {
	ws, failure := requireLogs(args)
	if failure != nil {
		return *failure, nil
	}
	descending, _ := args.Bool("descending")

	type timedRow struct {
		row logstore.Row
		ts  *time.Time
	}
	timed := make([]timedRow, 0, ws.Len())
	unparsed := 0
	for _, row := range ws.Rows() {
		ev := logstore.ParseEvent(ws.Payload(row))
		if ev.Timestamp == nil {
			unparsed++
		}
		timed = append(timed, timedRow{row: row, ts: ev.Timestamp})
	}

	// Stable: equal timestamps and timestamp-less rows keep input order.
	sort.SliceStable(timed, func(i, j int) bool {
		ti, tj := timed[i].ts, timed[j].ts
		if ti == nil {
			return false
		}
		if tj == nil {
			return true
		}
		if descending {
			return ti.After(*tj)
		}
		return ti.Before(*tj)
	})

	rows := make([]logstore.Row, len(timed))
	for i, tr := range timed {
		rows[i] = tr.row
	}
	sorted := ws.Derive(rows)

	order := "oldest first"
	if descending {
		order = "newest first"
	}
	msg := fmt.Sprintf("Sorted %d rows by timestamp (%s)", len(rows), order)
	if unparsed > 0 {
		msg += fmt.Sprintf("; %d rows had no parseable timestamp and were kept at the end", unparsed)
	}
	return tool.Ok(tool.DataRawLogs, &tool.TableData{Set: sorted}, "%s", msg).
		WithExtra("unparsed", unparsed), nil
}

// ExtractTimeRangeTool filters the working set to rows within [start, end].
type ExtractTimeRangeTool struct {
	// now is swappable for tests.
	now func() time.Time
}

func NewExtractTimeRangeTool() *ExtractTimeRangeTool {
	return &ExtractTimeRangeTool{now: time.Now}
}

func (t *ExtractTimeRangeTool) Name() string { return "extract_time_range" }
func (t *ExtractTimeRangeTool) Description() string {
	return "Keep only rows whose timestamp falls inside [start, end]; accepts ISO-8601 times or relative forms like now-2h."
}

func (t *ExtractTimeRangeTool) Params() []tool.ParamSpec {
	return []tool.ParamSpec{
		{Name: "start", Type: tool.TypeString, Default: "", Description: "inclusive lower bound; empty means unbounded"},
		{Name: "end", Type: tool.TypeString, Default: "", Description: "inclusive upper bound; empty means unbounded"},
		{Name: "logs", Type: tool.TypeTable, Description: "working set; injected automatically"},
	}
}

func (t *ExtractTimeRangeTool) RequiresLogs() bool { return true }

func (t *ExtractTimeRangeTool) Execute(_ context.Context, args tool.Args) (tool.Result, error) {
	ws, failure := requireLogs(args)
	if failure != nil {
		return *failure, nil
	}
	startSpec, _ := args.String("start")
	endSpec, _ := args.String("end")
	if startSpec == "" && endSpec == "" {
		return tool.Fail("at least one of start and end is required"), nil
	}

	var start, end *time.Time
	if startSpec != "" {
		ts, err := t.parseTimeSpec(startSpec)
		if err != nil {
			return tool.Fail("invalid start %q: %v", startSpec, err), nil
		}
		start = &ts
	}
	if endSpec != "" {
		ts, err := t.parseTimeSpec(endSpec)
		if err != nil {
			return tool.Fail("invalid end %q: %v", endSpec, err), nil
		}
		end = &ts
	}
	if start != nil && end != nil && start.After(*end) {
		return tool.Fail("start %s is after end %s", start.Format(time.RFC3339), end.Format(time.RFC3339)), nil
	}

	var rows []logstore.Row
	skipped := 0
	for _, row := range ws.Rows() {
		ev := logstore.ParseEvent(ws.Payload(row))
		if ev.Timestamp == nil {
			skipped++
			continue
		}
		ts := *ev.Timestamp
		if start != nil && ts.Before(*start) {
			continue
		}
		if end != nil && ts.After(*end) {
			continue
		}
		rows = append(rows, row)
	}

	filtered := ws.Derive(rows)
	msg := fmt.Sprintf("Kept %d of %d rows in the requested time range", len(rows), ws.Len())
	if skipped > 0 {
		msg += fmt.Sprintf(" (%d rows without a parseable timestamp were dropped)", skipped)
	}
	return tool.Ok(tool.DataRawLogs, &tool.TableData{Set: filtered}, "%s", msg).
		WithExtra("dropped_unparsed", skipped), nil
}

var relativeTimeRE = regexp.MustCompile(`^now(?:-(\d+)([hmd]))?$`)

// parseTimeSpec accepts "now", "now-Nh" / "now-Nm" / "now-Nd", and the
// common ISO-8601 layouts the log timestamps themselves use.
func (t *ExtractTimeRangeTool) parseTimeSpec(spec string) (time.Time, error) {
	spec = strings.TrimSpace(spec)
	if m := relativeTimeRE.FindStringSubmatch(strings.ToLower(spec)); m != nil {
		now := t.now()
		if m[1] == "" {
			return now, nil
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, err
		}
		switch m[2] {
		case "h":
			return now.Add(-time.Duration(n) * time.Hour), nil
		case "m":
			return now.Add(-time.Duration(n) * time.Minute), nil
		case "d":
			return now.AddDate(0, 0, -n), nil
		}
	}

	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, spec); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format (use ISO-8601 or now-Nh)")
}
