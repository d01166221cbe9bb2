// Package builtin implements the concrete log-analysis tool set.
package builtin

import (
	"context"
	"errors"
	"sort"
	"strings"
	"unicode"

	"github.com/loglens/loglens/internal/logstore"
	"github.com/loglens/loglens/internal/tool"
)

// collectFieldValues extracts the named field (case-insensitive) from the
// payload of every row, preserving row order and duplicates. Returns the
// canonical field spelling as first observed.
func collectFieldValues(ws *logstore.WorkingSet, field string) (string, []string) {
	canonical := ""
	var values []string
	for _, row := range ws.Rows() {
		ev := logstore.ParseEvent(ws.Payload(row))
		for k, v := range ev.Fields {
			if strings.EqualFold(k, field) {
				if canonical == "" {
					canonical = k
				}
				values = append(values, v)
				break
			}
		}
	}
	return canonical, values
}

// observedFieldCap bounds the rows scanned when listing available fields
// for an error message.
const observedFieldCap = 200

// observedFields returns the sorted union of payload field names seen in
// the working set (bounded scan).
func observedFields(ws *logstore.WorkingSet) []string {
	seen := make(map[string]bool)
	for i, row := range ws.Rows() {
		if i >= observedFieldCap {
			break
		}
		ev := logstore.ParseEvent(ws.Payload(row))
		for k := range ev.Fields {
			seen[k] = true
		}
	}
	fields := make([]string, 0, len(seen))
	for k := range seen {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

// uniqueValues deduplicates preserving first occurrence.
func uniqueValues(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// looksLikeFieldNames detects the planner mistake of passing field names
// where values belong: a short list (1-5) of PascalCase identifiers.
func looksLikeFieldNames(values []string) bool {
	if len(values) == 0 || len(values) > 5 {
		return false
	}
	for _, v := range values {
		if !isPascalCase(v) {
			return false
		}
	}
	return true
}

func isPascalCase(s string) bool {
	if s == "" {
		return false
	}
	runes := []rune(s)
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	hasLower := false
	for _, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
		if unicode.IsLower(r) {
			hasLower = true
		}
	}
	return hasLower
}

// formatRow renders one row for display: ordinal plus truncated payload.
func formatRow(ws *logstore.WorkingSet, row logstore.Row, maxLen int) string {
	payload := ws.Payload(row)
	payload = strings.ReplaceAll(payload, "\n", " ")
	if maxLen > 0 {
		runes := []rune(payload)
		if len(runes) > maxLen {
			payload = string(runes[:maxLen]) + "..."
		}
	}
	return payload
}

// failOrAbort converts a store error into either a failed result (expected
// input errors) or a propagated Go error (cancellation), so partial output
// is never committed for a cancelled tool.
func failOrAbort(err error) (tool.Result, error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return tool.Result{}, err
	}
	return tool.Fail("%v", err), nil
}

// requireLogs fetches the injected working set or fails with a next-step
// hint.
func requireLogs(args tool.Args) (*logstore.WorkingSet, *tool.Result) {
	ws, ok := args.Table("logs")
	if !ok || ws.Len() == 0 {
		r := tool.Fail("no logs available; run grep_logs first to build a working set")
		return nil, &r
	}
	return ws, nil
}
