package logstore

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Event is the best-effort decoding of a row payload. Parsing never fails:
// malformed payloads yield an Event with nil/empty fields.
type Event struct {
	Timestamp *time.Time
	Severity  string // normalized: DEBUG, INFO, WARN, ERROR; "" if absent
	Message   string
	Fields    map[string]string
}

// SeverityRank orders the conventional severity hierarchy. Unknown
// severities rank below DEBUG.
var SeverityRank = map[string]int{
	"DEBUG": 1,
	"INFO":  2,
	"WARN":  3,
	"ERROR": 4,
}

// timestampLayouts are the accepted leading-timestamp forms, probed in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
}

// ParseEvent decodes a payload of the conventional shape
// "<ISO-8601 timestamp> <opaque tokens> <JSON object>". Every part is
// optional; whatever cannot be extracted is left zero.
func ParseEvent(payload string) Event {
	ev := Event{}
	rest := strings.TrimSpace(payload)

	if ts, tail, ok := leadingTimestamp(rest); ok {
		ev.Timestamp = &ts
		rest = tail
	}

	jsonStart := strings.IndexByte(rest, '{')
	head := rest
	if jsonStart >= 0 {
		head = rest[:jsonStart]
		ev.Fields = parseJSONObject(rest[jsonStart:])
	}

	ev.Severity = severityToken(head)
	ev.Message = strings.TrimSpace(head)
	return ev
}

// leadingTimestamp tries to parse the first one or two whitespace-delimited
// tokens as an ISO-8601 timestamp ("date time" payloads use two tokens).
func leadingTimestamp(s string) (time.Time, string, bool) {
	first, tail1 := splitToken(s)
	if first == "" {
		return time.Time{}, s, false
	}
	second, tail2 := splitToken(tail1)

	// Two-token form first: "2024-01-02 15:04:05.000 ...".
	if second != "" {
		combined := first + " " + second
		for _, layout := range timestampLayouts {
			if strings.ContainsRune(layout, ' ') {
				if ts, err := time.Parse(layout, combined); err == nil {
					return ts, tail2, true
				}
			}
		}
	}
	for _, layout := range timestampLayouts {
		if strings.ContainsRune(layout, ' ') {
			continue
		}
		if ts, err := time.Parse(layout, first); err == nil {
			return ts, tail1, true
		}
	}
	return time.Time{}, s, false
}

func splitToken(s string) (string, string) {
	s = strings.TrimLeft(s, " \t")
	if s == "" {
		return "", ""
	}
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+1:]
}

// severityToken scans for a conventional severity token. WARNING is
// normalized to WARN.
func severityToken(s string) string {
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '[' || r == ']' || r == ':' || r == '|'
	}) {
		switch strings.ToUpper(tok) {
		case "DEBUG":
			return "DEBUG"
		case "INFO":
			return "INFO"
		case "WARN", "WARNING":
			return "WARN"
		case "ERROR", "ERR":
			return "ERROR"
		}
	}
	return ""
}

// parseJSONObject decodes the balanced JSON object starting at s[0] and
// flattens it to a string-valued field map. One layer of doubled-quote
// escaping ("" in place of ") is tolerated. Returns nil on failure.
func parseJSONObject(s string) map[string]string {
	obj := balancedObject(s)
	if obj == "" {
		return nil
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(obj), &decoded); err != nil {
		// Producers sometimes emit payloads with CSV-style doubled quotes
		// still in place. Undo one level and retry.
		unescaped := strings.ReplaceAll(obj, `""`, `"`)
		if err := json.Unmarshal([]byte(unescaped), &decoded); err != nil {
			return nil
		}
	}

	fields := make(map[string]string)
	flattenFields(decoded, fields)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// balancedObject returns the prefix of s that forms a balanced JSON object,
// respecting string literals and escapes. Returns "" when braces never close.
func balancedObject(s string) string {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}

// flattenFields walks nested objects and records leaf values under their
// leaf key. The first occurrence of a key wins.
func flattenFields(obj map[string]any, out map[string]string) {
	for k, v := range obj {
		switch val := v.(type) {
		case map[string]any:
			flattenFields(val, out)
		case nil:
			// skip nulls
		case []any:
			if _, exists := out[k]; !exists {
				parts := make([]string, 0, len(val))
				for _, item := range val {
					if _, isObj := item.(map[string]any); isObj {
						continue
					}
					parts = append(parts, scalarString(item))
				}
				if len(parts) > 0 {
					out[k] = strings.Join(parts, ",")
				}
			}
		default:
			if _, exists := out[k]; !exists {
				out[k] = scalarString(val)
			}
		}
	}
}

func scalarString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		// Keep integral JSON numbers free of the ".000000" float suffix.
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", val)
	}
}

// FieldValue extracts a single named field (case-insensitive) from a
// payload. Returns the canonical key as found and the value.
func FieldValue(payload, field string) (key, value string, ok bool) {
	ev := ParseEvent(payload)
	for k, v := range ev.Fields {
		if strings.EqualFold(k, field) {
			return k, v, true
		}
	}
	return "", "", false
}
