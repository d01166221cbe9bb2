package llm

import "strings"

// reasoningMarkers are the delimiter pairs local instruction-tuned models
// use for chain-of-thought content. Everything between a pair is dropped.
var reasoningMarkers = [][2]string{
	{"<think>", "</think>"},
	{"<thinking>", "</thinking>"},
	{"<reasoning>", "</reasoning>"},
}

// StripReasoning removes reasoning-marker blocks, leaving the final content.
// An opening marker without its closer drops everything from the marker on;
// models that get truncated mid-thought produce no decision either way.
func StripReasoning(s string) string {
	for _, pair := range reasoningMarkers {
		for {
			start := strings.Index(s, pair[0])
			if start < 0 {
				break
			}
			end := strings.Index(s[start:], pair[1])
			if end < 0 {
				s = s[:start]
				break
			}
			s = s[:start] + s[start+end+len(pair[1]):]
		}
	}
	return strings.TrimSpace(s)
}

// ExtractLastJSON returns the last balanced JSON object in s, scanning
// string literals and escapes correctly. Returns "" when none exists.
func ExtractLastJSON(s string) string {
	end := strings.LastIndexByte(s, '}')
	for end >= 0 {
		if start := matchingOpen(s, end); start >= 0 {
			return s[start : end+1]
		}
		end = strings.LastIndexByte(s[:end], '}')
	}
	return ""
}

// matchingOpen finds the '{' matching the '}' at position end by scanning
// forward from each candidate opening brace. Returns -1 when unbalanced.
func matchingOpen(s string, end int) int {
	// Scan backwards for candidate opens, verify by forward balance walk.
	for start := strings.LastIndexByte(s[:end], '{'); start >= 0; start = strings.LastIndexByte(s[:start], '{') {
		if balancedTo(s, start) == end {
			return start
		}
	}
	return -1
}

// balancedTo walks forward from the '{' at start and returns the index of
// its matching '}' or -1.
func balancedTo(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
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
				return i
			}
		}
	}
	return -1
}
