package llm

import "testing"

func TestStripReasoning(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no markers", `{"action":"x"}`, `{"action":"x"}`},
		{"think block", "<think>long rumination</think>\n{\"a\":1}", `{"a":1}`},
		{"multiple blocks", "<think>a</think>mid<think>b</think>tail", "midtail"},
		{"unclosed marker drops tail", "prefix<think>never closed", "prefix"},
		{"reasoning tag", "<reasoning>r</reasoning>done", "done"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripReasoning(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractLastJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"action":"grep_logs"}`, `{"action":"grep_logs"}`},
		{"prose then object", `I will search now. {"action":"grep_logs","params":{}}`, `{"action":"grep_logs","params":{}}`},
		{"nested params", `x {"action":"t","params":{"a":{"b":1}}}`, `{"action":"t","params":{"a":{"b":1}}}`},
		{"last of several", `{"a":1} then {"b":2}`, `{"b":2}`},
		{"brace in string", `{"action":"t","params":{"pattern":"\\{x\\}"}}`, `{"action":"t","params":{"pattern":"\\{x\\}"}}`},
		{"no object", "nothing here", ""},
		{"unbalanced", "{{{", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractLastJSON(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseDecision_Valid(t *testing.T) {
	raw := "<think>pick a tool</think>\nHere is my decision:\n" +
		`{"reasoning":"need raw rows","action":"grep_logs","params":{"pattern":"ERROR"}}`

	d := ParseDecision(raw)
	if d.Invalid() {
		t.Fatal("expected valid decision")
	}
	if d.Action != "grep_logs" {
		t.Errorf("action = %q", d.Action)
	}
	if d.Params["pattern"] != "ERROR" {
		t.Errorf("params = %v", d.Params)
	}
}

func TestParseDecision_EmptyReasoningAllowed(t *testing.T) {
	d := ParseDecision(`{"reasoning":"","action":"count_values","params":{}}`)
	if d.Invalid() {
		t.Error("empty reasoning must be allowed")
	}
}

func TestParseDecision_Invalid(t *testing.T) {
	for _, raw := range []string{
		"no json at all",
		`{"reasoning":"x","params":{}}`,  // missing action
		`{"action":"   ","params":{}}`,   // blank action
		`{"action":"t","params":"oops"}`, // params not a mapping
	} {
		if d := ParseDecision(raw); !d.Invalid() {
			t.Errorf("expected invalid sentinel for %q, got %+v", raw, d)
		}
	}
}

func TestParseDecision_NilParamsDefaulted(t *testing.T) {
	d := ParseDecision(`{"action":"summarize_logs"}`)
	if d.Invalid() {
		t.Fatal("expected valid decision")
	}
	if d.Params == nil {
		t.Error("params must never be nil after parsing")
	}
}
