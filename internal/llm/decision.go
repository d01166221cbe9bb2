package llm

import (
	"encoding/json"
	"strings"
)

// InvalidAction is the sentinel action of a Decision that failed parsing or
// validation. The orchestrator treats it as an aborted iteration.
const InvalidAction = "__invalid__"

// Decision is the planner's per-iteration output: the next tool to run and
// its parameters.
type Decision struct {
	Reasoning string         `json:"reasoning"`
	Action    string         `json:"action"`
	Params    map[string]any `json:"params"`
}

// Invalid reports whether this is the sentinel decision.
func (d Decision) Invalid() bool { return d.Action == InvalidAction }

// ParseDecision runs the full pipeline on raw model output: strip reasoning
// markers, extract the last balanced JSON object, decode and validate.
// Any failure yields the invalid sentinel rather than an error — the caller
// counts consecutive failures and decides when to abort.
func ParseDecision(raw string) Decision {
	content := StripReasoning(raw)
	obj := ExtractLastJSON(content)
	if obj == "" {
		return Decision{Action: InvalidAction}
	}

	var d Decision
	if err := json.Unmarshal([]byte(obj), &d); err != nil {
		return Decision{Action: InvalidAction}
	}
	if strings.TrimSpace(d.Action) == "" {
		return Decision{Action: InvalidAction}
	}
	if d.Params == nil {
		d.Params = map[string]any{}
	}
	return d
}
