package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/loglens/loglens/internal/tool"
)

// ReturnLogsTool formats a bounded sample of the working set for direct
// display to the user.
type ReturnLogsTool struct{}

func NewReturnLogsTool() *ReturnLogsTool { return &ReturnLogsTool{} }

func (t *ReturnLogsTool) Name() string { return "return_logs" }
func (t *ReturnLogsTool) Description() string {
	return "Format up to max_samples rows of the working set for the final answer."
}

func (t *ReturnLogsTool) Params() []tool.ParamSpec {
	return []tool.ParamSpec{
		{Name: "max_samples", Type: tool.TypeInt, Default: 10, Description: "rows to include"},
		{Name: "logs", Type: tool.TypeTable, Description: "working set; injected automatically"},
	}
}

func (t *ReturnLogsTool) RequiresLogs() bool { return true }

func (t *ReturnLogsTool) Execute(_ context.Context, args tool.Args) (tool.Result, error) {
	ws, failure := requireLogs(args)
	if failure != nil {
		return *failure, nil
	}
	maxSamples, ok := args.Int("max_samples")
	if !ok || maxSamples <= 0 {
		maxSamples = 10
	}

	shown := ws.Len()
	if shown > maxSamples {
		shown = maxSamples
	}

	var b strings.Builder
	for i, row := range ws.Rows() {
		if i >= shown {
			break
		}
		fmt.Fprintf(&b, "%d. %s\n", row.Ordinal, formatRow(ws, row, 200))
	}
	if ws.Len() > shown {
		fmt.Fprintf(&b, "... and %d more rows\n", ws.Len()-shown)
	}

	return tool.Ok(tool.DataFormatted, &tool.TextData{Text: b.String()},
		"Showing %d of %d rows", shown, ws.Len()), nil
}

// FinalizeAnswerTool terminates the query with the planner's answer.
type FinalizeAnswerTool struct{}

func NewFinalizeAnswerTool() *FinalizeAnswerTool { return &FinalizeAnswerTool{} }

func (t *FinalizeAnswerTool) Name() string { return "finalize_answer" }
func (t *FinalizeAnswerTool) Description() string {
	return "End the investigation and return the final answer to the user."
}

func (t *FinalizeAnswerTool) Params() []tool.ParamSpec {
	return []tool.ParamSpec{
		{Name: "answer", Type: tool.TypeString, Required: true, Description: "the complete answer"},
		{Name: "confidence", Type: tool.TypeAny, Default: nil, Description: "optional confidence in [0,1]"},
	}
}

func (t *FinalizeAnswerTool) RequiresLogs() bool { return false }

func (t *FinalizeAnswerTool) Execute(_ context.Context, args tool.Args) (tool.Result, error) {
	answer, _ := args.String("answer")
	if strings.TrimSpace(answer) == "" {
		return tool.Fail("answer cannot be empty"), nil
	}

	res := tool.Ok(tool.DataTerminal, &tool.TextData{Text: answer}, "%s", answer)
	if conf, ok := args.Float("confidence"); ok {
		if conf < 0 || conf > 1 {
			return tool.Fail("confidence must be in [0,1], got %v", conf), nil
		}
		res = res.WithExtra("confidence", conf)
	}
	return res, nil
}
