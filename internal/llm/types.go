// Package llm defines the provider contract for the local LLM endpoint and
// the parsing pipeline that turns raw model output into a planner Decision.
package llm

import "context"

// Message represents a chat message for LLM communication.
type Message struct {
	Role    string `json:"role"`    // "user", "assistant", "system"
	Content string `json:"content"` // The message text
}

// Role constants.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Request carries one completion call. Model and sampling parameters travel
// per request because the planner and the analyzer share a provider but use
// different models and temperatures.
type Request struct {
	Model       string
	Temperature float32
	MaxTokens   int
	Messages    []Message
}

// Provider is the interface all LLM endpoint implementations satisfy.
// Implementations hold no per-query state; a process-wide connection pool
// may be reused across calls.
type Provider interface {
	// Complete sends the request and returns the raw model text.
	Complete(ctx context.Context, req Request) (string, error)
}
