package domain

import "context"

// ChatMessage is one turn of an LLM conversation in the wire shape
// expected by OpenAI-compatible chat completion endpoints.
type ChatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolDef declares a callable tool to the model.
type ToolDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// LLMService is the black-box language model dependency. Implementations
// must be safe for concurrent use.
type LLMService interface {
	Chat(ctx context.Context, messages []ChatMessage, tools []ToolDef) (*ChatMessage, error)
}
