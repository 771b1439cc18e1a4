package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one entry of a conversation transcript, provider-agnostic.
// An assistant message may carry tool calls; a tool message carries the
// result for exactly one call, correlated by ToolCallID.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolName   string     `json:"tool_name,omitempty"`
}

// ToolCall is a model-issued request to run a named local function.
// Arguments is the raw JSON payload as returned by the API.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDef describes a callable tool to the model.
type ToolDef struct {
	Name        string
	Description string
	Parameters  map[string]any
}

type Request struct {
	Messages []Message
	Tools    []ToolDef
}

// Response is what a single model call produced: either plain content,
// tool calls, or both.
type Response struct {
	Content   string
	ToolCalls []ToolCall
}

type Provider interface {
	// ChatStream performs one model call. onToken receives output text
	// deltas as they stream in; the returned Response is the completed
	// result.
	ChatStream(ctx context.Context, req Request, onToken func(string)) (*Response, error)
}
