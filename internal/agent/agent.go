package agent

import (
	"context"

	"persona/internal/llm"
)

type EventType string

const (
	EventToken      EventType = "token"
	EventToolCall   EventType = "tool_call"
	EventToolResult EventType = "tool_result"
	EventDone       EventType = "done"
	EventError      EventType = "error"
)

type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

// Runner handles one chat turn: given the prior transcript and the user's
// message it returns the transcript with this turn's messages appended.
// The final assistant reply is the last message of the returned slice.
type Runner interface {
	Run(ctx context.Context, transcript []llm.Message, message string, emit func(Event)) ([]llm.Message, error)
}
