package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"persona/internal/llm"
	"persona/internal/trace"
)

// ErrTurnLimit is returned when the model keeps requesting tool calls past
// the iteration cap. A misbehaving upstream must surface as a failure, not
// a hang.
var ErrTurnLimit = errors.New("tool loop exceeded turn limit")

const defaultMaxTurns = 10

type EngineOption func(*Engine)

func WithSystemPrompt(s string) EngineOption {
	return func(e *Engine) { e.systemPrompt = s }
}

func WithMaxTurns(n int) EngineOption {
	return func(e *Engine) { e.maxTurns = n }
}

// Engine drives the model until it produces a plain text answer. Each
// iteration is one model call; when the response carries tool calls they
// are executed in the order the API returned them and their results fed
// back as tool messages for the next call.
type Engine struct {
	provider     llm.Provider
	registry     *Registry
	systemPrompt string
	maxTurns     int
	tools        []llm.ToolDef
}

func NewEngine(provider llm.Provider, registry *Registry, opts ...EngineOption) *Engine {
	e := &Engine{
		provider: provider,
		registry: registry,
		maxTurns: defaultMaxTurns,
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, t := range registry.All() {
		schema, _ := t.InputSchema().(map[string]any)
		e.tools = append(e.tools, llm.ToolDef{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  schema,
		})
	}

	return e
}

func (e *Engine) Run(ctx context.Context, transcript []llm.Message, message string, emit func(Event)) ([]llm.Message, error) {
	truncated := message
	if len(truncated) > 200 {
		truncated = truncated[:200]
	}
	ctx, span := trace.Tracer().Start(ctx, "agent.run",
		oteltrace.WithAttributes(
			attribute.String("user.message", truncated),
			attribute.Int("transcript.len", len(transcript)),
		),
	)
	defer span.End()

	transcript = append(transcript, llm.Message{Role: llm.RoleUser, Content: message})

	for turn := 0; turn < e.maxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			emit(Event{Type: EventError, Data: "request cancelled"})
			return transcript, err
		}

		resp, err := e.call(ctx, transcript, turn, emit)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			emit(Event{Type: EventError, Data: err.Error()})
			return transcript, err
		}

		// Plain content and no tool calls: the turn is complete.
		if len(resp.ToolCalls) == 0 {
			transcript = append(transcript, llm.Message{Role: llm.RoleAssistant, Content: resp.Content})
			emit(Event{Type: EventDone, Data: resp.Content})
			return transcript, nil
		}

		transcript = append(transcript, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		transcript = append(transcript, e.dispatch(ctx, resp.ToolCalls, emit)...)
	}

	slog.Warn("agent: turn limit reached", "max_turns", e.maxTurns)
	span.SetStatus(codes.Error, ErrTurnLimit.Error())
	emit(Event{Type: EventError, Data: ErrTurnLimit.Error()})
	return transcript, ErrTurnLimit
}

func (e *Engine) call(ctx context.Context, transcript []llm.Message, turn int, emit func(Event)) (*llm.Response, error) {
	llmCtx, llmSpan := trace.Tracer().Start(ctx, "llm.turn",
		oteltrace.WithAttributes(attribute.Int("llm.iteration", turn)),
	)
	defer llmSpan.End()

	input := make([]llm.Message, 0, len(transcript)+1)
	if e.systemPrompt != "" {
		input = append(input, llm.Message{Role: llm.RoleSystem, Content: e.systemPrompt})
	}
	input = append(input, transcript...)

	resp, err := e.provider.ChatStream(llmCtx, llm.Request{Messages: input, Tools: e.tools}, func(token string) {
		emit(Event{Type: EventToken, Data: token})
	})
	if err != nil {
		llmSpan.RecordError(err)
		llmSpan.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return resp, nil
}

// dispatch executes the requested tool calls in API order and returns one
// correlated tool message per call. A bad call never escapes as an error:
// the model gets an error payload instead and the loop carries on.
func (e *Engine) dispatch(ctx context.Context, calls []llm.ToolCall, emit func(Event)) []llm.Message {
	results := make([]llm.Message, 0, len(calls))
	for _, call := range calls {
		emit(Event{Type: EventToolCall, Data: map[string]string{
			"name":      call.Name,
			"arguments": call.Arguments,
		}})

		content := e.execute(ctx, call)
		results = append(results, llm.Message{
			Role:       llm.RoleTool,
			Content:    content,
			ToolCallID: call.ID,
			ToolName:   call.Name,
		})
		emit(Event{Type: EventToolResult, Data: map[string]string{
			"name":    call.Name,
			"content": content,
		}})
	}
	return results
}

func (e *Engine) execute(ctx context.Context, call llm.ToolCall) string {
	tool, ok := e.registry.Get(call.Name)
	if !ok {
		slog.Warn("agent: unknown tool call", "name", call.Name)
		return errorPayload(fmt.Sprintf("unknown tool %s", call.Name))
	}

	if !json.Valid([]byte(call.Arguments)) {
		slog.Warn("agent: malformed tool arguments", "name", call.Name)
		return errorPayload(fmt.Sprintf("bad arguments for %s: invalid JSON", call.Name))
	}

	result, err := withTrace(tool).Execute(ctx, call.Arguments)
	if err != nil {
		slog.Warn("agent: tool execution failed", "name", call.Name, "error", err)
		return errorPayload(fmt.Sprintf("tool %s failed: %s", call.Name, err))
	}
	return result
}

func errorPayload(msg string) string {
	b, _ := json.Marshal(map[string]string{"error": msg})
	return string(b)
}
