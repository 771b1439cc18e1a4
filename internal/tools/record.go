// Package tools holds the two recorder tools the persona agent exposes to
// the model. Both follow the same contract: parse the raw JSON input,
// perform the side effect, and acknowledge with a small JSON payload.
// Internal failures become error payloads so a single bad call can never
// abort the conversation turn.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"persona/internal/leads"
	"persona/internal/notify"
)

const recordedOK = `{"recorded":"ok"}`

func errorPayload(format string, args ...any) string {
	b, _ := json.Marshal(map[string]string{"error": fmt.Sprintf(format, args...)})
	return string(b)
}

// UserDetails records that a visitor is interested in getting in touch.
type UserDetails struct {
	store    *leads.Store
	notifier notify.Notifier
}

func NewUserDetails(store *leads.Store, notifier notify.Notifier) *UserDetails {
	return &UserDetails{store: store, notifier: notifier}
}

func (u *UserDetails) Name() string { return "record_user_details" }

func (u *UserDetails) Description() string {
	return "Use this tool to record that a user is interested in being in touch and provided an email address"
}

func (u *UserDetails) InputSchema() any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"email": map[string]any{
				"type":        "string",
				"description": "The email address of this user",
			},
			"name": map[string]any{
				"type":        "string",
				"description": "The user's name, if they provided it",
			},
			"notes": map[string]any{
				"type":        "string",
				"description": "Extra context worth recording",
			},
		},
		"required":             []string{"email"},
		"additionalProperties": false,
	}
}

func (u *UserDetails) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Notes string `json:"notes"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return errorPayload("bad arguments for %s: %s", u.Name(), err), nil
	}
	if args.Email == "" {
		return errorPayload("email is required"), nil
	}
	if args.Name == "" {
		args.Name = "Name not provided"
	}

	slog.Info("tools: recording user details", "email", args.Email, "name", args.Name)

	if err := u.store.SaveLead(ctx, args.Email, args.Name, args.Notes); err != nil {
		slog.Error("tools: saving lead failed", "error", err)
		return errorPayload("tool %s failed: %s", u.Name(), err), nil
	}

	u.notifier.Push(ctx, fmt.Sprintf("Recording interest from %s with email %s and notes %s", args.Name, args.Email, args.Notes))
	return recordedOK, nil
}

// UnknownQuestion records a question the agent could not answer.
type UnknownQuestion struct {
	store    *leads.Store
	notifier notify.Notifier
}

func NewUnknownQuestion(store *leads.Store, notifier notify.Notifier) *UnknownQuestion {
	return &UnknownQuestion{store: store, notifier: notifier}
}

func (q *UnknownQuestion) Name() string { return "record_unknown_question" }

func (q *UnknownQuestion) Description() string {
	return "Always use this tool to record any question that couldn't be answered"
}

func (q *UnknownQuestion) InputSchema() any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "The question that couldn't be answered",
			},
		},
		"required":             []string{"question"},
		"additionalProperties": false,
	}
}

func (q *UnknownQuestion) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Question string `json:"question"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return errorPayload("bad arguments for %s: %s", q.Name(), err), nil
	}
	if args.Question == "" {
		return errorPayload("question is required"), nil
	}

	slog.Info("tools: recording unknown question", "question", args.Question)

	if err := q.store.SaveUnknownQuestion(ctx, args.Question); err != nil {
		slog.Error("tools: saving unknown question failed", "error", err)
		return errorPayload("tool %s failed: %s", q.Name(), err), nil
	}

	q.notifier.Push(ctx, fmt.Sprintf("Recording %q asked that I couldn't answer", args.Question))
	return recordedOK, nil
}
