// Package session keeps one in-memory transcript per chat session. Nothing
// here is persisted: a transcript lives exactly as long as its session and
// is never shared across sessions.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"persona/internal/agent"
	"persona/internal/llm"
)

// FailureReply is appended as the assistant's answer when the upstream
// model call fails, so the session stays usable for the next turn.
const FailureReply = "Sorry, I ran into a problem answering that. Please try again in a moment."

type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Ensure returns the session for id, creating it on first use. An empty id
// mints a fresh one.
func (m *Manager) Ensure(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	}
	s, ok := m.sessions[id]
	if !ok {
		s = &Session{id: id}
		m.sessions[id] = s
	}
	return s
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

type Info struct {
	ID       string `json:"id"`
	Messages int    `json:"messages"`
}

func (m *Manager) List() []Info {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Info, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, Info{ID: s.id, Messages: len(s.Transcript())})
	}
	return out
}

type Session struct {
	id         string
	mu         sync.Mutex
	transcript []llm.Message
}

func (s *Session) ID() string { return s.id }

// Transcript returns a copy of the current transcript.
func (s *Session) Transcript() []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]llm.Message(nil), s.transcript...)
}

// Turn runs one chat turn through the runner and folds the result back
// into the transcript. Turns within a session are serialized; concurrent
// sessions never contend. On a runner failure the transcript keeps the
// user's message and gains a canned apology so the next turn starts clean.
func (s *Session) Turn(ctx context.Context, runner agent.Runner, message string, emit func(agent.Event)) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := runner.Run(ctx, s.transcript, message, emit)
	if err != nil {
		updated = append(updated, llm.Message{Role: llm.RoleAssistant, Content: FailureReply})
		s.transcript = updated
		return FailureReply, err
	}

	s.transcript = updated
	if len(updated) == 0 {
		return "", nil
	}
	return updated[len(updated)-1].Content, nil
}
