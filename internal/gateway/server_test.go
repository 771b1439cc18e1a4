package gateway

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"persona/internal/agent"
	"persona/internal/llm"
	"persona/internal/session"
)

type fixedRunner struct{ reply string }

func (r *fixedRunner) Run(ctx context.Context, transcript []llm.Message, message string, emit func(agent.Event)) ([]llm.Message, error) {
	transcript = append(transcript,
		llm.Message{Role: llm.RoleUser, Content: message},
		llm.Message{Role: llm.RoleAssistant, Content: r.reply},
	)
	emit(agent.Event{Type: agent.EventToken, Data: r.reply})
	emit(agent.Event{Type: agent.EventDone, Data: r.reply})
	return transcript, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *session.Manager) {
	t.Helper()
	sessions := session.NewManager()
	srv := httptest.NewServer(NewServer(&fixedRunner{reply: "hello there"}, sessions).Handler())
	t.Cleanup(srv.Close)
	return srv, sessions
}

func TestChatStreamsSSE(t *testing.T) {
	srv, sessions := newTestServer(t)

	resp, err := http.Post(srv.URL+"/v1/chat", "application/json",
		strings.NewReader(`{"session_id":"visitor-1","message":"hi"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := string(body)
	require.Contains(t, out, "event: session")
	require.Contains(t, out, `"id":"visitor-1"`)
	require.Contains(t, out, "event: token")
	require.Contains(t, out, "event: done")
	require.Contains(t, out, "hello there")

	sess, ok := sessions.Get("visitor-1")
	require.True(t, ok)
	require.Len(t, sess.Transcript(), 2)
}

func TestChatMintsSessionID(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/v1/chat", "application/json",
		strings.NewReader(`{"message":"hi"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "event: session")
}

func TestChatRejectsBadRequests(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/v1/chat", "application/json", strings.NewReader(`{`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/v1/chat", "application/json", strings.NewReader(`{"session_id":"x"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSessionEndpoints(t *testing.T) {
	srv, sessions := newTestServer(t)
	sessions.Ensure("visitor-1")

	resp, err := http.Get(srv.URL + "/v1/sessions")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Contains(t, string(body), "visitor-1")

	resp, err = http.Get(srv.URL + "/v1/sessions/visitor-1")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/v1/sessions/nobody")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestIndexServesWidget(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "/v1/chat")
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
