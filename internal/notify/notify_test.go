package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPushDeliversForm(t *testing.T) {
	var gotUser, gotToken, gotMessage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotUser = r.PostFormValue("user")
		gotToken = r.PostFormValue("token")
		gotMessage = r.PostFormValue("message")
	}))
	defer srv.Close()

	p := &Pushover{
		user:   "u123",
		token:  "t456",
		apiURL: srv.URL,
		client: srv.Client(),
	}
	p.Push(context.Background(), "new lead: a@b.c")

	require.Equal(t, "u123", gotUser)
	require.Equal(t, "t456", gotToken)
	require.Equal(t, "new lead: a@b.c", gotMessage)
}

func TestPushSwallowsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	p := &Pushover{user: "u", token: "t", apiURL: srv.URL, client: srv.Client()}

	// Rejected, dead, and unreachable endpoints must all return quietly.
	p.Push(context.Background(), "rejected")
	srv.Close()
	p.Push(context.Background(), "dead server")

	p = &Pushover{user: "u", token: "t", apiURL: "http://127.0.0.1:1", client: &http.Client{Timeout: time.Second}}
	p.Push(context.Background(), "unreachable")
}

func TestNewWithoutCredentialsIsNoop(t *testing.T) {
	n := New("", "")
	require.IsType(t, Noop{}, n)
	n.Push(context.Background(), "nothing happens")
}
