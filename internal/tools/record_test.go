package tools

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"persona/internal/db"
	"persona/internal/leads"
)

type fakeNotifier struct {
	pushed []string
	fail   bool
}

func (f *fakeNotifier) Push(ctx context.Context, message string) {
	// A failing notifier logs and swallows, exactly like the real one.
	if f.fail {
		return
	}
	f.pushed = append(f.pushed, message)
}

func newTestStore(t *testing.T) *leads.Store {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "persona.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, database.Migrate())
	return leads.NewStore(database)
}

func TestUserDetailsRecordsLeadAndNotifies(t *testing.T) {
	store := newTestStore(t)
	notifier := &fakeNotifier{}
	tool := NewUserDetails(store, notifier)

	out, err := tool.Execute(context.Background(), `{"email":"ana@example.com","name":"Ana","notes":"met at conf"}`)
	require.NoError(t, err)
	require.JSONEq(t, `{"recorded":"ok"}`, out)

	saved, err := store.ListLeads(context.Background())
	require.NoError(t, err)
	require.Len(t, saved, 1)
	require.Equal(t, "ana@example.com", saved[0].Email)

	require.Len(t, notifier.pushed, 1)
	require.Contains(t, notifier.pushed[0], "ana@example.com")
}

func TestUserDetailsRequiresEmail(t *testing.T) {
	tool := NewUserDetails(newTestStore(t), &fakeNotifier{})

	out, err := tool.Execute(context.Background(), `{"name":"Ana"}`)
	require.NoError(t, err)

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	require.Contains(t, payload["error"], "email")
}

func TestNotifierFailureDoesNotAlterAck(t *testing.T) {
	store := newTestStore(t)
	tool := NewUserDetails(store, &fakeNotifier{fail: true})

	out, err := tool.Execute(context.Background(), `{"email":"ana@example.com"}`)
	require.NoError(t, err)
	require.JSONEq(t, `{"recorded":"ok"}`, out)
}

func TestUnknownQuestionRecords(t *testing.T) {
	store := newTestStore(t)
	notifier := &fakeNotifier{}
	tool := NewUnknownQuestion(store, notifier)

	out, err := tool.Execute(context.Background(), `{"question":"Do you like pineapple pizza?"}`)
	require.NoError(t, err)
	require.JSONEq(t, `{"recorded":"ok"}`, out)

	saved, err := store.ListUnknownQuestions(context.Background())
	require.NoError(t, err)
	require.Len(t, saved, 1)
	require.Equal(t, "Do you like pineapple pizza?", saved[0].Question)
	require.Len(t, notifier.pushed, 1)
}

func TestBadArgumentsBecomeErrorPayload(t *testing.T) {
	tool := NewUnknownQuestion(newTestStore(t), &fakeNotifier{})

	out, err := tool.Execute(context.Background(), `{"question":42}`)
	require.NoError(t, err)

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	require.Contains(t, payload["error"], "bad arguments")
}
