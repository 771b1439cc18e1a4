package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"persona/internal/agent"
	"persona/internal/llm"
)

// replyRunner answers every message with a fixed transform, appending to
// the transcript the way the engine does.
type replyRunner struct {
	fail bool
}

func (r *replyRunner) Run(ctx context.Context, transcript []llm.Message, message string, emit func(agent.Event)) ([]llm.Message, error) {
	transcript = append(transcript, llm.Message{Role: llm.RoleUser, Content: message})
	if r.fail {
		return transcript, errors.New("upstream down")
	}
	return append(transcript, llm.Message{Role: llm.RoleAssistant, Content: "re: " + message}), nil
}

func TestEnsureMintsAndReuses(t *testing.T) {
	m := NewManager()

	a := m.Ensure("")
	require.NotEmpty(t, a.ID())

	b := m.Ensure("visitor-1")
	require.Same(t, b, m.Ensure("visitor-1"))
	require.NotSame(t, a, b)

	_, ok := m.Get("visitor-1")
	require.True(t, ok)
	_, ok = m.Get("missing")
	require.False(t, ok)
}

func TestTurnAppendsToTranscript(t *testing.T) {
	m := NewManager()
	s := m.Ensure("visitor-1")

	reply, err := s.Turn(context.Background(), &replyRunner{}, "hello", func(agent.Event) {})
	require.NoError(t, err)
	require.Equal(t, "re: hello", reply)

	reply, err = s.Turn(context.Background(), &replyRunner{}, "again", func(agent.Event) {})
	require.NoError(t, err)
	require.Equal(t, "re: again", reply)

	transcript := s.Transcript()
	require.Len(t, transcript, 4)
	require.Equal(t, "hello", transcript[0].Content)
	require.Equal(t, "re: again", transcript[3].Content)
}

func TestTurnFailureKeepsSessionUsable(t *testing.T) {
	m := NewManager()
	s := m.Ensure("visitor-1")

	reply, err := s.Turn(context.Background(), &replyRunner{fail: true}, "hello", func(agent.Event) {})
	require.Error(t, err)
	require.Equal(t, FailureReply, reply)

	// Next turn works and sees both the user message and the apology.
	reply, err = s.Turn(context.Background(), &replyRunner{}, "still there?", func(agent.Event) {})
	require.NoError(t, err)
	require.Equal(t, "re: still there?", reply)

	transcript := s.Transcript()
	require.Len(t, transcript, 4)
	require.Equal(t, FailureReply, transcript[1].Content)
}

func TestSessionsAreIsolated(t *testing.T) {
	m := NewManager()
	runner := &replyRunner{}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := m.Ensure(fmt.Sprintf("visitor-%d", i))
			for j := 0; j < 5; j++ {
				_, err := s.Turn(context.Background(), runner, fmt.Sprintf("msg %d-%d", i, j), func(agent.Event) {})
				require.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	require.Len(t, m.List(), 8)
	for i := 0; i < 8; i++ {
		transcript := m.Ensure(fmt.Sprintf("visitor-%d", i)).Transcript()
		require.Len(t, transcript, 10)
		for _, msg := range transcript {
			require.Contains(t, msg.Content, fmt.Sprintf("%d-", i))
		}
	}
}
