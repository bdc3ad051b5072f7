package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoockh/buuzzer/internal/models"
	"github.com/yoockh/buuzzer/internal/stream"
)

func TestSession_EvictsOldest(t *testing.T) {
	s := NewSession(3)
	for i := 0; i < 5; i++ {
		s.Append(models.InterviewResponse{QuestionContext: fmt.Sprintf("q%d", i)})
	}

	got := s.Snapshot()
	require.Len(t, got, 3)
	assert.Equal(t, "q2", got[0].QuestionContext)
	assert.Equal(t, "q4", got[2].QuestionContext)
}

func TestSession_SnapshotIsCopy(t *testing.T) {
	s := NewSession(0)
	s.Append(models.InterviewResponse{QuestionContext: "q"})

	snap := s.Snapshot()
	snap[0].QuestionContext = "changed"
	assert.Equal(t, "q", s.Snapshot()[0].QuestionContext)

	s.Reset()
	assert.Zero(t, s.Len())
}

func TestRecorder_WrapCommitsOnComplete(t *testing.T) {
	s := NewSession(0)
	rec := s.Record("What is REST?")

	var tokens []string
	completed := false
	h := rec.Wrap(stream.Handlers{
		OnToken:    func(tok string) { tokens = append(tokens, tok) },
		OnComplete: func() { completed = true },
	})

	h.OnToken("REST ")
	h.OnToken("is a style.")
	h.OnComplete()

	assert.Equal(t, []string{"REST ", "is a style."}, tokens)
	assert.True(t, completed)
	require.Equal(t, 1, s.Len())
	assert.Equal(t, models.InterviewResponse{QuestionContext: "What is REST?", Answer: "REST is a style."}, s.Snapshot()[0])
}

func TestRecorder_ErrorDoesNotCommit(t *testing.T) {
	s := NewSession(0)
	rec := s.Record("q")

	var msg string
	h := rec.Wrap(stream.Handlers{OnError: func(m string) { msg = m }})
	h.OnToken("partial")
	h.OnError("rate limited")

	assert.Equal(t, "rate limited", msg)
	assert.Zero(t, s.Len())
}

func TestRecorder_BlankAnswerDropped(t *testing.T) {
	s := NewSession(0)
	assert.False(t, s.Record("q").Commit())
	assert.Zero(t, s.Len())
}
