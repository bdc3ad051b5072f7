// Package history keeps the in-memory rolling interview history of one consumer.
// Nothing here is persisted.
package history

import (
	"strings"
	"sync"

	"github.com/yoockh/buuzzer/internal/models"
	"github.com/yoockh/buuzzer/internal/stream"
)

const DefaultCapacity = 50

type Session struct {
	mu       sync.RWMutex
	entries  []models.InterviewResponse
	capacity int
}

// NewSession returns an empty history holding at most capacity entries; the
// oldest entry is evicted first. capacity <= 0 uses DefaultCapacity.
func NewSession(capacity int) *Session {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Session{capacity: capacity}
}

func (s *Session) Append(r models.InterviewResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, r)
	if over := len(s.entries) - s.capacity; over > 0 {
		s.entries = append([]models.InterviewResponse(nil), s.entries[over:]...)
	}
}

// Snapshot returns a copy of the history in chronological order.
func (s *Session) Snapshot() []models.InterviewResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]models.InterviewResponse(nil), s.entries...)
}

func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

// Recorder collects the answer of one stream for question.
type Recorder struct {
	session  *Session
	question string

	mu     sync.Mutex
	answer strings.Builder
}

func (s *Session) Record(question string) *Recorder {
	return &Recorder{session: s, question: question}
}

func (r *Recorder) Write(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.answer.WriteString(token)
}

func (r *Recorder) Answer() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.answer.String()
}

// Commit appends the collected answer to the session. Blank answers are dropped.
func (r *Recorder) Commit() bool {
	answer := r.Answer()
	if strings.TrimSpace(answer) == "" {
		return false
	}
	r.session.Append(models.InterviewResponse{
		QuestionContext: r.question,
		Answer:          strings.TrimSpace(answer),
	})
	return true
}

// Wrap returns handlers that record every token and commit the answer when the
// stream completes, before calling through to h.
func (r *Recorder) Wrap(h stream.Handlers) stream.Handlers {
	return stream.Handlers{
		OnToken: func(token string) {
			r.Write(token)
			if h.OnToken != nil {
				h.OnToken(token)
			}
		},
		OnComplete: func() {
			r.Commit()
			if h.OnComplete != nil {
				h.OnComplete()
			}
		},
		OnError:   h.OnError,
		OnFailure: h.OnFailure,
	}
}
