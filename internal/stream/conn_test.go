package stream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoockh/buuzzer/internal/models"
	"github.com/yoockh/buuzzer/internal/utils"
)

// floodServer streams numbered JSON-string tokens until the client goes away.
func floodServer(t *testing.T, start <-chan struct{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.(http.Flusher).Flush()
		if start != nil {
			select {
			case <-start:
			case <-r.Context().Done():
				return
			}
		}
		for i := 0; ; i++ {
			if _, err := fmt.Fprintf(w, "data: \"t%d\"\n\n", i); err != nil {
				return
			}
			w.(http.Flusher).Flush()
			if r.Context().Err() != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestConn_CloseFromAnotherGoroutineStopsDispatch(t *testing.T) {
	for i := 0; i < 20; i++ {
		srv := floodServer(t, nil)

		var (
			closeReturned atomic.Bool
			afterClose    atomic.Int32
			seen          atomic.Int32
			terminal      atomic.Int32
		)
		enough := make(chan struct{})
		h := Handlers{
			OnToken: func(string) {
				if closeReturned.Load() {
					afterClose.Add(1)
				}
				if seen.Add(1) == 25 {
					close(enough)
				}
			},
			OnComplete: func() { terminal.Add(1) },
			OnError:    func(string) { terminal.Add(1) },
		}

		client := New(srv.URL, tokenSource(t, "tok"), WithLogger(quietLogger()))
		conn := client.StreamInterviewResponse(context.Background(), models.ProviderOpenAI, "q", models.UserPreferences{}, nil, h)
		require.NotNil(t, conn)

		select {
		case <-enough:
		case <-time.After(5 * time.Second):
			t.Fatal("tokens never flowed")
		}

		closed := make(chan struct{})
		go func() {
			_ = conn.Close()
			closeReturned.Store(true)
			close(closed)
		}()
		<-closed
		waitDone(t, conn)

		// only a callback already dispatched when Close ran may observe the flag
		assert.LessOrEqual(t, afterClose.Load(), int32(1))
		assert.Zero(t, terminal.Load())
	}
}

func TestConn_CloseWhileCallbackRunsDoesNotWait(t *testing.T) {
	srv := floodServer(t, nil)

	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	h := Handlers{
		OnToken: func(string) {
			if calls.Add(1) == 1 {
				close(entered)
				<-release
			}
		},
	}

	client := New(srv.URL, tokenSource(t, "tok"), WithLogger(quietLogger()))
	conn := client.StreamInterviewResponse(context.Background(), models.ProviderOpenAI, "q", models.UserPreferences{}, nil, h)
	require.NotNil(t, conn)

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first token never arrived")
	}

	closed := make(chan struct{})
	go func() {
		_ = conn.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("Close blocked on a running callback")
	}

	close(release)
	waitDone(t, conn)
	assert.Equal(t, int32(1), calls.Load(), "no token dispatched after Close")
}

func TestConn_CloseFromInsideCallback(t *testing.T) {
	start := make(chan struct{})
	srv := floodServer(t, start)

	var (
		self  atomic.Pointer[Conn]
		calls atomic.Int32
		done  atomic.Int32
	)
	h := Handlers{
		OnToken: func(string) {
			calls.Add(1)
			_ = self.Load().Close()
		},
		OnComplete: func() { done.Add(1) },
		OnError:    func(string) { done.Add(1) },
	}

	client := New(srv.URL, tokenSource(t, "tok"), WithLogger(quietLogger()))
	conn := client.StreamInterviewResponse(context.Background(), models.ProviderOpenAI, "q", models.UserPreferences{}, nil, h)
	require.NotNil(t, conn)
	self.Store(conn)
	close(start)

	waitDone(t, conn)
	assert.Equal(t, int32(1), calls.Load())
	assert.Zero(t, done.Load())
	assert.ErrorIs(t, conn.Err(), context.Canceled)
}

func TestConn_OnFailureGetsClassifiedError(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		code    utils.Code
	}{
		{
			name: "upstream sentinel",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream")
				io.WriteString(w, "data: [ERROR] quota\n\n")
			},
			code: utils.CodeUpstream,
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream")
				io.WriteString(w, "data: garbage\n\n")
			},
			code: utils.CodeMalformed,
		},
		{
			name: "bad status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", http.StatusServiceUnavailable)
			},
			code: utils.CodeUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			t.Cleanup(srv.Close)

			var got error
			var legacy int
			h := Handlers{
				OnFailure: func(err error) { got = err },
				OnError:   func(string) { legacy++ },
			}
			client := New(srv.URL, tokenSource(t, "tok"), WithLogger(quietLogger()))
			conn := client.StreamInterviewResponse(context.Background(), models.ProviderOpenAI, "q", models.UserPreferences{}, nil, h)
			require.NotNil(t, conn)
			waitDone(t, conn)

			require.Error(t, got)
			assert.True(t, utils.IsCode(got, tt.code), "got %v", got)
			assert.Zero(t, legacy, "OnFailure replaces OnError")
		})
	}
}

func TestStream_NoCredentialOnFailureIsUnauthorized(t *testing.T) {
	var got error
	client := New("http://127.0.0.1:1", tokenSource(t, ""), WithLogger(quietLogger()))
	conn := client.StreamInterviewResponse(context.Background(), models.ProviderOpenAI, "q", models.UserPreferences{}, nil,
		Handlers{OnFailure: func(err error) { got = err }})

	assert.Nil(t, conn)
	assert.True(t, utils.IsCode(got, utils.CodeUnauthorized))
	assert.Equal(t, NotAuthenticatedMessage, utils.MessageOf(got))
}
