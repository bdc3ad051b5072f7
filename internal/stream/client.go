// Package stream opens answer streams against the AI backend and normalizes the
// server-sent events of every provider into token, completion and error callbacks.
//
// The backend endpoint is a GET-only server-push connection, so the whole request
// (provider and prompt messages) travels base64-encoded in the URL.
package stream

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/buuzzer/internal/logger"
	"github.com/yoockh/buuzzer/internal/models"
	"github.com/yoockh/buuzzer/internal/prompt"
	"github.com/yoockh/buuzzer/internal/utils"
)

const NotAuthenticatedMessage = "Not authenticated. Please login again."

// TokenSource resolves the bearer credential for a stream.
type TokenSource interface {
	Resolve(ctx context.Context) (string, error)
}

type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
	log     *logrus.Logger
}

type Option func(*Client)

// WithHTTPClient sets the client used for the stream connection. It must not set
// a total Timeout, since streams stay open for the length of the answer.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *logrus.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		tokens:  tokens,
		http:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logrus.New()
	}
	return c
}

// StreamInterviewResponse composes the prompts for transcript and opens one
// stream. It returns nil, after calling h.OnError, only when no credential is
// available; every other failure is reported through the returned Conn.
func (c *Client) StreamInterviewResponse(
	ctx context.Context,
	provider models.Provider,
	transcript string,
	prefs models.UserPreferences,
	history []models.InterviewResponse,
	h Handlers,
) *Conn {
	const op = "stream.StreamInterviewResponse"

	log := c.log.WithFields(logrus.Fields{
		"op":       op,
		"provider": provider.BackendID(),
	})
	if id, ok := logger.RequestID(ctx); ok {
		log = log.WithField("request_id", id)
	}

	token, err := c.tokens.Resolve(ctx)
	if err != nil || token == "" {
		log.WithError(err).Warn("no credential for stream")
		h.fail(utils.E(utils.CodeUnauthorized, op, NotAuthenticatedMessage, err))
		return nil
	}

	connCtx, cancel := context.WithCancel(ctx)
	conn := newConn(h, cancel, log)

	pair := prompt.Compose(prefs, history, transcript)
	encoded, err := EncodePayload(NewPayload(provider, pair))
	if err != nil {
		go conn.abort(transportError(op, err))
		return conn
	}

	req, err := http.NewRequestWithContext(connCtx, http.MethodGet, StreamURL(c.baseURL, encoded, token), nil)
	if err != nil {
		go conn.abort(transportError(op, err))
		return conn
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	log.WithField("history_len", len(history)).Debug("opening stream")
	go conn.run(connCtx, c.http, req)
	return conn
}
