package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/buuzzer/internal/utils"
)

const ConnectionFailedMessage = "Stream connection failed."

// Conn is the handle of one open answer stream. Callbacks are delivered in
// arrival order from a single goroutine; once the stream terminates or Close
// returns no further callback is dispatched.
type Conn struct {
	handlers Handlers
	cancel   context.CancelFunc
	log      *logrus.Entry

	// dispatchMu is held from the closed check until the callback returns.
	dispatchMu sync.Mutex
	inCallback atomic.Bool
	closed     atomic.Bool
	done       chan struct{}

	mu  sync.Mutex
	err error
}

func newConn(h Handlers, cancel context.CancelFunc, log *logrus.Entry) *Conn {
	return &Conn{
		handlers: h,
		cancel:   cancel,
		log:      log,
		done:     make(chan struct{}),
	}
}

// Close abandons the stream. Once Close returns no callback is dispatched,
// including the terminal one. A callback already running when Close is called
// is not waited for if Close is called from inside it or while it is running.
// Safe to call more than once.
func (c *Conn) Close() error {
	c.cancel()

	if c.dispatchMu.TryLock() {
		c.markClosed()
		c.dispatchMu.Unlock()
		return nil
	}
	if c.inCallback.Load() {
		// dispatched before this call; the reader rechecks closed under the lock
		c.markClosed()
		return nil
	}
	// the reader is between its closed check and the callback
	c.dispatchMu.Lock()
	c.markClosed()
	c.dispatchMu.Unlock()
	return nil
}

func (c *Conn) markClosed() {
	if c.closed.CompareAndSwap(false, true) {
		c.log.Debug("stream closed by caller")
	}
}

// dispatch runs fn unless the stream is closed. terminal also closes it.
func (c *Conn) dispatch(terminal bool, fn func()) bool {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()

	if terminal {
		if !c.closed.CompareAndSwap(false, true) {
			return false
		}
	} else if c.closed.Load() {
		return false
	}

	c.inCallback.Store(true)
	defer c.inCallback.Store(false)
	fn()
	return true
}

// Done is closed once the reader goroutine has exited.
func (c *Conn) Done() <-chan struct{} { return c.done }

// Err returns the terminal error as an *utils.AppError, the context error when the
// stream was abandoned, or nil if it completed or is still running.
func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Conn) token(s string) {
	c.dispatch(false, func() { c.handlers.token(s) })
}

// finish delivers the single terminal callback. err == nil means success.
func (c *Conn) finish(err error) {
	c.dispatch(true, func() {
		c.cancel()

		if err == nil {
			c.log.Debug("stream completed")
			c.handlers.complete()
			return
		}

		c.mu.Lock()
		c.err = err
		c.mu.Unlock()

		c.log.WithError(err).WithField("code", utils.CodeOf(err)).Warn("stream failed")
		c.handlers.fail(err)
	})
}

func (c *Conn) run(ctx context.Context, hc *http.Client, req *http.Request) {
	const op = "stream.Conn.run"
	defer close(c.done)

	resp, err := hc.Do(req)
	if err != nil {
		c.fail(ctx, transportError(op, err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.finish(utils.E(utils.CodeUnavailable, op, "Stream connection failed: "+resp.Status, nil))
		return
	}
	if mt, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mt != "text/event-stream" {
		c.finish(utils.E(utils.CodeUnavailable, op, fmt.Sprintf("Stream connection failed: unexpected content type %q", mt), nil))
		return
	}

	dec := newSSEDecoder(resp.Body)
	for {
		ev, err := dec.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = nil
			}
			c.fail(ctx, transportError(op, err))
			return
		}

		// named events never reach the default message listener
		if ev.Type != "" && ev.Type != "message" {
			continue
		}

		out := Classify(ev.Data)
		switch out.Kind {
		case EventToken:
			c.token(out.Text)
		case EventDone:
			c.finish(nil)
			return
		case EventFailed:
			c.finish(utils.E(utils.CodeUpstream, op, out.Text, nil))
			return
		case EventMalformed:
			c.finish(utils.E(utils.CodeMalformed, op, out.Text, nil))
			return
		default:
			c.log.WithField("data", ev.Data).Trace("ignored stream event without delta content")
		}
	}
}

// fail reports a transport failure unless the stream was abandoned by the caller,
// either through Close or by cancelling the parent context.
func (c *Conn) fail(ctx context.Context, err error) {
	if ctx.Err() != nil {
		c.closed.Store(true)
		c.mu.Lock()
		if c.err == nil {
			c.err = ctx.Err()
		}
		c.mu.Unlock()
		return
	}
	c.finish(err)
}

// transportError hides the request URL, which carries the token, from the message.
func transportError(op string, err error) error {
	msg := ConnectionFailedMessage
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		if s := err.Error(); s != "" {
			msg = s
		}
	}
	return utils.E(utils.CodeUnavailable, op, msg, err)
}

// abort terminates a stream that never reached the network.
func (c *Conn) abort(err error) {
	defer close(c.done)
	c.finish(err)
}
