package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/buuzzer/internal/history"
	"github.com/yoockh/buuzzer/internal/models"
	"github.com/yoockh/buuzzer/internal/stream"
)

const resetCommand = "/reset"

// repl answers one stdin line at a time; a line is fully streamed before the
// next one is read.
type repl struct {
	client   *stream.Client
	provider models.Provider
	prefs    models.UserPreferences
	log      *logrus.Entry
	capacity int
}

func (r *repl) run(ctx context.Context, in io.Reader, out io.Writer) error {
	hist := history.NewSession(r.capacity)

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		text := strings.TrimSpace(sc.Text())
		switch text {
		case "":
			continue
		case resetCommand:
			hist.Reset()
			fmt.Fprintln(out, "(history cleared)")
			continue
		}

		if err := r.ask(ctx, hist, text, out); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
	return sc.Err()
}

// ask streams one answer to out. Stream failures are printed and the loop goes
// on; a missing credential stops it.
func (r *repl) ask(ctx context.Context, hist *history.Session, text string, out io.Writer) error {
	rec := hist.Record(text)

	var failure string
	h := rec.Wrap(stream.Handlers{
		OnToken:    func(t string) { fmt.Fprint(out, t) },
		OnComplete: func() { fmt.Fprintln(out) },
		OnError:    func(msg string) { failure = msg },
	})

	conn := r.client.StreamInterviewResponse(ctx, r.provider, text, r.prefs, hist.Snapshot(), h)
	if conn == nil {
		return errors.New(failure)
	}
	<-conn.Done()

	if failure != "" {
		if rec.Answer() != "" {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "error: %s\n", failure)
		r.log.WithError(conn.Err()).Debug("answer failed")
	}
	return nil
}
