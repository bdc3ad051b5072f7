package stream

import (
	"bufio"
	"io"
	"strings"
)

type sseEvent struct {
	Type string
	Data string
}

// sseDecoder splits a text/event-stream body into dispatched events using the
// browser EventSource rules: data lines are joined with "\n", one space after the
// colon is dropped, comment lines are skipped, and an event only dispatches on a
// blank line when it carries data. A trailing event cut off by EOF is discarded.
type sseDecoder struct {
	r *bufio.Reader
}

func newSSEDecoder(r io.Reader) *sseDecoder {
	return &sseDecoder{r: bufio.NewReaderSize(r, 64*1024)}
}

// Next returns the next event, or the reader's error (io.EOF at end of body).
func (d *sseDecoder) Next() (sseEvent, error) {
	var (
		typ  string
		data []string
	)
	for {
		line, err := d.r.ReadString('\n')
		if err != nil {
			return sseEvent{}, err
		}
		line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")

		if line == "" {
			if len(data) == 0 {
				typ = ""
				continue
			}
			return sseEvent{Type: typ, Data: strings.Join(data, "\n")}, nil
		}
		if line[0] == ':' {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "event":
			typ = value
		case "data":
			data = append(data, value)
		}
	}
}
