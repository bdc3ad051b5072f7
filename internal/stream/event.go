package stream

import (
	"strings"
	"unicode"

	"github.com/tidwall/gjson"
)

type EventKind int

const (
	// EventIgnored is a decodable payload with no content, e.g. heartbeats or usage chunks.
	EventIgnored EventKind = iota
	EventToken
	EventDone
	EventFailed
	EventMalformed
)

func (k EventKind) String() string {
	switch k {
	case EventToken:
		return "token"
	case EventDone:
		return "done"
	case EventFailed:
		return "failed"
	case EventMalformed:
		return "malformed"
	default:
		return "ignored"
	}
}

const (
	doneSentinel  = "[DONE]"
	errorSentinel = "[ERROR]"

	MalformedMessage = "Malformed stream payload."
)

// deltaPath is the chat-completion chunk field carrying incremental text.
const deltaPath = "choices.0.delta.content"

// Event is one classified inbound payload. Text is the token for EventToken and
// the message for EventFailed/EventMalformed.
type Event struct {
	Kind EventKind
	Text string
}

func (e Event) Terminal() bool {
	return e.Kind == EventDone || e.Kind == EventFailed || e.Kind == EventMalformed
}

// Classify normalizes one raw event payload. Three upstream shapes are accepted:
// bare sentinels, JSON strings (sentinel or token), and chat-completion delta chunks.
func Classify(raw string) Event {
	if !gjson.Valid(raw) {
		if ev, ok := sentinel(raw); ok {
			return ev
		}
		return Event{Kind: EventMalformed, Text: MalformedMessage}
	}

	v := gjson.Parse(raw)
	if v.Type == gjson.String {
		if ev, ok := sentinel(v.Str); ok {
			return ev
		}
		return Event{Kind: EventToken, Text: v.Str}
	}

	if delta := v.Get(deltaPath); delta.Type == gjson.String && delta.Str != "" {
		return Event{Kind: EventToken, Text: delta.Str}
	}
	return Event{Kind: EventIgnored}
}

func sentinel(s string) (Event, bool) {
	if s == doneSentinel {
		return Event{Kind: EventDone}, true
	}
	if rest, ok := strings.CutPrefix(s, errorSentinel); ok {
		return Event{Kind: EventFailed, Text: strings.TrimLeftFunc(rest, unicode.IsSpace)}, true
	}
	return Event{}, false
}
