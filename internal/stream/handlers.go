package stream

import "github.com/yoockh/buuzzer/internal/utils"

// Handlers receives the normalized stream. Nil funcs are skipped. At most one
// terminal callback is called per stream and it is always the last call.
type Handlers struct {
	OnToken    func(token string)
	OnComplete func()
	OnError    func(message string)

	// OnFailure, when set, replaces OnError and receives the classified
	// *utils.AppError (UNAUTHORIZED, UNAVAILABLE, UPSTREAM or MALFORMED).
	OnFailure func(err error)
}

func (h Handlers) token(s string) {
	if h.OnToken != nil {
		h.OnToken(s)
	}
}

func (h Handlers) complete() {
	if h.OnComplete != nil {
		h.OnComplete()
	}
}

func (h Handlers) fail(err error) {
	switch {
	case h.OnFailure != nil:
		h.OnFailure(err)
	case h.OnError != nil:
		h.OnError(utils.MessageOf(err))
	}
}
