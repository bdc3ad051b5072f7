package credentials

import (
	"context"
	"strings"
)

type tokenCtxKey struct{}

// WithToken attaches a caller-supplied bearer token to ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenCtxKey{}, token)
}

func TokenFromContext(ctx context.Context) (string, bool) {
	tok, _ := ctx.Value(tokenCtxKey{}).(string)
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

// ContextSource prefers a token carried on the request context and otherwise
// defers to Fallback.
type ContextSource struct {
	Fallback interface {
		Resolve(ctx context.Context) (string, error)
	}
}

func (s ContextSource) Resolve(ctx context.Context) (string, error) {
	if tok, ok := TokenFromContext(ctx); ok {
		return tok, nil
	}
	if s.Fallback == nil {
		return "", ErrNoCredential
	}
	return s.Fallback.Resolve(ctx)
}
