package credentials

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/buuzzer/internal/utils"
)

// Resolver looks up the token in the session store first and falls back to the
// persistent store, migrating a hit into the session store.
type Resolver struct {
	session    Store
	persistent Store
	log        *logrus.Logger

	// serializes the read-migrate sequence within the process
	mu sync.Mutex
}

type ResolverOption func(*Resolver)

func WithResolverLogger(l *logrus.Logger) ResolverOption {
	return func(r *Resolver) { r.log = l }
}

// NewResolver builds a resolver. persistent may be nil when there is no
// longer-lived store.
func NewResolver(session, persistent Store, opts ...ResolverOption) *Resolver {
	r := &Resolver{session: session, persistent: persistent}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logrus.New()
	}
	return r
}

// Resolve returns the bearer token. The error is an *utils.AppError with
// CodeUnauthorized wrapping ErrNoCredential when neither store has a token, or
// CodeUnavailable when a store fails. Failing to erase the migrated
// long-lived copy is only logged.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	const op = "credentials.Resolve"

	r.mu.Lock()
	defer r.mu.Unlock()

	tok, ok, err := r.session.Get(ctx, TokenKey)
	if err != nil {
		return "", utils.E(utils.CodeUnavailable, op, "session store unavailable", err)
	}
	if ok && tok != "" {
		return tok, nil
	}

	if r.persistent == nil {
		return "", utils.E(utils.CodeUnauthorized, op, "not authenticated", ErrNoCredential)
	}

	legacy, ok, err := r.persistent.Get(ctx, TokenKey)
	if err != nil {
		return "", utils.E(utils.CodeUnavailable, op, "persistent store unavailable", err)
	}
	if !ok || legacy == "" {
		return "", utils.E(utils.CodeUnauthorized, op, "not authenticated", ErrNoCredential)
	}

	if err := r.session.Set(ctx, TokenKey, legacy); err != nil {
		return "", utils.E(utils.CodeUnavailable, op, "failed to migrate credential", err)
	}
	// the session copy is authoritative from here on; a persistent copy that
	// could not be erased is left for logout
	if err := r.persistent.Delete(ctx, TokenKey); err != nil {
		r.log.WithError(err).WithField("op", op).Warn("failed to erase migrated credential")
	}
	return legacy, nil
}
