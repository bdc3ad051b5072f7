// Package credentials resolves the bearer token used to open answer streams.
//
// Two stores are consulted: a session-scoped store and a longer-lived one. A token
// found only in the longer-lived store is moved into the session store the first
// time it is resolved, so its effective lifetime narrows to the current session.
package credentials

import (
	"context"
	"errors"
)

// TokenKey is the only key either store is read or written with.
const TokenKey = "buuzzer_token"

var ErrNoCredential = errors.New("no credential in session or persistent store")

// Store is a minimal string key-value capability.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
