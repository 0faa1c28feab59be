// Package storage defines the key/value contract used to persist session
// state and an in-memory implementation of it.
package storage

import (
	"context"
	"errors"
)

var ErrStateNotFound = errors.New("state not found")

// StateStore persists opaque JSON values per session under string keys.
type StateStore interface {
	Load(ctx context.Context, session, key string) ([]byte, error)
	Save(ctx context.Context, session, key string, value []byte) error
	// SaveAll writes every value of one session atomically where the
	// backend supports it.
	SaveAll(ctx context.Context, session string, values map[string][]byte) error
	Delete(ctx context.Context, session, key string) error
}
