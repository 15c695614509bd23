// Package storage defines the durable key-value slots the client keeps
// between runs: the identity snapshot, the auth flag, the remembered email and
// the analytics session id.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been written or was
// deleted.
var ErrNotFound = errors.New("storage: key not found")

// Store is a flat string key-value store. Every key is a single slot with
// last-writer-wins semantics.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}
