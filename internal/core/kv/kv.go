// Package kv defines the local persistent key-value capability the
// notification core writes its history, read cursor, and permission into.
package kv

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by typed reads when the key has never been set.
	ErrNotFound = errors.New("kv: key not found")
	// ErrMalformed wraps decode failures of a stored value.
	ErrMalformed = errors.New("kv: malformed value")
)

// Store is a string-valued persistent key-value store. Both operations are
// synchronous from the caller's point of view and may fail on I/O, quota, or
// serialization errors.
type Store interface {
	// Get returns the stored value and true, or "" and false if unset.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}
