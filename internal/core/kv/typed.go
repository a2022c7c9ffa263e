package kv

import (
	"context"
	"encoding/json"
	"fmt"
)

// TypedKV provides JSON-encoded access to a Store for a specific type T.
type TypedKV[T any] struct {
	store  Store
	prefix string
}

// Scoped returns a TypedKV[T] that prefixes all keys with "namespace:".
func Scoped[T any](store Store, namespace string) *TypedKV[T] {
	return &TypedKV[T]{
		store:  store,
		prefix: namespace + ":",
	}
}

// Get retrieves and decodes a value by key. A missing key returns an error
// wrapping ErrNotFound; a value that fails to decode returns one wrapping
// ErrMalformed.
func (t *TypedKV[T]) Get(ctx context.Context, key string) (T, error) {
	var v T
	raw, ok, err := t.store.Get(ctx, t.prefix+key)
	if err != nil {
		return v, fmt.Errorf("kv get %q: %w", t.prefix+key, err)
	}
	if !ok {
		return v, fmt.Errorf("kv get %q: %w", t.prefix+key, ErrNotFound)
	}

	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return v, fmt.Errorf("kv get %q: %w: %w", t.prefix+key, ErrMalformed, err)
	}

	return v, nil
}

// Set encodes and stores a value.
func (t *TypedKV[T]) Set(ctx context.Context, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv set %q marshal: %w", t.prefix+key, err)
	}

	if err := t.store.Set(ctx, t.prefix+key, string(data)); err != nil {
		return fmt.Errorf("kv set %q: %w", t.prefix+key, err)
	}

	return nil
}

// Key returns the fully prefixed store key for key.
func (t *TypedKV[T]) Key(key string) string {
	return t.prefix + key
}
