// Package stores implements the local store capability on top of SQLite.
package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/colonyops/chime/internal/core/kv"
	"github.com/colonyops/chime/internal/data/db"
)

const (
	busyRetries = 3
	busyWait    = 50 * time.Millisecond
)

// KVStore implements kv.Store using SQLite.
type KVStore struct {
	db *db.DB
}

var _ kv.Store = (*KVStore)(nil)

// NewKVStore creates a new SQLite-backed KV store.
func NewKVStore(db *db.DB) *KVStore {
	return &KVStore{db: db}
}

// Get returns the raw value for key. A missing key is ("", false, nil).
func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	row, err := s.db.Queries().KVGet(ctx, key)
	if IsNotFoundError(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv get %q: %w", key, classify(err))
	}
	return row.Value, true, nil
}

// Set upserts key. Writes that hit a locked database are retried briefly
// before giving up.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	now := time.Now().UnixNano()
	params := db.KVSetParams{Key: key, Value: value, CreatedAt: now, UpdatedAt: now}

	var err error
	for i := 0; i < busyRetries; i++ {
		err = s.db.Queries().KVSet(ctx, params)
		if err == nil || !IsBusyError(err) {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("kv set %q: %w", key, ctx.Err())
		case <-time.After(busyWait * time.Duration(i+1)):
		}
	}
	if err != nil {
		return fmt.Errorf("kv set %q: %w", key, classify(err))
	}

	return nil
}

// Version returns a value that changes whenever any key is written. Other
// processes sharing the database poll it to notice external writes.
func (s *KVStore) Version(ctx context.Context) (int64, error) {
	v, err := s.db.Queries().KVLastUpdated(ctx)
	if err != nil {
		return 0, fmt.Errorf("kv version: %w", err)
	}
	return v, nil
}
