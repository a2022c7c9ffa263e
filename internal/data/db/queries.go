package db

import (
	"context"
	"database/sql"
)

// DBTX is the subset of *sql.DB the queries need.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries holds the statements run against kv_store.
type Queries struct {
	db DBTX
}

// New binds a query set to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// KVEntry is a kv_store row. Timestamps are Unix nanoseconds.
type KVEntry struct {
	Key       string
	Value     string
	CreatedAt int64
	UpdatedAt int64
}

const kvGet = `SELECT key, value, created_at, updated_at FROM kv_store WHERE key = ?`

// KVGet returns sql.ErrNoRows when key is absent.
func (q *Queries) KVGet(ctx context.Context, key string) (KVEntry, error) {
	var e KVEntry
	err := q.db.QueryRowContext(ctx, kvGet, key).Scan(&e.Key, &e.Value, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

const kvSet = `
INSERT INTO kv_store (key, value, created_at, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

type KVSetParams struct {
	Key       string
	Value     string
	CreatedAt int64
	UpdatedAt int64
}

func (q *Queries) KVSet(ctx context.Context, arg KVSetParams) error {
	_, err := q.db.ExecContext(ctx, kvSet, arg.Key, arg.Value, arg.CreatedAt, arg.UpdatedAt)
	return err
}

const kvLastUpdated = `SELECT COALESCE(MAX(updated_at), 0) FROM kv_store`

// KVLastUpdated returns the newest updated_at across all rows, or 0.
func (q *Queries) KVLastUpdated(ctx context.Context) (int64, error) {
	var ts int64
	err := q.db.QueryRowContext(ctx, kvLastUpdated).Scan(&ts)
	return ts, err
}
