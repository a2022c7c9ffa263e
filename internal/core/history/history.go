// Package history is the durable, capped log of displayed notifications.
//
// The log lives under a single key of the local store as a JSON array. It is
// best-effort: read faults degrade to an empty history and write faults are
// logged and dropped, so persistence never blocks delivery.
package history

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/colonyops/chime/internal/core/kv"
	"github.com/colonyops/chime/internal/core/logging"
	"github.com/colonyops/chime/internal/core/notify"
	"github.com/colonyops/chime/internal/metrics"
)

// DefaultCapacity is the number of records retained when Options.Capacity is unset.
const DefaultCapacity = 64

const (
	namespace = "chime"
	recordKey = "history"
)

// Options configures a Store.
type Options struct {
	Capacity int
	Metrics  *metrics.Metrics
}

// Store is the history log. Append and eviction run under one mutex so the
// read-modify-write of the persisted array is never interleaved.
type Store struct {
	mu       sync.Mutex
	records  *kv.TypedKV[[]notify.Record]
	capacity int
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// New creates a history log backed by store.
func New(store kv.Store, opts Options) *Store {
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Store{
		records:  kv.Scoped[[]notify.Record](store, namespace),
		capacity: capacity,
		metrics:  opts.Metrics,
		log:      logging.Component("history"),
	}
}

// Append adds r to the tail of the log, with no dedup, then evicts the oldest
// records beyond capacity. A corrupt log is replaced by a fresh one. Any other
// read fault drops r so the stored records are not overwritten.
func (s *Store) Append(ctx context.Context, r notify.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	switch {
	case errors.Is(err, kv.ErrMalformed):
		s.fault(ctx, "history.read", err, "history corrupt, starting a new log")
		records = nil
	case err != nil:
		s.fault(ctx, "history.read", err, "history unreadable, dropping append")
		return
	}

	records = evict(append(records, r), s.capacity)

	if err := s.records.Set(ctx, recordKey, records); err != nil {
		s.fault(ctx, "history.write", err, "dropping history write")
		return
	}

	s.log.Debug().Ctx(logging.WithNotificationKey(ctx, r.Key)).
		Int64("record_time", r.Time).
		Int("size", len(records)).
		Msg("history appended")
}

// ListSince returns records newest first. A nil from returns everything,
// otherwise only records with Time >= *from. Records sharing a timestamp are
// ordered most recently appended first.
func (s *Store) ListSince(ctx context.Context, from *int64) []notify.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		s.fault(ctx, "history.read", err, "history unreadable")
		return []notify.Record{}
	}

	out := make([]notify.Record, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		if from == nil || records[i].Time >= *from {
			out = append(out, records[i])
		}
	}

	slices.SortStableFunc(out, func(a, b notify.Record) int {
		return cmp.Compare(b.Time, a.Time)
	})

	return out
}

// Count returns the number of stored records, or 0 if the log is unreadable.
func (s *Store) Count(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		s.fault(ctx, "history.read", err, "history unreadable")
		return 0
	}
	return len(records)
}

// Clear empties the log.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.records.Set(ctx, recordKey, []notify.Record{}); err != nil {
		s.fault(ctx, "history.write", err, "dropping history clear")
	}
}

// load returns the persisted records. A key that was never written is an
// empty log, not an error.
func (s *Store) load(ctx context.Context) ([]notify.Record, error) {
	records, err := s.records.Get(ctx, recordKey)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) fault(ctx context.Context, op string, err error, msg string) {
	s.metrics.PersistenceFault(op)
	s.log.Error().Ctx(ctx).Err(err).Str("op", op).Msg(msg)
}

// evict keeps the capacity most recent records by Time. Ties are broken by
// append order: among equal timestamps the earliest appended goes first.
func evict(records []notify.Record, capacity int) []notify.Record {
	if len(records) <= capacity {
		return records
	}

	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b notify.Record) int {
		return cmp.Compare(a.Time, b.Time)
	})

	return sorted[len(sorted)-capacity:]
}
