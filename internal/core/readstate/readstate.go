// Package readstate persists the "last read" cursor that separates read from
// unread history.
package readstate

import (
	"context"
	"errors"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/colonyops/chime/internal/core/kv"
	"github.com/colonyops/chime/internal/core/logging"
	"github.com/colonyops/chime/internal/core/notify"
	"github.com/colonyops/chime/internal/metrics"
)

const (
	namespace = "chime"
	cursorKey = "last-read"
)

// Subscriber is invoked with the new cursor after every MarkRead.
type Subscriber func(cursor int64)

// Tracker owns the read cursor. Records with Time <= cursor are read.
type Tracker struct {
	mu      sync.Mutex
	cursor  *kv.TypedKV[int64]
	clock   clockwork.Clock
	metrics *metrics.Metrics
	log     zerolog.Logger

	subMu       sync.Mutex
	subscribers []Subscriber
}

// New creates a tracker backed by store.
func New(store kv.Store, clock clockwork.Clock, m *metrics.Metrics) *Tracker {
	return &Tracker{
		cursor:  kv.Scoped[int64](store, namespace),
		clock:   clock,
		metrics: m,
		log:     logging.Component("readstate"),
	}
}

// Cursor returns the persisted cursor, or 0 when unset or unreadable.
func (t *Tracker) Cursor(ctx context.Context) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load(ctx)
}

// MarkRead moves the cursor to now and notifies subscribers. The cursor never
// moves backwards: if the clock reads earlier than the stored value, the
// stored value is kept.
func (t *Tracker) MarkRead(ctx context.Context) int64 {
	t.mu.Lock()
	cursor := max(t.load(ctx), t.clock.Now().UnixMilli())
	if err := t.cursor.Set(ctx, cursorKey, cursor); err != nil {
		t.metrics.PersistenceFault("readstate.write")
		t.log.Error().Ctx(ctx).Err(err).Msg("dropping read cursor write")
	}
	t.mu.Unlock()

	t.notify(cursor)
	return cursor
}

// Subscribe registers fn to be called after every cursor change.
func (t *Tracker) Subscribe(fn Subscriber) {
	t.subMu.Lock()
	defer t.subMu.Unlock()
	t.subscribers = append(t.subscribers, fn)
}

// Unread counts records newer than cursor.
func Unread(records []notify.Record, cursor int64) int {
	n := 0
	for _, r := range records {
		if r.Time > cursor {
			n++
		}
	}
	return n
}

func (t *Tracker) load(ctx context.Context) int64 {
	cursor, err := t.cursor.Get(ctx, cursorKey)
	if errors.Is(err, kv.ErrNotFound) {
		return 0
	}
	if err != nil {
		t.metrics.PersistenceFault("readstate.read")
		t.log.Warn().Ctx(ctx).Err(err).Msg("read cursor unreadable, treating as 0")
		return 0
	}
	return cursor
}

func (t *Tracker) notify(cursor int64) {
	t.subMu.Lock()
	subs := make([]Subscriber, len(t.subscribers))
	copy(subs, t.subscribers)
	t.subMu.Unlock()

	for _, fn := range subs {
		fn(cursor)
	}
}
