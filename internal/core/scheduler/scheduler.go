// Package scheduler holds pending timed notifications keyed by a
// caller-supplied key.
//
// Each key moves Unscheduled -> Pending -> Fired or Cancelled. Terminal
// states remove the key from the table; nothing is persisted, so pending
// entries are lost when the process exits.
package scheduler

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/colonyops/chime/internal/core/logging"
	"github.com/colonyops/chime/internal/core/notify"
	"github.com/colonyops/chime/internal/metrics"
)

// Entry is a notification waiting to fire. FireTime is Unix milliseconds.
type Entry struct {
	Key      string
	Payload  notify.Payload
	FireTime int64
	Persist  bool
}

// FireFunc displays a fired entry. It is called exactly once per entry and
// never while the scheduler's table lock is held.
type FireFunc func(Entry)

type pending struct {
	entry Entry
	timer clockwork.Timer
	gen   uint64
}

// Scheduler owns the pending-entry table. Multiple schedulers are fully
// independent of each other.
type Scheduler struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	onFire  FireFunc
	pending map[string]*pending
	gen     uint64

	metrics *metrics.Metrics
	log     zerolog.Logger
}

// New creates a scheduler that reports fired entries to onFire.
func New(clock clockwork.Clock, onFire FireFunc, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		clock:   clock,
		onFire:  onFire,
		pending: make(map[string]*pending),
		metrics: m,
		log:     logging.Component("scheduler"),
	}
}

// Register schedules payload under key for fireAt (Unix ms). An existing
// pending entry for key is cancelled first. A fireAt that is now or in the
// past fires synchronously before Register returns.
func (s *Scheduler) Register(key string, payload notify.Payload, fireAt int64, persist bool) {
	entry := Entry{Key: key, Payload: payload, FireTime: fireAt, Persist: persist}

	s.mu.Lock()
	s.cancelLocked(key)

	now := s.clock.Now().UnixMilli()
	if fireAt <= now {
		s.mu.Unlock()
		s.log.Debug().Str("key", key).Msg("firing immediately")
		s.metrics.Fired()
		s.onFire(entry)
		return
	}

	s.gen++
	gen := s.gen
	delay := time.Duration(fireAt-now) * time.Millisecond
	p := &pending{entry: entry, gen: gen}
	p.timer = s.clock.AfterFunc(delay, func() { s.expire(key, gen) })
	s.pending[key] = p
	s.metrics.SetPending(len(s.pending))
	s.mu.Unlock()

	s.log.Debug().Str("key", key).Dur("delay", delay).Msg("entry pending")
}

// Cancel disarms the pending entry for key. It reports whether an entry was
// pending; cancelling an unknown or already fired key is a no-op.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelLocked(key)
}

// CancelMatching cancels every pending key matching the doublestar glob
// pattern and returns the cancelled keys sorted.
func (s *Scheduler) CancelMatching(pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("cancel matching %q: %w", pattern, doublestar.ErrBadPattern)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var cancelled []string
	for key := range s.pending {
		if ok, _ := doublestar.Match(pattern, key); ok {
			cancelled = append(cancelled, key)
		}
	}

	slices.Sort(cancelled)
	for _, key := range cancelled {
		s.cancelLocked(key)
	}

	return cancelled, nil
}

// Pending returns the pending entries ordered by fire time, then key.
func (s *Scheduler) Pending() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, 0, len(s.pending))
	for _, p := range s.pending {
		out = append(out, p.entry)
	}

	slices.SortFunc(out, func(a, b Entry) int {
		if c := cmp.Compare(a.FireTime, b.FireTime); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})

	return out
}

// Len returns the number of pending entries.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop cancels every pending entry.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.pending {
		s.cancelLocked(key)
	}
}

func (s *Scheduler) cancelLocked(key string) bool {
	p, ok := s.pending[key]
	if !ok {
		return false
	}

	p.timer.Stop()
	delete(s.pending, key)
	s.metrics.Cancelled()
	s.metrics.SetPending(len(s.pending))
	s.log.Debug().Str("key", key).Msg("entry cancelled")
	return true
}

// expire runs on the timer goroutine. A timer that lost the race with a
// cancel, or belongs to an entry since replaced under the same key, finds a
// different generation and does nothing.
func (s *Scheduler) expire(key string, gen uint64) {
	s.mu.Lock()
	p, ok := s.pending[key]
	if !ok || p.gen != gen {
		s.mu.Unlock()
		return
	}
	delete(s.pending, key)
	s.metrics.SetPending(len(s.pending))
	s.mu.Unlock()

	s.metrics.Fired()
	s.log.Debug().Str("key", key).Msg("entry fired")
	s.onFire(p.entry)
}
