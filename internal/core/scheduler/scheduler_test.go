package scheduler_test

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/chime/internal/core/notify"
	"github.com/colonyops/chime/internal/core/scheduler"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type recorder struct {
	mu    sync.Mutex
	fired []scheduler.Entry
}

func (r *recorder) fire(e scheduler.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fired = append(r.fired, e)
}

func (r *recorder) entries() []scheduler.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]scheduler.Entry(nil), r.fired...)
}

func (r *recorder) count() int {
	return len(r.entries())
}

func payload(title string) notify.Payload {
	return notify.Payload{Toast: &notify.Toast{Title: title, Body: "body"}}
}

func newScheduler(t *testing.T) (*scheduler.Scheduler, *clockwork.FakeClock, *recorder) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(epoch)
	rec := &recorder{}
	s := scheduler.New(clock, rec.fire, nil)
	t.Cleanup(s.Stop)
	return s, clock, rec
}

func at(d time.Duration) int64 {
	return epoch.Add(d).UnixMilli()
}

func TestScheduler_PastTimeFiresSynchronously(t *testing.T) {
	s, _, rec := newScheduler(t)

	s.Register("now", payload("now"), at(0), true)
	s.Register("past", payload("past"), at(-time.Minute), false)

	fired := rec.entries()
	require.Len(t, fired, 2)
	assert.Equal(t, "now", fired[0].Key)
	assert.True(t, fired[0].Persist)
	assert.Equal(t, "past", fired[1].Key)
	assert.Equal(t, 0, s.Len())
}

func TestScheduler_FutureTimeFiresAfterDelay(t *testing.T) {
	s, clock, rec := newScheduler(t)

	s.Register("later", payload("later"), at(time.Second), true)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 0, rec.count())

	clock.Advance(999 * time.Millisecond)
	assert.Never(t, func() bool { return rec.count() > 0 }, 50*time.Millisecond, 5*time.Millisecond)

	clock.Advance(time.Millisecond)
	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, "later", rec.entries()[0].Key)
	assert.Equal(t, at(time.Second), rec.entries()[0].FireTime)
	assert.Equal(t, 0, s.Len())
}

func TestScheduler_FiresExactlyOnce(t *testing.T) {
	s, clock, rec := newScheduler(t)

	s.Register("once", payload("once"), at(time.Second), true)
	clock.Advance(2 * time.Second)
	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)

	clock.Advance(time.Hour)
	assert.Never(t, func() bool { return rec.count() > 1 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestScheduler_ReRegisterReplacesPending(t *testing.T) {
	s, clock, rec := newScheduler(t)

	s.Register("k", payload("first"), at(time.Second), true)
	s.Register("k", payload("second"), at(2*time.Second), true)

	pending := s.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "second", pending[0].Payload.Toast.Title)

	clock.Advance(3 * time.Second)
	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return rec.count() > 1 }, 50*time.Millisecond, 5*time.Millisecond)

	assert.Equal(t, "second", rec.entries()[0].Payload.Toast.Title)
}

func TestScheduler_ReRegisterWithPastTimeCancelsPending(t *testing.T) {
	s, clock, rec := newScheduler(t)

	s.Register("k", payload("first"), at(time.Second), true)
	s.Register("k", payload("now"), at(0), true)

	require.Equal(t, 1, rec.count())
	assert.Equal(t, 0, s.Len())

	clock.Advance(2 * time.Second)
	assert.Never(t, func() bool { return rec.count() > 1 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestScheduler_CancelBeforeFire(t *testing.T) {
	s, clock, rec := newScheduler(t)

	s.Register("k", payload("k"), at(time.Second), true)
	clock.Advance(500 * time.Millisecond)

	assert.True(t, s.Cancel("k"))
	assert.Equal(t, 0, s.Len())

	clock.Advance(time.Second)
	assert.Never(t, func() bool { return rec.count() > 0 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestScheduler_CancelIsIdempotent(t *testing.T) {
	s, _, _ := newScheduler(t)

	assert.False(t, s.Cancel("unknown"))

	s.Register("k", payload("k"), at(time.Second), true)
	assert.True(t, s.Cancel("k"))
	assert.False(t, s.Cancel("k"))
}

func TestScheduler_CancelAfterFireIsNoop(t *testing.T) {
	s, clock, rec := newScheduler(t)

	s.Register("k", payload("k"), at(time.Second), true)
	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)

	assert.False(t, s.Cancel("k"))
	assert.Equal(t, 1, rec.count())
}

func TestScheduler_IndependentKeys(t *testing.T) {
	s, clock, rec := newScheduler(t)

	s.Register("a", payload("a"), at(time.Second), true)
	s.Register("b", payload("b"), at(2*time.Second), true)
	s.Cancel("a")

	clock.Advance(2 * time.Second)
	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "b", rec.entries()[0].Key)
}

func TestScheduler_IndependentInstances(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	recA, recB := &recorder{}, &recorder{}
	a := scheduler.New(clock, recA.fire, nil)
	b := scheduler.New(clock, recB.fire, nil)

	a.Register("k", payload("a"), at(time.Second), true)
	b.Register("k", payload("b"), at(time.Second), true)
	a.Cancel("k")

	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return recB.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, recA.count())
}

func TestScheduler_Pending_ordered(t *testing.T) {
	s, _, _ := newScheduler(t)

	s.Register("c", payload("c"), at(3*time.Second), false)
	s.Register("b", payload("b"), at(time.Second), false)
	s.Register("a", payload("a"), at(time.Second), true)

	pending := s.Pending()
	require.Len(t, pending, 3)
	assert.Equal(t, "a", pending[0].Key)
	assert.Equal(t, "b", pending[1].Key)
	assert.Equal(t, "c", pending[2].Key)
	assert.False(t, pending[1].Persist)
}

func TestScheduler_CancelMatching(t *testing.T) {
	s, _, _ := newScheduler(t)

	s.Register("reminder-1", payload("1"), at(time.Second), true)
	s.Register("reminder-2", payload("2"), at(time.Second), true)
	s.Register("digest", payload("d"), at(time.Second), true)

	cancelled, err := s.CancelMatching("reminder-*")
	require.NoError(t, err)
	assert.Equal(t, []string{"reminder-1", "reminder-2"}, cancelled)

	pending := s.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "digest", pending[0].Key)

	_, err = s.CancelMatching("[")
	require.Error(t, err)
}

func TestScheduler_Stop(t *testing.T) {
	s, clock, rec := newScheduler(t)

	s.Register("a", payload("a"), at(time.Second), true)
	s.Register("b", payload("b"), at(time.Second), true)
	s.Stop()

	assert.Equal(t, 0, s.Len())
	clock.Advance(time.Minute)
	assert.Never(t, func() bool { return rec.count() > 0 }, 50*time.Millisecond, 5*time.Millisecond)
}
