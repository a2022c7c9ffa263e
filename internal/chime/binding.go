package chime

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/colonyops/chime/internal/core/logging"
	"github.com/colonyops/chime/internal/core/notify"
	"github.com/colonyops/chime/internal/core/readstate"
)

// DefaultWindow bounds the history shown by a Binding.
const DefaultWindow = 7 * 24 * time.Hour

// Snapshot is the read-only view state a UI renders.
type Snapshot struct {
	History           []notify.Record
	UnreadCount       int
	IsLoading         bool
	LastReadTimestamp int64
}

// BadgeUpdate carries the unread count to badge observers.
type BadgeUpdate struct {
	Count int
}

// BindingOptions configures a Binding.
type BindingOptions struct {
	// Window is how far back History reaches. Zero uses DefaultWindow.
	Window time.Duration
}

// Binding projects the Service state into a Snapshot, refreshed after every
// mutation, mark-as-read, and timer fire.
type Binding struct {
	svc   *Service
	id    string
	since int64
	log   zerolog.Logger

	// refreshMu serializes whole refreshes so an older read is never stored
	// or published after a newer one.
	refreshMu sync.Mutex
	mu        sync.Mutex
	snap      Snapshot

	subMu     sync.Mutex
	snapSubs  []func(Snapshot)
	badgeSubs []func(BadgeUpdate)
}

// NewBinding creates a binding over svc and performs the initial refresh.
// The history window boundary is fixed here and never re-evaluated, so a
// long-lived binding keeps showing everything since it was created.
func NewBinding(ctx context.Context, svc *Service, opts BindingOptions) *Binding {
	window := opts.Window
	if window <= 0 {
		window = DefaultWindow
	}

	b := &Binding{
		svc:   svc,
		id:    uuid.NewString(),
		since: svc.Now() - window.Milliseconds(),
		log:   logging.Component("binding"),
		snap:  Snapshot{History: []notify.Record{}, IsLoading: true},
	}

	svc.Reads().Subscribe(func(int64) { b.Refresh(context.Background()) })
	svc.OnDisplay(func(notify.Record) { b.Refresh(context.Background()) })

	b.Refresh(ctx)
	return b
}

// ID identifies the binding in logs.
func (b *Binding) ID() string { return b.id }

// Since returns the fixed history window boundary in Unix milliseconds.
func (b *Binding) Since() int64 { return b.since }

// Snapshot returns the current view state. The History slice is a copy.
func (b *Binding) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.snap
	s.History = slices.Clone(b.snap.History)
	return s
}

// Subscribe registers fn to receive every refreshed snapshot.
func (b *Binding) Subscribe(fn func(Snapshot)) {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	b.snapSubs = append(b.snapSubs, fn)
}

// OnBadge registers fn to receive the unread count after every refresh.
func (b *Binding) OnBadge(fn func(BadgeUpdate)) {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	b.badgeSubs = append(b.badgeSubs, fn)
}

// Refresh re-reads history and the read cursor. The unread count covers the
// full history, not just the window.
func (b *Binding) Refresh(ctx context.Context) {
	ctx = logging.WithBindingID(ctx, b.id)

	b.refreshMu.Lock()
	defer b.refreshMu.Unlock()

	b.mu.Lock()
	b.snap.IsLoading = true
	b.mu.Unlock()

	since := b.since
	windowed := b.svc.History().ListSince(ctx, &since)
	all := b.svc.History().ListSince(ctx, nil)
	cursor := b.svc.Reads().Cursor(ctx)

	snap := Snapshot{
		History:           windowed,
		UnreadCount:       readstate.Unread(all, cursor),
		LastReadTimestamp: cursor,
	}

	b.mu.Lock()
	b.snap = snap
	b.mu.Unlock()

	b.log.Debug().Ctx(ctx).
		Int("history", len(snap.History)).
		Int("unread", snap.UnreadCount).
		Msg("refreshed")

	b.publish(snap)
}

// Push forwards to Service.Push and refreshes.
func (b *Binding) Push(ctx context.Context, key string, payload notify.Payload, opts PushOptions) {
	b.svc.Push(b.ctx(ctx), key, payload, opts)
	b.Refresh(ctx)
}

// Clear forwards to Service.Clear and refreshes.
func (b *Binding) Clear(ctx context.Context, key string) bool {
	ok := b.svc.Clear(b.ctx(ctx), key)
	b.Refresh(ctx)
	return ok
}

// ClearMatching forwards to Service.ClearMatching and refreshes.
func (b *Binding) ClearMatching(ctx context.Context, pattern string) ([]string, error) {
	keys, err := b.svc.ClearMatching(b.ctx(ctx), pattern)
	b.Refresh(ctx)
	return keys, err
}

// Schedule forwards to Service.Schedule and refreshes.
func (b *Binding) Schedule(ctx context.Context, title, body string, delay time.Duration, action string) string {
	key := b.svc.Schedule(b.ctx(ctx), title, body, delay, action)
	b.Refresh(ctx)
	return key
}

// MarkAsRead moves the read cursor to now. The refresh follows from the
// read-tracking subscription.
func (b *Binding) MarkAsRead(ctx context.Context) {
	b.svc.Reads().MarkRead(b.ctx(ctx))
}

func (b *Binding) ctx(ctx context.Context) context.Context {
	return logging.WithBindingID(ctx, b.id)
}

func (b *Binding) publish(snap Snapshot) {
	b.subMu.Lock()
	snapSubs := slices.Clone(b.snapSubs)
	badgeSubs := slices.Clone(b.badgeSubs)
	b.subMu.Unlock()

	for _, fn := range snapSubs {
		s := snap
		s.History = slices.Clone(snap.History)
		fn(s)
	}

	badge := BadgeUpdate{Count: snap.UnreadCount}
	for _, fn := range badgeSubs {
		fn(badge)
	}
}
