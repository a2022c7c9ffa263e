// Package chime wires the permission gate, scheduler, history, and read
// tracking into the notification facade and its presentation binding.
package chime

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/colonyops/chime/internal/core/history"
	"github.com/colonyops/chime/internal/core/kv"
	"github.com/colonyops/chime/internal/core/logging"
	"github.com/colonyops/chime/internal/core/notify"
	"github.com/colonyops/chime/internal/core/permission"
	"github.com/colonyops/chime/internal/core/readstate"
	"github.com/colonyops/chime/internal/core/scheduler"
	"github.com/colonyops/chime/internal/metrics"
)

// Options configures a Service. Platform and Store are required; everything
// else has a usable zero value.
type Options struct {
	Platform notify.Platform
	Opener   notify.Opener
	Store    kv.Store
	Clock    clockwork.Clock
	Metrics  *metrics.Metrics

	// HistoryCapacity bounds the history log. Zero uses history.DefaultCapacity.
	HistoryCapacity int
	// DefaultIcon is shown on toasts that carry no icon of their own.
	DefaultIcon string
}

// PushOptions controls a single Push. The zero value is not the default:
// use DefaultPushOptions, which saves to history and displays now.
type PushOptions struct {
	Save bool
	// Time is the Unix millisecond display time. Nil or a past time displays now.
	Time *int64
}

// DefaultPushOptions saves the record and displays immediately.
func DefaultPushOptions() PushOptions {
	return PushOptions{Save: true}
}

// DisplayObserver is told about every notification that reached the display
// path, immediately or from a fired timer.
type DisplayObserver func(notify.Record)

// Service is the notification facade. Every operation, including timer
// fires, runs under a single operation mutex.
type Service struct {
	mu sync.Mutex
	// regMu is held by Push across cancel and register, and by the clear
	// operations, so a clear never lands between the two. Fires never take it.
	regMu sync.Mutex

	clock       clockwork.Clock
	platform    notify.Platform
	opener      notify.Opener
	gate        *permission.Gate
	scheduler   *scheduler.Scheduler
	history     *history.Store
	reads       *readstate.Tracker
	metrics     *metrics.Metrics
	defaultIcon string
	log         zerolog.Logger

	obsMu     sync.Mutex
	observers []DisplayObserver
}

// New creates a Service from opts.
func New(opts Options) *Service {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	s := &Service{
		clock:       clock,
		platform:    opts.Platform,
		opener:      opts.Opener,
		gate:        permission.NewGate(opts.Platform),
		history:     history.New(opts.Store, history.Options{Capacity: opts.HistoryCapacity, Metrics: opts.Metrics}),
		reads:       readstate.New(opts.Store, clock, opts.Metrics),
		metrics:     opts.Metrics,
		defaultIcon: opts.DefaultIcon,
		log:         logging.Component("chime"),
	}
	s.scheduler = scheduler.New(clock, s.fired, opts.Metrics)

	return s
}

// History exposes the history log.
func (s *Service) History() *history.Store { return s.history }

// Reads exposes the read cursor tracker.
func (s *Service) Reads() *readstate.Tracker { return s.reads }

// Scheduler exposes the pending-entry table for introspection.
func (s *Service) Scheduler() *scheduler.Scheduler { return s.scheduler }

// Now returns the service clock in Unix milliseconds.
func (s *Service) Now() int64 { return s.clock.Now().UnixMilli() }

// OnDisplay registers fn to run after a notification is displayed or saved.
func (s *Service) OnDisplay(fn DisplayObserver) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, fn)
}

// Push cancels any pending entry for key, then displays payload immediately,
// schedules it for opts.Time, or, when permission is unavailable, falls back
// to saving the banner to history.
func (s *Service) Push(ctx context.Context, key string, payload notify.Payload, opts PushOptions) {
	ctx = logging.WithNotificationKey(ctx, key)

	s.regMu.Lock()
	s.mu.Lock()
	s.scheduler.Cancel(key)

	if payload.Empty() {
		s.mu.Unlock()
		s.regMu.Unlock()
		s.log.Debug().Ctx(ctx).Msg("empty payload, nothing to display")
		return
	}

	if !s.gate.EnsureAuthorized(ctx) {
		rec, saved := s.save(ctx, key, payload, opts.Save)
		s.mu.Unlock()
		s.regMu.Unlock()

		s.metrics.Push(metrics.OutcomeFallback)
		s.log.Debug().Ctx(ctx).Bool("saved", saved).Msg("permission unavailable")
		if saved {
			s.notifyObservers(rec)
		}
		return
	}

	now := s.Now()
	if opts.Time == nil || *opts.Time <= now {
		rec, _ := s.deliver(ctx, scheduler.Entry{Key: key, Payload: payload, FireTime: now, Persist: opts.Save})
		s.mu.Unlock()
		s.regMu.Unlock()

		s.metrics.Push(metrics.OutcomeDisplayed)
		s.notifyObservers(rec)
		return
	}
	s.mu.Unlock()

	// Register fires inline if the deadline passed in the meantime, and fires
	// take mu, so only regMu is held here.
	s.scheduler.Register(key, payload, *opts.Time, opts.Save)
	s.regMu.Unlock()

	s.metrics.Push(metrics.OutcomeScheduled)
	s.log.Debug().Ctx(ctx).Int64("fire_at", *opts.Time).Msg("notification scheduled")
}

// Clear cancels the pending notification for key. History is untouched.
func (s *Service) Clear(ctx context.Context, key string) bool {
	s.regMu.Lock()
	defer s.regMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	ok := s.scheduler.Cancel(key)
	s.log.Debug().Ctx(logging.WithNotificationKey(ctx, key)).Bool("pending", ok).Msg("clear")
	return ok
}

// ClearMatching cancels every pending notification whose key matches the
// doublestar glob pattern.
func (s *Service) ClearMatching(ctx context.Context, pattern string) ([]string, error) {
	s.regMu.Lock()
	defer s.regMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.scheduler.CancelMatching(pattern)
	if err != nil {
		return nil, err
	}

	s.log.Debug().Ctx(ctx).Str("pattern", pattern).Int("cancelled", len(keys)).Msg("clear matching")
	return keys, nil
}

// Schedule pushes a notification with matching toast and banner facets to
// display after delay, and returns its generated key.
func (s *Service) Schedule(ctx context.Context, title, body string, delay time.Duration, action string) string {
	now := s.Now()
	key := NewKey(now)
	at := now + delay.Milliseconds()

	s.Push(ctx, key, notify.Payload{
		Toast:  &notify.Toast{Title: title, Body: body, Action: action},
		Banner: &notify.Banner{Title: title, Body: body},
	}, PushOptions{Save: true, Time: &at})

	return key
}

// Close cancels all pending notifications.
func (s *Service) Close() {
	s.scheduler.Stop()
}

// NewKey returns a time-prefixed unique key, "<unixms>-<8 hex chars>".
func NewKey(nowMillis int64) string {
	return fmt.Sprintf("%d-%s", nowMillis, uuid.NewString()[:8])
}

// fired is the scheduler callback for entries whose timer expired.
func (s *Service) fired(e scheduler.Entry) {
	ctx := logging.WithNotificationKey(context.Background(), e.Key)

	s.mu.Lock()
	rec, _ := s.deliver(ctx, e)
	s.mu.Unlock()

	s.notifyObservers(rec)
}

// deliver displays the toast and, when persisting, appends a record stamped
// with the current time. Callers hold mu.
func (s *Service) deliver(ctx context.Context, e scheduler.Entry) (notify.Record, bool) {
	if e.Payload.Toast != nil {
		s.display(ctx, e.Key, *e.Payload.Toast)
	}
	return s.save(ctx, e.Key, e.Payload, e.Persist)
}

func (s *Service) save(ctx context.Context, key string, payload notify.Payload, persist bool) (notify.Record, bool) {
	rec := notify.Record{Key: key, Data: payload, Time: s.Now()}
	if !persist || payload.Banner == nil {
		return rec, false
	}

	s.history.Append(ctx, rec)
	return rec, true
}

func (s *Service) display(ctx context.Context, key string, toast notify.Toast) {
	icon := toast.Icon
	if icon == "" {
		icon = s.defaultIcon
	}

	handle, err := s.platform.Display(ctx, notify.DisplayRequest{
		Title:              toast.Title,
		Subtitle:           toast.Subtitle,
		Body:               toast.Body,
		Icon:               icon,
		Tag:                key,
		RequireInteraction: toast.Action != "",
		Timeout:            toast.Timeout,
	})
	if err != nil {
		s.metrics.DisplayError()
		s.log.Error().Ctx(ctx).Err(err).Msg("failed to display toast")
		return
	}

	action := toast.Action
	handle.OnClick(func() {
		s.click(ctx, handle, action)
	})
}

// click closes the toast and follows its action. Absolute http(s) URLs are
// opened; anything else is an in-app route.
func (s *Service) click(ctx context.Context, handle notify.Handle, action string) {
	if err := handle.Close(); err != nil {
		s.log.Warn().Ctx(ctx).Err(err).Msg("failed to close toast")
	}

	if action == "" {
		return
	}
	if s.opener == nil {
		s.log.Warn().Ctx(ctx).Str("action", action).Msg("no opener configured, dropping action")
		return
	}

	var err error
	if IsURL(action) {
		err = s.opener.OpenURL(ctx, action)
	} else {
		err = s.opener.Navigate(ctx, action)
	}
	if err != nil {
		s.log.Error().Ctx(ctx).Err(err).Str("action", action).Msg("failed to follow toast action")
	}
}

// IsURL reports whether action is an absolute http or https URL.
func IsURL(action string) bool {
	u, err := url.Parse(action)
	if err != nil || u.Host == "" {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

func (s *Service) notifyObservers(rec notify.Record) {
	s.obsMu.Lock()
	obs := make([]DisplayObserver, len(s.observers))
	copy(obs, s.observers)
	s.obsMu.Unlock()

	for _, fn := range obs {
		fn(rec)
	}
}
