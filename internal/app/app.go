// Package app assembles the notification service and its local store from
// configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/colonyops/chime/internal/chime"
	"github.com/colonyops/chime/internal/core/config"
	"github.com/colonyops/chime/internal/core/kv"
	"github.com/colonyops/chime/internal/core/logging"
	"github.com/colonyops/chime/internal/core/notify"
	"github.com/colonyops/chime/internal/data/db"
	"github.com/colonyops/chime/internal/data/stores"
	"github.com/colonyops/chime/internal/metrics"
	"github.com/colonyops/chime/internal/platform/desktop"
	"github.com/colonyops/chime/internal/store/jsonfile"
	"github.com/colonyops/chime/pkg/executil"
)

// DefaultPollInterval is how often the sqlite store is checked for writes
// made by other processes.
const DefaultPollInterval = time.Second

// Options overrides the OS facing pieces of an App. Zero values use the real
// implementations.
type Options struct {
	Exec     executil.Executor
	Prompter desktop.Prompter
	Clock    clockwork.Clock
	GOOS     string
	// PollInterval applies to the sqlite driver. Zero uses DefaultPollInterval.
	PollInterval time.Duration
}

// App holds the long lived objects shared by all commands.
type App struct {
	Config  *config.Config
	Store   kv.Store
	Service *chime.Service
	Metrics *metrics.Metrics
	Opener  *desktop.Opener

	clock        clockwork.Clock
	pollInterval time.Duration
	database     *db.DB
	kvStore      *stores.KVStore
	watcher      *jsonfile.Watcher
	log          zerolog.Logger
}

// New opens the configured store and builds the notification service.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if opts.Exec == nil {
		opts.Exec = &executil.RealExecutor{}
	}
	if opts.Prompter == nil {
		opts.Prompter = desktop.NewTerminalPrompter()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	a := &App{
		Config:       cfg,
		Metrics:      metrics.New(),
		clock:        opts.Clock,
		pollInterval: opts.PollInterval,
		log:          logging.Component("app"),
	}

	if err := a.openStore(ctx); err != nil {
		return nil, err
	}

	platform := desktop.New(desktop.Options{
		Exec:     opts.Exec,
		Store:    a.Store,
		Prompter: opts.Prompter,
		AppName:  cfg.Notifications.AppName,
		Preset:   notify.ParsePermission(cfg.Notifications.Permission),
		GOOS:     opts.GOOS,
	})
	a.Opener = desktop.NewOpener(opts.Exec, opts.GOOS)

	a.Service = chime.New(chime.Options{
		Platform:        platform,
		Opener:          a.Opener,
		Store:           a.Store,
		Clock:           opts.Clock,
		Metrics:         a.Metrics,
		HistoryCapacity: cfg.History.Capacity,
		DefaultIcon:     cfg.Notifications.Icon,
	})

	return a, nil
}

func (a *App) openStore(ctx context.Context) error {
	cfg := a.Config

	if cfg.Store.Driver == config.DriverMemory {
		a.Store = kv.NewMemory()
		return nil
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	switch cfg.Store.Driver {
	case config.DriverFile:
		path := filepath.Join(cfg.DataDir, jsonfile.FileName)
		a.Store = jsonfile.NewKVFile(path)

		w, err := jsonfile.NewWatcher(path)
		if err != nil {
			// Cross process refresh is best effort.
			a.log.Warn().Err(err).Msg("file watcher unavailable")
		}
		a.watcher = w
		return nil

	case config.DriverSQLite:
		opts := db.OpenOptions{
			BusyTimeout:  cfg.Store.BusyTimeout,
			MaxOpenConns: cfg.Store.MaxOpenConns,
			MaxIdleConns: cfg.Store.MaxIdleConns,
		}

		database, err := db.Open(cfg.DataDir, opts)
		if err != nil && stores.IsCorruptionError(err) {
			backup, rerr := stores.RecoverFromCorruption(cfg.DataDir)
			if rerr != nil {
				return errors.Join(err, rerr)
			}
			a.log.Error().Err(err).Str("backup", backup).Msg("database corrupt, moved it aside")
			database, err = db.Open(cfg.DataDir, opts)
		}
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}

		a.database = database
		a.kvStore = stores.NewKVStore(database)
		a.Store = a.kvStore
		return nil
	}

	return fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// Changes reports writes to the store made by other processes sharing it.
// The channel closes when ctx is done. The memory driver never reports.
func (a *App) Changes(ctx context.Context) <-chan struct{} {
	out := make(chan struct{}, 1)

	send := func() {
		select {
		case out <- struct{}{}:
		default:
		}
	}

	switch {
	case a.watcher != nil:
		events := a.watcher.Watch(ctx)
		go func() {
			defer close(out)
			for range events {
				send()
			}
		}()

	case a.kvStore != nil:
		go func() {
			defer close(out)
			a.poll(ctx, send)
		}()

	default:
		go func() {
			<-ctx.Done()
			close(out)
		}()
	}

	return out
}

// poll compares the store version on every tick and calls changed when it moves.
func (a *App) poll(ctx context.Context, changed func()) {
	last, err := a.kvStore.Version(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("read store version")
	}

	ticker := a.clock.NewTicker(a.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			v, err := a.kvStore.Version(ctx)
			if err != nil {
				a.log.Warn().Err(err).Msg("read store version")
				continue
			}
			if v != last {
				last = v
				changed()
			}
		}
	}
}

// Close stops pending notifications and releases the store.
func (a *App) Close() error {
	if a.Service != nil {
		a.Service.Close()
	}

	var errs []error
	if a.watcher != nil {
		errs = append(errs, a.watcher.Close())
	}
	if a.database != nil {
		errs = append(errs, a.database.Close())
	}
	return errors.Join(errs...)
}
