// Package config handles configuration loading and validation for chime.
package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/chime/internal/core/styles"
)

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
	DriverMemory = "memory"
)

// Permission modes for notifications.permission.
const (
	PermissionPrompt  = "prompt"
	PermissionGranted = "granted"
	PermissionDenied  = "denied"
)

// Config holds the application configuration.
type Config struct {
	History       HistoryConfig       `yaml:"history"`
	Store         StoreConfig         `yaml:"store"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Debug         DebugConfig         `yaml:"debug"`
	TUI           TUIConfig           `yaml:"tui"`
	DataDir       string              `yaml:"-"` // set by caller, not from config file
}

// HistoryConfig bounds the history log and the window shown in views.
type HistoryConfig struct {
	Capacity int           `yaml:"capacity"`
	Window   time.Duration `yaml:"window"`
	// Format is an optional Go template for each line of `chime history`.
	Format string `yaml:"format"`
}

// StoreConfig selects and tunes the local store.
type StoreConfig struct {
	Driver       string `yaml:"driver"`
	BusyTimeout  int    `yaml:"busy_timeout"` // milliseconds
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// NotificationsConfig controls how toasts are shown.
type NotificationsConfig struct {
	// Permission is prompt, granted, or denied. Granted and denied skip the
	// interactive prompt entirely.
	Permission string `yaml:"permission"`
	Icon       string `yaml:"icon"`
	AppName    string `yaml:"app_name"`
}

// DebugConfig enables the pprof and metrics listener when Addr is set.
type DebugConfig struct {
	Addr string `yaml:"addr"`
}

// TUIConfig holds interactive view settings.
type TUIConfig struct {
	Theme string `yaml:"theme"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		History: HistoryConfig{
			Capacity: 64,
			Window:   7 * 24 * time.Hour,
		},
		Store: StoreConfig{
			Driver:       DriverSQLite,
			BusyTimeout:  5000,
			MaxOpenConns: 4,
			MaxIdleConns: 2,
		},
		Notifications: NotificationsConfig{
			Permission: PermissionPrompt,
			AppName:    "chime",
		},
		TUI: TUIConfig{
			Theme: styles.DefaultTheme,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.History.Capacity == 0 {
		c.History.Capacity = defaults.History.Capacity
	}
	if c.History.Window == 0 {
		c.History.Window = defaults.History.Window
	}
	if c.Store.Driver == "" {
		c.Store.Driver = defaults.Store.Driver
	}
	if c.Store.BusyTimeout == 0 {
		c.Store.BusyTimeout = defaults.Store.BusyTimeout
	}
	if c.Store.MaxOpenConns == 0 {
		c.Store.MaxOpenConns = defaults.Store.MaxOpenConns
	}
	if c.Store.MaxIdleConns == 0 {
		c.Store.MaxIdleConns = defaults.Store.MaxIdleConns
	}
	if c.Notifications.Permission == "" {
		c.Notifications.Permission = defaults.Notifications.Permission
	}
	if c.Notifications.AppName == "" {
		c.Notifications.AppName = defaults.Notifications.AppName
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.History.Capacity < 1 {
		return fmt.Errorf("history.capacity must be at least 1")
	}

	if c.History.Window <= 0 {
		return fmt.Errorf("history.window must be positive")
	}

	switch c.Store.Driver {
	case DriverSQLite, DriverFile, DriverMemory:
	default:
		return fmt.Errorf("store.driver %q must be one of sqlite, file, memory", c.Store.Driver)
	}

	if c.Store.BusyTimeout < 0 {
		return fmt.Errorf("store.busy_timeout cannot be negative")
	}

	if c.Store.MaxOpenConns < 1 {
		return fmt.Errorf("store.max_open_conns must be at least 1")
	}

	if c.Store.MaxIdleConns < 0 || c.Store.MaxIdleConns > c.Store.MaxOpenConns {
		return fmt.Errorf("store.max_idle_conns must be between 0 and max_open_conns")
	}

	switch c.Notifications.Permission {
	case PermissionPrompt, PermissionGranted, PermissionDenied:
	default:
		return fmt.Errorf("notifications.permission %q must be one of prompt, granted, denied", c.Notifications.Permission)
	}

	if c.Notifications.AppName == "" {
		return fmt.Errorf("notifications.app_name cannot be empty")
	}

	if _, ok := styles.GetPalette(c.TUI.Theme); !ok {
		return fmt.Errorf("tui.theme %q is not one of %s", c.TUI.Theme, strings.Join(styles.ThemeNames(), ", "))
	}

	if c.Debug.Addr != "" {
		if _, _, err := net.SplitHostPort(c.Debug.Addr); err != nil {
			return fmt.Errorf("debug.addr %q: %w", c.Debug.Addr, err)
		}
	}

	return nil
}
