package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load("", dataDir)
	require.NoError(t, err)

	want := DefaultConfig()
	want.DataDir = dataDir
	assert.Equal(t, &want, cfg)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "/data")
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.History.Capacity)
	assert.Equal(t, "/data", cfg.DataDir)
}

func TestLoad_FileOverrides(t *testing.T) {
	path := writeConfig(t, `
history:
  capacity: 10
  window: 1h
store:
  driver: file
notifications:
  permission: granted
  icon: dialog-information
debug:
  addr: 127.0.0.1:6060
tui:
  theme: gruvbox
data_dir: /ignored
`)

	cfg, err := Load(path, "/data")
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.History.Capacity)
	assert.Equal(t, time.Hour, cfg.History.Window)
	assert.Equal(t, DriverFile, cfg.Store.Driver)
	assert.Equal(t, 5000, cfg.Store.BusyTimeout, "unset fields keep defaults")
	assert.Equal(t, PermissionGranted, cfg.Notifications.Permission)
	assert.Equal(t, "dialog-information", cfg.Notifications.Icon)
	assert.Equal(t, "chime", cfg.Notifications.AppName)
	assert.Equal(t, "127.0.0.1:6060", cfg.Debug.Addr)
	assert.Equal(t, "gruvbox", cfg.TUI.Theme)
	assert.Equal(t, "/data", cfg.DataDir)
}

func TestLoad_ParseError(t *testing.T) {
	path := writeConfig(t, "history: [unclosed")

	_, err := Load(path, "/data")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeConfig(t, "store:\n  driver: redis\n")

	_, err := Load(path, "/data")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
	assert.Contains(t, err.Error(), "store.driver")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "empty data dir", mutate: func(c *Config) { c.DataDir = "" }, wantErr: "data directory"},
		{name: "zero capacity", mutate: func(c *Config) { c.History.Capacity = 0 }, wantErr: "history.capacity"},
		{name: "negative window", mutate: func(c *Config) { c.History.Window = -time.Second }, wantErr: "history.window"},
		{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "redis" }, wantErr: "store.driver"},
		{name: "negative busy timeout", mutate: func(c *Config) { c.Store.BusyTimeout = -1 }, wantErr: "busy_timeout"},
		{name: "zero open conns", mutate: func(c *Config) { c.Store.MaxOpenConns = 0 }, wantErr: "max_open_conns"},
		{name: "idle over open", mutate: func(c *Config) { c.Store.MaxIdleConns = 10 }, wantErr: "max_idle_conns"},
		{name: "unknown permission", mutate: func(c *Config) { c.Notifications.Permission = "maybe" }, wantErr: "notifications.permission"},
		{name: "empty app name", mutate: func(c *Config) { c.Notifications.AppName = "" }, wantErr: "app_name"},
		{name: "bad debug addr", mutate: func(c *Config) { c.Debug.Addr = "6060" }, wantErr: "debug.addr"},
		{name: "debug addr", mutate: func(c *Config) { c.Debug.Addr = ":6060" }},
		{name: "unknown theme", mutate: func(c *Config) { c.TUI.Theme = "neon" }, wantErr: "tui.theme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.DataDir = "/data"
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
