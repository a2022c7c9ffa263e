package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/chime/pkg/tmpl"
)

// HistoryLineData defines the fields available to the history.format template.
type HistoryLineData struct {
	Key    string
	Title  string
	Body   string
	Icon   string
	Action string
	Time   int64 // Unix milliseconds
	Unread bool
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration including
// template syntax and file accessibility. The configPath argument specifies the
// config file location to validate (empty string skips config file check).
// This calls Validate() first for basic structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		c.validateHistoryFormat(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Store.Driver == DriverMemory {
		warnings = append(warnings, ValidationWarning{
			Category: "Store",
			Item:     "driver",
			Message:  "memory store loses history and read state on exit",
		})
	}

	if c.Notifications.Permission == PermissionDenied {
		warnings = append(warnings, ValidationWarning{
			Category: "Notifications",
			Item:     "permission",
			Message:  "toasts are disabled; notifications are only saved to history",
		})
	}

	return warnings
}

// validateFileAccess checks the config file, data directory, and icon path.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
		criterio.Run("notifications.icon", c.Notifications.Icon, iconExists),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

// iconExists validates icons given as paths. Bare names are icon theme
// entries and are resolved by the notification daemon.
func iconExists(icon string) error {
	if icon == "" || !strings.ContainsRune(icon, os.PathSeparator) {
		return nil
	}

	info, err := os.Stat(icon)
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", icon)
	}
	return nil
}

func (c *Config) validateHistoryFormat() error {
	if c.History.Format == "" {
		return nil
	}

	sample := HistoryLineData{Key: "key", Title: "title", Body: "body", Time: 1}
	if _, err := tmpl.Render(c.History.Format, sample); err != nil {
		return criterio.NewFieldErrors("history.format", fmt.Errorf("template error: %w", err))
	}
	return nil
}
