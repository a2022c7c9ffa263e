package stores

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/colonyops/chime/internal/data/db"
)

var (
	// ErrBusy marks a write that lost the database lock.
	ErrBusy = errors.New("store: database busy")
	// ErrCorrupt marks a database that needs RecoverFromCorruption.
	ErrCorrupt = errors.New("store: database corrupt")
)

// corruptMessages covers driver paths that surface corruption without a
// typed sqlite error, e.g. the ping during open.
var corruptMessages = []string{
	"database disk image is malformed",
	"file is not a database",
	"database corruption",
}

func sqliteCode(err error) (int, bool) {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code(), true
	}
	return 0, false
}

// IsBusyError reports whether err is SQLITE_BUSY.
func IsBusyError(err error) bool {
	code, ok := sqliteCode(err)
	return ok && code == sqlite3.SQLITE_BUSY
}

// IsCorruptionError reports whether err means the database file is unusable
// and should be moved aside.
func IsCorruptionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCorrupt) {
		return true
	}

	if code, ok := sqliteCode(err); ok {
		switch code {
		case sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_CANTOPEN:
			return true
		}
	}

	msg := err.Error()
	for _, m := range corruptMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// IsNotFoundError reports whether a single-row query found nothing.
func IsNotFoundError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// classify tags err with ErrBusy or ErrCorrupt so callers can errors.Is it.
func classify(err error) error {
	switch {
	case IsBusyError(err):
		return errors.Join(ErrBusy, err)
	case IsCorruptionError(err):
		return errors.Join(ErrCorrupt, err)
	default:
		return err
	}
}

// RecoverFromCorruption moves the database and its WAL/SHM sidecars aside so
// the next db.Open starts from an empty schema. It returns the backup path,
// or "" when there was no database file to move.
//
// Sidecars must not survive: SQLite would replay an orphaned WAL into the
// new file. A sidecar that cannot be renamed is removed instead.
func RecoverFromCorruption(dataDir string) (string, error) {
	dbPath := filepath.Join(dataDir, db.FileName)
	backupPath := fmt.Sprintf("%s.corrupt.%s", dbPath, time.Now().Format("20060102-150405"))

	if err := os.Rename(dbPath, backupPath); err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("back up corrupt database: %w", err)
		}
		backupPath = ""
	}

	for _, suffix := range []string{"-wal", "-shm"} {
		side := dbPath + suffix
		if _, err := os.Stat(side); err != nil {
			continue
		}

		if backupPath != "" {
			if err := os.Rename(side, backupPath+suffix); err == nil {
				continue
			}
		}
		if err := os.Remove(side); err != nil {
			return backupPath, fmt.Errorf("remove %s file: %w", strings.TrimPrefix(suffix, "-"), err)
		}
	}

	return backupPath, nil
}
