package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReportsKVFileWrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), FileName)

	watcher, err := NewWatcher(path)
	require.NoError(t, err)
	defer watcher.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events := watcher.Watch(ctx)

	require.NoError(t, NewKVFile(path).Set(ctx, "chime:last-read", "1"))

	select {
	case event := <-events:
		assert.Equal(t, filepath.Clean(path), event.Path)
		assert.False(t, event.Timestamp.IsZero())
	case <-ctx.Done():
		t.Fatal("timeout waiting for event")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	watcher, err := NewWatcher(path)
	require.NoError(t, err)
	defer watcher.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events := watcher.Watch(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o644))
	require.NoError(t, os.WriteFile(path+".tmp", []byte(`{}`), 0o644))

	select {
	case <-events:
		t.Fatal("unexpected event for unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_Debounce(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), FileName)

	watcher, err := NewWatcher(path)
	require.NoError(t, err)
	defer watcher.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events := watcher.Watch(ctx)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))
		time.Sleep(10 * time.Millisecond) // Less than debounce delay
	}

	timeout := time.After(300 * time.Millisecond)
	eventCount := 0
	for {
		select {
		case <-events:
			eventCount++
		case <-timeout:
			assert.Equal(t, 1, eventCount, "should receive exactly one debounced event")
			return
		}
	}
}

func TestWatcher_ContextCancellation(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), FileName)

	watcher, err := NewWatcher(path)
	require.NoError(t, err)
	defer watcher.Close() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	events := watcher.Watch(ctx)
	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok, "channel should be closed after cancel")
	case <-time.After(time.Second):
		t.Fatal("channel was not closed")
	}
}

func TestWatcher_CloseClosesSubscribers(t *testing.T) {
	t.Parallel()

	watcher, err := NewWatcher(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)

	events := watcher.Watch(context.Background())
	require.NoError(t, watcher.Close())

	_, ok := <-events
	assert.False(t, ok)
}
