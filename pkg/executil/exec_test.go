package executil

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealExecutor_Run(t *testing.T) {
	exec := &RealExecutor{}
	ctx := context.Background()

	t.Run("successful command", func(t *testing.T) {
		out, err := exec.Run(ctx, "echo", "hello")
		require.NoError(t, err)
		assert.Equal(t, "hello\n", string(out))
	})

	t.Run("command not found", func(t *testing.T) {
		_, err := exec.Run(ctx, "nonexistent-command-12345")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exec nonexistent-command-12345")
	})

	t.Run("command fails", func(t *testing.T) {
		_, err := exec.Run(ctx, "false")
		require.Error(t, err)
	})
}

func TestRealExecutor_Run_StderrCappedAtMaxLen(t *testing.T) {
	ctx := context.Background()

	longStderr := strings.Repeat("A", maxStderrLen*2)
	_, err := (&RealExecutor{}).Run(ctx, "sh", "-c", "printf '%s' '"+longStderr+"' >&2; exit 1")
	require.Error(t, err)

	assert.Contains(t, err.Error(), strings.Repeat("A", maxStderrLen))
	assert.NotContains(t, err.Error(), strings.Repeat("A", maxStderrLen+1), "stderr should be capped")
}

func TestRealExecutor_Run_PreservesExitError(t *testing.T) {
	_, err := (&RealExecutor{}).Run(context.Background(), "sh", "-c", "echo 'error message' >&2; exit 2")
	require.Error(t, err)

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr, "original ExitError should be preserved via wrapping")
	assert.Equal(t, 2, exitErr.ExitCode())
	assert.Contains(t, err.Error(), "error message")
}

func TestRealExecutor_LookPath(t *testing.T) {
	e := &RealExecutor{}

	path, err := e.LookPath("sh")
	require.NoError(t, err)
	assert.NotEmpty(t, path)

	_, err = e.LookPath("nonexistent-command-12345")
	require.ErrorIs(t, err, exec.ErrNotFound)
}

func TestRecordingExecutor(t *testing.T) {
	t.Run("records commands", func(t *testing.T) {
		exec := &RecordingExecutor{}
		ctx := context.Background()

		_, _ = exec.Run(ctx, "notify-send", "title", "body")
		_, _ = exec.Run(ctx, "xdg-open", "https://example.com")

		require.Len(t, exec.Recorded(), 2)
		assert.Equal(t, "notify-send", exec.Commands[0].Cmd)
		assert.Equal(t, []string{"title", "body"}, exec.Commands[0].Args)
	})

	t.Run("returns configured output", func(t *testing.T) {
		exec := &RecordingExecutor{
			Outputs: map[string][]byte{
				"notify-send": []byte("default\n"),
			},
		}

		out, err := exec.Run(context.Background(), "notify-send", "x")
		require.NoError(t, err)
		assert.Equal(t, []byte("default\n"), out)
	})

	t.Run("returns configured error", func(t *testing.T) {
		expectedErr := errors.New("command failed")
		exec := &RecordingExecutor{
			Errors: map[string]error{
				"osascript": expectedErr,
			},
		}

		_, err := exec.Run(context.Background(), "osascript", "-e", "x")
		assert.Equal(t, expectedErr, err)
	})

	t.Run("look path", func(t *testing.T) {
		e := &RecordingExecutor{Paths: map[string]string{"notify-send": "/usr/bin/notify-send"}}

		path, err := e.LookPath("notify-send")
		require.NoError(t, err)
		assert.Equal(t, "/usr/bin/notify-send", path)

		_, err = e.LookPath("osascript")
		require.ErrorIs(t, err, exec.ErrNotFound)
	})

	t.Run("reset clears commands", func(t *testing.T) {
		exec := &RecordingExecutor{}

		_, _ = exec.Run(context.Background(), "echo", "hello")
		require.Len(t, exec.Commands, 1)

		exec.Reset()
		assert.Empty(t, exec.Commands)
	})
}
