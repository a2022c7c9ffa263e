// Package executil provides process execution utilities.
package executil

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const maxStderrLen = 500

// limitedWriter caps writes to a bytes.Buffer at a maximum byte count.
// Bytes beyond the limit are silently discarded.
type limitedWriter struct {
	buf *bytes.Buffer
	n   int64
	max int64
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	if w.n >= w.max {
		return len(p), nil
	}
	remaining := w.max - w.n
	origLen := len(p)
	if int64(origLen) > remaining {
		p = p[:remaining]
	}
	n, err := w.buf.Write(p)
	w.n += int64(n)
	if err != nil {
		return n, err
	}
	return origLen, nil
}

// Executor runs external programs.
type Executor interface {
	// Run executes a command and returns its stdout. A failing command's
	// stderr is folded into the error.
	Run(ctx context.Context, cmd string, args ...string) ([]byte, error)
	// LookPath resolves a program on PATH.
	LookPath(name string) (string, error)
}

// RealExecutor runs actual processes.
type RealExecutor struct{}

var _ Executor = (*RealExecutor)(nil)

// Run executes cmd. On failure, stderr is returned as part of the error,
// capped at 500 bytes so notification daemons that print large or
// ANSI-polluted output cannot flood logs. The original *exec.ExitError is
// preserved via wrapping so callers can inspect exit codes with errors.As.
func (e *RealExecutor) Run(ctx context.Context, cmd string, args ...string) ([]byte, error) {
	c := exec.CommandContext(ctx, cmd, args...)

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &limitedWriter{buf: &stderr, max: maxStderrLen}

	if err := c.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return stdout.Bytes(), fmt.Errorf("exec %s: %s: %w", cmd, msg, err)
		}
		return stdout.Bytes(), fmt.Errorf("exec %s: %w", cmd, err)
	}

	return stdout.Bytes(), nil
}

// LookPath resolves name with exec.LookPath.
func (e *RealExecutor) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
