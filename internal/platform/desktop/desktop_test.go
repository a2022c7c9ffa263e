package desktop

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/chime/internal/core/kv"
	"github.com/colonyops/chime/internal/core/notify"
	"github.com/colonyops/chime/pkg/executil"
)

type fakePrompter struct {
	answer bool
	err    error
	calls  int
}

func (f *fakePrompter) Confirm(context.Context, string, string) (bool, error) {
	f.calls++
	return f.answer, f.err
}

func linuxExec() *executil.RecordingExecutor {
	return &executil.RecordingExecutor{Paths: map[string]string{notifySend: "/usr/bin/notify-send"}}
}

func TestPlatform_Supported(t *testing.T) {
	tests := []struct {
		name  string
		goos  string
		paths map[string]string
		want  bool
	}{
		{name: "linux with notify-send", goos: "linux", paths: map[string]string{notifySend: "/usr/bin/notify-send"}, want: true},
		{name: "linux without notify-send", goos: "linux"},
		{name: "darwin with osascript", goos: "darwin", paths: map[string]string{osascript: "/usr/bin/osascript"}, want: true},
		{name: "darwin checks osascript", goos: "darwin", paths: map[string]string{notifySend: "/usr/bin/notify-send"}},
		{name: "windows", goos: "windows", paths: map[string]string{notifySend: "x", osascript: "y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(Options{
				Exec:  &executil.RecordingExecutor{Paths: tt.paths},
				Store: kv.NewMemory(),
				GOOS:  tt.goos,
			})
			assert.Equal(t, tt.want, p.Supported())
		})
	}
}

func TestPlatform_PermissionState(t *testing.T) {
	ctx := context.Background()

	t.Run("undetermined by default", func(t *testing.T) {
		p := New(Options{Exec: linuxExec(), Store: kv.NewMemory(), GOOS: "linux"})
		assert.Equal(t, notify.PermissionUndetermined, p.PermissionState(ctx))
	})

	t.Run("preset wins over stored", func(t *testing.T) {
		store := kv.NewMemory()
		require.NoError(t, store.Set(ctx, "chime:permission", `"granted"`))

		p := New(Options{Exec: linuxExec(), Store: store, GOOS: "linux", Preset: notify.PermissionDenied})
		assert.Equal(t, notify.PermissionDenied, p.PermissionState(ctx))
	})

	t.Run("stored answer", func(t *testing.T) {
		store := kv.NewMemory()
		require.NoError(t, store.Set(ctx, "chime:permission", `"denied"`))

		p := New(Options{Exec: linuxExec(), Store: store, GOOS: "linux"})
		assert.Equal(t, notify.PermissionDenied, p.PermissionState(ctx))
	})

	t.Run("corrupt stored value", func(t *testing.T) {
		store := kv.NewMemory()
		require.NoError(t, store.Set(ctx, "chime:permission", `{`))

		p := New(Options{Exec: linuxExec(), Store: store, GOOS: "linux"})
		assert.Equal(t, notify.PermissionUndetermined, p.PermissionState(ctx))
	})
}

func TestPlatform_RequestPermission(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		prompter  *fakePrompter
		want      notify.Permission
		wantErr   bool
		wantState notify.Permission
	}{
		{name: "allow", prompter: &fakePrompter{answer: true}, want: notify.PermissionGranted, wantState: notify.PermissionGranted},
		{name: "deny", prompter: &fakePrompter{answer: false}, want: notify.PermissionDenied, wantState: notify.PermissionDenied},
		{name: "no terminal", prompter: &fakePrompter{err: ErrNoTerminal}, want: notify.PermissionDenied, wantState: notify.PermissionUndetermined},
		{name: "prompt error", prompter: &fakePrompter{err: errors.New("boom")}, want: notify.PermissionDenied, wantErr: true, wantState: notify.PermissionUndetermined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(Options{Exec: linuxExec(), Store: kv.NewMemory(), GOOS: "linux", Prompter: tt.prompter})

			got, err := p.RequestPermission(ctx)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, tt.prompter.calls)
			assert.Equal(t, tt.wantState, p.PermissionState(ctx))
		})
	}
}

func TestPlatform_RequestPermission_noPrompter(t *testing.T) {
	p := New(Options{Exec: linuxExec(), Store: kv.NewMemory(), GOOS: "linux"})

	got, err := p.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, notify.PermissionDenied, got)
}

func TestPlatform_Display_notifySend(t *testing.T) {
	exec := linuxExec()
	p := New(Options{Exec: exec, Store: kv.NewMemory(), GOOS: "linux", AppName: "chime"})

	h, err := p.Display(context.Background(), notify.DisplayRequest{
		Title: "Build done",
		Body:  "all green",
		Icon:  "dialog-information",
		Tag:   "build-1",
	})
	require.NoError(t, err)
	require.NotNil(t, h)

	cmds := exec.Recorded()
	require.Len(t, cmds, 1)
	assert.Equal(t, notifySend, cmds[0].Cmd)
	assert.Equal(t, []string{
		"--app-name=chime",
		"--icon=dialog-information",
		"--hint=string:x-dunst-stack-tag:build-1",
		"Build done",
		"all green",
	}, cmds[0].Args)
	assert.NoError(t, h.Close())
}

func TestPlatform_Display_notifySendExpireTime(t *testing.T) {
	tests := []struct {
		name    string
		timeout notify.Timeout
		want    string
	}{
		{name: "never", timeout: notify.TimeoutNever, want: "--expire-time=0"},
		{name: "milliseconds", timeout: 4000, want: "--expire-time=4000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := linuxExec()
			p := New(Options{Exec: exec, Store: kv.NewMemory(), GOOS: "linux", AppName: "chime"})

			_, err := p.Display(context.Background(), notify.DisplayRequest{Title: "T", Body: "B", Timeout: tt.timeout})
			require.NoError(t, err)

			cmds := exec.Recorded()
			require.Len(t, cmds, 1)
			assert.Equal(t, []string{"--app-name=chime", tt.want, "T", "B"}, cmds[0].Args)
		})
	}
}

func TestPlatform_Display_interactiveClick(t *testing.T) {
	exec := linuxExec()
	exec.Outputs = map[string][]byte{notifySend: []byte("default\n")}
	p := New(Options{Exec: exec, Store: kv.NewMemory(), GOOS: "linux"})

	h, err := p.Display(context.Background(), notify.DisplayRequest{Title: "T", Body: "B", Tag: "k", RequireInteraction: true})
	require.NoError(t, err)

	var clicks atomic.Int32
	h.OnClick(func() { clicks.Add(1) })

	require.Eventually(t, func() bool { return clicks.Load() == 1 }, time.Second, 5*time.Millisecond)

	cmds := exec.Recorded()
	require.Len(t, cmds, 1)
	assert.Contains(t, cmds[0].Args, "--wait")
	assert.Contains(t, cmds[0].Args, "--action=default=Open")
	assert.Contains(t, cmds[0].Args, "--urgency=critical")
}

func TestPlatform_Display_interactiveDismissed(t *testing.T) {
	exec := linuxExec()
	exec.Outputs = map[string][]byte{notifySend: []byte("\n")}
	p := New(Options{Exec: exec, Store: kv.NewMemory(), GOOS: "linux"})

	h, err := p.Display(context.Background(), notify.DisplayRequest{Title: "T", RequireInteraction: true})
	require.NoError(t, err)

	var clicks atomic.Int32
	h.OnClick(func() { clicks.Add(1) })

	assert.Never(t, func() bool { return clicks.Load() > 0 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestPlatform_Display_error(t *testing.T) {
	exec := linuxExec()
	exec.Errors = map[string]error{notifySend: errors.New("no daemon")}
	p := New(Options{Exec: exec, Store: kv.NewMemory(), GOOS: "linux"})

	_, err := p.Display(context.Background(), notify.DisplayRequest{Title: "T"})
	require.Error(t, err)
}

func TestPlatform_Display_osascript(t *testing.T) {
	exec := &executil.RecordingExecutor{Paths: map[string]string{osascript: "/usr/bin/osascript"}}
	p := New(Options{Exec: exec, Store: kv.NewMemory(), GOOS: "darwin"})

	_, err := p.Display(context.Background(), notify.DisplayRequest{Title: `Say "hi"`, Body: `a\b`})
	require.NoError(t, err)

	cmds := exec.Recorded()
	require.Len(t, cmds, 1)
	assert.Equal(t, osascript, cmds[0].Cmd)
	assert.Equal(t, []string{"-e", `display notification "a\\b" with title "Say \"hi\""`}, cmds[0].Args)
}

func TestPlatform_Display_osascriptSubtitle(t *testing.T) {
	exec := &executil.RecordingExecutor{Paths: map[string]string{osascript: "/usr/bin/osascript"}}
	p := New(Options{Exec: exec, Store: kv.NewMemory(), GOOS: "darwin"})

	_, err := p.Display(context.Background(), notify.DisplayRequest{
		Title:    "Build",
		Subtitle: `main "ci"`,
		Body:     "done",
		Timeout:  notify.TimeoutNever,
	})
	require.NoError(t, err)

	cmds := exec.Recorded()
	require.Len(t, cmds, 1)
	assert.Equal(t, []string{"-e", `display notification "done" with title "Build" subtitle "main \"ci\""`}, cmds[0].Args)
}

func TestHandle_closeSuppressesClick(t *testing.T) {
	h := &handle{}
	var clicks int
	h.OnClick(func() { clicks++ })

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
	h.activate()

	assert.Equal(t, 0, clicks)
}

func TestHandle_replaysEarlyClick(t *testing.T) {
	h := &handle{}
	h.activate()
	h.activate()

	var clicks int
	h.OnClick(func() { clicks++ })
	assert.Equal(t, 1, clicks)
}

func TestTerminalPrompter_noTerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "stdin"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	_, err = (&TerminalPrompter{In: f, Out: f}).Confirm(context.Background(), "t", "d")
	require.ErrorIs(t, err, ErrNoTerminal)

	_, err = (&TerminalPrompter{}).Confirm(context.Background(), "t", "d")
	require.ErrorIs(t, err, ErrNoTerminal)
}

func TestOpener(t *testing.T) {
	ctx := context.Background()

	t.Run("linux url", func(t *testing.T) {
		exec := &executil.RecordingExecutor{}
		o := NewOpener(exec, "linux")

		require.NoError(t, o.OpenURL(ctx, "https://example.com"))
		require.Len(t, exec.Recorded(), 1)
		assert.Equal(t, "xdg-open", exec.Commands[0].Cmd)
		assert.Equal(t, []string{"https://example.com"}, exec.Commands[0].Args)
	})

	t.Run("darwin url", func(t *testing.T) {
		exec := &executil.RecordingExecutor{}
		require.NoError(t, NewOpener(exec, "darwin").OpenURL(ctx, "https://example.com"))
		assert.Equal(t, "open", exec.Commands[0].Cmd)
	})

	t.Run("url error", func(t *testing.T) {
		exec := &executil.RecordingExecutor{Errors: map[string]error{"xdg-open": errors.New("no handler")}}
		require.Error(t, NewOpener(exec, "linux").OpenURL(ctx, "https://example.com"))
	})

	t.Run("route", func(t *testing.T) {
		exec := &executil.RecordingExecutor{}
		o := NewOpener(exec, "linux")

		var got string
		o.OnRoute(func(route string) { got = route })

		require.NoError(t, o.Navigate(ctx, "/inbox"))
		assert.Equal(t, "/inbox", got)
		assert.Empty(t, exec.Recorded())
	})
}
