// Package desktop displays notifications through the operating system's
// notification daemon: notify-send on Linux and osascript on macOS.
package desktop

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/colonyops/chime/internal/core/kv"
	"github.com/colonyops/chime/internal/core/logging"
	"github.com/colonyops/chime/internal/core/notify"
	"github.com/colonyops/chime/pkg/executil"
)

const (
	notifySend = "notify-send"
	osascript  = "osascript"

	permissionKey = "permission"

	// activated is what notify-send --wait prints when the default action fires.
	activated = "default"
)

// Options configures a Platform.
type Options struct {
	Exec  executil.Executor
	Store kv.Store
	// Prompter asks the user for permission. Nil never prompts.
	Prompter Prompter
	AppName  string
	// Preset overrides the stored permission when granted or denied.
	Preset notify.Permission
	// GOOS selects the backend. Empty uses runtime.GOOS.
	GOOS string
}

// Platform implements notify.Platform on top of desktop notification tools.
type Platform struct {
	exec       executil.Executor
	permission *kv.TypedKV[notify.Permission]
	prompter   Prompter
	appName    string
	preset     notify.Permission
	goos       string
	log        zerolog.Logger
}

var _ notify.Platform = (*Platform)(nil)

// New creates a desktop platform.
func New(opts Options) *Platform {
	goos := opts.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	appName := opts.AppName
	if appName == "" {
		appName = "chime"
	}

	return &Platform{
		exec:       opts.Exec,
		permission: kv.Scoped[notify.Permission](opts.Store, "chime"),
		prompter:   opts.Prompter,
		appName:    appName,
		preset:     opts.Preset,
		goos:       goos,
		log:        logging.Component("desktop"),
	}
}

func (p *Platform) binary() string {
	switch p.goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return notifySend
	case "darwin":
		return osascript
	default:
		return ""
	}
}

// Supported reports whether the notification tool for this OS is on PATH.
func (p *Platform) Supported() bool {
	bin := p.binary()
	if bin == "" || p.exec == nil {
		return false
	}
	_, err := p.exec.LookPath(bin)
	return err == nil
}

// PermissionState returns the configured preset, else the stored answer.
func (p *Platform) PermissionState(ctx context.Context) notify.Permission {
	if p.preset == notify.PermissionGranted || p.preset == notify.PermissionDenied {
		return p.preset
	}

	state, err := p.permission.Get(ctx, permissionKey)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			p.log.Warn().Ctx(ctx).Err(err).Msg("stored permission unreadable")
		}
		return notify.PermissionUndetermined
	}
	return notify.ParsePermission(string(state))
}

// RequestPermission prompts the user and stores the answer. Without a
// terminal the request is denied but nothing is stored, so a later
// interactive run can still ask.
func (p *Platform) RequestPermission(ctx context.Context) (notify.Permission, error) {
	if p.prompter == nil {
		return notify.PermissionDenied, nil
	}

	ok, err := p.prompter.Confirm(ctx,
		fmt.Sprintf("Allow %s to show desktop notifications?", p.appName),
		"You can change this later in the config file.",
	)
	if errors.Is(err, ErrNoTerminal) {
		p.log.Debug().Ctx(ctx).Msg("no terminal, skipping permission prompt")
		return notify.PermissionDenied, nil
	}
	if err != nil {
		return notify.PermissionDenied, fmt.Errorf("permission prompt: %w", err)
	}

	result := notify.PermissionDenied
	if ok {
		result = notify.PermissionGranted
	}

	if err := p.permission.Set(ctx, permissionKey, result); err != nil {
		p.log.Error().Ctx(ctx).Err(err).Msg("failed to store permission")
	}

	return result, nil
}

// Display shows req. Toasts that require interaction are shown with a
// default action and watched in the background for activation.
func (p *Platform) Display(ctx context.Context, req notify.DisplayRequest) (notify.Handle, error) {
	switch p.binary() {
	case notifySend:
		return p.displayNotifySend(ctx, req)
	case osascript:
		return p.displayOsascript(ctx, req)
	default:
		return nil, fmt.Errorf("display: unsupported platform %q", p.goos)
	}
}

func (p *Platform) notifySendArgs(req notify.DisplayRequest) []string {
	args := []string{"--app-name=" + p.appName}
	if req.Icon != "" {
		args = append(args, "--icon="+req.Icon)
	}
	if req.Tag != "" {
		args = append(args, "--hint=string:x-dunst-stack-tag:"+req.Tag)
	}
	if req.Timeout != notify.TimeoutDefault {
		args = append(args, fmt.Sprintf("--expire-time=%d", req.Timeout.ExpireMillis()))
	}
	if req.RequireInteraction {
		args = append(args, "--urgency=critical", "--action=default=Open", "--wait")
	}
	return append(args, req.Title, req.Body)
}

func (p *Platform) displayNotifySend(ctx context.Context, req notify.DisplayRequest) (notify.Handle, error) {
	args := p.notifySendArgs(req)

	if !req.RequireInteraction {
		if _, err := p.exec.Run(ctx, notifySend, args...); err != nil {
			return nil, fmt.Errorf("display: %w", err)
		}
		return &handle{}, nil
	}

	// The wait outlives the caller's context; the toast stays up until the
	// user acts on it or Close is called.
	waitCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	h := &handle{cancel: cancel}

	go func() {
		defer cancel()

		out, err := p.exec.Run(waitCtx, notifySend, args...)
		if err != nil {
			if waitCtx.Err() == nil {
				p.log.Warn().Ctx(ctx).Err(err).Msg("notify-send wait failed")
			}
			return
		}
		if strings.TrimSpace(string(out)) == activated {
			h.activate()
		}
	}()

	return h, nil
}

// osascriptSource renders req as a display notification statement. macOS
// picks its own timeout so req.Timeout is ignored.
func osascriptSource(req notify.DisplayRequest) string {
	script := fmt.Sprintf("display notification %s with title %s", appleString(req.Body), appleString(req.Title))
	if req.Subtitle != "" {
		script += " subtitle " + appleString(req.Subtitle)
	}
	return script
}

func (p *Platform) displayOsascript(ctx context.Context, req notify.DisplayRequest) (notify.Handle, error) {
	script := osascriptSource(req)
	if _, err := p.exec.Run(ctx, osascript, "-e", script); err != nil {
		return nil, fmt.Errorf("display: %w", err)
	}
	return &handle{}, nil
}

// appleString quotes s as an AppleScript string literal.
func appleString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

// handle tracks one displayed toast. A click that arrives before OnClick is
// registered is replayed on registration.
type handle struct {
	mu        sync.Mutex
	cancel    context.CancelFunc
	callbacks []func()
	clicked   bool
	closed    bool
}

func (h *handle) OnClick(fn func()) {
	h.mu.Lock()
	clicked := h.clicked
	h.callbacks = append(h.callbacks, fn)
	h.mu.Unlock()

	if clicked {
		fn()
	}
}

func (h *handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	if h.cancel != nil {
		h.cancel()
	}
	return nil
}

func (h *handle) activate() {
	h.mu.Lock()
	if h.closed || h.clicked {
		h.mu.Unlock()
		return
	}
	h.clicked = true
	fns := append([]func(){}, h.callbacks...)
	h.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
