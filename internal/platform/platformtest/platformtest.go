// Package platformtest provides an in-memory notification platform that
// records prompts, displays, and opened actions for assertions in tests.
package platformtest

import (
	"context"
	"sync"

	"github.com/colonyops/chime/internal/core/notify"
)

// Platform is a recording notify.Platform. The zero value is a supported
// platform whose permission is undetermined and whose prompt grants.
type Platform struct {
	mu sync.Mutex

	unsupported  bool
	state        notify.Permission
	promptResult notify.Permission
	promptErr    error
	displayErr   error

	prompts  int
	displays []notify.DisplayRequest
	handles  []*Handle
}

var _ notify.Platform = (*Platform)(nil)

// New creates a supported platform in the given permission state. Prompts
// grant unless changed with PromptResult.
func New(state notify.Permission) *Platform {
	return &Platform{
		state:        state,
		promptResult: notify.PermissionGranted,
	}
}

// Unsupported creates a platform without the notification capability.
func Unsupported() *Platform {
	p := New(notify.PermissionUndetermined)
	p.unsupported = true
	return p
}

// PromptResult sets what the next prompt answers.
func (p *Platform) PromptResult(result notify.Permission, err error) *Platform {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.promptResult = result
	p.promptErr = err
	return p
}

// FailDisplay makes every Display call return err.
func (p *Platform) FailDisplay(err error) *Platform {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.displayErr = err
	return p
}

// SetState changes the live permission state.
func (p *Platform) SetState(state notify.Permission) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = state
}

func (p *Platform) Supported() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.unsupported
}

func (p *Platform) PermissionState(context.Context) notify.Permission {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == "" {
		return notify.PermissionUndetermined
	}
	return p.state
}

func (p *Platform) RequestPermission(context.Context) (notify.Permission, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts++
	if p.promptErr != nil {
		return notify.PermissionDenied, p.promptErr
	}
	result := p.promptResult
	if result == "" {
		result = notify.PermissionGranted
	}
	p.state = result
	return result, nil
}

func (p *Platform) Display(_ context.Context, req notify.DisplayRequest) (notify.Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.displayErr != nil {
		return nil, p.displayErr
	}
	h := &Handle{Request: req}
	p.displays = append(p.displays, req)
	p.handles = append(p.handles, h)
	return h, nil
}

// Prompts returns how many times the user was asked for permission.
func (p *Platform) Prompts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prompts
}

// Displays returns a copy of every display request, oldest first.
func (p *Platform) Displays() []notify.DisplayRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]notify.DisplayRequest, len(p.displays))
	copy(out, p.displays)
	return out
}

// Handles returns the handles of every displayed toast, oldest first.
func (p *Platform) Handles() []*Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Handle, len(p.handles))
	copy(out, p.handles)
	return out
}

// Handle is a recorded toast. Click simulates user activation.
type Handle struct {
	Request notify.DisplayRequest

	mu      sync.Mutex
	onClick []func()
	closed  bool
}

func (h *Handle) OnClick(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onClick = append(h.onClick, fn)
}

func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

// Click runs every registered click callback.
func (h *Handle) Click() {
	h.mu.Lock()
	fns := make([]func(), len(h.onClick))
	copy(fns, h.onClick)
	h.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Closed reports whether Close was called.
func (h *Handle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Opener records opened URLs and routes.
type Opener struct {
	mu     sync.Mutex
	urls   []string
	routes []string
}

var _ notify.Opener = (*Opener)(nil)

func (o *Opener) OpenURL(_ context.Context, url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.urls = append(o.urls, url)
	return nil
}

func (o *Opener) Navigate(_ context.Context, route string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.routes = append(o.routes, route)
	return nil
}

// URLs returns every opened URL.
func (o *Opener) URLs() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.urls...)
}

// Routes returns every navigated route.
func (o *Opener) Routes() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.routes...)
}
