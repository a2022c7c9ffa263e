package desktop

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/colonyops/chime/internal/core/logging"
	"github.com/colonyops/chime/internal/core/notify"
	"github.com/colonyops/chime/pkg/executil"
)

// Opener opens URLs with the desktop's default handler and forwards in-app
// routes to OnRoute.
type Opener struct {
	exec    executil.Executor
	goos    string
	onRoute func(route string)
	log     zerolog.Logger
}

var _ notify.Opener = (*Opener)(nil)

// NewOpener creates an opener. goos may be empty to use runtime.GOOS.
func NewOpener(exec executil.Executor, goos string) *Opener {
	if goos == "" {
		goos = runtime.GOOS
	}
	return &Opener{exec: exec, goos: goos, log: logging.Component("opener")}
}

// OnRoute sets the handler for in-app routes.
func (o *Opener) OnRoute(fn func(route string)) {
	o.onRoute = fn
}

func (o *Opener) OpenURL(ctx context.Context, url string) error {
	cmd := "xdg-open"
	if o.goos == "darwin" {
		cmd = "open"
	}

	if _, err := o.exec.Run(ctx, cmd, url); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}

func (o *Opener) Navigate(ctx context.Context, route string) error {
	o.log.Info().Ctx(ctx).Str("route", route).Msg("navigate")
	if o.onRoute != nil {
		o.onRoute(route)
	}
	return nil
}
