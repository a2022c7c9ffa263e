// Package permission decides whether the platform may display toasts.
package permission

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/colonyops/chime/internal/core/logging"
	"github.com/colonyops/chime/internal/core/notify"
)

// Gate asks the platform for authorization. It caches nothing: every call
// reflects the live platform state.
type Gate struct {
	platform notify.Platform
	log      zerolog.Logger
}

// NewGate creates a gate over the given platform.
func NewGate(platform notify.Platform) *Gate {
	return &Gate{
		platform: platform,
		log:      logging.Component("permission"),
	}
}

// EnsureAuthorized reports whether toasts may be displayed. An unsupported
// platform or a prior denial returns false without prompting. An
// undetermined state prompts exactly once.
func (g *Gate) EnsureAuthorized(ctx context.Context) bool {
	if g.platform == nil || !g.platform.Supported() {
		return false
	}

	switch g.platform.PermissionState(ctx) {
	case notify.PermissionGranted:
		return true
	case notify.PermissionDenied:
		return false
	}

	result, err := g.platform.RequestPermission(ctx)
	if err != nil {
		g.log.Warn().Ctx(ctx).Err(err).Msg("permission request failed")
		return false
	}

	g.log.Debug().Ctx(ctx).Str("result", string(result)).Msg("permission prompt answered")
	return result == notify.PermissionGranted
}
