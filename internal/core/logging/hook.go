package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook extracts notification_key and binding_id from context and adds them to log events.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if key := GetNotificationKey(ctx); key != "" {
		e.Str("notification_key", key)
	}

	if id := GetBindingID(ctx); id != "" {
		e.Str("binding_id", id)
	}
}
