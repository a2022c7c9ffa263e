package logging

import "context"

type contextKey string

const (
	notificationKeyKey contextKey = "notification_key"
	bindingIDKey       contextKey = "binding_id"
)

// WithNotificationKey adds a notification correlation key to the context.
func WithNotificationKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, notificationKeyKey, key)
}

// WithBindingID adds a presentation binding ID to the context.
func WithBindingID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, bindingIDKey, id)
}

// GetNotificationKey retrieves the notification key from the context.
// Returns empty string if not present.
func GetNotificationKey(ctx context.Context) string {
	if key, ok := ctx.Value(notificationKeyKey).(string); ok {
		return key
	}
	return ""
}

// GetBindingID retrieves the binding ID from the context.
// Returns empty string if not present.
func GetBindingID(ctx context.Context) string {
	if id, ok := ctx.Value(bindingIDKey).(string); ok {
		return id
	}
	return ""
}
