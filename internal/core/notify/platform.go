package notify

import "context"

// Permission is the platform's authorization state for displaying toasts.
type Permission string

const (
	PermissionGranted      Permission = "granted"
	PermissionDenied       Permission = "denied"
	PermissionUndetermined Permission = "undetermined"
)

// ParsePermission maps a stored or configured value to a Permission.
// Anything unrecognized is undetermined.
func ParsePermission(s string) Permission {
	switch Permission(s) {
	case PermissionGranted:
		return PermissionGranted
	case PermissionDenied:
		return PermissionDenied
	default:
		return PermissionUndetermined
	}
}

// DisplayRequest is what the platform needs to render a toast.
type DisplayRequest struct {
	Title              string
	Subtitle           string
	Body               string
	Icon               string
	Tag                string
	RequireInteraction bool
	Timeout            Timeout
}

// Handle refers to a toast the platform is currently showing.
type Handle interface {
	// OnClick registers fn to run when the user activates the toast.
	OnClick(fn func())
	// Close dismisses the toast. Closing an already closed toast is a no-op.
	Close() error
}

// Platform is the permission-gated alert capability.
type Platform interface {
	Supported() bool
	PermissionState(ctx context.Context) Permission
	// RequestPermission prompts the user. It returns either granted or denied.
	RequestPermission(ctx context.Context) (Permission, error)
	Display(ctx context.Context, req DisplayRequest) (Handle, error)
}

// Opener handles toast actions once the user clicks a toast.
type Opener interface {
	// OpenURL opens an absolute URL in a new context (browser, default app).
	OpenURL(ctx context.Context, url string) error
	// Navigate handles an in-app route fragment.
	Navigate(ctx context.Context, route string) error
}
