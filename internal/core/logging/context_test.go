package logging

import (
	"context"
	"testing"
)

func TestWithNotificationKey(t *testing.T) {
	ctx := WithNotificationKey(context.Background(), "reminder-1")

	if got := GetNotificationKey(ctx); got != "reminder-1" {
		t.Errorf("GetNotificationKey() = %q, want %q", got, "reminder-1")
	}
}

func TestWithBindingID(t *testing.T) {
	ctx := WithBindingID(context.Background(), "binding-9")

	if got := GetBindingID(ctx); got != "binding-9" {
		t.Errorf("GetBindingID() = %q, want %q", got, "binding-9")
	}
}

func TestGetNotificationKey_NotPresent(t *testing.T) {
	if got := GetNotificationKey(context.Background()); got != "" {
		t.Errorf("GetNotificationKey() = %q, want empty string", got)
	}
}

func TestGetBindingID_NotPresent(t *testing.T) {
	if got := GetBindingID(context.Background()); got != "" {
		t.Errorf("GetBindingID() = %q, want empty string", got)
	}
}
