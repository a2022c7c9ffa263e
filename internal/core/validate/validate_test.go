package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid key", "build-42", false},
		{"valid with slash", "build/main", false},
		{"valid with spaces", "daily stand up", false},
		{"empty string", "", true},
		{"only spaces", "   ", true},
		{"newline", "a\nb", true},
		{"too long", strings.Repeat("k", MaxKeyLength+1), true},
		{"at limit", strings.Repeat("k", MaxKeyLength), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NotificationKey(tt.input)
			assert.Equal(t, tt.wantErr, err != nil, "NotificationKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		})
	}
}

func TestNotificationKeyField(t *testing.T) {
	require.NoError(t, NotificationKeyField("key", "ok"))

	err := NotificationKeyField("key", " ")
	assert.ErrorContains(t, err, "key is required")
}
