// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/hay-kot/criterio"
)

// MaxKeyLength bounds notification keys. Keys double as desktop stack tags.
const MaxKeyLength = 256

// NotificationKey validates a caller supplied notification key.
func NotificationKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("key is required")
	}
	if len(key) > MaxKeyLength {
		return fmt.Errorf("key is longer than %d bytes", MaxKeyLength)
	}
	if strings.IndexFunc(key, unicode.IsControl) >= 0 {
		return fmt.Errorf("key contains control characters")
	}
	return nil
}

// NotificationKeyField returns a criterio validator for notification keys.
func NotificationKeyField(field, key string) error {
	return criterio.Run(field, key, NotificationKey)
}
