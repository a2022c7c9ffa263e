package notify

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// Timeout is how long a toast stays on screen, in milliseconds. The zero
// value leaves the choice to the notification server.
type Timeout int64

const (
	TimeoutDefault Timeout = 0
	// TimeoutNever keeps the toast up until the user dismisses it.
	TimeoutNever Timeout = -1
)

// TimeoutAfter converts d to a Timeout. A zero or negative d never expires;
// a d too large for the notification servers falls back to the default.
func TimeoutAfter(d time.Duration) Timeout {
	if d <= 0 {
		return TimeoutNever
	}

	ms := (d + time.Millisecond - 1).Milliseconds()
	if ms > math.MaxInt32 {
		return TimeoutDefault
	}
	return Timeout(ms)
}

// ParseTimeout accepts "default", "never" or a Go duration such as "8s".
// The empty string is the default.
func ParseTimeout(s string) (Timeout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return TimeoutDefault, nil
	case "never":
		return TimeoutNever, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return TimeoutDefault, fmt.Errorf("invalid timeout %q: want default, never or a duration", s)
	}
	return TimeoutAfter(d), nil
}

// ExpireMillis is the value notify-send and freedesktop servers expect:
// -1 for the server default, 0 for never, otherwise milliseconds.
func (t Timeout) ExpireMillis() int64 {
	switch {
	case t == TimeoutDefault:
		return -1
	case t < 0:
		return 0
	default:
		return int64(t)
	}
}

func (t Timeout) String() string {
	switch {
	case t == TimeoutDefault:
		return "default"
	case t < 0:
		return "never"
	default:
		return (time.Duration(t) * time.Millisecond).String()
	}
}

// MarshalJSON writes the String form so stored payloads stay readable.
func (t Timeout) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts the String form, or a positive number of milliseconds.
func (t *Timeout) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := ParseTimeout(s)
		if err != nil {
			return err
		}
		*t = v
		return nil
	}

	var ms int64
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("invalid timeout %s", data)
	}
	if ms < 0 {
		return fmt.Errorf("invalid timeout %d: milliseconds must not be negative", ms)
	}
	*t = Timeout(ms)
	return nil
}
