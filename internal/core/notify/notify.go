// Package notify defines the notification domain types and the platform
// capabilities the notification core depends on.
package notify

// Toast is the ephemeral, platform-displayed form of a notification.
// Empty Icon and Action mean "not set". Subtitle is only shown on macOS and
// Timeout only honored by freedesktop servers.
type Toast struct {
	Title    string  `json:"title"`
	Subtitle string  `json:"subtitle,omitempty"`
	Body     string  `json:"body"`
	Icon     string  `json:"icon,omitempty"`
	Action   string  `json:"action,omitempty"`
	Timeout  Timeout `json:"timeout,omitempty"`
}

// Banner is the durable form of a notification retained in history.
type Banner struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon,omitempty"`
}

// Payload carries the optional toast and banner facets of a notification.
// A payload without a Banner never occupies a history slot.
type Payload struct {
	Toast  *Toast  `json:"toast,omitempty"`
	Banner *Banner `json:"banner,omitempty"`
}

// Empty reports whether neither facet is set.
func (p Payload) Empty() bool {
	return p.Toast == nil && p.Banner == nil
}

// Record is a single persisted history entry. Key is a correlation id and is
// not unique across records. Time is wall-clock Unix milliseconds.
type Record struct {
	Key  string  `json:"key"`
	Data Payload `json:"data"`
	Time int64   `json:"time"`
}
