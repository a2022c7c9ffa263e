package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the history view key bindings.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	MarkRead key.Binding
	New      key.Binding
	Clear    key.Binding
	Refresh  key.Binding
	Quit     key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		MarkRead: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "mark read")),
		New:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new reminder")),
		Clear:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear pending")),
		Refresh:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "refresh")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Confirm:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "schedule")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.MarkRead, k.New, k.Clear, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Refresh, k.Confirm, k.Cancel}}
}
