// Package tui is the interactive notification history view.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/colonyops/chime/internal/chime"
	"github.com/colonyops/chime/internal/core/logging"
	"github.com/colonyops/chime/internal/core/scheduler"
	"github.com/colonyops/chime/internal/core/styles"
)

const (
	tickInterval = time.Second
	eventBuffer  = 64
)

// refreshedMsg reports that the binding published a new snapshot.
type refreshedMsg struct{}

// routeMsg carries an in-app route from a clicked toast.
type routeMsg struct{ route string }

// changedMsg reports a write made by another process.
type changedMsg struct{}

// tickMsg refreshes pending countdowns.
type tickMsg time.Time

// Options configures a Model.
type Options struct {
	Service *chime.Service
	Binding *chime.Binding
	// Changes reports external store writes. Nil disables cross process refresh.
	Changes <-chan struct{}
}

// Model is the bubbletea model for the history view.
type Model struct {
	svc     *chime.Service
	binding *chime.Binding
	changes <-chan struct{}
	events  chan tea.Msg

	keys  KeyMap
	list  list.Model
	input textinput.Model
	help  help.Model

	snap      chime.Snapshot
	pending   []scheduler.Entry
	route     string
	status    string
	err       error
	inputting bool
	width     int
	height    int

	log zerolog.Logger
}

// New creates the model and subscribes it to the binding.
func New(opts Options) *Model {
	l := list.New(nil, HistoryDelegate{}, 80, 20)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	in := textinput.New()
	in.Placeholder = "10m stand up"
	in.Prompt = styles.IconClock + " "

	m := &Model{
		svc:     opts.Service,
		binding: opts.Binding,
		changes: opts.Changes,
		events:  make(chan tea.Msg, eventBuffer),
		keys:    DefaultKeyMap(),
		list:    l,
		input:   in,
		help:    help.New(),
		log:     logging.Component("tui"),
	}

	m.binding.Subscribe(func(chime.Snapshot) { m.send(refreshedMsg{}) })
	m.applySnapshot(m.binding.Snapshot())
	m.pending = m.svc.Scheduler().Pending()

	return m
}

// Route shows route in the view. Wire it to the opener's route handler.
func (m *Model) Route(route string) {
	m.send(routeMsg{route: route})
}

// send never blocks. Refreshes always re-read the binding, so a dropped
// event is covered by a later one.
func (m *Model) send(msg tea.Msg) {
	select {
	case m.events <- msg:
	default:
	}
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForEvent(), tick()}
	if m.changes != nil {
		cmds = append(cmds, m.waitForChange())
	}
	return tea.Batch(cmds...)
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-m.changes; !ok {
			return nil
		}
		return changedMsg{}
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case refreshedMsg:
		m.applySnapshot(m.binding.Snapshot())
		m.pending = m.svc.Scheduler().Pending()
		return m, m.waitForEvent()

	case routeMsg:
		m.route = msg.route
		return m, m.waitForEvent()

	case changedMsg:
		m.log.Debug().Str("binding", m.binding.ID()).Msg("store changed externally")
		binding := m.binding
		return m, tea.Batch(
			func() tea.Msg {
				binding.Refresh(context.Background())
				return nil
			},
			m.waitForChange(),
		)

	case tickMsg:
		m.pending = m.svc.Scheduler().Pending()
		return m, tick()

	case tea.KeyMsg:
		if m.inputting {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := context.Background()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.MarkRead):
		m.binding.MarkAsRead(ctx)
		m.status = "marked all as read"
		m.err = nil
		return m, nil

	case key.Matches(msg, m.keys.New):
		m.inputting = true
		m.input.SetValue("")
		m.resize()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Clear):
		keys, err := m.binding.ClearMatching(ctx, "*")
		if err != nil {
			m.err = err
			return m, nil
		}
		m.pending = m.svc.Scheduler().Pending()
		m.status = fmt.Sprintf("cleared %d pending", len(keys))
		m.err = nil
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.binding.Refresh(ctx)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closeInput()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		delay, title, err := parseReminder(m.input.Value())
		if err != nil {
			m.err = err
			return m, nil
		}
		k := m.binding.Schedule(context.Background(), title, "", delay, "")
		m.pending = m.svc.Scheduler().Pending()
		m.status = "scheduled " + k
		m.err = nil
		m.closeInput()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closeInput() {
	m.inputting = false
	m.input.Blur()
	m.resize()
}

// parseReminder splits "<duration> <title>".
func parseReminder(s string) (time.Duration, string, error) {
	d, title, _ := strings.Cut(strings.TrimSpace(s), " ")
	delay, err := time.ParseDuration(d)
	if err != nil {
		return 0, "", fmt.Errorf("reminder must start with a duration: %w", err)
	}
	if delay <= 0 {
		return 0, "", errors.New("reminder delay must be positive")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return 0, "", errors.New("reminder needs a title")
	}
	return delay, title, nil
}

func (m *Model) applySnapshot(snap chime.Snapshot) {
	m.snap = snap
	m.list.SetItems(historyItems(snap.History, snap.LastReadTimestamp))
}

// resize gives the list whatever height the header, pending and footer leave.
func (m *Model) resize() {
	if m.width == 0 {
		return
	}
	reserved := 6 + len(m.pending)
	if m.inputting {
		reserved++
	}
	m.list.SetSize(m.width, max(m.height-reserved, 3))
	m.help.Width = m.width
}

func (m *Model) View() string {
	var b strings.Builder

	header := styles.TitleStyle.Render(styles.IconBell + " chime")
	if m.snap.UnreadCount > 0 {
		header += " " + styles.BadgeStyle.Render(fmt.Sprintf("%d unread", m.snap.UnreadCount))
	}
	b.WriteString(header + "\n\n")

	if len(m.snap.History) == 0 {
		b.WriteString(styles.MutedStyle.Render("  No notifications") + "\n")
	} else {
		b.WriteString(m.list.View() + "\n")
	}

	if len(m.pending) > 0 {
		b.WriteString("\n")
		now := m.svc.Now()
		for _, e := range m.pending {
			title := e.Key
			if e.Payload.Toast != nil {
				title = e.Payload.Toast.Title
			} else if e.Payload.Banner != nil {
				title = e.Payload.Banner.Title
			}
			in := time.Duration(e.FireTime-now) * time.Millisecond
			b.WriteString(styles.PendingStyle.Render(fmt.Sprintf("  %s %s %s in %s", styles.IconClock, title, styles.IconDot, in.Truncate(time.Second))) + "\n")
		}
	}

	if m.route != "" {
		b.WriteString(styles.RouteStyle.Render(fmt.Sprintf("  %s %s", styles.IconLink, m.route)) + "\n")
	}

	switch {
	case m.err != nil:
		b.WriteString(styles.ErrorStyle.Render("  "+m.err.Error()) + "\n")
	case m.status != "":
		b.WriteString(styles.MutedStyle.Render("  "+m.status) + "\n")
	}

	if m.inputting {
		b.WriteString(m.input.View() + "\n")
	}

	b.WriteString(styles.HelpStyle.Render(m.help.View(m.keys)))

	return lipgloss.NewStyle().Padding(0, 1).Render(b.String())
}
