package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/chime/internal/core/notify"
	"github.com/colonyops/chime/internal/core/styles"
)

// HistoryItem wraps a history record for the list component.
type HistoryItem struct {
	Record notify.Record
	Unread bool
}

func (i HistoryItem) title() string {
	if b := i.Record.Data.Banner; b != nil {
		return b.Title
	}
	return i.Record.Key
}

func (i HistoryItem) body() string {
	if b := i.Record.Data.Banner; b != nil {
		return b.Body
	}
	return ""
}

// FilterValue returns the value used for filtering.
func (i HistoryItem) FilterValue() string {
	return fmt.Sprintf("%s %s %s", i.Record.Key, i.title(), i.body())
}

// HistoryDelegate renders history records.
type HistoryDelegate struct{}

// Height returns the height of each item.
func (d HistoryDelegate) Height() int {
	return 2
}

// Spacing returns the spacing between items.
func (d HistoryDelegate) Spacing() int {
	return 1
}

// Update handles item updates.
func (d HistoryDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render renders a single history item.
// Line 1: ● Title • key • 15:04:05
// Line 2: Body (truncated to fit)
func (d HistoryDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	hi, ok := item.(HistoryItem)
	if !ok {
		return
	}

	isSelected := index == m.Index()
	width := m.Width()
	if width <= 0 {
		width = 80
	}
	contentWidth := width - 4

	var titleStyle lipgloss.Style
	if isSelected {
		titleStyle = styles.SelectedStyle
	} else {
		titleStyle = styles.NormalStyle
	}

	mark := styles.MutedStyle.Render(styles.IconRead)
	if hi.Unread {
		mark = styles.UnreadStyle.Render(styles.IconUnread)
	}

	line1 := fmt.Sprintf("%s %s %s %s %s %s",
		mark,
		titleStyle.Render(hi.title()),
		styles.IconDot,
		styles.KeyStyle.Render(hi.Record.Key),
		styles.IconDot,
		styles.TimeStyle.Render(time.UnixMilli(hi.Record.Time).Format("Jan 02 15:04:05")),
	)

	body := strings.Join(strings.Fields(hi.body()), " ")
	bodyRunes := []rune(body)
	if contentWidth > 3 && len(bodyRunes) > contentWidth {
		body = string(bodyRunes[:contentWidth-3]) + "..."
	}
	line2 := styles.BodyStyle.Render(body)

	var border string
	if isSelected {
		border = styles.SelectedBorderStyle.Render("┃") + " "
	} else {
		border = "  "
	}

	_, _ = fmt.Fprintf(w, "%s%s\n", border, line1)
	_, _ = fmt.Fprintf(w, "%s  %s", border, line2)
}

func historyItems(records []notify.Record, cursor int64) []list.Item {
	items := make([]list.Item, 0, len(records))
	for _, r := range records {
		items = append(items, HistoryItem{Record: r, Unread: r.Time > cursor})
	}
	return items
}
