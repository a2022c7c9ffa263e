package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/chime/internal/app"
	"github.com/colonyops/chime/internal/chime"
	"github.com/colonyops/chime/internal/core/config"
	"github.com/colonyops/chime/internal/core/notify"
	"github.com/colonyops/chime/internal/core/styles"
	"github.com/colonyops/chime/pkg/iojson"
	"github.com/colonyops/chime/pkg/tmpl"
)

type HistoryCmd struct {
	flags *Flags
	app   *app.App

	// flags
	since      time.Duration
	jsonOutput bool
	jsonLines  bool
	markdown   bool
	format     string
}

// historyEntry is the JSON form of a history record.
type historyEntry struct {
	notify.Record
	Unread bool `json:"unread"`
}

// NewHistoryCmd creates a new history command
func NewHistoryCmd(flags *Flags, app *app.App) *HistoryCmd {
	return &HistoryCmd{flags: flags, app: app}
}

// Register adds the history command to the application
func (cmd *HistoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "history",
		Usage:     "List saved notifications",
		UsageText: "chime history [--since DUR] [--json | --jsonl | --markdown | --format TMPL]",
		Description: `Lists saved banners, newest first. Unread entries are marked.

--since defaults to history.window from the config. --format takes a Go
template rendered once per entry with .Key .Title .Body .Icon .Action .Time
and .Unread, and falls back to history.format from the config.`,
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "since", Usage: "only show entries newer than this", Destination: &cmd.since},
			&cli.BoolFlag{Name: "json", Usage: "output as JSON", Destination: &cmd.jsonOutput},
			&cli.BoolFlag{Name: "jsonl", Usage: "output one JSON object per line", Destination: &cmd.jsonLines},
			&cli.BoolFlag{Name: "markdown", Usage: "render bodies as markdown", Destination: &cmd.markdown},
			&cli.StringFlag{Name: "format", Usage: "Go template for each entry", Destination: &cmd.format},
		},
		Action: cmd.run,
	})

	return app
}

func historyEntries(snap chime.Snapshot) []historyEntry {
	entries := make([]historyEntry, 0, len(snap.History))
	for _, r := range snap.History {
		entries = append(entries, historyEntry{Record: r, Unread: r.Time > snap.LastReadTimestamp})
	}
	return entries
}

func (cmd *HistoryCmd) run(ctx context.Context, c *cli.Command) error {
	window := cmd.since
	if window <= 0 {
		window = cmd.flags.Config.History.Window
	}

	binding := chime.NewBinding(ctx, cmd.app.Service, chime.BindingOptions{Window: window})
	snap := binding.Snapshot()

	w := c.Root().Writer

	switch {
	case cmd.jsonOutput:
		return iojson.WriteWith(w, c.Root().ErrWriter, historyEntries(snap))

	case cmd.jsonLines:
		return iojson.WriteLines(w, c.Root().ErrWriter, historyEntries(snap))

	case cmd.markdown:
		return writeMarkdown(w, snap)
	}

	format := cmd.format
	if format == "" {
		format = cmd.flags.Config.History.Format
	}
	if format != "" {
		return writeFormatted(w, format, snap)
	}

	return writeTable(w, snap, binding.Since())
}

func lineData(r notify.Record, cursor int64) config.HistoryLineData {
	d := config.HistoryLineData{Key: r.Key, Time: r.Time, Unread: r.Time > cursor}
	if b := r.Data.Banner; b != nil {
		d.Title, d.Body, d.Icon = b.Title, b.Body, b.Icon
	}
	if t := r.Data.Toast; t != nil {
		d.Action = t.Action
	}
	return d
}

func writeFormatted(w io.Writer, format string, snap chime.Snapshot) error {
	for _, r := range snap.History {
		line, err := tmpl.Render(format, lineData(r, snap.LastReadTimestamp))
		if err != nil {
			return fmt.Errorf("render history format: %w", err)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func writeTable(w io.Writer, snap chime.Snapshot, since int64) error {
	if len(snap.History) == 0 {
		msg := "No notifications since " + time.UnixMilli(since).Format("2006-01-02 15:04")
		_, err := fmt.Fprintln(w, styles.MutedStyle.Render(msg))
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range snap.History {
		d := lineData(r, snap.LastReadTimestamp)

		mark := styles.MutedStyle.Render(styles.IconRead)
		if d.Unread {
			mark = styles.UnreadStyle.Render(styles.IconUnread)
		}

		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			mark,
			styles.TimeStyle.Render(time.UnixMilli(d.Time).Format("2006-01-02 15:04")),
			styles.KeyStyle.Render(d.Key),
			d.Title,
			styles.BodyStyle.Render(strings.Join(strings.Fields(d.Body), " ")),
		)
	}
	return tw.Flush()
}

func writeMarkdown(w io.Writer, snap chime.Snapshot) error {
	var doc strings.Builder
	for _, r := range snap.History {
		d := lineData(r, snap.LastReadTimestamp)

		title := d.Title
		if d.Unread {
			title += " " + styles.IconUnread
		}
		fmt.Fprintf(&doc, "## %s\n\n_%s · %s_\n\n%s\n\n", title,
			time.UnixMilli(d.Time).Format("2006-01-02 15:04"), d.Key, d.Body)
	}
	if doc.Len() == 0 {
		doc.WriteString("_No notifications_\n")
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(styles.CurrentPalette.Glamour),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("create markdown renderer: %w", err)
	}

	rendered, err := r.Render(doc.String())
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}

	_, err = io.WriteString(w, rendered)
	return err
}
