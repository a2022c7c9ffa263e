package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/chime/internal/app"
	"github.com/colonyops/chime/internal/chime"
	"github.com/colonyops/chime/internal/printer"
	"github.com/colonyops/chime/pkg/iojson"
)

type UnreadCmd struct {
	flags *Flags
	app   *app.App

	// flags
	jsonOutput bool
}

// NewUnreadCmd creates a new unread command
func NewUnreadCmd(flags *Flags, app *app.App) *UnreadCmd {
	return &UnreadCmd{flags: flags, app: app}
}

// Register adds the unread command to the application
func (cmd *UnreadCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "unread",
		Usage:       "Print the unread count",
		UsageText:   "chime unread [--json]",
		Description: "Prints how many saved notifications arrived after the last mark-as-read.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "output as JSON", Destination: &cmd.jsonOutput},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *UnreadCmd) run(ctx context.Context, c *cli.Command) error {
	snap := chime.NewBinding(ctx, cmd.app.Service, chime.BindingOptions{Window: cmd.flags.Config.History.Window}).Snapshot()

	if cmd.jsonOutput {
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, struct {
			Unread   int   `json:"unread"`
			LastRead int64 `json:"last_read"`
		}{snap.UnreadCount, snap.LastReadTimestamp})
	}

	printer.New(c.Root().Writer).Printf("%d", snap.UnreadCount)
	return nil
}

type ReadCmd struct {
	flags *Flags
	app   *app.App
}

// NewReadCmd creates a new read command
func NewReadCmd(flags *Flags, app *app.App) *ReadCmd {
	return &ReadCmd{flags: flags, app: app}
}

// Register adds the read command to the application
func (cmd *ReadCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "read",
		Usage:       "Mark all notifications as read",
		UsageText:   "chime read",
		Description: "Moves the read cursor to now. The cursor never moves backwards.",
		Action:      cmd.run,
	})

	return app
}

func (cmd *ReadCmd) run(ctx context.Context, _ *cli.Command) error {
	binding := chime.NewBinding(ctx, cmd.app.Service, chime.BindingOptions{Window: cmd.flags.Config.History.Window})
	before := binding.Snapshot().UnreadCount

	binding.MarkAsRead(ctx)

	printer.Ctx(ctx).Successf("marked %d as read", before)
	return nil
}
