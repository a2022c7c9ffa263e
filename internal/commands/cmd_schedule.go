package commands

import (
	"context"
	"errors"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/chime/internal/app"
	"github.com/colonyops/chime/internal/core/notify"
	"github.com/colonyops/chime/internal/printer"
)

type ScheduleCmd struct {
	flags *Flags
	app   *app.App

	// flags
	in     time.Duration
	action string
}

// NewScheduleCmd creates a new schedule command
func NewScheduleCmd(flags *Flags, app *app.App) *ScheduleCmd {
	return &ScheduleCmd{flags: flags, app: app}
}

// Register adds the schedule command to the application
func (cmd *ScheduleCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "schedule",
		Usage:     "Schedule a reminder",
		UsageText: "chime schedule --in DUR [--action A] TITLE [BODY]",
		Description: `Schedules a notification with a generated key, prints the key, and waits
until it fires. Interrupting the command cancels the reminder.`,
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "in", Usage: "delay before the reminder fires", Required: true, Destination: &cmd.in},
			&cli.StringFlag{Name: "action", Usage: "URL or route followed when the toast is clicked", Destination: &cmd.action},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ScheduleCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)
	svc := cmd.app.Service

	title := c.Args().Get(0)
	if title == "" {
		return errors.New("title is required")
	}
	body := c.Args().Get(1)

	if cmd.in <= 0 {
		return errors.New("--in must be positive")
	}

	// The key is generated inside Schedule, so watch every display and match
	// on the returned key.
	delivered := make(chan string, 8)
	svc.OnDisplay(func(rec notify.Record) {
		select {
		case delivered <- rec.Key:
		default:
		}
	})

	key := svc.Schedule(ctx, title, body, cmd.in, cmd.action)
	if !isPending(svc.Scheduler().Pending(), key) {
		p.Successf("%s", key)
		return nil
	}
	p.Infof("%s", key)

	for {
		select {
		case got := <-delivered:
			if got == key {
				p.Successf("%s delivered", key)
				return nil
			}
		case <-ctx.Done():
			svc.Clear(context.WithoutCancel(ctx), key)
			p.Warnf("%s cancelled", key)
			return nil
		}
	}
}
