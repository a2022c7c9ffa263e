package commands

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/chime/internal/app"
	"github.com/colonyops/chime/internal/chime"
	"github.com/colonyops/chime/internal/core/notify"
	"github.com/colonyops/chime/internal/core/scheduler"
	"github.com/colonyops/chime/internal/core/validate"
	"github.com/colonyops/chime/internal/printer"
	"github.com/colonyops/chime/pkg/iojson"
)

type PushCmd struct {
	flags *Flags
	app   *app.App

	// flags
	key        string
	title      string
	subtitle   string
	body       string
	icon       string
	action     string
	timeout    string
	noSave     bool
	at         string
	in         time.Duration
	toastOnly  bool
	bannerOnly bool
	payload    iojson.FileReader[notify.Payload]
}

// NewPushCmd creates a new push command
func NewPushCmd(flags *Flags, app *app.App) *PushCmd {
	return &PushCmd{flags: flags, app: app}
}

// Register adds the push command to the application
func (cmd *PushCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "push",
		Usage:     "Show a notification now or later",
		UsageText: "chime push --title T [--body B] [--key K] [--at TIME | --in DUR] [options]",
		Description: `Displays a desktop toast and saves a banner to history.

A push replaces any pending notification with the same key. When the key is
omitted one is generated. With --at or --in the command waits until the
notification fires; interrupting it cancels the notification.

When toasts are not permitted the banner is still saved to history.

Use --file to read a raw payload ({"toast": {...}, "banner": {...}}) as JSON.`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "key", Aliases: []string{"k"}, Usage: "correlation key", Destination: &cmd.key},
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "notification title", Destination: &cmd.title},
			&cli.StringFlag{Name: "subtitle", Usage: "toast subtitle (macOS only)", Destination: &cmd.subtitle},
			&cli.StringFlag{Name: "body", Aliases: []string{"b"}, Usage: "notification body", Destination: &cmd.body},
			&cli.StringFlag{Name: "icon", Usage: "toast icon name or path", Destination: &cmd.icon},
			&cli.StringFlag{Name: "action", Usage: "URL or route followed when the toast is clicked", Destination: &cmd.action},
			&cli.StringFlag{Name: "timeout", Usage: "how long the toast stays up: default, never or a duration (e.g. 8s)", Destination: &cmd.timeout},
			&cli.BoolFlag{Name: "no-save", Usage: "do not save to history", Destination: &cmd.noSave},
			&cli.StringFlag{Name: "at", Usage: "display time (RFC 3339)", Destination: &cmd.at},
			&cli.DurationFlag{Name: "in", Usage: "display after a delay (e.g. 10m)", Destination: &cmd.in},
			&cli.BoolFlag{Name: "toast-only", Usage: "display without a history banner", Destination: &cmd.toastOnly},
			&cli.BoolFlag{Name: "banner-only", Usage: "save to history without a toast", Destination: &cmd.bannerOnly},
			cmd.payload.Flag(),
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *PushCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)
	svc := cmd.app.Service

	payload, err := cmd.buildPayload()
	if err != nil {
		return err
	}

	fireAt, err := cmd.fireTime(svc.Now())
	if err != nil {
		return err
	}

	key := cmd.key
	if key == "" {
		key = chime.NewKey(svc.Now())
	} else if err := validate.NotificationKeyField("key", key); err != nil {
		return err
	}

	opts := chime.DefaultPushOptions()
	opts.Save = !cmd.noSave
	opts.Time = fireAt

	delivered := awaitDisplay(svc, key)
	svc.Push(ctx, key, payload, opts)

	if !isPending(svc.Scheduler().Pending(), key) {
		p.Successf("%s", key)
		return nil
	}

	p.Infof("%s scheduled for %s", key, time.UnixMilli(*fireAt).Format(time.RFC3339))
	return waitForFire(ctx, p, svc, key, delivered)
}

func (cmd *PushCmd) buildPayload() (notify.Payload, error) {
	if cmd.toastOnly && cmd.bannerOnly {
		return notify.Payload{}, errors.New("--toast-only and --banner-only are mutually exclusive")
	}

	if cmd.payload.Set() {
		payload, err := cmd.payload.Read()
		if err != nil {
			return notify.Payload{}, fmt.Errorf("read payload: %w", err)
		}
		return payload, nil
	}

	if cmd.title == "" {
		return notify.Payload{}, errors.New("--title is required")
	}

	timeout, err := notify.ParseTimeout(cmd.timeout)
	if err != nil {
		return notify.Payload{}, fmt.Errorf("parse --timeout: %w", err)
	}

	var payload notify.Payload
	if !cmd.bannerOnly {
		payload.Toast = &notify.Toast{
			Title:    cmd.title,
			Subtitle: cmd.subtitle,
			Body:     cmd.body,
			Icon:     cmd.icon,
			Action:   cmd.action,
			Timeout:  timeout,
		}
	}
	if !cmd.toastOnly {
		payload.Banner = &notify.Banner{Title: cmd.title, Body: cmd.body, Icon: cmd.icon}
	}
	return payload, nil
}

func (cmd *PushCmd) fireTime(now int64) (*int64, error) {
	if cmd.at != "" && cmd.in != 0 {
		return nil, errors.New("--at and --in are mutually exclusive")
	}

	switch {
	case cmd.at != "":
		t, err := time.Parse(time.RFC3339, cmd.at)
		if err != nil {
			return nil, fmt.Errorf("parse --at: %w", err)
		}
		ms := t.UnixMilli()
		return &ms, nil
	case cmd.in != 0:
		ms := now + cmd.in.Milliseconds()
		return &ms, nil
	}
	return nil, nil
}

// awaitDisplay returns a channel that receives once key reaches the display
// path. It is registered before the push so an inline fire is not missed.
func awaitDisplay(svc *chime.Service, key string) <-chan struct{} {
	ch := make(chan struct{}, 1)
	svc.OnDisplay(func(rec notify.Record) {
		if rec.Key != key {
			return
		}
		select {
		case ch <- struct{}{}:
		default:
		}
	})
	return ch
}

func waitForFire(ctx context.Context, p *printer.Printer, svc *chime.Service, key string, delivered <-chan struct{}) error {
	select {
	case <-delivered:
		p.Successf("%s delivered", key)
		return nil
	case <-ctx.Done():
		svc.Clear(context.WithoutCancel(ctx), key)
		p.Warnf("%s cancelled", key)
		return nil
	}
}

func isPending(entries []scheduler.Entry, key string) bool {
	return slices.ContainsFunc(entries, func(e scheduler.Entry) bool { return e.Key == key })
}
