package commands

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/chime/internal/app"
	"github.com/colonyops/chime/internal/chime"
	"github.com/colonyops/chime/internal/core/logging"
	"github.com/colonyops/chime/internal/tui"
)

type TuiCmd struct {
	flags *Flags
	app   *app.App
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags, app *app.App) *TuiCmd {
	return &TuiCmd{
		flags: flags,
		app:   app,
	}
}

// Register adds the tui command to the application
func (cmd *TuiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "tui",
		Usage:       "Open the interactive history view",
		UsageText:   "chime tui",
		Description: "Shows saved notifications, the unread badge, and pending reminders. Reminders created here fire while the view is open.",
		Action:      cmd.run,
	})

	return app
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, _ *cli.Command) error {
	log := logging.Component("tui")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	binding := chime.NewBinding(ctx, cmd.app.Service, chime.BindingOptions{Window: cmd.flags.Config.History.Window})

	model := tui.New(tui.Options{
		Service: cmd.app.Service,
		Binding: binding,
		Changes: cmd.app.Changes(ctx),
	})
	cmd.app.Opener.OnRoute(model.Route)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		log.Error().Err(err).Msg("tui exited with error")
		return fmt.Errorf("run tui: %w", err)
	}

	return nil
}
