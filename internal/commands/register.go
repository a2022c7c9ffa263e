package commands

import (
	"github.com/urfave/cli/v3"

	"github.com/colonyops/chime/internal/app"
)

// Register adds every chime subcommand to root. The App is populated later by
// the root Before hook, so commands hold the pointer, not its fields.
func Register(root *cli.Command, flags *Flags, a *app.App) *TuiCmd {
	tuiCmd := NewTuiCmd(flags, a)

	root = NewPushCmd(flags, a).Register(root)
	root = NewScheduleCmd(flags, a).Register(root)
	root = NewHistoryCmd(flags, a).Register(root)
	root = NewUnreadCmd(flags, a).Register(root)
	root = NewReadCmd(flags, a).Register(root)
	root = tuiCmd.Register(root)
	_ = NewConfigValidateCmd(flags).Register(root)

	return tuiCmd
}
