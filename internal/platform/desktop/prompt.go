package desktop

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// ErrNoTerminal is returned by a Prompter that cannot reach the user.
var ErrNoTerminal = errors.New("desktop: stdin is not a terminal")

// Prompter asks the user a yes/no question.
type Prompter interface {
	Confirm(ctx context.Context, title, description string) (bool, error)
}

// TerminalPrompter shows a huh confirm when In is a terminal.
type TerminalPrompter struct {
	In  *os.File
	Out *os.File
}

// NewTerminalPrompter prompts on stdin and stderr.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{In: os.Stdin, Out: os.Stderr}
}

func (t *TerminalPrompter) Confirm(ctx context.Context, title, description string) (bool, error) {
	if t.In == nil || !term.IsTerminal(int(t.In.Fd())) {
		return false, ErrNoTerminal
	}

	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Allow").
				Negative("Deny").
				Value(&ok),
		),
	).WithInput(t.In).WithOutput(t.Out)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}

	return ok, nil
}
