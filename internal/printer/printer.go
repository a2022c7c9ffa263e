// Package printer writes styled, human oriented command output.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/chime/internal/core/styles"
)

type ctxKey struct{}

// Printer prefixes lines with a styled status icon.
type Printer struct {
	w io.Writer
}

// New returns a printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// WithCtx stores p in ctx.
func WithCtx(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the printer stored in ctx, or one writing to stdout.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stdout)
}

func (p *Printer) Writer() io.Writer { return p.w }

func (p *Printer) Successf(format string, args ...any) {
	p.line(styles.SuccessStyle, styles.IconSuccess, format, args...)
}

func (p *Printer) Infof(format string, args ...any) {
	p.line(styles.InfoStyle, styles.IconInfo, format, args...)
}

func (p *Printer) Warnf(format string, args ...any) {
	p.line(styles.WarnStyle, styles.IconWarn, format, args...)
}

func (p *Printer) Errorf(format string, args ...any) {
	p.line(styles.ErrorStyle, styles.IconError, format, args...)
}

// Printf writes an unstyled line.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *Printer) line(style lipgloss.Style, icon, format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, "%s %s\n", style.Render(icon), fmt.Sprintf(format, args...))
}
