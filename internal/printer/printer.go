// Package printer writes styled, human-oriented command output.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7aa2f7"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0af68"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f7768e")).Bold(true)
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89"))
)

// Printer writes status lines to out and errors to errOut.
type Printer struct {
	out    io.Writer
	errOut io.Writer
}

func New(out, errOut io.Writer) *Printer {
	return &Printer{out: out, errOut: errOut}
}

type ctxKey struct{}

// NewContext returns a context carrying p.
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the Printer stored in ctx, or one writing to stdout and stderr.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stdout, os.Stderr)
}

// Writer returns the standard output writer.
func (p *Printer) Writer() io.Writer {
	return p.out
}

func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *Printer) Successf(format string, args ...any) {
	_, _ = fmt.Fprintln(p.out, successStyle.Render("✔")+" "+fmt.Sprintf(format, args...))
}

// Success prints a success title with a muted detail line.
func (p *Printer) Success(title, detail string) {
	p.Successf("%s", title)
	if detail != "" {
		_, _ = fmt.Fprintln(p.out, "  "+mutedStyle.Render(detail))
	}
}

func (p *Printer) Infof(format string, args ...any) {
	_, _ = fmt.Fprintln(p.out, infoStyle.Render("•")+" "+fmt.Sprintf(format, args...))
}

func (p *Printer) Warnf(format string, args ...any) {
	_, _ = fmt.Fprintln(p.errOut, warnStyle.Render("!")+" "+fmt.Sprintf(format, args...))
}

func (p *Printer) Errorf(format string, args ...any) {
	_, _ = fmt.Fprintln(p.errOut, errorStyle.Render("✘")+" "+fmt.Sprintf(format, args...))
}

// Section prints a heading.
func (p *Printer) Section(title string) {
	_, _ = fmt.Fprintln(p.out, sectionStyle.Render(title))
}
