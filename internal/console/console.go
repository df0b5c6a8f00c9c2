// Package console writes the sweep's user-facing text, optionally colored.
package console

import (
	"fmt"
	"io"
	"os"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-isatty"

	"logsweep/internal/config"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Cyan)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Green)
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Yellow)
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Red)
)

// Console prints plain lines, styling them when enabled.
// Styling never changes the text itself.
type Console struct {
	w     io.Writer
	color bool
}

// New creates a Console on w. mode is one of config.ColorAuto, ColorAlways
// or ColorNever; auto enables color only when w is a terminal.
func New(w io.Writer, mode string) *Console {
	return &Console{w: w, color: useColor(w, mode)}
}

func useColor(w io.Writer, mode string) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (c *Console) paint(style lipgloss.Style, s string) string {
	if !c.color {
		return s
	}
	return style.Render(s)
}

func (c *Console) Println(s string) {
	fmt.Fprintln(c.w, s)
}

// Heading prints a bold line
func (c *Console) Heading(s string) {
	fmt.Fprintln(c.w, c.paint(headingStyle, s))
}

// Info prints a cyan line
func (c *Console) Info(s string) {
	fmt.Fprintln(c.w, c.paint(infoStyle, s))
}

// Success prints a green line
func (c *Console) Success(s string) {
	fmt.Fprintln(c.w, c.paint(successStyle, s))
}

// Notice prints a yellow line
func (c *Console) Notice(s string) {
	fmt.Fprintln(c.w, c.paint(noticeStyle, s))
}

// Failure prints a red line
func (c *Console) Failure(s string) {
	fmt.Fprintln(c.w, c.paint(failureStyle, s))
}

// Prompt prints s without a trailing newline
func (c *Console) Prompt(s string) {
	fmt.Fprint(c.w, c.paint(headingStyle, s))
}
