// Package output formats command output for the terminal.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ColorMode selects when output is colored.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode parses auto, always or never.
func ParseColorMode(s string) (ColorMode, error) {
	switch mode := ColorMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case ColorAuto, ColorAlways, ColorNever:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown color mode %q, expected auto, always or never", s)
	}
}

// ColorProfile picks the color profile for w. In auto mode, colors are used
// only when w is a terminal and NO_COLOR is not set.
// NO_COLOR follows https://no-color.org/.
func ColorProfile(mode ColorMode, w io.Writer) termenv.Profile {
	switch mode {
	case ColorNever:
		return termenv.Ascii
	case ColorAlways:
		return termenv.ANSI
	}

	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.NewOutput(w).EnvColorProfile()
}

// Writer prints styled lines. Errors from writing are ignored, as for any
// console output.
type Writer struct {
	out  io.Writer
	term *termenv.Output

	query   lipgloss.Style
	path    lipgloss.Style
	warning lipgloss.Style
	err     lipgloss.Style
	faint   lipgloss.Style
}

// New creates a Writer rendering with profile.
func New(out io.Writer, profile termenv.Profile) *Writer {
	r := lipgloss.NewRenderer(out)
	r.SetColorProfile(profile)

	return &Writer{
		out:     out,
		term:    termenv.NewOutput(out, termenv.WithProfile(profile)),
		query:   r.NewStyle().Foreground(lipgloss.Color("2")),
		path:    r.NewStyle().Foreground(lipgloss.Color("5")).Bold(true),
		warning: r.NewStyle().Foreground(lipgloss.Color("3")),
		err:     r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		faint:   r.NewStyle().Faint(true),
	}
}

// Terminal returns the termenv output backing w, for callers that style
// text themselves.
func (w *Writer) Terminal() *termenv.Output {
	return w.term
}

// Line prints msg on its own line.
func (w *Writer) Line(msg string) {
	_, _ = fmt.Fprintln(w.out, msg)
}

// Linef prints a formatted line.
func (w *Writer) Linef(format string, args ...any) {
	w.Line(fmt.Sprintf(format, args...))
}

// Query styles a query echoed back to the user.
func (w *Writer) Query(s string) string {
	return w.query.Render(s)
}

// Path styles a file path heading.
func (w *Writer) Path(s string) string {
	return w.path.Render(s)
}

// Faint styles secondary information.
func (w *Writer) Faint(s string) string {
	return w.faint.Render(s)
}

// Warning prints a warning line.
func (w *Writer) Warning(msg string) {
	w.Line(w.warning.Render(msg))
}

// Warningf prints a formatted warning line.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error line.
func (w *Writer) Error(msg string) {
	w.Line(w.err.Render(msg))
}
