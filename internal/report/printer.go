// Package report is the messaging sink the pipeline uses to surface
// human-readable progress and diagnostics to the learner.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	colorSuccess = lipgloss.Color("#10B981") // Green
	colorError   = lipgloss.Color("#EF4444") // Red
	colorInfo    = lipgloss.Color("#3B82F6") // Blue

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	failureStyle = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo).Bold(true)
)

// Printer writes styled progress messages. Styling is applied only when
// the destination is a terminal and color is not disabled.
type Printer struct {
	out    io.Writer
	styled bool
}

// NewPrinter creates a Printer writing to stdout, styled when stdout is
// a terminal and noColor is false.
func NewPrinter(noColor bool) *Printer {
	styled := !noColor && isatty.IsTerminal(os.Stdout.Fd())
	return &Printer{out: os.Stdout, styled: styled}
}

// NewPrinterWithWriter creates an unstyled Printer writing to w.
// Useful for tests and for capturing pipeline output in watch mode.
func NewPrinterWithWriter(w io.Writer) *Printer {
	return &Printer{out: w}
}

// Success prints a success-styled line.
func (p *Printer) Success(format string, args ...any) {
	p.print(successStyle, fmt.Sprintf(format, args...))
}

// Failure prints a failure-styled line.
func (p *Printer) Failure(format string, args ...any) {
	p.print(failureStyle, fmt.Sprintf(format, args...))
}

// Info prints an info-styled line.
func (p *Printer) Info(format string, args ...any) {
	p.print(infoStyle, fmt.Sprintf(format, args...))
}

// Line prints an unstyled line, typically verbatim child output.
func (p *Printer) Line(text string) {
	fmt.Fprintln(p.out, text)
}

func (p *Printer) print(style lipgloss.Style, text string) {
	if p.styled {
		text = style.Render(text)
	}
	fmt.Fprintln(p.out, text)
}
