package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// DefaultSink writes step/warn/debug lines to an io.Writer (normally
// os.Stderr), colorizing output only when the writer is a real
// terminal. It is the sink `internal/cmd`'s bootstrap hands to the
// core for every command.
type DefaultSink struct {
	Out     io.Writer
	Verbose bool
	color   bool

	step  lipgloss.Style
	warn  lipgloss.Style
	debug lipgloss.Style
}

// NewDefaultSink builds a DefaultSink writing to out. Color is enabled
// only when out is a terminal file descriptor.
func NewDefaultSink(out *os.File, verbose bool) *DefaultSink {
	color := isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())
	return &DefaultSink{
		Out:     out,
		Verbose: verbose,
		color:   color,
		step:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		warn:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3")),
		debug:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func (s *DefaultSink) render(style lipgloss.Style, prefix, format string, args ...interface{}) string {
	msg := fmt.Sprintf(format, args...)
	if !s.color {
		return prefix + msg
	}
	return style.Render(prefix) + msg
}

func (s *DefaultSink) Step(format string, args ...interface{}) {
	fmt.Fprintln(s.Out, s.render(s.step, "==> ", format, args...))
}

func (s *DefaultSink) Warn(format string, args ...interface{}) {
	fmt.Fprintln(s.Out, s.render(s.warn, "warning: ", format, args...))
}

func (s *DefaultSink) Debug(format string, args ...interface{}) {
	if !s.Verbose {
		return
	}
	fmt.Fprintln(s.Out, s.render(s.debug, "debug: ", format, args...))
}

func (s *DefaultSink) Raw(line string, isStderr bool) {
	fmt.Fprintln(s.Out, line)
}

var _ Sink = (*DefaultSink)(nil)
