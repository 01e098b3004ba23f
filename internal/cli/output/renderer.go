// Package output renders command results in terminal, markdown, and JSON
// form. Mode auto picks styled text on a TTY and markdown when piped, so
// scripts and agents get parseable output without extra flags.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Mode selects the output format.
type Mode string

const (
	ModeAuto     Mode = "auto"
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	keyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

// Renderer writes command output in the selected mode.
type Renderer struct {
	out  io.Writer
	errW io.Writer
	mode Mode
}

// NewRenderer creates a renderer. Mode defaults to auto when empty or
// unrecognized.
func NewRenderer(out, errW io.Writer, mode Mode) *Renderer {
	switch mode {
	case ModeText, ModeMarkdown, ModeJSON:
	default:
		mode = ModeAuto
	}
	return &Renderer{out: out, errW: errW, mode: mode}
}

// Mode returns the configured mode, which may be auto.
func (r *Renderer) Mode() Mode { return r.mode }

// EffectiveMode resolves auto: text when stdout is a terminal, markdown
// otherwise.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if f, ok := r.out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return ModeText
	}
	return ModeMarkdown
}

// Writer exposes the underlying output stream, for encoders and diagram
// emission.
func (r *Renderer) Writer() io.Writer { return r.out }

// ErrWriter exposes the underlying error stream.
func (r *Renderer) ErrWriter() io.Writer { return r.errW }

// Println writes a line to the output stream.
func (r *Renderer) Println(a ...any) {
	fmt.Fprintln(r.out, a...)
}

// Printf writes formatted output to the output stream.
func (r *Renderer) Printf(format string, a ...any) {
	fmt.Fprintf(r.out, format, a...)
}

// Header writes a section header, styled on a terminal and as a markdown
// heading otherwise.
func (r *Renderer) Header(level int, text string) {
	if r.EffectiveMode() == ModeText {
		fmt.Fprintln(r.out, headerStyle.Render(text))
		return
	}
	fmt.Fprintln(r.out, FormatHeader(level, text))
}

// KeyValue writes a labeled value line.
func (r *Renderer) KeyValue(key, value string) {
	if r.EffectiveMode() == ModeText {
		fmt.Fprintf(r.out, "%s %s\n", keyStyle.Render(key+":"), value)
		return
	}
	fmt.Fprintln(r.out, FormatKeyValue(key, value))
}

// Success writes a confirmation line.
func (r *Renderer) Success(text string) {
	if r.EffectiveMode() == ModeText {
		fmt.Fprintln(r.out, successStyle.Render("✓ "+text))
		return
	}
	fmt.Fprintln(r.out, "✓ "+text)
}

// Warning writes a warning line to the error stream.
func (r *Renderer) Warning(text string) {
	if r.EffectiveMode() == ModeText {
		fmt.Fprintln(r.errW, warningStyle.Render("! "+text))
		return
	}
	fmt.Fprintln(r.errW, "! "+text)
}

// Error writes an error line to the error stream.
func (r *Renderer) Error(text string) {
	if r.EffectiveMode() == ModeText {
		fmt.Fprintln(r.errW, errorStyle.Render("✗ "+text))
		return
	}
	fmt.Fprintln(r.errW, "✗ "+text)
}

// FormatHeader formats a markdown heading.
func FormatHeader(level int, text string) string {
	if level < 1 {
		level = 1
	}
	prefix := ""
	for i := 0; i < level; i++ {
		prefix += "#"
	}
	return prefix + " " + text
}

// FormatKeyValue formats a markdown key-value bullet.
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("- **%s**: %s", key, value)
}
