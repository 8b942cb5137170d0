package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

type printer struct {
	out   io.Writer
	color bool

	title   lipgloss.Style
	ok      lipgloss.Style
	failed  lipgloss.Style
	warn    lipgloss.Style
	dim     lipgloss.Style
	added   lipgloss.Style
	removed lipgloss.Style
}

func newPrinter(out io.Writer, noColor bool) *printer {
	p := &printer{
		out:   out,
		color: !noColor && isTerminal(out),

		title:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		ok:      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		failed:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		added:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		removed: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}

	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *printer) render(style lipgloss.Style, s string) string {
	if !p.color {
		return s
	}
	return style.Render(s)
}

func (p *printer) Println(a ...any) {
	_, _ = fmt.Fprintln(p.out, a...)
}

func (p *printer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(p.out, format, a...)
}

func (p *printer) Title(s string) string   { return p.render(p.title, s) }
func (p *printer) OK(s string) string      { return p.render(p.ok, s) }
func (p *printer) Failed(s string) string  { return p.render(p.failed, s) }
func (p *printer) Warn(s string) string    { return p.render(p.warn, s) }
func (p *printer) Dim(s string) string     { return p.render(p.dim, s) }
func (p *printer) Added(s string) string   { return p.render(p.added, s) }
func (p *printer) Removed(s string) string { return p.render(p.removed, s) }

// Diff colors added and removed lines of unified diff text.
func (p *printer) Diff(text string) string {
	if !p.color {
		return text
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			lines[i] = p.Title(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = p.Added(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = p.Removed(line)
		case strings.HasPrefix(line, "@@"):
			lines[i] = p.Dim(line)
		}
	}

	return strings.Join(lines, "\n")
}
