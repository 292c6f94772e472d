package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	startStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// Console prints release progress for humans. Diagnostics belonging to a
// step are tab-indented under the step's start line.
type Console struct {
	w io.Writer
}

func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{w: w}
}

// Writer exposes the underlying stream for tools that print directly.
func (c *Console) Writer() io.Writer {
	return c.w
}

func (c *Console) Banner(emoji, msg string) {
	fmt.Fprintf(c.w, "%s %s\n", emoji, startStyle.Render(msg))
}

func (c *Console) Start(msg string) {
	fmt.Fprintf(c.w, "🧪️ %s\n", startStyle.Render(msg))
}

func (c *Console) Success(msg string) {
	fmt.Fprintf(c.w, "✅ %s\n", successStyle.Render(msg))
}

func (c *Console) Failure(msg string) {
	fmt.Fprintf(c.w, "❌ %s\n", failureStyle.Render(msg))
}

func (c *Console) Infof(format string, args ...any) {
	fmt.Fprintf(c.w, "\t%s\n", fmt.Sprintf(format, args...))
}

func (c *Console) Warnf(format string, args ...any) {
	fmt.Fprintf(c.w, "\t%s\n", warnStyle.Render("WARN: "+fmt.Sprintf(format, args...)))
}

// Passf and Failf report the verdict for a single item of a check.
func (c *Console) Passf(format string, args ...any) {
	fmt.Fprintf(c.w, "\t✅ %s\n", fmt.Sprintf(format, args...))
}

func (c *Console) Failf(format string, args ...any) {
	fmt.Fprintf(c.w, "\t❌ %s\n", failureStyle.Render(fmt.Sprintf(format, args...)))
}

// Block prints multi-line text indented under the current step.
func (c *Console) Block(text string) {
	if text == "" {
		return
	}
	for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		fmt.Fprintf(c.w, "\t%s\n", line)
	}
}
