// Package cli renders the terminal output of the lossopts command: tables, titles and check results,
// styled with lipgloss when writing to a terminal.
package cli

import (
	"fmt"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
	"io"
	"os"
	"regexp"
	"strings"
)

var ansiFilter = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// displayWidth of s removes its color/control sequences and returns the length of what is left.
func displayWidth(s string) int {
	return len([]rune(ansiFilter.ReplaceAllString(s, "")))
}

// padRight s with spaces until it fits the given display width.
func padRight(s string, fit int) string {
	if width := displayWidth(s); width < fit {
		return s + strings.Repeat(" ", fit-width)
	}
	return s
}

var (
	titleStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("13")).
			Foreground(lipgloss.Color("0")).
			Padding(0, 2)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

// UI writes to an output, with colors or not.
type UI struct {
	w     io.Writer
	color bool
}

// New creates a UI writing to w.
func New(w io.Writer, color bool) *UI {
	return &UI{w: w, color: color}
}

// ForStdout creates a UI writing to os.Stdout, with colors if it is a terminal.
func ForStdout() *UI {
	return New(os.Stdout, term.IsTerminal(int(os.Stdout.Fd())))
}

func (ui *UI) render(style lipgloss.Style, s string) string {
	if !ui.color {
		return s
	}
	return style.Render(s)
}

// Title prints a highlighted title line.
func (ui *UI) Title(title string) {
	if ui.color {
		_, _ = fmt.Fprintf(ui.w, "\n%s\n\n", ui.render(titleStyle, title))
		return
	}
	_, _ = fmt.Fprintf(ui.w, "%s\n\n", title)
}

// Table prints the rows aligned in columns, under the given headers.
func (ui *UI) Table(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for col, header := range headers {
		widths[col] = displayWidth(header)
	}
	for _, row := range rows {
		for col, cell := range row {
			if col < len(widths) {
				widths[col] = max(widths[col], displayWidth(cell))
			}
		}
	}
	writeRow := func(cells []string, style *lipgloss.Style) {
		parts := make([]string, len(widths))
		for col := range widths {
			var cell string
			if col < len(cells) {
				cell = cells[col]
			}
			if style != nil {
				cell = ui.render(*style, cell)
			}
			parts[col] = padRight(cell, widths[col])
		}
		_, _ = fmt.Fprintln(ui.w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}
	writeRow(headers, &headerStyle)
	for _, row := range rows {
		writeRow(row, nil)
	}
}

// Check prints the result of a named check: "ok" if err is nil, the error otherwise.
func (ui *UI) Check(name string, err error) {
	if err == nil {
		_, _ = fmt.Fprintf(ui.w, "%s %s\n", ui.render(okStyle, "[ok]  "), name)
		return
	}
	_, _ = fmt.Fprintf(ui.w, "%s %s: %v\n", ui.render(failStyle, "[FAIL]"), name, err)
}

// Printf prints a plain formatted line.
func (ui *UI) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(ui.w, format, args...)
}
