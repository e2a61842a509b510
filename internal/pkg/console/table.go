// Package console renders the summaries printed by the compendium commands
package console

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used by every command
var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	HeaderStyle  = lipgloss.NewStyle().Bold(true)
	MutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	FailureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// Table is a static table of rows under a header
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// NewTable creates a table with the given title and headers
func NewTable(title string, headers ...string) *Table {
	return &Table{Title: title, Headers: headers}
}

// AddRow adds a row. Missing cells render empty.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render draws the table. An empty table renders only its title.
func (t *Table) Render() string {
	var sb strings.Builder
	if t.Title != "" {
		sb.WriteString(TitleStyle.Render(t.Title))
		sb.WriteString("\n")
	}
	if len(t.Headers) == 0 {
		return sb.String()
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	cell := func(style lipgloss.Style, text string, i int) string {
		return style.Width(widths[i]+2).Padding(0, 1).Render(text)
	}
	sep := MutedStyle.Render("|")

	for i, h := range t.Headers {
		if i > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(cell(HeaderStyle, h, i))
	}
	sb.WriteString("\n")

	total := len(widths) - 1
	for _, w := range widths {
		total += w + 2
	}
	sb.WriteString(MutedStyle.Render(strings.Repeat("-", total)))
	sb.WriteString("\n")

	plain := lipgloss.NewStyle()
	for _, row := range t.Rows {
		for i := range widths {
			if i > 0 {
				sb.WriteString(sep)
			}
			text := ""
			if i < len(row) {
				text = row[i]
			}
			sb.WriteString(cell(plain, text, i))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Status colours a pass/fail word
func Status(ok bool, text string) string {
	if ok {
		return SuccessStyle.Render(text)
	}
	return FailureStyle.Render(text)
}
