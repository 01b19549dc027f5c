package ui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn is a titled column of fixed width.
type TableColumn struct {
	Title string
	Width int
}

// tableStyles is the shared look of every table: a bold header over a rule,
// and no visible selection since tables are read-only.
func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.Foreground(ColorPrimary)
	s.Selected = s.Cell
	return s
}

// NewTable builds an unfocused bubbles table tall enough for every row.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, 0, len(columns))
	for _, c := range columns {
		cols = append(cols, table.Column{Title: c.Title, Width: c.Width})
	}

	return table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1),
		table.WithStyles(tableStyles()),
	)
}

// RenderSimpleTable renders plain string rows for command output. No rows
// render as an empty string.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	tableRows := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, table.Row(r))
	}
	return NewTable(columns, tableRows).View()
}

// CheckRow is one line of the check command's report.
type CheckRow struct {
	Status  string // "pass", "warn" or "fail"
	Section string // Group heading, e.g. "Parameters" or "Sources"
	Message string
	Detail  string // Beside passed rows, under failed and warned ones
}

// RenderCheckTable renders check results grouped by section, in the order
// the sections first appear.
func RenderCheckTable(rows []CheckRow) string {
	if len(rows) == 0 {
		return "Nothing to check"
	}

	successStyle := SuccessStyle()
	errorStyle := ErrorStyle()
	warnStyle := WarningStyle()
	mutedStyle := MutedStyle()
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary)

	var output string

	sections := make(map[string][]CheckRow)
	sectionOrder := []string{}
	for _, row := range rows {
		if _, exists := sections[row.Section]; !exists {
			sectionOrder = append(sectionOrder, row.Section)
		}
		sections[row.Section] = append(sections[row.Section], row)
	}

	for _, sec := range sectionOrder {
		output += headerStyle.Render(sec) + "\n"

		for _, row := range sections[sec] {
			var statusIcon string
			switch row.Status {
			case "pass":
				statusIcon = successStyle.Render(SymbolSuccess)
			case "warn":
				statusIcon = warnStyle.Render(SymbolWarning)
			case "fail":
				statusIcon = errorStyle.Render(SymbolFail)
			default:
				statusIcon = mutedStyle.Render(SymbolPending)
			}

			switch {
			case row.Detail == "":
				output += "  " + statusIcon + " " + row.Message + "\n"
			case row.Status == "pass":
				output += "  " + statusIcon + " " + padRight(row.Message, 24) + mutedStyle.Render(row.Detail) + "\n"
			default:
				output += "  " + statusIcon + " " + row.Message + "\n"
				output += "    " + mutedStyle.Render(row.Detail) + "\n"
			}
		}
		output += "\n"
	}

	return output
}

// padRight pads a string to the specified width.
func padRight(s string, width int) string {
	// Account for ANSI codes when calculating visible length
	visibleLen := lipgloss.Width(s)
	if visibleLen >= width {
		return s
	}
	padding := width - visibleLen
	for i := 0; i < padding; i++ {
		s += " "
	}
	return s
}
