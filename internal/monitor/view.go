package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/stripchart/internal/chart"
	"github.com/rileyhilliard/stripchart/internal/ui"
)

// Layout constants
const (
	nameWidth     = 12
	valueWidth    = 9
	defaultWidth  = 80
	detailHeight  = 6
	minTraceWidth = 10
)

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if len(m.frame.Params) == 0 {
		b.WriteString(LabelStyle.Render("No parameters configured"))
		b.WriteString("\n\n")
		b.WriteString(m.renderFooter())
		return b.String()
	}

	b.WriteString(m.renderTraces())
	b.WriteString("\n\n")
	b.WriteString(m.renderValuesTable())
	b.WriteString("\n")

	if detail := m.renderDetail(); detail != "" {
		b.WriteString("\n")
		b.WriteString(detail)
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString(StatusLineStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(m.renderFooter())
	return b.String()
}

// renderHeader renders the dashboard header with summary stats.
func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render("stripchart")

	stats := lipgloss.NewStyle().
		Foreground(ColorSubtext).
		Render(fmt.Sprintf(" | %d params | every %v | tick %d",
			len(m.frame.Params), m.engine.Interval(), m.frame.Tick))

	return HeaderStyle.Render(title + stats)
}

func (m Model) viewWidth() int {
	if m.width <= 0 {
		return defaultWidth
	}
	return m.width
}

// traceWidth is what is left of a row after the name and value columns.
func (m Model) traceWidth() int {
	w := m.viewWidth() - nameWidth - valueWidth - 4
	if w < minTraceWidth {
		w = minTraceWidth
	}
	return w
}

// renderTraces renders one single-line strip per parameter.
func (m Model) renderTraces() string {
	width := m.traceWidth()
	rows := make([]string, 0, len(m.frame.Params))
	for i, s := range m.frame.Params {
		rows = append(rows, m.renderTraceRow(i, s, width))
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderTraceRow(i int, s chart.Snapshot, width int) string {
	name := truncate(s.Name, nameWidth)
	nameStyle := NameStyle
	switch {
	case !s.Active:
		nameStyle = InactiveStyle
	case i == m.selected:
		nameStyle = SelectedNameStyle
	}
	marker := "  "
	if i == m.selected {
		marker = lipgloss.NewStyle().Foreground(ColorAccent).Render("▸ ")
	}

	trace := RenderTrace(s.History, width, 1, axisFor(s, s.History), s.Plot, TraceColor(s.Color, i))
	pad := width - lipgloss.Width(trace)
	if pad < 0 {
		pad = 0
	}

	value := "-"
	if s.HasValue {
		value = chart.FormatValue(s.Latest)
	}

	return marker +
		nameStyle.Width(nameWidth).Render(name) + " " +
		trace + strings.Repeat(" ", pad) + " " +
		ValueStyle.Render(value)
}

// valuesColumns are the columns of the values table.
var valuesColumns = []ui.TableColumn{
	{Title: "Param", Width: nameWidth},
	{Title: "Current", Width: valueWidth},
	{Title: "Scale", Width: 7},
	{Title: "Bot", Width: valueWidth},
	{Title: "Top", Width: valueWidth},
}

// valuesRows lists the current value, scale and axis bounds of every parameter.
func valuesRows(params []chart.Snapshot) []table.Row {
	rows := make([]table.Row, 0, len(params))
	for _, s := range params {
		current := "-"
		if s.HasValue {
			current = chart.FormatValue(s.Latest)
		}
		bot, top := "-", "-"
		if usable(s.Lower, s.Upper) {
			bot = chart.FormatValue(s.Lower)
			top = chart.FormatValue(s.Upper)
		}
		rows = append(rows, table.Row{s.Name, current, s.Scale.String(), bot, top})
	}
	return rows
}

func (m Model) renderValuesTable() string {
	t := ui.NewTable(valuesColumns, valuesRows(m.frame.Params))
	return t.View()
}

// renderDetail draws a taller graph of the selected parameter.
func (m Model) renderDetail() string {
	if m.selected < 0 || m.selected >= len(m.frame.Params) {
		return ""
	}
	s := m.frame.Params[m.selected]
	if s.Plot == chart.PlotIndicator || len(s.History) == 0 {
		return ""
	}

	width := m.viewWidth()
	axis := axisFor(s, s.History)
	value := fmt.Sprintf("%s .. %s", chart.FormatValue(axis.Lower), chart.FormatValue(axis.Upper))
	if s.Autorange {
		value += " (auto)"
	}

	graph := RenderTrace(s.History, width-4, detailHeight, axis, s.Plot, TraceColor(s.Color, m.selected))

	lines := []string{SectionHeader(s.Name, value, width)}
	if s.Description != "" {
		lines = append(lines, SectionContentLine(LabelStyle.Render(s.Description), width))
	}
	for _, row := range strings.Split(graph, "\n") {
		lines = append(lines, SectionContentLine(row, width))
	}
	lines = append(lines, SectionFooter(width))
	return strings.Join(lines, "\n")
}

// renderFooter renders the keyboard help footer.
func (m Model) renderFooter() string {
	hints := []string{
		"q quit",
		"↑↓ select",
		"a autorange",
		"d deactivate",
		"+/- interval",
		"? help",
	}

	return FooterStyle.Render(strings.Join(hints, " | "))
}

// truncate shortens s to at most n cells, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return string(r[:min(n, len(r))])
	}
	return string(r[:n-1]) + "…"
}
