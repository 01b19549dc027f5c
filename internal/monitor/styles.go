package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette. Traces take the bright colors, chrome stays in the purples.
const (
	ColorVoid  = lipgloss.Color("#0A0A0F")
	ColorPanel = lipgloss.Color("#12121A")
	ColorFrame = lipgloss.Color("#2A2A4A")

	ColorText    = lipgloss.Color("#FFFFFF")
	ColorSubtext = lipgloss.Color("#B4B4D0")
	ColorDim     = lipgloss.Color("#6B6B8D")

	ColorAccent = lipgloss.Color("#FF2E97")
	ColorViolet = lipgloss.Color("#BF40FF")
	ColorTrace  = lipgloss.Color("#00FFFF")
	ColorGreen  = lipgloss.Color("#39FF14")
	ColorAmber  = lipgloss.Color("#FFAA00")
)

// traceColors cycle for parameters that do not configure a color.
var traceColors = []lipgloss.Color{
	ColorTrace,
	ColorGreen,
	ColorAmber,
	ColorViolet,
	ColorAccent,
}

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Background(ColorPanel).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorDim).
			Padding(0, 1)

	NameStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true)

	SelectedNameStyle = NameStyle.
				Foreground(ColorAccent)

	// InactiveStyle marks a deactivated parameter while its history ages out.
	InactiveStyle = lipgloss.NewStyle().
			Foreground(ColorDim).
			Italic(true)

	LabelStyle      = lipgloss.NewStyle().Foreground(ColorSubtext)
	ValueStyle      = lipgloss.NewStyle().Foreground(ColorText)
	StatusLineStyle = lipgloss.NewStyle().Foreground(ColorAmber)

	frameStyle      = lipgloss.NewStyle().Foreground(ColorFrame)
	panelTitleStyle = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	panelValueStyle = lipgloss.NewStyle().Foreground(ColorTrace).Bold(true)
)

// Indicator glyphs
const (
	IndicatorOn  = "◉"
	IndicatorOff = "◌"
)

// TraceColor resolves the color for the i-th parameter. A configured color
// wins; otherwise the palette cycles.
func TraceColor(configured string, i int) lipgloss.Color {
	if c := strings.TrimSpace(configured); c != "" {
		return lipgloss.Color(c)
	}
	if i < 0 {
		i = -i
	}
	return traceColors[i%len(traceColors)]
}

// fill returns n copies of the horizontal rule, at least one.
func fill(n int) string {
	return strings.Repeat("─", max(n, 1))
}

// SectionHeader opens a panel: ╭─ title ──── value ╮
func SectionHeader(title, value string, width int) string {
	width = max(width, 10)
	used := lipgloss.Width("╭─ "+title+" ") + lipgloss.Width(" "+value+" ╮")

	return frameStyle.Render("╭─ ") +
		panelTitleStyle.Render(title) +
		frameStyle.Render(" "+fill(width-used)+" ") +
		panelValueStyle.Render(value) +
		frameStyle.Render(" ╮")
}

// SectionFooter closes a panel.
func SectionFooter(width int) string {
	width = max(width, 2)
	return frameStyle.Render("╰" + strings.Repeat("─", width-2) + "╯")
}

// SectionContentLine puts content between the panel's side borders, padded
// so the right border lines up at width.
func SectionContentLine(content string, width int) string {
	inner := max(width, 4) - 4
	pad := max(inner-lipgloss.Width(content), 0)
	return frameStyle.Render("│") + " " + content + strings.Repeat(" ", pad) + " " + frameStyle.Render("│")
}
