package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HeaderInfo contains information to display in the header.
type HeaderInfo struct {
	Version string // e.g. "v0.3.0"
	Config  string // Config file in use, empty for built-in defaults
}

// HeaderWidth is the width of the divider under the header.
const HeaderWidth = 50

var (
	headerTitleStyle   = lipgloss.NewStyle().Foreground(ColorNeonPink).Bold(true)
	headerVersionStyle = lipgloss.NewStyle().Foreground(ColorNeonCyan)
	headerRuleStyle    = lipgloss.NewStyle().Foreground(ColorGlassBorder)
)

// RenderHeader renders the block printed above command reports: name and
// version, the config file in use, then a divider.
func RenderHeader(info HeaderInfo) string {
	title := headerTitleStyle.Render("stripchart")
	if info.Version != "" {
		title += " " + headerVersionStyle.Render(info.Version)
	}

	source := info.Config
	if source == "" {
		source = "built-in defaults"
	}

	return strings.Join([]string{
		title,
		MutedStyle().Render(source),
		headerRuleStyle.Render(strings.Repeat("━", HeaderWidth)),
	}, "\n") + "\n"
}
