package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// helpSections group the shortcuts shown in the help overlay.
var helpSections = []struct {
	title    string
	bindings [][2]string
}{
	{"Parameters", [][2]string{
		{KeySelectPrev + " / " + KeySelectPrevK, "select previous"},
		{KeySelectNext + " / " + KeySelectNextJ, "select next"},
		{KeySelectFirst + " / " + KeySelectLast, "select first / last"},
		{KeyToggleAutorange, "toggle autorange"},
		{KeyDeactivate, "deactivate (history ages out)"},
	}},
	{"Sampling", [][2]string{
		{KeySlower + " / " + KeyFaster, fmt.Sprintf("double / halve the interval (%v to %v)", MinInterval, MaxInterval)},
	}},
	{"General", [][2]string{
		{KeyToggleHelp, "toggle this help"},
		{KeyQuit + " / " + KeyQuitAlt, "quit"},
	}},
}

var (
	helpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Background(ColorPanel).
			Padding(1, 2)

	helpKeyStyle = lipgloss.NewStyle().Foreground(ColorText).Bold(true).Width(14)
)

// renderHelpOverlay renders the shortcut list, centered when the window size
// is known.
func (m Model) renderHelpOverlay() string {
	lines := []string{panelTitleStyle.Render("Keyboard Shortcuts")}
	for _, sec := range helpSections {
		lines = append(lines, "", LabelStyle.Bold(true).Render(sec.title))
		for _, b := range sec.bindings {
			lines = append(lines, helpKeyStyle.Render(b[0])+LabelStyle.Render(b[1]))
		}
	}
	lines = append(lines, "", FooterStyle.Render("? or esc to close"))

	box := helpBoxStyle.Render(strings.Join(lines, "\n"))
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceForeground(ColorVoid))
}
