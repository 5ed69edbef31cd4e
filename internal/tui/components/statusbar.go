package components

import (
	"strings"

	"github.com/theirongolddev/budgetviz/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar. The right side holds the
// hover readout when one is given, otherwise the data summary.
func RenderStatusBar(width int, readout, dataInfo string, reloading bool) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)

	left := " [o/s/r]view  [←→]cycle  [R]reload  [?]help  [q]uit"

	right := ""
	switch {
	case readout != "":
		right = lipgloss.NewStyle().
			Foreground(t.AccentBright).
			Background(t.Surface).
			Bold(true).
			Render(readout) + " "
	case reloading:
		right = "Reloading... "
	case dataInfo != "":
		right = "Data: " + dataInfo + " "
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	return style.Render(left + strings.Repeat(" ", padding) + right)
}
