package components

import (
	"strings"

	"github.com/theirongolddev/budgetviz/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline renders a unicode sparkline from values. The lowest value maps
// to the shortest block so small movements stay visible.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v > hi {
			hi = v
		}
		if v < lo {
			lo = v
		}
	}
	span := hi - lo

	style := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	var buf strings.Builder
	buf.Grow(len(values) * 3) // UTF-8 block chars are 3 bytes
	for _, v := range values {
		idx := len(blocks) / 2
		if span > 0 {
			idx = int((v - lo) / span * float64(len(blocks)-1))
		}
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		buf.WriteRune(blocks[idx]) //nolint:gosec // bounds checked above
	}

	return style.Render(buf.String())
}

// LegendEntry renders a color swatch and category name on one line, with
// the category's sparkline underneath when values are given.
func LegendEntry(category string, color lipgloss.Color, values []float64, width int) string {
	t := theme.Active

	swatch := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render("■")
	name := lipgloss.NewStyle().
		Foreground(t.TextPrimary).
		Background(t.Surface).
		Render(" " + Truncate(category, width-2))

	line := swatch + name
	if len(values) == 0 {
		return line
	}
	if len(values) > width-2 {
		values = values[len(values)-(width-2):]
	}
	pad := lipgloss.NewStyle().Background(t.Surface).Render("  ")
	return line + "\n" + pad + Sparkline(values, color)
}
