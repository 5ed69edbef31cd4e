package components

import (
	"strings"

	"github.com/theirongolddev/budgetviz/internal/model"
	"github.com/theirongolddev/budgetviz/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

// Tab represents a single view tab in the tab bar.
type Tab struct {
	View   model.View
	Key    rune
	KeyPos int // position of the shortcut letter in the name (-1 if not in name)
}

// Tabs defines one tab per chart view, in control order.
var Tabs = []Tab{
	{View: model.Overview, Key: 'o', KeyPos: 0},
	{View: model.Spending, Key: 's', KeyPos: 0},
	{View: model.Revenue, Key: 'r', KeyPos: 0},
}

// TabZoneID returns the mouse zone id of a tab.
func TabZoneID(prefix string, v model.View) string {
	return prefix + "tab-" + v.Key()
}

func renderTab(tab Tab, active, available bool) string {
	t := theme.Active

	pad := lipgloss.NewStyle().Background(t.Surface)
	nameStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	dimKeyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	name := string(tab.View)
	if active {
		activeStyle := lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Accent).
			Bold(true).
			Padding(0, 1)
		return activeStyle.Render(name)
	}
	if !available {
		nameStyle = nameStyle.Foreground(t.TextDim).Strikethrough(true)
		keyStyle = keyStyle.Foreground(t.TextDim)
	}

	var body string
	if tab.KeyPos >= 0 && tab.KeyPos < len(name) {
		body = nameStyle.Render(name[:tab.KeyPos]) +
			dimKeyStyle.Render("[") + keyStyle.Render(name[tab.KeyPos:tab.KeyPos+1]) + dimKeyStyle.Render("]") +
			nameStyle.Render(name[tab.KeyPos+1:])
	} else {
		body = nameStyle.Render(name) +
			dimKeyStyle.Render("[") + keyStyle.Render(string(tab.Key)) + dimKeyStyle.Render("]")
	}
	return pad.Render(" ") + body + pad.Render(" ")
}

// TabVisualWidth returns the rendered width of a tab, matching RenderTabBar.
func TabVisualWidth(tab Tab, active bool) int {
	return lipgloss.Width(renderTab(tab, active, true))
}

// RenderTabBar renders the view tabs on one row. Each tab is wrapped in a
// mouse zone when zm is non-nil.
func RenderTabBar(active model.View, available func(model.View) bool, zm *zone.Manager, prefix string, width int) string {
	t := theme.Active
	sep := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	parts := make([]string, 0, len(Tabs))
	for _, tab := range Tabs {
		ok := available == nil || available(tab.View)
		rendered := renderTab(tab, tab.View == active, ok)
		if zm != nil {
			rendered = zm.Mark(TabZoneID(prefix, tab.View), rendered)
		}
		parts = append(parts, rendered)
	}

	return lipgloss.NewStyle().
		Background(t.Surface).
		Width(width).
		Render(strings.Join(parts, sep))
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
