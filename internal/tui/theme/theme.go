// Package theme defines color themes for the budgetviz TUI dashboard.
package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name         string
	Background   lipgloss.Color // Main app background
	Surface      lipgloss.Color // Card/panel backgrounds
	Border       lipgloss.Color // Subtle borders
	BorderAccent lipgloss.Color // Accent-colored borders for focus states
	TextDim      lipgloss.Color // Lowest contrast text (hints, disabled)
	TextMuted    lipgloss.Color // Secondary text (labels, metadata)
	TextPrimary  lipgloss.Color // Primary content text
	Accent       lipgloss.Color // Active tab, links
	AccentBright lipgloss.Color
	Red          lipgloss.Color
	Orange       lipgloss.Color

	// Chart roles
	Grid      lipgloss.Color // Background gridlines
	Axis      lipgloss.Color // Axis lines and tick labels
	Reference lipgloss.Color // Actual/projection boundary
	Tooltip   lipgloss.Color // Tooltip box background
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default theme - warm, paper-inspired dark theme.
var FlexokiDark = Theme{
	Name:         "flexoki-dark",
	Background:   lipgloss.Color("#100F0F"),
	Surface:      lipgloss.Color("#1C1B1A"),
	Border:       lipgloss.Color("#403E3C"),
	BorderAccent: lipgloss.Color("#3AA99F"),
	TextDim:      lipgloss.Color("#575653"),
	TextMuted:    lipgloss.Color("#878580"),
	TextPrimary:  lipgloss.Color("#FFFCF0"),
	Accent:       lipgloss.Color("#3AA99F"),
	AccentBright: lipgloss.Color("#5BC8BE"),
	Red:          lipgloss.Color("#D14D41"),
	Orange:       lipgloss.Color("#DA702C"),
	Grid:         lipgloss.Color("#282726"),
	Axis:         lipgloss.Color("#878580"),
	Reference:    lipgloss.Color("#D0A215"),
	Tooltip:      lipgloss.Color("#343331"),
}

// CatppuccinMocha is a warm pastel theme with soft, soothing colors.
var CatppuccinMocha = Theme{
	Name:         "catppuccin-mocha",
	Background:   lipgloss.Color("#1E1E2E"),
	Surface:      lipgloss.Color("#313244"),
	Border:       lipgloss.Color("#585B70"),
	BorderAccent: lipgloss.Color("#89B4FA"),
	TextDim:      lipgloss.Color("#6C7086"),
	TextMuted:    lipgloss.Color("#A6ADC8"),
	TextPrimary:  lipgloss.Color("#CDD6F4"),
	Accent:       lipgloss.Color("#89B4FA"),
	AccentBright: lipgloss.Color("#B4D0FB"),
	Red:          lipgloss.Color("#F38BA8"),
	Orange:       lipgloss.Color("#FAB387"),
	Grid:         lipgloss.Color("#45475A"),
	Axis:         lipgloss.Color("#A6ADC8"),
	Reference:    lipgloss.Color("#F9E2AF"),
	Tooltip:      lipgloss.Color("#585B70"),
}

// TokyoNight is a cool blue/purple theme inspired by Tokyo city lights.
var TokyoNight = Theme{
	Name:         "tokyo-night",
	Background:   lipgloss.Color("#1A1B26"),
	Surface:      lipgloss.Color("#24283B"),
	Border:       lipgloss.Color("#565F89"),
	BorderAccent: lipgloss.Color("#7AA2F7"),
	TextDim:      lipgloss.Color("#565F89"),
	TextMuted:    lipgloss.Color("#A9B1D6"),
	TextPrimary:  lipgloss.Color("#C0CAF5"),
	Accent:       lipgloss.Color("#7AA2F7"),
	AccentBright: lipgloss.Color("#A9C1FF"),
	Red:          lipgloss.Color("#F7768E"),
	Orange:       lipgloss.Color("#FF9E64"),
	Grid:         lipgloss.Color("#343A52"),
	Axis:         lipgloss.Color("#A9B1D6"),
	Reference:    lipgloss.Color("#E0AF68"),
	Tooltip:      lipgloss.Color("#414868"),
}

// Terminal uses ANSI 16 colors only - maximum compatibility.
var Terminal = Theme{
	Name:         "terminal",
	Background:   lipgloss.Color("0"),
	Surface:      lipgloss.Color("0"),
	Border:       lipgloss.Color("8"),
	BorderAccent: lipgloss.Color("6"),
	TextDim:      lipgloss.Color("8"),
	TextMuted:    lipgloss.Color("7"),
	TextPrimary:  lipgloss.Color("15"),
	Accent:       lipgloss.Color("6"),
	AccentBright: lipgloss.Color("14"),
	Red:          lipgloss.Color("1"),
	Orange:       lipgloss.Color("3"),
	Grid:         lipgloss.Color("8"),
	Axis:         lipgloss.Color("7"),
	Reference:    lipgloss.Color("3"),
	Tooltip:      lipgloss.Color("8"),
}

// All available themes.
var All = []Theme{FlexokiDark, CatppuccinMocha, TokyoNight, Terminal}

// Names returns the theme names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if strings.EqualFold(t.Name, strings.TrimSpace(name)) {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}
