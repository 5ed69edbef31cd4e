package tui

import (
	"errors"
	"strings"

	"github.com/theirongolddev/budgetviz/internal/config"
	"github.com/theirongolddev/budgetviz/internal/model"
	"github.com/theirongolddev/budgetviz/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues holds the answers collected by the setup form.
type SetupValues struct {
	Overview string
	Spending string
	Revenue  string
	View     string
	Theme    string
}

// SetupValuesFrom seeds the form from an existing config.
func SetupValuesFrom(cfg config.Config) SetupValues {
	view, _ := model.ParseView(cfg.Chart.DefaultView)
	return SetupValues{
		Overview: cfg.Sources.Overview,
		Spending: cfg.Sources.Spending,
		Revenue:  cfg.Sources.Revenue,
		View:     string(view),
		Theme:    theme.ByName(cfg.Appearance.Theme).Name,
	}
}

// Apply writes the answers into cfg.
func (v SetupValues) Apply(cfg *config.Config) {
	cfg.Sources.Overview = strings.TrimSpace(v.Overview)
	cfg.Sources.Spending = strings.TrimSpace(v.Spending)
	cfg.Sources.Revenue = strings.TrimSpace(v.Revenue)
	cfg.Chart.DefaultView = v.View
	cfg.Appearance.Theme = v.Theme
}

// NewSetupForm builds the setup form bound to v.
func NewSetupForm(v *SetupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themeOpts = append(themeOpts, huh.NewOption(name, name))
	}
	viewOpts := make([]huh.Option[string], 0, len(model.Views))
	for _, view := range model.Views {
		viewOpts = append(viewOpts, huh.NewOption(string(view), string(view)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to budgetviz").
				Description("Point each chart view at a JSON or CSV dataset.\nURLs and local paths both work."),
			huh.NewInput().
				Title("Overview dataset").
				Description("Debt, spending and revenue totals (required)").
				Value(&v.Overview).
				Validate(requiredSource),
			huh.NewInput().
				Title("Spending dataset").
				Description("Leave blank to skip the Spending view").
				Value(&v.Spending),
			huh.NewInput().
				Title("Revenue dataset").
				Description("Leave blank to skip the Revenue view").
				Value(&v.Revenue),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Default view").
				Options(viewOpts...).
				Value(&v.View),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&v.Theme),
		),
	).WithShowHelp(false)
}

func requiredSource(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("the overview dataset is required")
	}
	return nil
}
