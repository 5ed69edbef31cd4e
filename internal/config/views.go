package config

import (
	"strings"

	"github.com/theirongolddev/budgetviz/internal/model"
)

// defaultCategories is the ordered category filter list drawn for each view.
var defaultCategories = map[model.View][]string{
	model.Overview: {
		"Publicly Held Debt",
		"Total Spending",
		"Total Revenues",
	},
	model.Spending: {
		"Social Security",
		"Major Health Care Programs",
		"Other Mandatory",
		"Defense Discretionary",
		"Nondefense Discretionary",
		"Net Interest",
	},
	model.Revenue: {
		"Individual Income Taxes",
		"Payroll Taxes",
		"Corporate Income Taxes",
		"Other Revenues",
	},
}

// Categories returns the category filter list for a view, honoring
// [views.<name>] overrides. The returned slice is a copy.
func (c Config) Categories(v model.View) []string {
	if vc, ok := c.lookupView(v); ok && len(vc.Categories) > 0 {
		return append([]string(nil), vc.Categories...)
	}
	return append([]string(nil), defaultCategories[v]...)
}

// CategoryMap returns the filter lists of every view.
func (c Config) CategoryMap() map[model.View][]string {
	out := make(map[model.View][]string, len(model.Views))
	for _, v := range model.Views {
		out[v] = c.Categories(v)
	}
	return out
}

func (c Config) lookupView(v model.View) (ViewConfig, bool) {
	for name, vc := range c.Views {
		if strings.EqualFold(name, v.Key()) {
			return vc, true
		}
	}
	return ViewConfig{}, false
}

// SourceFor returns the configured location of a view's dataset.
func (c Config) SourceFor(v model.View) string {
	switch v {
	case model.Spending:
		return strings.TrimSpace(c.Sources.Spending)
	case model.Revenue:
		return strings.TrimSpace(c.Sources.Revenue)
	default:
		return strings.TrimSpace(c.Sources.Overview)
	}
}

// ColorOverride returns a configured color for a category, if any.
func (c Config) ColorOverride(category string) (string, bool) {
	for name, hex := range c.Colors {
		if strings.EqualFold(name, category) && strings.TrimSpace(hex) != "" {
			return strings.TrimSpace(hex), true
		}
	}
	return "", false
}
