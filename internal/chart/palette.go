package chart

import (
	"sort"

	"github.com/theirongolddev/budgetviz/internal/model"
)

// Category10 is the fixed categorical palette. Colors cycle once every
// entry has been handed out.
var Category10 = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// CategoryColorMap assigns each category a stable color for the session.
type CategoryColorMap struct {
	colors map[string]string
	order  []string
}

// NewCategoryColorMap assigns colors over the union of the view filter
// lists and every loaded category, walking views in control order.
// overrides replaces the palette color of individual categories.
func NewCategoryColorMap(data model.Datasets, filters map[model.View][]string, overrides map[string]string) CategoryColorMap {
	m := CategoryColorMap{colors: make(map[string]string)}
	add := func(cat string) {
		if _, ok := m.colors[cat]; ok {
			return
		}
		m.colors[cat] = Category10[len(m.order)%len(Category10)]
		m.order = append(m.order, cat)
	}

	for _, v := range model.Views {
		for _, cat := range filters[v] {
			add(cat)
		}
		if d, ok := data.Get(v); ok {
			for _, cat := range d.Categories() {
				add(cat)
			}
		}
	}

	names := make([]string, 0, len(overrides))
	for cat := range overrides {
		names = append(names, cat)
	}
	sort.Strings(names)
	for _, cat := range names {
		hex := overrides[cat]
		if hex == "" {
			continue
		}
		if _, ok := m.colors[cat]; !ok {
			m.order = append(m.order, cat)
		}
		m.colors[cat] = hex
	}
	return m
}

// Color returns the color of a category. Unknown categories get a palette
// color derived from their name so the result never changes between calls.
func (m CategoryColorMap) Color(category string) string {
	if c, ok := m.colors[category]; ok {
		return c
	}
	var h uint32 = 2166136261
	for i := 0; i < len(category); i++ {
		h ^= uint32(category[i])
		h *= 16777619
	}
	return Category10[h%uint32(len(Category10))]
}

// Categories returns every assigned category in assignment order.
func (m CategoryColorMap) Categories() []string {
	return append([]string(nil), m.order...)
}
