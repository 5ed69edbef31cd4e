// Package model defines the budget projection data shared by every renderer.
package model

import "strings"

// View is one of the enumerated chart modes.
type View string

// Enumerated views, in control order.
const (
	Overview View = "Overview"
	Spending View = "Spending"
	Revenue  View = "Revenue"
)

// DefaultView is shown when nothing else is selected.
const DefaultView = Overview

// Views lists every view in the order its control is drawn.
var Views = []View{Overview, Spending, Revenue}

// ParseView resolves a view name case-insensitively.
// Unrecognized names fall back to DefaultView with ok=false.
func ParseView(name string) (View, bool) {
	name = strings.TrimSpace(name)
	for _, v := range Views {
		if strings.EqualFold(string(v), name) {
			return v, true
		}
	}
	return DefaultView, false
}

// Key returns the lower-case identifier used in config keys and URLs.
func (v View) Key() string {
	return strings.ToLower(string(v))
}

// Observation is one (year, category, value) budget data point.
// ValuePctGDP is a fraction: 0.21 means 21% of GDP.
type Observation struct {
	Year        int     `json:"year"`
	Category    string  `json:"category"`
	ValuePctGDP float64 `json:"pctgdp"`
}

// Dataset is the ordered observation list for one topic.
type Dataset struct {
	Topic        View          `json:"topic"`
	Source       string        `json:"source"`
	Observations []Observation `json:"observations"`
}

// Len returns the number of observations.
func (d Dataset) Len() int {
	return len(d.Observations)
}

// Categories returns the distinct categories in first-appearance order.
func (d Dataset) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, o := range d.Observations {
		if seen[o.Category] {
			continue
		}
		seen[o.Category] = true
		out = append(out, o.Category)
	}
	return out
}

// YearRange returns the min and max year. ok is false for an empty dataset.
func (d Dataset) YearRange() (lo, hi int, ok bool) {
	if len(d.Observations) == 0 {
		return 0, 0, false
	}
	lo, hi = d.Observations[0].Year, d.Observations[0].Year
	for _, o := range d.Observations[1:] {
		if o.Year < lo {
			lo = o.Year
		}
		if o.Year > hi {
			hi = o.Year
		}
	}
	return lo, hi, true
}

// MaxValue returns the largest value, or 0 for an empty dataset.
func (d Dataset) MaxValue() float64 {
	peak := 0.0
	for i, o := range d.Observations {
		if i == 0 || o.ValuePctGDP > peak {
			peak = o.ValuePctGDP
		}
	}
	return peak
}

// Filter returns the observations for one category, in dataset order.
func (d Dataset) Filter(category string) []Observation {
	var out []Observation
	for _, o := range d.Observations {
		if o.Category == category {
			out = append(out, o)
		}
	}
	return out
}

// Datasets holds every loaded topic. Missing topics are simply absent.
type Datasets struct {
	byView map[View]Dataset
}

// NewDatasets builds a Datasets from the given topics. Later entries for
// the same topic replace earlier ones.
func NewDatasets(sets ...Dataset) Datasets {
	m := make(map[View]Dataset, len(sets))
	for _, d := range sets {
		m[d.Topic] = d
	}
	return Datasets{byView: m}
}

// Get returns the dataset for a view.
func (ds Datasets) Get(v View) (Dataset, bool) {
	d, ok := ds.byView[v]
	return d, ok
}

// All returns loaded datasets in view order.
func (ds Datasets) All() []Dataset {
	var out []Dataset
	for _, v := range Views {
		if d, ok := ds.byView[v]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Len returns the number of loaded topics.
func (ds Datasets) Len() int {
	return len(ds.byView)
}
