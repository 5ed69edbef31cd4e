// Package pipeline orchestrates dataset loading, caching, and summaries.
package pipeline

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/theirongolddev/budgetviz/internal/model"
)

// CacheDir returns the XDG-compliant cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "budgetviz")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "budgetviz")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "datasets.db")
}

// Aggregate summarizes a dataset per category. referenceYear is the
// actual/projection boundary whose value is reported separately.
func Aggregate(d model.Dataset, referenceYear int) model.DatasetStats {
	stats := model.DatasetStats{
		Topic:  d.Topic,
		Source: d.Source,
		Rows:   d.Len(),
	}
	if lo, hi, ok := d.YearRange(); ok {
		stats.FirstYear, stats.LastYear = lo, hi
	}

	for _, cat := range d.Categories() {
		stats.Categories = append(stats.Categories, aggregateCategory(cat, d.Filter(cat), referenceYear))
	}
	return stats
}

func aggregateCategory(cat string, obs []model.Observation, referenceYear int) model.CategoryStats {
	cs := model.CategoryStats{Category: cat, Points: len(obs)}
	if len(obs) == 0 {
		return cs
	}

	sorted := SortByYear(obs)
	first, last := sorted[0], sorted[len(sorted)-1]
	cs.FirstYear, cs.First = first.Year, first.ValuePctGDP
	cs.LastYear, cs.Last = last.Year, last.ValuePctGDP
	cs.PeakYear, cs.Peak = first.Year, first.ValuePctGDP

	for _, o := range sorted {
		if o.ValuePctGDP > cs.Peak {
			cs.Peak, cs.PeakYear = o.ValuePctGDP, o.Year
		}
		if o.Year == referenceYear {
			cs.Reference, cs.HasReference = o.ValuePctGDP, true
		}
	}
	return cs
}

// AggregateAll summarizes every loaded dataset in view order.
func AggregateAll(ds model.Datasets, referenceYear int) []model.DatasetStats {
	var out []model.DatasetStats
	for _, d := range ds.All() {
		out = append(out, Aggregate(d, referenceYear))
	}
	return out
}

// SortByYear returns a copy of obs ordered by year. Ties keep input order.
func SortByYear(obs []model.Observation) []model.Observation {
	out := make([]model.Observation, len(obs))
	copy(out, obs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Year < out[j].Year
	})
	return out
}
