package cli

import (
	"fmt"
	"strconv"

	"github.com/theirongolddev/budgetviz/internal/model"
	"github.com/theirongolddev/budgetviz/internal/pipeline"
)

// DatasetTable builds the summary table for one dataset. trends holds the
// per-category values in year order, used for the sparkline column.
func DatasetTable(st model.DatasetStats, referenceYear int, trends map[string][]float64) Table {
	t := Table{
		Title:   fmt.Sprintf("%s  (%s)", st.Topic, FormatYears(st.FirstYear, st.LastYear)),
		Headers: []string{"Category", "First", strconv.Itoa(referenceYear), "Last", "Change", "Peak", "Trend"},
		Footer:  fmt.Sprintf("%s rows from %s", FormatNumber(int64(st.Rows)), st.Source),
	}
	for _, c := range st.Categories {
		ref := mutedStyle.Render("-")
		if c.HasReference {
			ref = FormatPercent(c.Reference)
		}
		t.Rows = append(t.Rows, []string{
			c.Category,
			FormatPercent(c.First),
			ref,
			FormatPercent(c.Last),
			RenderChange(c.Last, c.First),
			fmt.Sprintf("%s (%d)", FormatPercent(c.Peak), c.PeakYear),
			RenderSparkline(trends[c.Category]),
		})
	}
	return t
}

// Trends collects each category's values in year order.
func Trends(d model.Dataset) map[string][]float64 {
	out := make(map[string][]float64)
	for _, cat := range d.Categories() {
		obs := d.Filter(cat)
		vals := make([]float64, 0, len(obs))
		for _, o := range pipeline.SortByYear(obs) {
			vals = append(vals, o.ValuePctGDP)
		}
		out[cat] = vals
	}
	return out
}

