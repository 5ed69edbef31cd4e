package chart

import (
	"fmt"
	"math"
)

// FormatYear renders an x-axis tick.
func FormatYear(v float64) string {
	return fmt.Sprintf("%d", int(math.Round(v)))
}

// PercentFormatter returns a y-axis tick formatter for the given tick step.
// Steps finer than one percentage point get one decimal place.
func PercentFormatter(step float64) func(float64) string {
	if step > 0 && step < 0.01 {
		return func(v float64) string {
			return fmt.Sprintf("%.1f%%", v*100)
		}
	}
	return func(v float64) string {
		return fmt.Sprintf("%d%%", int(math.Round(v*100)))
	}
}

// TooltipText is the hover text for a recovered (year, value) pair.
func TooltipText(year, value float64) string {
	return fmt.Sprintf("Year: %d, Percent of GDP: %d%%", int(math.Round(year)), int(math.Round(value*100)))
}
