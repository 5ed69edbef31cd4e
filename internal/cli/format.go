// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a GDP fraction as a percentage string.
// e.g., 0.2134 -> "21.3%"
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatDelta formats the change between two GDP fractions in percentage
// points, always signed. e.g., (0.23, 0.21) -> "+2.0 pp"
func FormatDelta(current, previous float64) string {
	delta := (current - previous) * 100
	if math.Abs(delta) < 0.05 {
		delta = 0
	}
	if delta >= 0 {
		return fmt.Sprintf("+%.1f pp", delta)
	}
	return fmt.Sprintf("%.1f pp", delta)
}

// FormatYears formats an inclusive year span. e.g., (2019, 2029) -> "2019-2029"
func FormatYears(first, last int) string {
	if first == last {
		return strconv.Itoa(first)
	}
	return fmt.Sprintf("%d-%d", first, last)
}

// FormatElapsed formats a load time. e.g., 1500ms -> "1.5s", 40ms -> "40ms"
func FormatElapsed(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
