package cli

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/theirongolddev/budgetviz/internal/chart"

	"github.com/guptarohit/asciigraph"
)

// ErrNothingToPlot is returned when a scene has no drawable series.
var ErrNothingToPlot = errors.New("no series to plot")

// PlotConfig holds terminal plot geometry.
type PlotConfig struct {
	Width  int // columns available for the plot body
	Height int
}

// DefaultPlotConfig returns sensible defaults for an 80-column terminal.
func DefaultPlotConfig() PlotConfig {
	return PlotConfig{Width: 70, Height: 15}
}

// ansiPalette mirrors chart.Category10 in terminal colors.
var ansiPalette = []asciigraph.AnsiColor{
	asciigraph.Blue, asciigraph.Orange, asciigraph.Green, asciigraph.Red, asciigraph.Purple,
	asciigraph.Brown, asciigraph.Pink, asciigraph.Gray, asciigraph.Olive, asciigraph.Cyan,
}

// ansiColor maps a palette hex color to its terminal equivalent. Colors
// outside the palette fall back to the terminal default.
func ansiColor(hex string) asciigraph.AnsiColor {
	for i, c := range chart.Category10 {
		if strings.EqualFold(c, hex) {
			return ansiPalette[i]
		}
	}
	return asciigraph.Default
}

// RenderPlot draws a scene's series as a terminal line graph, with a year
// axis underneath marking the reference year.
func RenderPlot(s *chart.Scene, cfg PlotConfig) (string, error) {
	var drawn []chart.Series
	lo, hi := math.MaxInt, math.MinInt
	for _, ser := range s.Series {
		if ser.Empty() || len(ser.Data) == 0 {
			continue
		}
		drawn = append(drawn, ser)
		for _, o := range ser.Data {
			lo, hi = min(lo, o.Year), max(hi, o.Year)
		}
	}
	if len(drawn) == 0 {
		return "", ErrNothingToPlot
	}

	step := 1
	if span := hi - lo; span > 0 && cfg.Width > span {
		step = cfg.Width / span
	}

	data := make([][]float64, 0, len(drawn))
	colors := make([]asciigraph.AnsiColor, 0, len(drawn))
	legends := make([]string, 0, len(drawn))
	for _, ser := range drawn {
		data = append(data, expandSeries(ser, lo, hi, step))
		colors = append(colors, ansiColor(ser.Color))
		legends = append(legends, ser.Category)
	}

	d0, d1 := s.Y.Domain()
	height := cfg.Height
	if height <= 0 {
		height = DefaultPlotConfig().Height
	}
	graph := asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.LowerBound(d0*100),
		asciigraph.UpperBound(d1*100),
		asciigraph.Precision(1),
		asciigraph.Caption(s.Title+" (percent of GDP)"),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(legends...),
	)

	lines := strings.Split(graph, "\n")
	offset := axisOffset(lines[0])
	bottom := 0
	for i, l := range lines {
		if strings.ContainsAny(l, "┤┼") {
			bottom = i
		}
	}
	axis := yearAxis(lo, hi, step, s.Reference)

	var b strings.Builder
	for i, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
		// The year axis goes right under the plot body, above the caption.
		if i == bottom {
			b.WriteString(strings.Repeat(" ", offset))
			b.WriteString(mutedStyle.Render(axis))
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

// expandSeries spreads a series over a column grid with step columns per
// year, interpolating between consecutive years. Columns outside the
// series' years are NaN so asciigraph leaves them blank.
func expandSeries(ser chart.Series, lo, hi, step int) []float64 {
	out := make([]float64, (hi-lo)*step+1)
	for i := range out {
		out[i] = math.NaN()
	}
	prevYear, prevVal := 0, 0.0
	for i, o := range ser.Data {
		col := (o.Year - lo) * step
		v := o.ValuePctGDP * 100
		if i > 0 && o.Year > prevYear {
			from := (prevYear - lo) * step
			for c := from; c < col; c++ {
				t := float64(c-from) / float64(col-from)
				out[c] = prevVal + t*(v-prevVal)
			}
		}
		out[col] = v
		prevYear, prevVal = o.Year, v
	}
	return out
}

// axisOffset returns the column of the y axis in a plot line.
func axisOffset(line string) int {
	n := 0
	for _, r := range line {
		if r == '┤' || r == '┼' {
			return n
		}
		n++
	}
	return 0
}

// yearAxis labels the first, last and reference years under their columns.
func yearAxis(lo, hi, step int, ref chart.Reference) string {
	width := (hi-lo)*step + 1
	row := []rune(strings.Repeat(" ", width+4))
	put := func(col int, s string) bool {
		rs := []rune(s)
		if col < 0 || col+len(rs) > len(row) {
			return false
		}
		for i := range rs {
			if row[col+i] != ' ' {
				return false
			}
		}
		copy(row[col:], rs)
		return true
	}

	put(1, strconv.Itoa(lo))
	if hi != lo {
		last := strconv.Itoa(hi)
		put(width+1-len(last), last)
	}
	if ref.Visible && ref.Year > lo && ref.Year < hi {
		col := (ref.Year-lo)*step + 1
		label := strconv.Itoa(ref.Year)
		put(col-len(label)/2, label)
	}
	return strings.TrimRight(string(row), " ")
}
