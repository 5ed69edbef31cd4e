// Package export writes chart scenes as static images and interactive pages.
package export

import (
	"fmt"
	"io"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/theirongolddev/budgetviz/internal/chart"
)

// Format names an output encoding.
type Format string

const (
	FormatSVG       Format = "svg"        // scene SVG with controls and tooltips
	FormatPNG       Format = "png"        // go-chart raster
	FormatStaticSVG Format = "svg-static" // go-chart vector
	FormatHTML      Format = "html"       // ECharts page
)

// Formats lists every supported format.
var Formats = []Format{FormatSVG, FormatPNG, FormatStaticSVG, FormatHTML}

// ParseFormat resolves a format name, also accepting a file extension.
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "."))
	if name == "htm" {
		name = "html"
	}
	for _, f := range Formats {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want svg, png, svg-static or html)", name)
}

// Write encodes a scene in the given format.
func Write(w io.Writer, s *chart.Scene, f Format) error {
	switch f {
	case FormatSVG:
		return chart.WriteSVG(w, s)
	case FormatPNG:
		return Static(w, s, gochart.PNG)
	case FormatStaticSVG:
		return Static(w, s, gochart.SVG)
	case FormatHTML:
		return Interactive(w, s)
	}
	return fmt.Errorf("unknown format %q", f)
}

// Static renders the scene with go-chart. Empty lines are left out; the
// reference year becomes a dashed vertical series. A scene without points
// still gets its axes, grid and reference line.
func Static(w io.Writer, s *chart.Scene, provider gochart.RendererProvider) error {
	var series []gochart.Series
	for _, ser := range s.Series {
		if ser.Empty() {
			continue
		}
		xs := make([]float64, len(ser.Data))
		ys := make([]float64, len(ser.Data))
		for i, o := range ser.Data {
			xs[i] = float64(o.Year)
			ys[i] = o.ValuePctGDP
		}
		col := hexColor(ser.Color)
		series = append(series, gochart.ContinuousSeries{
			Name:    ser.Category,
			XValues: xs,
			YValues: ys,
			Style: gochart.Style{
				StrokeColor: col,
				StrokeWidth: 2,
				DotColor:    col,
				DotWidth:    3,
			},
		})
	}
	plotted := len(series)

	x0, x1 := padded(s.X.Domain())
	y0, y1 := padded(s.Y.Domain())
	if plotted == 0 {
		// go-chart refuses to draw without a visible series.
		series = append(series, gochart.ContinuousSeries{
			XValues: []float64{x0, x1},
			YValues: []float64{y0, y0},
			Style:   gochart.Style{StrokeColor: invisible, StrokeWidth: 1},
		})
	}

	if ref := s.Reference; ref.Visible {
		fy := float64(ref.Year)
		series = append(series,
			gochart.ContinuousSeries{
				Name:    fmt.Sprintf("%d actual / projection", ref.Year),
				XValues: []float64{fy, fy},
				YValues: []float64{y0, y1},
				Style: gochart.Style{
					StrokeColor:     drawing.ColorFromHex("555555"),
					StrokeWidth:     1,
					StrokeDashArray: []float64{4, 4},
				},
			},
			gochart.AnnotationSeries{
				Annotations: []gochart.Value2{
					{XValue: fy, YValue: y1, Label: ref.Actual.Text},
					{XValue: fy, YValue: y1 - (y1-y0)/12, Label: ref.Project.Text},
				},
			},
		)
	}

	format := chart.PercentFormatter(s.Y.TickStep(10))
	graph := gochart.Chart{
		Title:  s.Title,
		Width:  int(s.Width),
		Height: int(s.Height),
		Background: gochart.Style{
			Padding: gochart.Box{
				Top:    int(s.Margin.Top),
				Left:   int(s.Margin.Left) / 3,
				Right:  int(s.Margin.Right),
				Bottom: int(s.Margin.Bottom) / 3,
			},
		},
		XAxis: gochart.XAxis{
			Name:           s.XLabel,
			Range:          &gochart.ContinuousRange{Min: x0, Max: x1},
			Ticks:          toTicks(s.XTicks),
			GridLines:      toGridLines(s.XGrid),
			GridMajorStyle: gridStyle(),
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return chart.FormatYear(f)
				}
				return ""
			},
		},
		YAxis: gochart.YAxis{
			Name:           s.YLabel,
			Range:          &gochart.ContinuousRange{Min: y0, Max: y1},
			Ticks:          toTicks(s.YTicks),
			GridLines:      toGridLines(s.YGrid),
			GridMajorStyle: gridStyle(),
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return format(f)
				}
				return ""
			},
		},
		Series: series,
	}
	if plotted > 0 {
		graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}
	}

	if err := graph.Render(provider, w); err != nil {
		return fmt.Errorf("chart render failed: %w", err)
	}
	return nil
}

// padded widens a zero-width domain, which go-chart refuses to draw.
func padded(lo, hi float64) (float64, float64) {
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == hi {
		return lo - 1, hi + 1
	}
	return lo, hi
}

func toTicks(in []chart.Tick) []gochart.Tick {
	out := make([]gochart.Tick, 0, len(in))
	for _, t := range in {
		out = append(out, gochart.Tick{Value: t.Value, Label: t.Label})
	}
	return out
}

func toGridLines(in []chart.Tick) []gochart.GridLine {
	out := make([]gochart.GridLine, 0, len(in))
	for _, t := range in {
		out = append(out, gochart.GridLine{Value: t.Value})
	}
	return out
}

func gridStyle() gochart.Style {
	return gochart.Style{
		StrokeColor: drawing.ColorFromHex("e0e0e0"),
		StrokeWidth: 1,
	}
}

// invisible is fully transparent but not the zero color, which go-chart
// replaces with a palette default.
var invisible = drawing.Color{R: 255, G: 255, B: 255, A: 0}

func hexColor(s string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
}
