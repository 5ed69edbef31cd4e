package export

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/theirongolddev/budgetviz/internal/chart"
)

// chartID names both the page element and the generated JS instance
// variable, so it must be a valid identifier.
const chartID = "budget_chart"

const instance = "goecharts_" + chartID

// tooltipJS inverts the last pointer position through the grid scales, so
// the tooltip reports the year and percent under the cursor rather than
// the nearest data point.
const tooltipJS = `function (params) {
	var p = window.budgetPointer;
	if (!p) { return ''; }
	var v = ` + instance + `.convertFromPixel({gridIndex: 0}, p);
	return 'Year: ' + Math.round(v[0]) + ', Percent of GDP: ' + Math.round(v[1]) + '%';
}`

const pointerJS = instance + `.getZr().on('mousemove', function (e) {
	window.budgetPointer = [e.offsetX, e.offsetY];
});`

const yearLabelJS = `function (v) { return String(v); }`

const axisLabelJS = `function (v) { return v + '%'; }`

// Interactive writes a standalone ECharts page for the scene. Values are
// plotted in percent; a scene without points still shows its axes.
func Interactive(w io.Writer, s *chart.Scene) error {
	if err := BuildLine(s).Render(w); err != nil {
		return fmt.Errorf("rendering echarts page: %w", err)
	}
	return nil
}

// BuildLine converts a scene to a configured ECharts line chart. Years sit
// on a value axis spanning the scene's x domain, so missing years are gaps.
func BuildLine(s *chart.Scene) *charts.Line {
	x0, x1 := padded(s.X.Domain())
	y0, y1 := s.Y.Domain()
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: s.Title,
			ChartID:   chartID,
			Width:     fmt.Sprintf("%dpx", int(s.Width)),
			Height:    fmt.Sprintf("%dpx", int(s.Height)),
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    s.Title,
			Subtitle: string(s.View),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:        opts.Bool(true),
			Trigger:     "axis",
			Formatter:   opts.FuncOpts(tooltipJS),
			AxisPointer: &opts.AxisPointer{Type: "cross", Snap: opts.Bool(false)},
		}),
		charts.WithLegendOpts(opts.Legend{
			Show:   opts.Bool(true),
			Orient: "vertical",
			Left:   "right",
			Top:    "middle",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      s.XLabel,
			Type:      "value",
			Min:       math.Floor(x0),
			Max:       math.Ceil(x1),
			AxisLabel: &opts.AxisLabel{Formatter: string(opts.FuncOpts(yearLabelJS))},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      s.YLabel,
			Type:      "value",
			Min:       math.Round(y0 * 100),
			Max:       math.Round(y1 * 100),
			AxisLabel: &opts.AxisLabel{Formatter: string(opts.FuncOpts(axisLabelJS))},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true)},
		}),
	)

	line.AddJSFuncs(pointerJS, hideDelayJS(s))

	marked := false
	ref := s.Reference
	for _, ser := range s.Series {
		if ser.Empty() {
			continue
		}
		data := make([]opts.LineData, len(ser.Data))
		for i, o := range ser.Data {
			data[i] = opts.LineData{Value: []interface{}{o.Year, math.Round(o.ValuePctGDP*1000) / 10}}
		}

		seriesOpts := []charts.SeriesOpts{
			charts.WithLineStyleOpts(opts.LineStyle{Color: ser.Color, Width: 2}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: ser.Color}),
		}
		if ref.Visible && !marked {
			seriesOpts = append(seriesOpts, referenceMark(ref)...)
			marked = true
		}
		line.AddSeries(ser.Category, data, seriesOpts...)
	}
	if ref.Visible && !marked {
		// No line to hang the mark on; an empty carrier keeps it drawn.
		line.AddSeries("", []opts.LineData{}, referenceMark(ref)...)
	}
	return line
}

func referenceMark(ref chart.Reference) []charts.SeriesOpts {
	return []charts.SeriesOpts{
		charts.WithMarkLineNameXAxisItemOpts(opts.MarkLineNameXAxisItem{
			Name:  ref.Actual.Text + " | " + ref.Project.Text,
			XAxis: ref.Year,
		}),
		charts.WithMarkLineStyleOpts(opts.MarkLineStyle{
			Symbol: []string{"none", "none"},
			Label:  &opts.Label{Show: opts.Bool(true), Formatter: "{b}"},
		}),
	}
}

// hideDelayJS keeps the tooltip up for the scene's hide delay once the
// pointer leaves the plot. ECharts reads hideDelay from the live option.
func hideDelayJS(s *chart.Scene) string {
	ms := s.TooltipHide.Milliseconds()
	return fmt.Sprintf(`%s.setOption({tooltip: {hideDelay: %d}});`, instance, ms)
}
