// Package chart builds budget projection charts as backend-neutral scenes
// and manages the mounted chart's view switching.
package chart

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/budgetviz/internal/config"
	"github.com/theirongolddev/budgetviz/internal/model"
)

// Margin is the space around the plot area, in pixels.
type Margin struct {
	Left, Right, Top, Bottom float64
}

// RenderConfig is the immutable input geometry and behavior of a render.
type RenderConfig struct {
	Width, Height float64
	Margin        Margin
	ReferenceYear int

	// Categories is the ordered filter list drawn for each view. An empty
	// list draws every category of the dataset in first-appearance order.
	Categories map[model.View][]string

	TooltipHide  time.Duration
	Reveal       time.Duration
	HitTolerance float64

	AxisTicks int
	GridTicks int
}

// DefaultRenderConfig returns the stock 960x600 chart.
func DefaultRenderConfig() RenderConfig {
	return RenderConfigFrom(config.DefaultConfig())
}

// RenderConfigFrom derives the render geometry from the user config.
func RenderConfigFrom(cfg config.Config) RenderConfig {
	c := cfg.Chart
	return RenderConfig{
		Width:  float64(c.Width),
		Height: float64(c.Height),
		Margin: Margin{
			Left:   float64(c.Margin.Left),
			Right:  float64(c.Margin.Right),
			Top:    float64(c.Margin.Top),
			Bottom: float64(c.Margin.Bottom),
		},
		ReferenceYear: c.ReferenceYear,
		Categories:    cfg.CategoryMap(),
		TooltipHide:   time.Duration(c.TooltipHideMS) * time.Millisecond,
		Reveal:        time.Duration(c.RevealMS) * time.Millisecond,
		HitTolerance:  6,
		AxisTicks:     10,
		GridTicks:     5,
	}
}

// ColorsFrom builds the session color map, applying [colors] overrides.
func ColorsFrom(cfg config.Config, data model.Datasets) CategoryColorMap {
	filters := cfg.CategoryMap()
	overrides := make(map[string]string)
	check := func(cat string) {
		if hex, ok := cfg.ColorOverride(cat); ok {
			overrides[cat] = hex
		}
	}
	for _, v := range model.Views {
		for _, cat := range filters[v] {
			check(cat)
		}
		if d, ok := data.Get(v); ok {
			for _, cat := range d.Categories() {
				check(cat)
			}
		}
	}
	return NewCategoryColorMap(data, filters, overrides)
}

// PlotWidth returns the width of the plot area.
func (c RenderConfig) PlotWidth() float64 {
	return math.Max(0, c.Width-c.Margin.Left-c.Margin.Right)
}

// PlotHeight returns the height of the plot area.
func (c RenderConfig) PlotHeight() float64 {
	return math.Max(0, c.Height-c.Margin.Top-c.Margin.Bottom)
}

// Filters returns the category list drawn for view against dataset d.
func (c RenderConfig) Filters(v model.View, d model.Dataset) []string {
	if cats := c.Categories[v]; len(cats) > 0 {
		return append([]string(nil), cats...)
	}
	return d.Categories()
}

var titles = map[model.View]string{
	model.Overview: "Federal Debt, Spending and Revenues",
	model.Spending: "Federal Spending by Category",
	model.Revenue:  "Federal Revenues by Source",
}

// ResolveView picks the view actually drawn for a requested name. Unknown
// names and views whose dataset was not loaded fall back to Overview.
func ResolveView(data model.Datasets, name string) (model.View, bool) {
	if strings.TrimSpace(name) == "" {
		return model.Overview, false
	}
	v, ok := model.ParseView(name)
	if !ok {
		return model.Overview, true
	}
	if _, loaded := data.Get(v); !loaded {
		return model.Overview, v != model.Overview
	}
	return v, false
}

// DomainScales returns the un-niced scales for a dataset: years onto
// [0, w] and [0, max value] onto [h, 0]. Negative values pull the lower
// bound below zero; a dataset with no positive value gets [0, 1].
func DomainScales(d model.Dataset, w, h float64) (x, y Linear) {
	lo, hi, ok := d.YearRange()
	if !ok {
		lo, hi = 0, 0
	}
	x = NewLinear(float64(lo), float64(hi), 0, w)

	top := d.MaxValue()
	if top <= 0 {
		top = 1
	}
	bottom := 0.0
	for _, o := range d.Observations {
		bottom = math.Min(bottom, o.ValuePctGDP)
	}
	y = NewLinear(bottom, top, h, 0)
	return x, y
}

// Render draws one view of the datasets. It is a pure function of its
// arguments: the same inputs always produce an identical scene.
func Render(cfg RenderConfig, data model.Datasets, colors CategoryColorMap, name string) *Scene {
	view, fellBack := ResolveView(data, name)
	d, _ := data.Get(view)

	pw, ph := cfg.PlotWidth(), cfg.PlotHeight()
	rawX, rawY := DomainScales(d, pw, ph)
	axisTicks, gridTicks := cfg.AxisTicks, cfg.GridTicks
	if axisTicks <= 0 {
		axisTicks = 10
	}
	if gridTicks <= 0 {
		gridTicks = 5
	}

	s := &Scene{
		Title:        titles[view],
		View:         view,
		Requested:    name,
		FellBack:     fellBack,
		Width:        cfg.Width,
		Height:       cfg.Height,
		Margin:       cfg.Margin,
		PlotWidth:    pw,
		PlotHeight:   ph,
		X:            rawX.Nice(axisTicks),
		Y:            rawY.Nice(axisTicks),
		XLabel:       "Year",
		YLabel:       "Percent of GDP",
		TooltipHide:  cfg.TooltipHide,
		hitTolerance: cfg.HitTolerance,
	}

	s.XTicks = yearTicks(s.X, axisTicks)
	s.YTicks = percentTicks(s.Y, axisTicks)
	s.XGrid = yearTicks(s.X, gridTicks)
	s.YGrid = percentTicks(s.Y, gridTicks)

	for _, cat := range cfg.Filters(view, d) {
		s.Series = append(s.Series, buildSeries(s.X, s.Y, cat, colors.Color(cat), d.Filter(cat)))
	}

	s.Reference = buildReference(s.X, cfg.ReferenceYear)

	for i, cat := range d.Categories() {
		s.Legend = append(s.Legend, LegendEntry{
			Category: cat,
			Color:    colors.Color(cat),
			X:        10,
			Y:        10 + 20*float64(i),
		})
	}

	for i, v := range model.Views {
		_, loaded := data.Get(v)
		s.Controls = append(s.Controls, Control{
			View:      v,
			Label:     string(v),
			Active:    v == view,
			Available: loaded,
			X:         float64(i) * 100,
			Y:         -cfg.Margin.Top + 10,
			W:         90,
			H:         24,
		})
	}

	if cfg.Reveal > 0 {
		s.Curtain = &Curtain{W: pw, H: ph, Duration: cfg.Reveal}
	}
	return s
}

func buildSeries(x, y Linear, cat, color string, obs []model.Observation) Series {
	sorted := make([]model.Observation, len(obs))
	copy(sorted, obs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Year < sorted[j].Year
	})

	ser := Series{Category: cat, Color: color, Data: sorted}
	for _, o := range sorted {
		ser.Points = append(ser.Points, Point{X: x.Apply(float64(o.Year)), Y: y.Apply(o.ValuePctGDP)})
	}
	return ser
}

func buildReference(x Linear, year int) Reference {
	ref := Reference{Year: year}
	lo, hi := x.Domain()
	if lo > hi {
		lo, hi = hi, lo
	}
	fy := float64(year)
	if lo == hi || fy < lo || fy > hi {
		return ref
	}
	ref.Visible = true
	ref.X = x.Apply(fy)
	ref.Actual = Label{Text: "Actual", X: ref.X - 5, Y: 15, Anchor: "end"}
	ref.Project = Label{Text: "Projection", X: ref.X + 5, Y: 15, Anchor: "start"}
	return ref
}

// yearTicks keeps only whole years so narrow domains never show 2019.5.
func yearTicks(x Linear, count int) []Tick {
	var out []Tick
	for _, v := range x.Ticks(count) {
		if v != math.Trunc(v) {
			continue
		}
		out = append(out, Tick{Value: v, Pos: x.Apply(v), Label: FormatYear(v)})
	}
	return out
}

func percentTicks(y Linear, count int) []Tick {
	format := PercentFormatter(y.TickStep(count))
	var out []Tick
	for _, v := range y.Ticks(count) {
		out = append(out, Tick{Value: v, Pos: y.Apply(v), Label: format(v)})
	}
	return out
}
