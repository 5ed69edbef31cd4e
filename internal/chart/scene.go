package chart

import (
	"math"
	"time"

	"github.com/theirongolddev/budgetviz/internal/model"
)

// Point is a plotted position in plot-local pixels. The origin is the
// top-left corner of the plot area.
type Point struct {
	X, Y float64
}

// Tick is one axis tick or gridline.
type Tick struct {
	Value float64
	Pos   float64
	Label string
}

// Series is the polyline drawn for one category. A category with no rows
// in the active dataset has no points.
type Series struct {
	Category string
	Color    string
	Data     []model.Observation
	Points   []Point
}

// Empty reports whether the series has nothing to draw.
func (s Series) Empty() bool {
	return len(s.Points) == 0
}

// Label is a positioned piece of static text.
type Label struct {
	Text   string
	X, Y   float64
	Anchor string // "start", "middle" or "end"
}

// Reference is the vertical actual/projection boundary.
type Reference struct {
	Year    int
	X       float64
	Visible bool
	Actual  Label
	Project Label
}

// LegendEntry is one swatch and label.
type LegendEntry struct {
	Category string
	Color    string
	X, Y     float64
}

// Control is a view-switch button, positioned in the top margin.
type Control struct {
	View      model.View
	Label     string
	Active    bool
	Available bool
	X, Y      float64
	W, H      float64
}

// Contains reports whether a plot-local point falls on the control.
func (c Control) Contains(x, y float64) bool {
	return x >= c.X && x < c.X+c.W && y >= c.Y && y < c.Y+c.H
}

// Curtain covers the plot and is animated away after Duration.
type Curtain struct {
	X, Y, W, H float64
	Duration   time.Duration
}

// Tooltip is the hover readout for one pointer position.
type Tooltip struct {
	Text     string
	Category string
	Year     float64
	Value    float64
	X, Y     float64
}

// Scene is everything one render draws. It holds no references to the
// datasets it was built from beyond the per-series observation copies.
type Scene struct {
	Title     string
	View      model.View
	Requested string
	FellBack  bool

	Width, Height         float64
	Margin                Margin
	PlotWidth, PlotHeight float64

	X, Y           Linear
	XTicks, YTicks []Tick
	XGrid, YGrid   []Tick
	XLabel, YLabel string

	Series    []Series
	Reference Reference
	Legend    []LegendEntry
	Controls  []Control
	Curtain   *Curtain

	// TooltipHide is how long a tooltip lingers after the pointer leaves.
	TooltipHide time.Duration

	hitTolerance float64
}

// Control returns the control under a plot-local point.
func (s *Scene) Control(x, y float64) (Control, bool) {
	for _, c := range s.Controls {
		if c.Contains(x, y) {
			return c, true
		}
	}
	return Control{}, false
}

// Hover hit-tests a plot-local pointer position against the drawn lines.
// When the pointer is on a line, both scales are inverted at the pointer
// to recover the (year, value) shown in the tooltip.
func (s *Scene) Hover(px, py float64) (Tooltip, bool) {
	if px < 0 || py < 0 || px > s.PlotWidth || py > s.PlotHeight {
		return Tooltip{}, false
	}

	best, bestDist := -1, math.Inf(1)
	for i, ser := range s.Series {
		if d := distanceToPolyline(ser.Points, px, py); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 || bestDist > s.hitTolerance {
		return Tooltip{}, false
	}

	year, value := s.X.Invert(px), s.Y.Invert(py)
	return Tooltip{
		Text:     TooltipText(year, value),
		Category: s.Series[best].Category,
		Year:     year,
		Value:    value,
		X:        px,
		Y:        py,
	}, true
}

func distanceToPolyline(pts []Point, x, y float64) float64 {
	switch len(pts) {
	case 0:
		return math.Inf(1)
	case 1:
		return math.Hypot(pts[0].X-x, pts[0].Y-y)
	}
	best := math.Inf(1)
	for i := 1; i < len(pts); i++ {
		if d := distanceToSegment(pts[i-1], pts[i], x, y); d < best {
			best = d
		}
	}
	return best
}

func distanceToSegment(a, b Point, x, y float64) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(a.X-x, a.Y-y)
	}
	t := ((x-a.X)*dx + (y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(a.X+t*dx-x, a.Y+t*dy-y)
}
