package tui

import (
	"math"
	"strings"

	"github.com/theirongolddev/budgetviz/internal/chart"
	"github.com/theirongolddev/budgetviz/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// canvasMargin is the chart margin in cells. One scene pixel is one cell.
var canvasMargin = chart.Margin{Left: 7, Right: 2, Top: 1, Bottom: 3}

const minCanvasRows = 10

// canvasConfig sizes a render config to a cols x rows cell grid.
func canvasConfig(base chart.RenderConfig, cols, rows int) chart.RenderConfig {
	cfg := base
	cfg.Width, cfg.Height = float64(cols), float64(rows)
	cfg.Margin = canvasMargin
	cfg.HitTolerance = 1
	return cfg
}

// cellToPlot maps a canvas cell to the plot-local position of its center.
func cellToPlot(col, row int) (px, py float64) {
	return float64(col) - canvasMargin.Left + 0.5, float64(row) - canvasMargin.Top + 0.5
}

type cell struct {
	r      rune
	fg, bg lipgloss.Color
}

type canvas struct {
	cols, rows int
	cells      []cell
}

func newCanvas(cols, rows int) *canvas {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	c := &canvas{cols: cols, rows: rows, cells: make([]cell, cols*rows)}
	for i := range c.cells {
		c.cells[i].r = ' '
	}
	return c
}

func (c *canvas) set(col, row int, r rune, fg lipgloss.Color) {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return
	}
	c.cells[row*c.cols+col] = cell{r: r, fg: fg}
}

func (c *canvas) at(col, row int) rune {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return 0
	}
	return c.cells[row*c.cols+col].r
}

func (c *canvas) text(col, row int, s string, fg lipgloss.Color) {
	for i, r := range []rune(s) {
		c.set(col+i, row, r, fg)
	}
}

func (c *canvas) box(col, row int, s string, fg, bg lipgloss.Color) {
	for i, r := range []rune(s) {
		if x := col + i; x >= 0 && x < c.cols && row >= 0 && row < c.rows {
			c.cells[row*c.cols+x] = cell{r: r, fg: fg, bg: bg}
		}
	}
}

// line draws a Bresenham segment between two cells.
func (c *canvas) line(x0, y0, x1, y1 int, fg lipgloss.Color) {
	glyph := slopeGlyph(x1-x0, y1-y0)
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.set(x0, y0, glyph, fg)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// slopeGlyph picks a line-drawing rune for a segment direction. Rows grow
// downwards.
func slopeGlyph(dx, dy int) rune {
	adx, ady := abs(dx), abs(dy)
	switch {
	case ady == 0 || adx >= 2*ady:
		return '─'
	case adx == 0 || ady >= 2*adx:
		return '│'
	case (dy < 0) == (dx > 0):
		return '╱'
	default:
		return '╲'
	}
}

// Plain returns the canvas rows without styling.
func (c *canvas) Plain() []string {
	out := make([]string, c.rows)
	for row := range out {
		rs := make([]rune, c.cols)
		for col := range rs {
			rs[col] = c.cells[row*c.cols+col].r
		}
		out[row] = string(rs)
	}
	return out
}

// Render styles the canvas. Runs of cells sharing colors are rendered
// together; cells without a background get bg.
func (c *canvas) Render(bg lipgloss.Color) string {
	var b strings.Builder
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		cells := c.cells[row*c.cols : (row+1)*c.cols]
		start := 0
		for col := 1; col <= len(cells); col++ {
			if col < len(cells) && cells[col].fg == cells[start].fg && cells[col].bg == cells[start].bg {
				continue
			}
			run := make([]rune, col-start)
			for i := range run {
				run[i] = cells[start+i].r
			}
			cellBg := cells[start].bg
			if cellBg == "" {
				cellBg = bg
			}
			style := lipgloss.NewStyle().Background(cellBg)
			if cells[start].fg != "" {
				style = style.Foreground(cells[start].fg)
			}
			b.WriteString(style.Render(string(run)))
			start = col
		}
	}
	return b.String()
}

// rasterOptions carries the overlay state drawn over a scene.
type rasterOptions struct {
	Theme   theme.Theme
	Tooltip *chart.Tooltip
	// Reveal is the uncovered fraction of the plot while the curtain is up.
	Reveal float64
}

// rasterize draws a scene whose pixel units are cells.
func rasterize(s *chart.Scene, o rasterOptions) *canvas {
	t := o.Theme
	c := newCanvas(int(s.Width), int(s.Height))
	left, top := int(s.Margin.Left), int(s.Margin.Top)
	pw, ph := int(s.PlotWidth), int(s.PlotHeight)
	if pw <= 0 || ph <= 0 {
		return c
	}
	col := func(x float64) int { return left + clampCell(x, pw) }
	row := func(y float64) int { return top + clampCell(y, ph) }

	// Gridlines
	for _, g := range s.YGrid {
		r := row(g.Pos)
		for x := left; x < left+pw; x++ {
			c.set(x, r, '─', t.Grid)
		}
	}
	for _, g := range s.XGrid {
		cc := col(g.Pos)
		for y := top; y < top+ph; y++ {
			if c.at(cc, y) == '─' {
				c.set(cc, y, '┼', t.Grid)
			} else {
				c.set(cc, y, '│', t.Grid)
			}
		}
	}

	// Axes
	axisRow := top + ph
	for y := top; y < axisRow; y++ {
		c.set(left-1, y, '│', t.Axis)
	}
	for x := left; x < left+pw; x++ {
		c.set(x, axisRow, '─', t.Axis)
	}
	c.set(left-1, axisRow, '└', t.Axis)

	for _, tick := range s.YTicks {
		r := row(tick.Pos)
		c.set(left-1, r, '┤', t.Axis)
		label := []rune(tick.Label)
		c.text(left-1-len(label), r, tick.Label, t.Axis)
	}
	lastEnd := -1
	for _, tick := range s.XTicks {
		cc := col(tick.Pos)
		c.set(cc, axisRow, '┬', t.Axis)
		n := len([]rune(tick.Label))
		start := cc - n/2
		if start < 0 {
			start = 0
		}
		if start+n > c.cols {
			start = c.cols - n
		}
		if start <= lastEnd {
			continue
		}
		c.text(start, axisRow+1, tick.Label, t.Axis)
		lastEnd = start + n
	}
	if s.XLabel != "" {
		n := len([]rune(s.XLabel))
		c.text(left+(pw-n)/2, axisRow+2, s.XLabel, t.TextMuted)
	}
	if s.YLabel != "" && top > 0 {
		c.text(0, top-1, s.YLabel, t.TextMuted)
	}

	// Reference line
	if ref := s.Reference; ref.Visible {
		rc := col(ref.X)
		for y := top; y < top+ph; y++ {
			c.set(rc, y, '┆', t.Reference)
		}
		if a := []rune(ref.Actual.Text); rc-1-len(a) >= left {
			c.text(rc-1-len(a), top, ref.Actual.Text, t.Reference)
		}
		if p := []rune(ref.Project.Text); rc+2+len(p) <= left+pw {
			c.text(rc+2, top, ref.Project.Text, t.Reference)
		}
	}

	// Lines
	for _, ser := range s.Series {
		if ser.Empty() {
			continue
		}
		fg := lipgloss.Color(ser.Color)
		for i := 1; i < len(ser.Points); i++ {
			a, b := ser.Points[i-1], ser.Points[i]
			c.line(col(a.X), row(a.Y), col(b.X), row(b.Y), fg)
		}
		for _, p := range ser.Points {
			c.set(col(p.X), row(p.Y), '●', fg)
		}
	}

	// Curtain
	if o.Reveal < 1 {
		from := left + int(math.Max(0, o.Reveal)*float64(pw))
		for y := top; y < top+ph; y++ {
			for x := from; x < left+pw; x++ {
				c.set(x, y, ' ', "")
			}
		}
	}

	// Tooltip
	if tip := o.Tooltip; tip != nil {
		text := " " + tip.Text + " "
		n := len([]rune(text))
		tc, tr := col(tip.X)+2, row(tip.Y)-1
		if tc+n > c.cols {
			tc = col(tip.X) - 1 - n
		}
		if tc < 0 {
			tc = 0
		}
		if tr < top {
			tr = row(tip.Y) + 1
		}
		c.box(tc, tr, text, t.TextPrimary, t.Tooltip)
	}

	return c
}

// clampCell maps a plot-local pixel to a cell index in [0, n).
func clampCell(v float64, n int) int {
	i := int(math.Floor(v))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
