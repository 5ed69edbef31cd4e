package chart

import (
	"time"

	"github.com/theirongolddev/budgetviz/internal/model"
)

// State is the mount state of a ChartView.
type State int

const (
	Idle State = iota
	Displaying
)

func (s State) String() string {
	if s == Displaying {
		return "displaying"
	}
	return "idle"
}

// TimerKind says what a Timer does when it fires.
type TimerKind int

const (
	TooltipHide TimerKind = iota
	RevealDone
)

// Timer is a deferred action issued by a mounted chart. The owner sleeps
// for Delay and hands the timer back to Fire. Timers from a torn-down
// mount, or superseded by a later hover, do nothing.
type Timer struct {
	Kind  TimerKind
	Gen   uint64
	Seq   uint64
	Delay time.Duration
}

// Handle identifies one mounted render. It is used only for teardown.
type Handle struct {
	gen   uint64
	scene *Scene
	torn  bool
}

// Scene returns the scene drawn by this mount.
func (h *Handle) Scene() *Scene { return h.scene }

// Gen returns the mount generation.
func (h *Handle) Gen() uint64 { return h.gen }

// Torn reports whether the mount has been replaced.
func (h *Handle) Torn() bool { return h.torn }

// ChartView owns the mounted chart and its transient overlay state.
// It is not safe for concurrent use; callers drive it from one goroutine.
type ChartView struct {
	cfg    RenderConfig
	data   model.Datasets
	colors CategoryColorMap

	state    State
	handle   *Handle
	gen      uint64
	revealed bool

	hoverSeq    uint64
	tooltip     Tooltip
	showTooltip bool
	curtainUp   bool
}

// NewChartView returns an Idle chart over loaded datasets.
func NewChartView(cfg RenderConfig, data model.Datasets, colors CategoryColorMap) *ChartView {
	return &ChartView{cfg: cfg, data: data, colors: colors}
}

// State returns Idle before the first mount and Displaying afterwards.
func (c *ChartView) State() State { return c.state }

// Current returns the live mount, or nil while Idle.
func (c *ChartView) Current() *Handle { return c.handle }

// View returns the view on display, or the default view while Idle.
func (c *ChartView) View() model.View {
	if c.handle == nil {
		return model.DefaultView
	}
	return c.handle.scene.View
}

// Colors returns the session color map.
func (c *ChartView) Colors() CategoryColorMap { return c.colors }

// Mount draws the initial view. Mounting an already displaying chart is
// the same as ChangeView.
func (c *ChartView) Mount(view string) *Handle {
	return c.ChangeView(view)
}

// ChangeView tears down the current mount, defusing its timers and
// overlay, and mounts a fresh render of view.
func (c *ChartView) ChangeView(view string) *Handle {
	if c.handle != nil {
		c.handle.torn = true
	}
	c.showTooltip = false
	c.tooltip = Tooltip{}

	cfg := c.cfg
	if c.revealed {
		cfg.Reveal = 0
	}
	scene := Render(cfg, c.data, c.colors, view)

	c.gen++
	c.handle = &Handle{gen: c.gen, scene: scene}
	c.state = Displaying
	c.curtainUp = scene.Curtain != nil
	c.revealed = true
	return c.handle
}

// Resize changes the drawing surface and remounts the displayed view.
// Timers and overlay state of the previous mount are defused as with
// ChangeView. It returns nil while Idle.
func (c *ChartView) Resize(width, height float64) *Handle {
	c.cfg.Width, c.cfg.Height = width, height
	if c.handle == nil {
		return nil
	}
	return c.ChangeView(string(c.handle.scene.View))
}

// Hover updates the tooltip for a plot-local pointer position. It returns
// false, leaving any visible tooltip in place, when the pointer is off
// every line.
func (c *ChartView) Hover(px, py float64) (Tooltip, bool) {
	if c.handle == nil {
		return Tooltip{}, false
	}
	tip, ok := c.handle.scene.Hover(px, py)
	if !ok {
		return Tooltip{}, false
	}
	c.hoverSeq++
	c.tooltip, c.showTooltip = tip, true
	return tip, true
}

// Leave schedules the tooltip to hide. ok is false when nothing is shown.
func (c *ChartView) Leave() (Timer, bool) {
	if c.handle == nil || !c.showTooltip {
		return Timer{}, false
	}
	return Timer{Kind: TooltipHide, Gen: c.gen, Seq: c.hoverSeq, Delay: c.cfg.TooltipHide}, true
}

// RevealTimer returns the timer that lifts the curtain of the current
// mount. Only the first mount has a curtain.
func (c *ChartView) RevealTimer() (Timer, bool) {
	if c.handle == nil || !c.curtainUp {
		return Timer{}, false
	}
	return Timer{Kind: RevealDone, Gen: c.gen, Delay: c.handle.scene.Curtain.Duration}, true
}

// Fire applies a timer. It returns false for timers that no longer apply.
func (c *ChartView) Fire(t Timer) bool {
	if c.handle == nil || c.handle.torn || t.Gen != c.gen {
		return false
	}
	switch t.Kind {
	case TooltipHide:
		if !c.showTooltip || t.Seq != c.hoverSeq {
			return false
		}
		c.showTooltip = false
		c.tooltip = Tooltip{}
		return true
	case RevealDone:
		if !c.curtainUp {
			return false
		}
		c.curtainUp = false
		return true
	}
	return false
}

// Tooltip returns the visible tooltip.
func (c *ChartView) Tooltip() (Tooltip, bool) {
	return c.tooltip, c.showTooltip
}

// CurtainUp reports whether the reveal curtain still covers the plot.
func (c *ChartView) CurtainUp() bool { return c.curtainUp }
