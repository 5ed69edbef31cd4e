// Package tui provides the interactive Bubble Tea dashboard for budgetviz.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/budgetviz/internal/chart"
	"github.com/theirongolddev/budgetviz/internal/config"
	"github.com/theirongolddev/budgetviz/internal/model"
	"github.com/theirongolddev/budgetviz/internal/pipeline"
	"github.com/theirongolddev/budgetviz/internal/store"
	"github.com/theirongolddev/budgetviz/internal/tui/components"
	"github.com/theirongolddev/budgetviz/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

// DataLoadedMsg is sent when the data pipeline finishes.
type DataLoadedMsg struct {
	Result   *pipeline.LoadResult
	Err      error
	LoadTime time.Duration
}

// ProgressMsg reports dataset fetch progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// timerMsg hands a chart timer back after its delay.
type timerMsg struct {
	timer chart.Timer
}

// revealFrameMsg advances the curtain animation of one mount.
type revealFrameMsg struct {
	gen uint64
}

// Options configures the dashboard.
type Options struct {
	Config config.Config
	// Sources overrides the configured dataset locations.
	Sources []pipeline.Source
	View    string
	NoCache bool
	Offline bool
	// Setup shows the setup form before the first load.
	Setup bool
}

// App is the root Bubble Tea model.
type App struct {
	opts Options
	cfg  config.Config

	// Data
	data      model.Datasets
	result    *pipeline.LoadResult
	loadErr   error
	loadTime  time.Duration
	reloading bool

	// Mounted chart
	chart      *chart.ChartView
	view       string // requested view name
	revealFrac float64
	revealStep float64

	// UI state
	width      int
	height     int
	showHelp   bool
	notice     string
	zones      *zone.Manager
	zonePrefix string

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues

	// Loading: channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg // progress + completion messages from loader goroutine
}

const (
	minTerminalWidth  = 80
	minTerminalHeight = 18
	maxContentWidth   = 180

	legendWidth   = 30
	headerHeight  = 2 // tab bar + info row
	metricsHeight = 4
	statusHeight  = 1

	revealFrame = 50 * time.Millisecond
	canvasZone  = "canvas"
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	a := App{
		opts:       opts,
		cfg:        opts.Config,
		view:       opts.View,
		revealFrac: 1,
		spinner:    sp,
		loadSub:    make(chan tea.Msg, 1),
		zones:      zone.New(),
	}
	a.zonePrefix = a.zones.NewPrefix()
	if a.view == "" {
		a.view = a.cfg.Chart.DefaultView
	}
	if opts.Setup {
		vals := SetupValuesFrom(a.cfg)
		a.setupVals = &vals
		a.setupForm = NewSetupForm(a.setupVals)
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnableMouseAllMotion, // hover needs motion without a pressed button
		a.spinner.Tick,
	}
	if a.setupForm != nil {
		cmds = append(cmds, a.setupForm.Init())
	} else {
		cmds = append(cmds, loadDataCmd(a.loadRequest(), a.loadSub))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Forward to setup form if active
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		if a.chart != nil {
			cols, rows := a.canvasSize()
			a.chart.Resize(float64(cols), float64(rows))
		}
		return a, nil

	case tea.MouseMsg:
		if a.chart == nil || a.showHelp || a.setupForm != nil {
			return a, nil
		}

		switch {
		case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
			if v, ok := a.tabAt(msg); ok {
				return a, a.switchView(v)
			}
			return a, nil

		case msg.Action == tea.MouseActionMotion:
			if col, row, ok := a.canvasCell(msg); ok {
				return a, a.hoverCell(col, row)
			}
			return a, a.leave()
		}
		return a, nil

	case tea.KeyMsg:
		key := msg.String()

		// Global: quit
		if key == "ctrl+c" {
			return a, tea.Quit
		}

		// Setup form intercepts all keys
		if a.setupForm != nil {
			return a.updateSetupForm(msg)
		}

		if a.chart == nil {
			switch {
			case key == "q":
				return a, tea.Quit
			case key == "R" && a.loadErr != nil && !a.reloading:
				return a, a.reload()
			}
			return a, nil
		}

		// Help toggle
		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}

		// Dismiss help
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		switch key {
		case "q":
			return a, tea.Quit
		case "R":
			if !a.reloading {
				return a, a.reload()
			}
			return a, nil
		case "left":
			return a, a.cycleView(-1)
		case "right":
			return a, a.cycleView(1)
		}

		if len(msg.Runes) == 1 {
			if i := components.TabIdxByKey(msg.Runes[0]); i >= 0 {
				return a, a.switchView(components.Tabs[i].View)
			}
		}
		return a, nil

	case DataLoadedMsg:
		a.loadTime = msg.LoadTime
		a.reloading = false
		if msg.Err != nil {
			a.loadErr = msg.Err
			return a, nil
		}
		a.loadErr = nil
		a.result = msg.Result
		a.data = msg.Result.Datasets
		if msg.Result.CacheErr != nil {
			a.notice = "cache not updated: " + msg.Result.CacheErr.Error()
		}
		return a, a.mountChart()

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case timerMsg:
		if a.chart != nil && a.chart.Fire(msg.timer) && msg.timer.Kind == chart.RevealDone {
			a.revealFrac = 1
		}
		return a, nil

	case revealFrameMsg:
		if a.chart == nil || !a.chart.CurtainUp() || a.chart.Current().Gen() != msg.gen {
			return a, nil
		}
		a.revealFrac += a.revealStep
		if a.revealFrac >= 1 {
			a.revealFrac = 1
			return a, nil
		}
		return a, revealFrameCmd(msg.gen)

	case spinner.TickMsg:
		if a.chart == nil {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.setupVals.Apply(&a.cfg)
		theme.SetActive(a.cfg.Appearance.Theme)
		if err := config.Save(a.cfg); err != nil {
			a.notice = fmt.Sprintf("config not saved: %v", err)
		}
		a.opts.Sources = nil
		a.view = a.cfg.Chart.DefaultView
		a.setupForm = nil
		return a, loadDataCmd(a.loadRequest(), a.loadSub)

	case huh.StateAborted:
		a.setupForm = nil
		return a, loadDataCmd(a.loadRequest(), a.loadSub)
	}

	return a, cmd
}

// ─── Chart ──────────────────────────────────────────────────────

// mountChart builds a chart over freshly loaded data. Only the first
// load plays the curtain reveal.
func (a *App) mountChart() tea.Cmd {
	base := chart.RenderConfigFrom(a.cfg)
	if a.chart != nil {
		base.Reveal = 0
	}
	cols, rows := a.canvasSize()
	a.chart = chart.NewChartView(canvasConfig(base, cols, rows), a.data, chart.ColorsFrom(a.cfg, a.data))
	a.chart.Mount(a.view)

	t, ok := a.chart.RevealTimer()
	if !ok {
		a.revealFrac = 1
		return nil
	}
	a.revealFrac = 0
	a.revealStep = float64(revealFrame) / float64(t.Delay)
	return tea.Batch(timerCmd(t), revealFrameCmd(t.Gen))
}

func (a *App) switchView(v model.View) tea.Cmd {
	a.view = string(v)
	if a.chart != nil {
		a.chart.ChangeView(a.view)
	}
	return nil
}

func (a *App) cycleView(step int) tea.Cmd {
	cur := 0
	for i, tab := range components.Tabs {
		if tab.View == a.activeView() {
			cur = i
		}
	}
	n := len(components.Tabs)
	return a.switchView(components.Tabs[(cur+step+n)%n].View)
}

// activeView returns the view on screen, or the requested one before the
// chart is mounted.
func (a App) activeView() model.View {
	if a.chart != nil && a.chart.Current() != nil {
		return a.chart.View()
	}
	v, _ := model.ParseView(a.view)
	return v
}

// hoverCell updates the tooltip for a pointer over a canvas cell.
func (a *App) hoverCell(col, row int) tea.Cmd {
	px, py := cellToPlot(col, row)
	if _, ok := a.chart.Hover(px, py); ok {
		return nil
	}
	return a.leave()
}

// leave schedules the tooltip to hide.
func (a *App) leave() tea.Cmd {
	if a.chart == nil {
		return nil
	}
	t, ok := a.chart.Leave()
	if !ok {
		return nil
	}
	return timerCmd(t)
}

func (a *App) reload() tea.Cmd {
	a.reloading = true
	a.progress, a.progressMax = 0, 0
	return loadDataCmd(a.loadRequest(), a.loadSub)
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

// canvasSize returns the chart canvas dimensions in cells.
func (a App) canvasSize() (cols, rows int) {
	cols = a.contentWidth() - legendWidth
	if cols < minTerminalWidth-legendWidth {
		cols = minTerminalWidth - legendWidth
	}
	rows = a.height - headerHeight - metricsHeight - statusHeight
	if rows < minCanvasRows {
		rows = minCanvasRows
	}
	return cols, rows
}

// ─── View ───────────────────────────────────────────────────────

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth || a.height < minTerminalHeight {
		return a.viewTooSmall()
	}

	if a.setupForm != nil {
		return a.setupForm.View()
	}

	if a.chart == nil {
		if a.loadErr != nil && !a.reloading {
			return a.viewError()
		}
		return a.viewLoading()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.zones.Scan(a.viewMain())
}

func (a App) viewTooSmall() string {
	h := a.height
	if h < 5 {
		h = 5
	}

	msg := fmt.Sprintf(
		"\n  Terminal too small (%dx%d)\n\n  budgetviz needs at least %dx%d.\n",
		a.width, a.height,
		minTerminalWidth, minTerminalHeight,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active
	w := a.width
	h := a.height

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	subtitleStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	spinnerStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface)

	countStyle := lipgloss.NewStyle().
		Foreground(t.TextPrimary).
		Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ budgetviz"))
	b.WriteString(subtitleStyle.Render(" · Budget Projections"))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := 40
		if barW > w-30 {
			barW = w - 30
		}
		if barW < 20 {
			barW = 20
		}
		pct := float64(a.progress) / float64(a.progressMax)
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Loading datasets\n\n"))
		b.WriteString(components.ProgressBar(pct, barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(fmt.Sprintf("%d", a.progress)))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(fmt.Sprintf("%d", a.progressMax)))
	} else {
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Fetching datasets..."))
	}

	card := cardStyle.Render(b.String())

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewError() string {
	t := theme.Active
	w := a.width
	h := a.height

	cardW := w - 20
	if cardW > 90 {
		cardW = 90
	}

	errStyle := lipgloss.NewStyle().
		Foreground(t.Red).
		Background(t.Surface).
		Width(components.CardInnerWidth(cardW))
	hintStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)

	body := errStyle.Render(a.loadErr.Error()) + "\n\n" +
		hintStyle.Render("[R] retry  [q] quit")
	card := components.ContentCard("Could not load datasets", body, cardW)

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active
	h := a.height
	w := a.width

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	sectionStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	dimStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)

	sections := []struct {
		name     string
		bindings []struct{ key, desc string }
	}{
		{"Views", []struct{ key, desc string }{
			{"o s r", "Overview / Spending / Revenue"},
			{"← →", "Previous / Next view"},
			{"click", "Select a view tab"},
		}},
		{"Chart", []struct{ key, desc string }{
			{"hover", "Read year and percent of GDP"},
		}},
		{"Actions", []struct{ key, desc string }{
			{"R", "Reload datasets"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard & Mouse"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.name))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-8s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	card := cardStyle.Render(b.String())

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height
	scene := a.chart.Current().Scene()

	// 1. Header: tab bar + title/notice row
	available := func(v model.View) bool {
		for _, c := range scene.Controls {
			if c.View == v {
				return c.Available
			}
		}
		return false
	}
	header := components.RenderTabBar(scene.View, available, a.zones, a.zonePrefix, w) + "\n" +
		a.renderInfoRow(scene, w)

	// 2. Status bar
	readout := ""
	tip, showTip := a.chart.Tooltip()
	if showTip {
		readout = tip.Text
	}
	statusBar := components.RenderStatusBar(w, readout, a.dataInfo(), a.reloading)

	// 3. Content zone height
	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)

	// 4. Metrics strip, canvas and legend
	metrics := components.MetricCardRow(a.metrics(scene), cw)

	opts := rasterOptions{Theme: t, Reveal: 1}
	if showTip {
		opts.Tooltip = &tip
	}
	if a.chart.CurtainUp() {
		opts.Reveal = a.revealFrac
	}
	cv := rasterize(scene, opts)
	canvas := a.zones.Mark(a.zonePrefix+canvasZone, cv.Render(t.Background))
	legend := truncateHeight(a.renderLegend(scene), cv.rows)
	body := lipgloss.JoinHorizontal(lipgloss.Top, canvas, legend)

	content := lipgloss.JoinVertical(lipgloss.Left, metrics, body)

	// 5. Truncate + pad to exactly contentH lines
	content = padHeight(truncateHeight(content, contentH), contentH)

	// 6. Fill each line to full width with background
	content = fillLinesWithBackground(content, cw, t.Background)

	// 7. Place content with background fill (handles centering when w > cw)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)

	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) renderInfoRow(scene *chart.Scene, w int) string {
	t := theme.Active

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Background(t.Surface).Width(w)

	left := titleStyle.Render(" " + scene.Title)

	var right string
	switch {
	case a.loadErr != nil:
		right = lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).
			Render("reload failed: " + a.loadErr.Error() + " ")
	case scene.FellBack:
		right = lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).
			Render(fmt.Sprintf("%q is not available; showing %s ", scene.Requested, scene.View))
	case a.notice != "":
		right = lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).
			Render(a.notice + " ")
	}

	gap := w - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		right = ""
		gap = w - lipgloss.Width(left)
	}
	if gap < 0 {
		gap = 0
	}
	return rowStyle.Render(left + strings.Repeat(" ", gap) + right)
}

func (a App) metrics(scene *chart.Scene) []components.Metric {
	d, _ := a.data.Get(scene.View)

	years := "-"
	if lo, hi, ok := d.YearRange(); ok {
		years = fmt.Sprintf("%d–%d", lo, hi)
	}

	drawn := 0
	for _, ser := range scene.Series {
		if !ser.Empty() {
			drawn++
		}
	}

	return []components.Metric{
		{Label: "Rows", Value: fmt.Sprintf("%d", d.Len())},
		{Label: "Years", Value: years},
		{Label: "Lines", Value: fmt.Sprintf("%d of %d", drawn, len(scene.Series))},
		{Label: "Boundary", Value: fmt.Sprintf("%d", scene.Reference.Year)},
	}
}

func (a App) renderLegend(scene *chart.Scene) string {
	d, _ := a.data.Get(scene.View)
	inner := components.CardInnerWidth(legendWidth)

	entries := make([]string, 0, len(scene.Legend))
	for _, e := range scene.Legend {
		obs := pipeline.SortByYear(d.Filter(e.Category))
		values := make([]float64, len(obs))
		for i, o := range obs {
			values[i] = o.ValuePctGDP
		}
		entries = append(entries, components.LegendEntry(e.Category, lipgloss.Color(e.Color), values, inner))
	}
	return components.ContentCard("Legend", strings.Join(entries, "\n"), legendWidth)
}

func (a App) dataInfo() string {
	if a.result == nil {
		return ""
	}
	info := fmt.Sprintf("%d datasets · %.1fs", a.data.Len(), a.loadTime.Seconds())
	if a.result.FromCache {
		info += " (cache)"
	}
	return info
}

// ─── Commands ───────────────────────────────────────────────────

func timerCmd(t chart.Timer) tea.Cmd {
	return tea.Tick(t.Delay, func(time.Time) tea.Msg {
		return timerMsg{timer: t}
	})
}

func revealFrameCmd(gen uint64) tea.Cmd {
	return tea.Tick(revealFrame, func(time.Time) tea.Msg {
		return revealFrameMsg{gen: gen}
	})
}

type loadRequest struct {
	sources []pipeline.Source
	timeout time.Duration
	noCache bool
	offline bool
}

func (a App) loadRequest() loadRequest {
	sources := a.opts.Sources
	if sources == nil {
		sources = pipeline.Sources(a.cfg)
	}
	return loadRequest{
		sources: sources,
		timeout: time.Duration(a.cfg.Sources.TimeoutSec) * time.Second,
		noCache: a.opts.NoCache,
		offline: a.opts.Offline,
	}
}

// loadDataCmd starts the data loading pipeline in a background goroutine.
// It streams ProgressMsg updates and a final DataLoadedMsg through sub.
func loadDataCmd(req loadRequest, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()

			// Progress callback: non-blocking send so fetches aren't stalled.
			// If the channel is full this update is dropped; the next one catches up.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}

			res, err := loadDatasets(req, progressFn)
			sub <- DataLoadedMsg{Result: res, Err: err, LoadTime: time.Since(start)}
		}()

		// Block until the first message (either ProgressMsg or DataLoadedMsg)
		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

func loadDatasets(req loadRequest, progressFn pipeline.ProgressFunc) (*pipeline.LoadResult, error) {
	opts := pipeline.Options{Offline: req.offline, Timeout: req.timeout}
	if !req.noCache {
		cache, err := storeOpen()
		switch {
		case err == nil:
			defer func() { _ = cache.Close() }()
			opts.Cache = cache
		case req.offline:
			return nil, fmt.Errorf("opening cache: %w", err)
		}
	}
	return pipeline.Load(context.Background(), req.sources, opts, progressFn)
}

func storeOpen() (*store.Cache, error) {
	return store.Open(pipeline.CachePath())
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	padding := strings.Repeat("\n", h-len(lines))
	return s + padding
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAt returns the view whose tab is under the pointer.
func (a App) tabAt(msg tea.MouseMsg) (model.View, bool) {
	if a.zones != nil {
		for _, tab := range components.Tabs {
			if z := a.zones.Get(components.TabZoneID(a.zonePrefix, tab.View)); z != nil && z.InBounds(msg) {
				return tab.View, true
			}
		}
	}
	// The tab bar is the first row.
	if msg.Y == 0 {
		if i := a.tabAtX(msg.X); i >= 0 {
			return components.Tabs[i].View, true
		}
	}
	return "", false
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	active := a.activeView()
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, tab.View == active)

		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}

// canvasCell returns the canvas cell under the pointer.
func (a App) canvasCell(msg tea.MouseMsg) (col, row int, ok bool) {
	if a.zones == nil {
		return 0, 0, false
	}
	z := a.zones.Get(a.zonePrefix + canvasZone)
	if z == nil || !z.InBounds(msg) {
		return 0, 0, false
	}
	col, row = z.Pos(msg)
	return col, row, true
}
