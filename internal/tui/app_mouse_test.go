package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/theirongolddev/budgetviz/internal/config"
	"github.com/theirongolddev/budgetviz/internal/model"
	"github.com/theirongolddev/budgetviz/internal/pipeline"
	"github.com/theirongolddev/budgetviz/internal/tui/components"

	tea "github.com/charmbracelet/bubbletea"
)

func twoPoint() model.Datasets {
	return model.NewDatasets(model.Dataset{
		Topic: model.Overview,
		Observations: []model.Observation{
			{Year: 2019, Category: "Total Spending", ValuePctGDP: 0.21},
			{Year: 2029, Category: "Total Spending", ValuePctGDP: 0.23},
		},
	})
}

// loadedApp returns a 120x40 dashboard that has received data.
func loadedApp(t *testing.T, revealMS int, data model.Datasets) App {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Chart.RevealMS = revealMS

	var m tea.Model = NewApp(Options{Config: cfg})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = m.Update(DataLoadedMsg{Result: &pipeline.LoadResult{Datasets: data}})
	a := m.(App)
	if a.chart == nil {
		t.Fatal("chart not mounted after load")
	}
	return a
}

func press(m tea.Model, r rune) tea.Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	return m
}

func TestTabAtXMatchesTabWidths(t *testing.T) {
	for _, active := range model.Views {
		a := App{view: string(active)}
		pos := 0

		for i, tab := range components.Tabs {
			w := components.TabVisualWidth(tab, tab.View == active)
			x := pos + w/2 // midpoint inside this tab
			if got := a.tabAtX(x); got != i {
				t.Fatalf("active=%s x=%d -> tab=%d, want %d", active, x, got, i)
			}
			pos += w + 1 // separator
		}
		if got := a.tabAtX(pos + 5); got != -1 {
			t.Errorf("x past the last tab -> %d, want -1", got)
		}
	}
}

func TestHoverShowsTooltipAndLeaveHides(t *testing.T) {
	a := loadedApp(t, 0, twoPoint())
	scene := a.chart.Current().Scene()

	col := int(canvasMargin.Left + scene.X.Apply(2024))
	row := int(canvasMargin.Top + scene.Y.Apply(0.22))
	if cmd := a.hoverCell(col, row); cmd != nil {
		t.Fatal("hover on the line scheduled a hide")
	}
	tip, ok := a.chart.Tooltip()
	if !ok || tip.Text != "Year: 2024, Percent of GDP: 22%" {
		t.Fatalf("tooltip = %q, %v", tip.Text, ok)
	}
	if !strings.Contains(a.View(), "Year: 2024, Percent of GDP: 22%") {
		t.Error("tooltip not drawn")
	}

	// pointer in the margin, away from every line
	if cmd := a.hoverCell(0, 0); cmd == nil {
		t.Fatal("leaving the line did not schedule a hide")
	}
	hide, _ := a.chart.Leave()
	m, _ := a.Update(timerMsg{timer: hide})
	if _, shown := m.(App).chart.Tooltip(); shown {
		t.Error("tooltip still shown after hide timer")
	}
}

func TestViewSwitchDefusesPendingTimers(t *testing.T) {
	a := loadedApp(t, 0, threeTopics())
	scene := a.chart.Current().Scene()
	gen := a.chart.Current().Gen()

	col := int(canvasMargin.Left + scene.X.Apply(2019))
	row := int(canvasMargin.Top + scene.Y.Apply(0.21))
	a.hoverCell(col, row)
	hide, ok := a.chart.Leave()
	if !ok {
		t.Fatal("no hide timer after hover")
	}

	m := press(a, 's')
	a = m.(App)
	if a.chart.View() != model.Spending || a.chart.Current().Gen() != gen+1 {
		t.Fatalf("view = %s gen = %d", a.chart.View(), a.chart.Current().Gen())
	}
	if a.chart.Fire(hide) {
		t.Error("hide timer from the previous view fired")
	}

	m = press(a, 'o')
	if m.(App).chart.View() != model.Overview {
		t.Errorf("view = %s, want Overview", m.(App).chart.View())
	}
}

func TestMissingViewFallsBackToOverview(t *testing.T) {
	a := loadedApp(t, 0, twoPoint())
	m := press(a, 'r')
	a = m.(App)
	scene := a.chart.Current().Scene()
	if scene.View != model.Overview || !scene.FellBack {
		t.Fatalf("view = %s fellBack = %v", scene.View, scene.FellBack)
	}
	if !strings.Contains(a.View(), "showing Overview") {
		t.Error("fallback notice not shown")
	}
}

func TestCurtainRevealsOnFirstMountOnly(t *testing.T) {
	a := loadedApp(t, 1000, threeTopics())
	if !a.chart.CurtainUp() || a.revealFrac != 0 {
		t.Fatalf("curtain up = %v frac = %v", a.chart.CurtainUp(), a.revealFrac)
	}
	gen := a.chart.Current().Gen()

	m, cmd := a.Update(revealFrameMsg{gen: gen})
	a = m.(App)
	if a.revealFrac <= 0 || cmd == nil {
		t.Fatalf("frame did not advance: frac = %v", a.revealFrac)
	}
	reveal, ok := a.chart.RevealTimer()
	if !ok {
		t.Fatal("no reveal timer while the curtain is up")
	}

	a = press(a, 's').(App)
	if a.chart.CurtainUp() {
		t.Error("curtain shown again after view change")
	}
	if _, cmd := a.Update(revealFrameMsg{gen: gen}); cmd != nil {
		t.Error("stale frame scheduled another frame")
	}
	if a.chart.Fire(reveal) {
		t.Error("reveal timer from the first mount fired")
	}
}

func TestLoadFailureShowsErrorCard(t *testing.T) {
	var m tea.Model = NewApp(Options{Config: config.DefaultConfig()})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = m.Update(DataLoadedMsg{Err: errors.New("overview: boom")})

	out := m.View()
	for _, want := range []string{"Could not load datasets", "overview: boom", "retry"} {
		if !strings.Contains(out, want) {
			t.Errorf("error card missing %q", want)
		}
	}

	// keys other than quit and retry are ignored
	m = press(m, 's')
	if m.(App).chart != nil {
		t.Error("chart mounted without data")
	}
}

func TestTooSmallTerminal(t *testing.T) {
	var m tea.Model = NewApp(Options{Config: config.DefaultConfig()})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 60, Height: 30})
	if !strings.Contains(m.View(), "too small") {
		t.Error("narrow terminal not reported")
	}
}

func TestResizeRebuildsCanvas(t *testing.T) {
	a := loadedApp(t, 0, twoPoint())
	m, _ := a.Update(tea.WindowSizeMsg{Width: 150, Height: 50})
	scene := m.(App).chart.Current().Scene()
	cols, rows := m.(App).canvasSize()
	if int(scene.Width) != cols || int(scene.Height) != rows {
		t.Errorf("scene %vx%v, canvas %dx%d", scene.Width, scene.Height, cols, rows)
	}
}
