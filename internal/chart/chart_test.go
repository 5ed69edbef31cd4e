package chart

import (
	"bytes"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/budgetviz/internal/model"
)

const eps = 1e-9

func twoPoint() model.Datasets {
	return model.NewDatasets(model.Dataset{
		Topic: model.Overview,
		Observations: []model.Observation{
			{Year: 2019, Category: "Total Spending", ValuePctGDP: 0.21},
			{Year: 2029, Category: "Total Spending", ValuePctGDP: 0.23},
		},
	})
}

func threeTopics() model.Datasets {
	return model.NewDatasets(
		model.Dataset{Topic: model.Overview, Observations: []model.Observation{
			{Year: 2019, Category: "Publicly Held Debt", ValuePctGDP: 0.79},
			{Year: 2019, Category: "Total Spending", ValuePctGDP: 0.21},
			{Year: 2019, Category: "Total Revenues", ValuePctGDP: 0.163},
			{Year: 2030, Category: "Publicly Held Debt", ValuePctGDP: 0.95},
			{Year: 2030, Category: "Total Spending", ValuePctGDP: 0.226},
			{Year: 2030, Category: "Total Revenues", ValuePctGDP: 0.175},
		}},
		model.Dataset{Topic: model.Spending, Observations: []model.Observation{
			{Year: 2019, Category: "Social Security", ValuePctGDP: 0.049},
			{Year: 2019, Category: "Net Interest", ValuePctGDP: 0.018},
			{Year: 2030, Category: "Social Security", ValuePctGDP: 0.06},
			{Year: 2030, Category: "Net Interest", ValuePctGDP: 0.026},
		}},
		model.Dataset{Topic: model.Revenue, Observations: []model.Observation{
			{Year: 2019, Category: "Payroll Taxes", ValuePctGDP: 0.058},
			{Year: 2030, Category: "Payroll Taxes", ValuePctGDP: 0.06},
		}},
	)
}

func newView(t *testing.T, data model.Datasets) *ChartView {
	t.Helper()
	cfg := DefaultRenderConfig()
	return NewChartView(cfg, data, NewCategoryColorMap(data, cfg.Categories, nil))
}

func TestLinear(t *testing.T) {
	s := NewLinear(2019, 2029, 0, 835)
	if got := s.Apply(2019); got != 0 {
		t.Errorf("Apply(2019) = %v, want 0", got)
	}
	if got := s.Apply(2029); got != 835 {
		t.Errorf("Apply(2029) = %v, want 835", got)
	}
	if got := s.Invert(s.Apply(2024)); math.Abs(got-2024) > eps {
		t.Errorf("Invert(Apply(2024)) = %v", got)
	}

	flat := NewLinear(5, 5, 0, 100)
	if got := flat.Apply(5); got != 50 {
		t.Errorf("degenerate Apply = %v, want midpoint 50", got)
	}
}

func TestNice(t *testing.T) {
	tests := []struct {
		name   string
		d0, d1 float64
		count  int
		w0, w1 float64
	}{
		{"already round", 2019, 2029, 10, 2019, 2029},
		{"fractional", 0, 0.23, 10, 0, 0.24},
		{"decades", 1971, 2049, 10, 1970, 2050},
		{"debt", 0, 0.95, 10, 0, 1},
		{"reversed", 0.23, 0, 10, 0.24, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewLinear(tt.d0, tt.d1, 0, 1).Nice(tt.count)
			g0, g1 := got.Domain()
			if math.Abs(g0-tt.w0) > eps || math.Abs(g1-tt.w1) > eps {
				t.Errorf("Nice = [%v, %v], want [%v, %v]", g0, g1, tt.w0, tt.w1)
			}
		})
	}
}

func TestTicks(t *testing.T) {
	got := NewLinear(0, 0.24, 0, 1).Ticks(5)
	want := []float64{0, 0.05, 0.1, 0.15, 0.2}
	if len(got) != len(want) {
		t.Fatalf("Ticks = %v, want %v", got, want)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > eps {
			t.Errorf("tick %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPercentFormatter(t *testing.T) {
	if got := PercentFormatter(0.02)(0.22); got != "22%" {
		t.Errorf("coarse = %q", got)
	}
	if got := PercentFormatter(0.005)(0.065); got != "6.5%" {
		t.Errorf("fine = %q", got)
	}
}

func TestDomainScales_MapsYearExtentsToPlotEdges(t *testing.T) {
	d, _ := threeTopics().Get(model.Overview)
	x, _ := DomainScales(d, 835, 475)
	lo, hi := x.Domain()
	if lo != 2019 || hi != 2030 {
		t.Fatalf("x domain = [%v, %v], want [2019, 2030]", lo, hi)
	}
	if x.Apply(2019) != 0 || x.Apply(2030) != 835 {
		t.Errorf("x range ends = %v, %v", x.Apply(2019), x.Apply(2030))
	}
}

func TestRender_YScaleInvertsPlottedPoints(t *testing.T) {
	data := threeTopics()
	cfg := DefaultRenderConfig()
	colors := NewCategoryColorMap(data, cfg.Categories, nil)

	for _, v := range model.Views {
		s := Render(cfg, data, colors, string(v))
		for _, ser := range s.Series {
			for i, p := range ser.Points {
				want := ser.Data[i].ValuePctGDP
				if got := s.Y.Invert(p.Y); math.Abs(got-want) > 1e-9 {
					t.Errorf("%s/%s: Invert(%v) = %v, want %v", v, ser.Category, p.Y, got, want)
				}
			}
		}
	}
}

func TestRender_TwoPointScenario(t *testing.T) {
	data := twoPoint()
	cv := newView(t, data)
	s := cv.Mount("Overview").Scene()

	var drawn []Series
	for _, ser := range s.Series {
		if !ser.Empty() {
			drawn = append(drawn, ser)
		}
	}
	if len(drawn) != 1 {
		t.Fatalf("drawn lines = %d, want 1", len(drawn))
	}
	if drawn[0].Category != "Total Spending" || len(drawn[0].Points) != 2 {
		t.Fatalf("line = %s with %d points", drawn[0].Category, len(drawn[0].Points))
	}

	px, py := s.X.Apply(2024), s.Y.Apply(0.22)
	tip, ok := cv.Hover(px, py)
	if !ok {
		t.Fatal("hover on the line missed")
	}
	if tip.Text != "Year: 2024, Percent of GDP: 22%" {
		t.Errorf("tooltip = %q", tip.Text)
	}
	if tip.X != px || tip.Y != py {
		t.Errorf("tooltip at (%v, %v), want pointer (%v, %v)", tip.X, tip.Y, px, py)
	}

	if _, ok := cv.Hover(px, py-100); ok {
		t.Error("hover far from every line should miss")
	}
}

func TestRender_EmptyCategoryIsEmptyLine(t *testing.T) {
	s := Render(DefaultRenderConfig(), twoPoint(), CategoryColorMap{}, "Overview")
	if len(s.Series) != 3 {
		t.Fatalf("series = %d, want one per overview filter", len(s.Series))
	}
	for _, ser := range s.Series {
		if ser.Category != "Total Spending" && !ser.Empty() {
			t.Errorf("%s has points without data", ser.Category)
		}
	}
}

func TestRender_EmptyDataset(t *testing.T) {
	s := Render(DefaultRenderConfig(), model.NewDatasets(), CategoryColorMap{}, "Spending")
	if s.View != model.Overview || !s.FellBack {
		t.Errorf("view = %s fellBack = %v", s.View, s.FellBack)
	}
	if len(s.Legend) != 0 {
		t.Errorf("legend = %v, want empty", s.Legend)
	}
	if s.Reference.Visible {
		t.Error("reference line drawn without a year domain")
	}
}

func TestRender_RevenueFallsBackWhenNotLoaded(t *testing.T) {
	data := twoPoint()
	cfg := DefaultRenderConfig()
	colors := NewCategoryColorMap(data, cfg.Categories, nil)

	got := Render(cfg, data, colors, "Revenue")
	want := Render(cfg, data, colors, "Overview")
	if got.View != model.Overview || !got.FellBack {
		t.Fatalf("view = %s fellBack = %v, want Overview fallback", got.View, got.FellBack)
	}
	if !reflect.DeepEqual(got.Series, want.Series) || !reflect.DeepEqual(got.Legend, want.Legend) {
		t.Error("fallback render differs from Overview")
	}
	for _, c := range got.Controls {
		if c.View == model.Revenue && c.Available {
			t.Error("revenue control marked available")
		}
	}
}

func TestResolveView(t *testing.T) {
	data := threeTopics()
	tests := []struct {
		name     string
		want     model.View
		fellBack bool
	}{
		{"", model.Overview, false},
		{"spending", model.Spending, false},
		{"REVENUE", model.Revenue, false},
		{"deficit", model.Overview, true},
	}
	for _, tt := range tests {
		got, fb := ResolveView(data, tt.name)
		if got != tt.want || fb != tt.fellBack {
			t.Errorf("ResolveView(%q) = %s, %v; want %s, %v", tt.name, got, fb, tt.want, tt.fellBack)
		}
	}
}

func TestRender_Idempotent(t *testing.T) {
	data := threeTopics()
	cfg := DefaultRenderConfig()
	colors := NewCategoryColorMap(data, cfg.Categories, nil)

	a := Render(cfg, data, colors, "Spending")
	b := Render(cfg, data, colors, "Spending")
	if !reflect.DeepEqual(a, b) {
		t.Fatal("repeated renders differ")
	}

	var sa, sb bytes.Buffer
	if err := WriteSVG(&sa, a); err != nil {
		t.Fatal(err)
	}
	if err := WriteSVG(&sb, b); err != nil {
		t.Fatal(err)
	}
	if sa.String() != sb.String() {
		t.Fatal("repeated svg output differs")
	}
}

func TestChangeView_ColorsStableAcrossSwitches(t *testing.T) {
	cv := newView(t, threeTopics())
	first := cv.Mount("Overview").Scene()
	cv.ChangeView("Spending")
	again := cv.ChangeView("Overview").Scene()

	if len(first.Series) != len(again.Series) {
		t.Fatalf("series count %d != %d", len(first.Series), len(again.Series))
	}
	for i := range first.Series {
		if first.Series[i].Category != again.Series[i].Category || first.Series[i].Color != again.Series[i].Color {
			t.Errorf("series %d: %s/%s then %s/%s", i,
				first.Series[i].Category, first.Series[i].Color,
				again.Series[i].Category, again.Series[i].Color)
		}
	}
	if !reflect.DeepEqual(first.Legend, again.Legend) {
		t.Error("legend changed across switches")
	}
}

func TestCategoryColorMap(t *testing.T) {
	data := threeTopics()
	cfg := DefaultRenderConfig()
	m := NewCategoryColorMap(data, cfg.Categories, map[string]string{"Net Interest": "#000000"})

	if got := m.Color("Publicly Held Debt"); got != Category10[0] {
		t.Errorf("first overview category = %s, want %s", got, Category10[0])
	}
	if got := m.Color("Net Interest"); got != "#000000" {
		t.Errorf("override = %s", got)
	}
	if m.Color("Unlisted") != m.Color("Unlisted") {
		t.Error("unknown category color not stable")
	}

	seen := make(map[string]bool)
	for _, cat := range m.Categories() {
		if seen[cat] {
			t.Errorf("duplicate category %q", cat)
		}
		seen[cat] = true
	}
}

func TestRender_LegendMatchesDistinctCategories(t *testing.T) {
	data := model.NewDatasets(model.Dataset{Topic: model.Overview, Observations: []model.Observation{
		{Year: 2019, Category: "Total Spending", ValuePctGDP: 0.21},
		{Year: 2019, Category: "Total Revenues", ValuePctGDP: 0.16},
		{Year: 2020, Category: "Total Spending", ValuePctGDP: 0.31},
		{Year: 2020, Category: "Total Revenues", ValuePctGDP: 0.16},
	}})
	s := Render(DefaultRenderConfig(), data, CategoryColorMap{}, "Overview")
	if len(s.Legend) != 2 {
		t.Fatalf("legend entries = %d, want 2", len(s.Legend))
	}
	if s.Legend[0].Category == s.Legend[1].Category {
		t.Error("duplicate legend entry")
	}
	if s.Legend[1].Y-s.Legend[0].Y != 20 {
		t.Errorf("legend not stacked: %v", s.Legend)
	}
}

func TestRender_ReferenceLine(t *testing.T) {
	s := Render(DefaultRenderConfig(), threeTopics(), CategoryColorMap{}, "Overview")
	if !s.Reference.Visible || s.Reference.Year != 2019 {
		t.Fatalf("reference = %+v", s.Reference)
	}
	if s.Reference.X != s.X.Apply(2019) {
		t.Errorf("reference x = %v, want %v", s.Reference.X, s.X.Apply(2019))
	}
	if s.Reference.Actual.Text != "Actual" || s.Reference.Project.Text != "Projection" {
		t.Errorf("labels = %q / %q", s.Reference.Actual.Text, s.Reference.Project.Text)
	}
}

func TestRender_AxesAndGrid(t *testing.T) {
	s := Render(DefaultRenderConfig(), twoPoint(), CategoryColorMap{}, "Overview")
	for _, tk := range s.XTicks {
		if tk.Value != math.Trunc(tk.Value) {
			t.Errorf("fractional year tick %v", tk.Value)
		}
	}
	if len(s.YTicks) == 0 || !strings.HasSuffix(s.YTicks[len(s.YTicks)-1].Label, "%") {
		t.Errorf("y ticks = %+v", s.YTicks)
	}
	if len(s.XGrid) > 7 || len(s.YGrid) > 7 {
		t.Errorf("gridlines x=%d y=%d, want about 5 each", len(s.XGrid), len(s.YGrid))
	}
}

func TestChartView_StateMachine(t *testing.T) {
	cv := newView(t, threeTopics())
	if cv.State() != Idle || cv.Current() != nil {
		t.Fatal("new view not idle")
	}
	first := cv.Mount("")
	if cv.State() != Displaying || cv.View() != model.Overview {
		t.Fatalf("after mount: %s %s", cv.State(), cv.View())
	}
	second := cv.ChangeView("Revenue")
	if !first.Torn() || second.Torn() {
		t.Error("teardown flags wrong")
	}
	if cv.View() != model.Revenue || second.Gen() <= first.Gen() {
		t.Errorf("view = %s gen %d -> %d", cv.View(), first.Gen(), second.Gen())
	}
}

func TestChartView_StaleTimersAreInert(t *testing.T) {
	cv := newView(t, twoPoint())
	s := cv.Mount("Overview").Scene()
	px, py := s.X.Apply(2024), s.Y.Apply(0.22)

	if _, ok := cv.Hover(px, py); !ok {
		t.Fatal("hover missed")
	}
	hide, ok := cv.Leave()
	if !ok || hide.Delay != 500*time.Millisecond {
		t.Fatalf("leave timer = %+v, %v", hide, ok)
	}

	// a newer hover supersedes the pending hide
	cv.Hover(px, py)
	if cv.Fire(hide) {
		t.Error("superseded hide fired")
	}
	if _, shown := cv.Tooltip(); !shown {
		t.Error("tooltip hidden by superseded timer")
	}

	hide, _ = cv.Leave()
	cv.ChangeView("Overview")
	if cv.Fire(hide) {
		t.Error("timer from a torn-down mount fired")
	}

	cv.Hover(px, py)
	hide, _ = cv.Leave()
	if !cv.Fire(hide) {
		t.Error("current hide timer did not fire")
	}
	if _, shown := cv.Tooltip(); shown {
		t.Error("tooltip still shown after hide")
	}
}

func TestChartView_CurtainOnlyOnFirstMount(t *testing.T) {
	cv := newView(t, threeTopics())
	cv.Mount("Overview")
	reveal, ok := cv.RevealTimer()
	if !ok || reveal.Kind != RevealDone || !cv.CurtainUp() {
		t.Fatalf("first mount reveal = %+v, %v", reveal, ok)
	}

	h := cv.ChangeView("Spending")
	if h.Scene().Curtain != nil || cv.CurtainUp() {
		t.Error("curtain drawn again after view change")
	}
	if cv.Fire(reveal) {
		t.Error("reveal from the first mount fired after teardown")
	}
	if _, ok := cv.RevealTimer(); ok {
		t.Error("second mount issued a reveal timer")
	}
}

func TestChartView_ResizeRemountsCurrentView(t *testing.T) {
	cv := newView(t, threeTopics())
	if cv.Resize(100, 40) != nil {
		t.Fatal("Resize mounted an idle chart")
	}

	first := cv.Mount("Spending")
	s := first.Scene()
	if _, ok := cv.Hover(s.X.Apply(2019), s.Y.Apply(0.049)); !ok {
		t.Fatal("hover missed")
	}
	hide, _ := cv.Leave()

	h := cv.Resize(480, 300)
	if !first.Torn() || h.Gen() != first.Gen()+1 {
		t.Errorf("resize did not remount: torn=%v gen=%d", first.Torn(), h.Gen())
	}
	if h.Scene().View != model.Spending || h.Scene().Width != 480 || h.Scene().Height != 300 {
		t.Errorf("scene = %s %vx%v", h.Scene().View, h.Scene().Width, h.Scene().Height)
	}
	if _, shown := cv.Tooltip(); shown {
		t.Error("tooltip survived resize")
	}
	if cv.Fire(hide) {
		t.Error("hide timer from before resize fired")
	}
}

func TestWriteSVG(t *testing.T) {
	s := Render(DefaultRenderConfig(), twoPoint(), CategoryColorMap{}, "Overview")
	var buf bytes.Buffer
	if err := WriteSVG(&buf, s); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		`class="budget-chart"`,
		"Year: 2019, Percent of GDP: 21%",
		"Actual",
		"Projection",
		`href="?view=spending"`,
		"<polyline",
		"<animate",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("svg missing %q", want)
		}
	}
	if n := strings.Count(out, "<polyline"); n != 1 {
		t.Errorf("polylines = %d, want 1", n)
	}
}
