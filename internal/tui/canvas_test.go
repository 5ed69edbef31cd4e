package tui

import (
	"strings"
	"testing"

	"github.com/theirongolddev/budgetviz/internal/chart"
	"github.com/theirongolddev/budgetviz/internal/model"
	"github.com/theirongolddev/budgetviz/internal/tui/theme"
)

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
			{Year: 2030, Category: "Social Security", ValuePctGDP: 0.06},
		}},
	)
}

func spanScene(t *testing.T) *chart.Scene {
	t.Helper()
	data := model.NewDatasets(model.Dataset{Topic: model.Overview, Observations: []model.Observation{
		{Year: 2015, Category: "Total Spending", ValuePctGDP: 0.20},
		{Year: 2019, Category: "Total Spending", ValuePctGDP: 0.21},
		{Year: 2029, Category: "Total Spending", ValuePctGDP: 0.23},
	}})
	cfg := canvasConfig(chart.DefaultRenderConfig(), 60, 20)
	return chart.Render(cfg, data, chart.NewCategoryColorMap(data, cfg.Categories, nil), "Overview")
}

func plain(c *canvas) string {
	return strings.Join(c.Plain(), "\n")
}

func TestRasterize_DrawsChartFurniture(t *testing.T) {
	c := rasterize(spanScene(t), rasterOptions{Theme: theme.FlexokiDark, Reveal: 1})
	if c.cols != 60 || c.rows != 20 {
		t.Fatalf("canvas %dx%d, want 60x20", c.cols, c.rows)
	}
	out := plain(c)
	for _, want := range []string{"Percent of GDP", "Year", "Actual", "Projection", "2015", "●", "┆", "└", "%"} {
		if !strings.Contains(out, want) {
			t.Errorf("canvas missing %q\n%s", want, out)
		}
	}
}

func TestRasterize_TooltipAtPointer(t *testing.T) {
	s := spanScene(t)
	tip, ok := s.Hover(s.X.Apply(2019), s.Y.Apply(0.21))
	if !ok {
		t.Fatal("hover missed the line")
	}
	out := plain(rasterize(s, rasterOptions{Theme: theme.FlexokiDark, Reveal: 1, Tooltip: &tip}))
	if !strings.Contains(out, "Year: 2019, Percent of GDP: 21%") {
		t.Errorf("tooltip not drawn\n%s", out)
	}
}

func TestRasterize_CurtainHidesLines(t *testing.T) {
	out := plain(rasterize(spanScene(t), rasterOptions{Theme: theme.FlexokiDark, Reveal: 0}))
	if strings.Contains(out, "●") {
		t.Errorf("points visible under a closed curtain\n%s", out)
	}
	if !strings.Contains(out, "Percent of GDP") {
		t.Error("axis label hidden by the curtain")
	}
}

func TestSlopeGlyph(t *testing.T) {
	tests := []struct {
		dx, dy int
		want   rune
	}{
		{5, 0, '─'},
		{0, 3, '│'},
		{3, -3, '╱'},
		{-3, 3, '╱'},
		{3, 3, '╲'},
		{10, 1, '─'},
		{1, 10, '│'},
	}
	for _, tt := range tests {
		if got := slopeGlyph(tt.dx, tt.dy); got != tt.want {
			t.Errorf("slopeGlyph(%d, %d) = %q, want %q", tt.dx, tt.dy, got, tt.want)
		}
	}
}

func TestCanvasLineConnectsEndpoints(t *testing.T) {
	c := newCanvas(10, 5)
	c.line(0, 4, 9, 0, "")
	if c.at(0, 4) == ' ' || c.at(9, 0) == ' ' {
		t.Errorf("line endpoints not drawn\n%s", plain(c))
	}
	for col := 0; col < 10; col++ {
		drawn := false
		for row := 0; row < 5; row++ {
			if c.at(col, row) != ' ' {
				drawn = true
			}
		}
		if !drawn {
			t.Errorf("column %d has a gap\n%s", col, plain(c))
		}
	}
}

func TestCellToPlotInvertsMargin(t *testing.T) {
	px, py := cellToPlot(int(canvasMargin.Left), int(canvasMargin.Top))
	if px != 0.5 || py != 0.5 {
		t.Errorf("first plot cell center = (%v, %v), want (0.5, 0.5)", px, py)
	}
}
