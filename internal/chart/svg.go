package chart

import (
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"
)

// SVGClass is the class of the root svg element.
const SVGClass = "budget-chart"

var svgTmpl = template.Must(template.New("chart").Funcs(template.FuncMap{
	"num":    num,
	"points": points,
	"tip":    func(year int, v float64) string { return TooltipText(float64(year), v) },
	"secs":   func(c *Curtain) string { return strconv.FormatFloat(c.Duration.Seconds(), 'f', -1, 64) + "s" },
}).Parse(`<svg xmlns="http://www.w3.org/2000/svg" class="{{.Class}}" width="{{num .S.Width}}" height="{{num .S.Height}}" viewBox="0 0 {{num .S.Width}} {{num .S.Height}}" font-family="sans-serif" font-size="12">
<g transform="translate({{num .S.Margin.Left}},{{num .S.Margin.Top}})">
<text class="title" x="{{num .TitleX}}" y="{{num .TitleY}}" text-anchor="middle" font-size="16">{{.S.Title}}</text>
<g class="grid" stroke="#e0e0e0" stroke-width="1">
{{- range .S.XGrid}}
<line x1="{{num .Pos}}" x2="{{num .Pos}}" y1="0" y2="{{num $.S.PlotHeight}}"/>
{{- end}}
{{- range .S.YGrid}}
<line x1="0" x2="{{num $.S.PlotWidth}}" y1="{{num .Pos}}" y2="{{num .Pos}}"/>
{{- end}}
</g>
<g class="axis x-axis" transform="translate(0,{{num .S.PlotHeight}})">
<line x1="0" x2="{{num .S.PlotWidth}}" stroke="#333"/>
{{- range .S.XTicks}}
<g class="tick" transform="translate({{num .Pos}},0)"><line y2="6" stroke="#333"/><text y="20" text-anchor="middle">{{.Label}}</text></g>
{{- end}}
<text class="label" x="{{num .HalfW}}" y="45" text-anchor="middle">{{.S.XLabel}}</text>
</g>
<g class="axis y-axis">
<line y1="0" y2="{{num .S.PlotHeight}}" stroke="#333"/>
{{- range .S.YTicks}}
<g class="tick" transform="translate(0,{{num .Pos}})"><line x2="-6" stroke="#333"/><text x="-9" dy="0.32em" text-anchor="end">{{.Label}}</text></g>
{{- end}}
<text class="label" transform="rotate(-90)" x="{{num .NegHalfH}}" y="-55" text-anchor="middle">{{.S.YLabel}}</text>
</g>
{{- range .S.Series}}
<g class="series" data-category="{{.Category}}">
{{- if .Points}}
<polyline fill="none" stroke="{{.Color}}" stroke-width="2" points="{{points .Points}}"/>
{{- end}}
</g>
{{- end}}
{{- range .Dots}}
<circle cx="{{num .X}}" cy="{{num .Y}}" r="3" fill="{{.Color}}"><title>{{tip .Year .Value}}</title></circle>
{{- end}}
{{- if .S.Reference.Visible}}
<g class="reference">
<line x1="{{num .S.Reference.X}}" x2="{{num .S.Reference.X}}" y1="0" y2="{{num .S.PlotHeight}}" stroke="#555" stroke-dasharray="4 4"/>
<text x="{{num .S.Reference.Actual.X}}" y="{{num .S.Reference.Actual.Y}}" text-anchor="{{.S.Reference.Actual.Anchor}}">{{.S.Reference.Actual.Text}}</text>
<text x="{{num .S.Reference.Project.X}}" y="{{num .S.Reference.Project.Y}}" text-anchor="{{.S.Reference.Project.Anchor}}">{{.S.Reference.Project.Text}}</text>
</g>
{{- end}}
<g class="legend">
{{- range .S.Legend}}
<rect x="{{num .X}}" y="{{num .Y}}" width="10" height="10" fill="{{.Color}}"/><text x="{{num .X}}" dx="15" y="{{num .Y}}" dy="9">{{.Category}}</text>
{{- end}}
</g>
<g class="controls">
{{- range .Controls}}
<a href="?view={{.View.Key}}" class="control{{if .Active}} active{{end}}{{if not .Available}} unavailable{{end}}"><rect x="{{num .X}}" y="{{num .Y}}" width="{{num .W}}" height="{{num .H}}" rx="4" fill="{{if .Active}}#333{{else}}#eee{{end}}"/><text x="{{num .CenterX}}" y="{{num .TextY}}" text-anchor="middle" fill="{{if .Active}}#fff{{else}}#333{{end}}">{{.Label}}</text></a>
{{- end}}
</g>
{{- with .S.Curtain}}
<rect class="curtain" x="{{num .X}}" y="{{num .Y}}" width="{{num .W}}" height="{{num .H}}" fill="#fff"><animate attributeName="width" from="{{num .W}}" to="0" dur="{{secs .}}" fill="freeze"/><animate attributeName="x" from="0" to="{{num .W}}" dur="{{secs .}}" fill="freeze"/></rect>
{{- end}}
</g>
</svg>
`))

type dot struct {
	X, Y  float64
	Color string
	Year  int
	Value float64
}

type controlView struct {
	Control
	CenterX, TextY float64
}

// WriteSVG writes the scene as a standalone SVG document. Each data point
// carries its tooltip as an SVG title.
func WriteSVG(w io.Writer, s *Scene) error {
	data := struct {
		S               *Scene
		Class           string
		TitleX, TitleY  float64
		HalfW, NegHalfH float64
		Dots            []dot
		Controls        []controlView
	}{
		S:        s,
		Class:    SVGClass,
		TitleX:   s.PlotWidth / 2,
		TitleY:   -s.Margin.Top + 45,
		HalfW:    s.PlotWidth / 2,
		NegHalfH: -s.PlotHeight / 2,
	}
	for _, c := range s.Controls {
		data.Controls = append(data.Controls, controlView{Control: c, CenterX: c.X + c.W/2, TextY: c.Y + c.H/2 + 4})
	}
	for _, ser := range s.Series {
		for i, p := range ser.Points {
			data.Dots = append(data.Dots, dot{X: p.X, Y: p.Y, Color: ser.Color, Year: ser.Data[i].Year, Value: ser.Data[i].ValuePctGDP})
		}
	}
	if err := svgTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("writing svg: %w", err)
	}
	return nil
}

func num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" {
		return "0"
	}
	return s
}

func points(pts []Point) string {
	var b strings.Builder
	for i, p := range pts {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(num(p.X))
		b.WriteByte(',')
		b.WriteString(num(p.Y))
	}
	return b.String()
}
