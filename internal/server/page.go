package server

import (
	"html/template"
	"io"

	"github.com/theirongolddev/budgetviz/internal/chart"
)

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
nav a { display: inline-block; padding: 0.4em 1em; margin-right: 0.5em; border-radius: 4px; background: #eee; color: #333; text-decoration: none; }
nav a.active { background: #333; color: #fff; }
nav a.unavailable { opacity: 0.5; }
.notice { color: #a33; }
iframe { border: 0; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<nav>
{{- range .Controls}}
<a href="/?view={{.View.Key}}" class="{{if .Active}}active{{end}}{{if not .Available}} unavailable{{end}}">{{.Label}}</a>
{{- end}}
</nav>
{{- if .FellBack}}
<p class="notice">View "{{.Requested}}" is not available; showing {{.View}}.</p>
{{- end}}
<section class="scene">{{.SVG}}</section>
<section class="interactive">
<iframe src="/chart.html?view={{.Key}}" width="{{.Width}}" height="{{.Height}}" title="{{.Title}} (interactive)"></iframe>
</section>
<script>
var served = "{{.Digest}}";
new EventSource("/v1/stream").addEventListener("loaded", function (e) {
	if (JSON.parse(e.data).digest !== served) { location.reload(); }
});
</script>
</body>
</html>
`))

func writePage(w io.Writer, s *chart.Scene, svg []byte, digest string) error {
	return pageTmpl.Execute(w, struct {
		Title     string
		Controls  []chart.Control
		FellBack  bool
		Requested string
		View      string
		Key       string
		SVG       template.HTML
		Width     int
		Height    int
		Digest    string
	}{
		Title:     s.Title,
		Controls:  s.Controls,
		FellBack:  s.FellBack,
		Requested: s.Requested,
		View:      string(s.View),
		Key:       s.View.Key(),
		SVG:       template.HTML(svg), //nolint:gosec // produced by chart.WriteSVG, which escapes its inputs
		Width:     int(s.Width) + 40,
		Height:    int(s.Height) + 40,
		Digest:    digest,
	})
}
