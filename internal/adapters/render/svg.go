// Package render draws frames and legends as SVG.
package render

import (
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
	"github.com/wasteatlas/wasteatlas/internal/pkg/geospatial"
)

var funcs = template.FuncMap{
	"f": func(v float64) string { return fmt.Sprintf("%.2f", v) },
}

var legendTmpl = template.Must(template.New("legend").Funcs(funcs).Parse(
	`<svg xmlns="http://www.w3.org/2000/svg" class="attribute-legend" width="{{.Width}}" height="{{.Height}}">` +
		`{{range .Legend.Circles}}<circle class="legend-circle" id="{{.Name}}" r="{{f .Radius}}" cx="{{f .CX}}" cy="{{f .CY}}"` +
		` fill="{{$.Style.FillColor}}" fill-opacity="{{$.Style.FillOpacity}}" stroke="{{$.Style.StrokeColor}}" stroke-width="{{$.Style.Weight}}"/>` +
		`<text id="{{.Name}}-text" x="{{f .LabelX}}" y="{{f .LabelY}}">{{.Label}}</text>{{end}}` +
		`</svg>`))

type legendView struct {
	Width, Height int
	Legend        domain.Legend
	Style         domain.StyleProfile
}

// Legend writes the reference-circle legend of one layer.
func Legend(w io.Writer, lg domain.Legend, style domain.StyleProfile) error {
	return legendTmpl.Execute(w, legendView{
		Width:  domain.LegendWidth,
		Height: domain.LegendHeight,
		Legend: lg,
		Style:  style,
	})
}

var frameTmpl = template.Must(template.New("frame").Funcs(funcs).Parse(
	`<svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}" viewBox="0 0 {{.Width}} {{.Height}}">` +
		`<rect width="100%" height="100%" fill="#f2efe9"/>` +
		`{{range .Circles}}<circle cx="{{f .X}}" cy="{{f .Y}}" r="{{f .R}}" fill="{{.Style.FillColor}}" fill-opacity="{{.Style.FillOpacity}}"` +
		` stroke="{{.Style.StrokeColor}}" stroke-opacity="{{.Style.Opacity}}" stroke-width="{{.Style.Weight}}"><title>{{.Title}}: {{.Body}}</title></circle>{{end}}` +
		`<text x="12" y="28" font-size="20" font-family="sans-serif">{{.Year}}</text>` +
		`{{range $i, $l := .Legends}}<g transform="translate({{$l.X}},{{$l.Y}})">` +
		`<text x="0" y="-6" font-size="11" font-family="sans-serif">{{$l.Legend.Title}}</text>{{$l.SVG}}</g>{{end}}` +
		`</svg>`))

// View is the viewport a frame is drawn in.
type View struct {
	Width, Height int
	Center        domain.GeoPoint
	Zoom          int
}

type frameCircle struct {
	X, Y, R     float64
	Style       domain.StyleProfile
	Title, Body string
}

type frameLegend struct {
	X, Y   int
	Legend domain.Legend
	SVG    template.HTML
}

type frameView struct {
	Width, Height int
	Year          string
	Circles       []frameCircle
	Legends       []frameLegend
}

// Frame writes every visible layer of f projected into view, with the
// year label and a legend per visible layer. Larger circles are drawn
// first so smaller ones stay on top.
func Frame(w io.Writer, f *domain.Frame, view View) error {
	cx, cy := geospatial.Project(view.Center.Lon, view.Center.Lat, view.Zoom)
	ox := cx - float64(view.Width)/2
	oy := cy - float64(view.Height)/2

	fv := frameView{Width: view.Width, Height: view.Height, Year: f.Year}
	for _, l := range f.Layers {
		if !l.Visible {
			continue
		}
		for _, m := range l.Markers {
			if m.Radius <= 0 {
				continue
			}
			px, py := geospatial.Project(m.Location.Lon, m.Location.Lat, view.Zoom)
			fv.Circles = append(fv.Circles, frameCircle{
				X: px - ox, Y: py - oy, R: m.Radius,
				Style: l.Style,
				Title: m.Popup.Title,
				Body:  m.Popup.Body,
			})
		}

		var buf strings.Builder
		if err := Legend(&buf, l.Legend, l.Style); err != nil {
			return err
		}
		fv.Legends = append(fv.Legends, frameLegend{
			X:      view.Width - domain.LegendWidth - 16,
			Y:      view.Height - (len(fv.Legends)+1)*(domain.LegendHeight+28),
			Legend: l.Legend,
			SVG:    template.HTML(buf.String()),
		})
	}
	sort.SliceStable(fv.Circles, func(i, j int) bool { return fv.Circles[i].R > fv.Circles[j].R })

	return frameTmpl.Execute(w, fv)
}
