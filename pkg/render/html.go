package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/matzehuels/celltower/pkg/celltower"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var mapTemplate = template.Must(template.ParseFS(templateFS, "templates/map.html.tmpl"))

// DefaultGlyph is the marker icon of sites without a known generation.
const DefaultGlyph = "tower-cell"

type mapPage struct {
	Title       string
	Center      [2]float64
	Zoom        int
	Attribution string
	Layers      []mapLayer
}

type mapLayer struct {
	Name    string
	Markers []mapMarker
}

type mapMarker struct {
	Point      [2]float64 `json:"point"`
	Color      string     `json:"color"`
	Glyph      string     `json:"glyph"`
	Label      string     `json:"label"`
	Technology string     `json:"technology"`
	Power      string     `json:"power"`
}

// HTML renders the interactive map.
func HTML(in Input) ([]byte, error) {
	var buf bytes.Buffer
	if err := mapTemplate.Execute(&buf, newMapPage(in)); err != nil {
		return nil, fmt.Errorf("execute map template: %w", err)
	}
	return buf.Bytes(), nil
}

func newMapPage(in Input) mapPage {
	cfg := in.config()
	page := mapPage{
		Title:       in.title(),
		Center:      cfg.Map.Center,
		Zoom:        cfg.Map.Zoom,
		Attribution: cfg.Map.Attribution,
	}

	index := make(map[string]int, len(cfg.Operators))
	for _, op := range cfg.Operators {
		index[op.Name] = len(page.Layers)
		page.Layers = append(page.Layers, mapLayer{Name: op.Name, Markers: []mapMarker{}})
	}

	for _, s := range in.sites() {
		name, ok := Layer(cfg, s.Operator)
		if !ok {
			continue
		}
		l := &page.Layers[index[name]]
		l.Markers = append(l.Markers, newMarker(s, cfg.MarkerColor(s.Operator)))
	}
	return page
}

func newMarker(s celltower.Site, color string) mapMarker {
	glyph := DefaultGlyph
	if g := s.Generation(); g != "" {
		glyph = g
	}
	return mapMarker{
		Point:      [2]float64{s.Coordinates.Latitude, s.Coordinates.Longitude},
		Color:      color,
		Glyph:      glyph,
		Label:      s.Label(),
		Technology: s.Technology,
		Power:      s.Power,
	}
}
