package render

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Static plot size.
const (
	PlotWidth  = 12 * vg.Inch
	PlotHeight = 8 * vg.Inch
)

// PNG renders a static scatter plot of the sites.
func PNG(in Input) ([]byte, error) { return scatterPlot(in, "png") }

// SVG renders the same plot as [PNG] in vector form.
func SVG(in Input) ([]byte, error) { return scatterPlot(in, "svg") }

func scatterPlot(in Input, format string) ([]byte, error) {
	p, err := newScatterPlot(in)
	if err != nil {
		return nil, err
	}

	wt, err := p.WriterTo(PlotWidth, PlotHeight, format)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

func newScatterPlot(in Input) (*plot.Plot, error) {
	cfg := in.config()
	sites := in.sites()

	p := plot.New()
	p.Title.Text = in.title()
	p.X.Label.Text = "Longitude (°)"
	p.Y.Label.Text = "Latitude (°)"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	names, groups := series(cfg, sites)
	for _, name := range names {
		pts := make(plotter.XYs, 0, len(groups[name]))
		for _, i := range groups[name] {
			c := sites[i].Coordinates
			if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) || math.IsInf(c.Latitude, 0) || math.IsInf(c.Longitude, 0) {
				continue
			}
			pts = append(pts, plotter.XY{X: c.Longitude, Y: c.Latitude})
		}

		s, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", name, err)
		}
		s.GlyphStyle.Color = parseHex(seriesHex(cfg, name))
		s.GlyphStyle.Radius = vg.Points(1.5)
		s.GlyphStyle.Shape = draw.CircleGlyph{}

		p.Add(s)
		p.Legend.Add(fmt.Sprintf("%s (%d)", name, len(pts)), s)
	}
	return p, nil
}

// parseHex decodes #rrggbb; anything else is black.
func parseHex(s string) color.Color {
	var r, g, b uint8
	if len(s) != 7 || s[0] != '#' {
		return color.Black
	}
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.Black
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
