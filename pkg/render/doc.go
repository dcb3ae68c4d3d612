// Package render turns a decluttered dataset into output artifacts.
//
// # Overview
//
// Every sink takes an [Input] and returns the encoded artifact:
//
//   - [HTML]: interactive Leaflet map, one marker cluster per operator
//   - [JSON]: the interchange dataset with adjusted coordinates
//   - [GeoJSON]: a FeatureCollection of points in [lon, lat] order
//   - [PNG], [SVG]: static scatter plots (gonum/plot)
//   - [Chart]: zoomable scatter page (go-echarts)
//   - [Groups]: Graphviz diagram of the proximity groups built while
//     decluttering
//
// # Layers
//
// Operators are matched to the configured layers in order: the first layer
// whose name occurs in the site's operator wins. Sites matching no layer are
// left off the map, but still appear in the JSON, GeoJSON and plot outputs.
//
//	in := render.Input{Dataset: d, Placements: placements, Config: cfg}
//	page, err := render.HTML(in)
package render

import (
	"strings"

	"github.com/matzehuels/celltower/pkg/celltower"
	"github.com/matzehuels/celltower/pkg/config"
	"github.com/matzehuels/celltower/pkg/declutter"
)

// Input is shared by all sinks.
type Input struct {
	// Dataset holds the sites at their final (decluttered) positions.
	Dataset *celltower.Dataset

	// Original holds the same sites before decluttering. Optional.
	Original *celltower.Dataset

	// Placements has one entry per site of Dataset. Optional.
	Placements []declutter.Placement

	Stats declutter.Stats

	// Config supplies the operator palette and map view. Nil uses
	// [config.Default].
	Config *config.Config

	// Title overrides Config.Map.Title.
	Title string
}

func (in Input) config() *config.Config {
	if in.Config == nil {
		return config.Default()
	}
	return in.Config
}

func (in Input) title() string {
	if in.Title != "" {
		return in.Title
	}
	if t := in.config().Map.Title; t != "" {
		return t
	}
	if in.Dataset != nil {
		return in.Dataset.Name
	}
	return ""
}

func (in Input) sites() []celltower.Site {
	if in.Dataset == nil {
		return nil
	}
	return in.Dataset.CellTowers
}

// placement returns the declutter outcome of site i, if known.
func (in Input) placement(i int) (declutter.Placement, bool) {
	if i < len(in.Placements) {
		return in.Placements[i], true
	}
	return declutter.Placement{}, false
}

// original returns the pre-declutter site i, if known.
func (in Input) original(i int) (celltower.Site, bool) {
	if in.Original != nil && i < len(in.Original.CellTowers) {
		return in.Original.CellTowers[i], true
	}
	return celltower.Site{}, false
}

// OtherLayer names the series of sites that match no configured operator.
const OtherLayer = "other"

// Layer returns the configured layer of an operator: the first configured
// name contained in it.
func Layer(cfg *config.Config, operator string) (string, bool) {
	for _, op := range cfg.Operators {
		if strings.Contains(operator, op.Name) {
			return op.Name, true
		}
	}
	return "", false
}

// series groups site indexes by layer, configured layers first and
// [OtherLayer] last when non-empty.
func series(cfg *config.Config, sites []celltower.Site) ([]string, map[string][]int) {
	groups := make(map[string][]int)
	for i, s := range sites {
		name, ok := Layer(cfg, s.Operator)
		if !ok {
			name = OtherLayer
		}
		groups[name] = append(groups[name], i)
	}

	var names []string
	for _, op := range cfg.Operators {
		if len(groups[op.Name]) > 0 {
			names = append(names, op.Name)
		}
	}
	if len(groups[OtherLayer]) > 0 {
		names = append(names, OtherLayer)
	}
	return names, groups
}

// seriesHex is the plot color of a series.
func seriesHex(cfg *config.Config, name string) string {
	if name == OtherLayer {
		return config.FallbackHex
	}
	return cfg.HexColor(name)
}
