package celltower

import (
	"github.com/matzehuels/celltower/pkg/declutter"
)

// Declutter runs one declutter pass over the sites in order and returns
// copies with adjusted coordinates, one placement per site, and pass
// statistics. Non-coordinate fields are never touched.
func Declutter(sites []Site, opts declutter.Options) ([]Site, []declutter.Placement, declutter.Stats) {
	eng := declutter.New(opts)
	out := make([]Site, len(sites))
	placements := make([]declutter.Placement, len(sites))
	for i, s := range sites {
		p := eng.Place(s.Coordinates)
		s.Coordinates = p.Point
		out[i] = s
		placements[i] = p
	}
	return out, placements, eng.Stats()
}

// DeclutterDataset is [Declutter] over a dataset; d is left unchanged.
func DeclutterDataset(d *Dataset, opts declutter.Options) (*Dataset, []declutter.Placement, declutter.Stats) {
	sites, placements, stats := Declutter(d.CellTowers, opts)
	return &Dataset{Name: d.Name, CellTowers: sites}, placements, stats
}
