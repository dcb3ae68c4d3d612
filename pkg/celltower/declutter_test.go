package celltower

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/celltower/pkg/declutter"
	"github.com/matzehuels/celltower/pkg/geo"
)

func TestDeclutterKeepsFields(t *testing.T) {
	at := geo.GeoPoint{Latitude: 46.5, Longitude: 7.5}
	in := []Site{
		{Coordinates: at, Operator: "Swisscom", Technology: "5G", Power: PowerHigh, Station: "Swisscom A"},
		{Coordinates: at, Operator: "Salt", Technology: "4G", Power: PowerLow},
		{Coordinates: at, Operator: "Sunrise", Technology: "3G", Power: "x"},
		{Coordinates: geo.GeoPoint{Latitude: 47.5, Longitude: 7.5}, Operator: "Salt", Technology: "2G", Power: PowerMedium},
	}
	orig := append([]Site(nil), in...)

	out, placements, stats := Declutter(in, declutter.Options{})

	if len(out) != len(in) || len(placements) != len(in) {
		t.Fatalf("lengths = %d/%d, want %d", len(out), len(placements), len(in))
	}
	if diff := cmp.Diff(orig, in); diff != "" {
		t.Errorf("input modified (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(orig, out, cmpopts.IgnoreFields(Site{}, "Coordinates")); diff != "" {
		t.Errorf("non-coordinate fields changed (-want +got):\n%s", diff)
	}

	wantCoords := []geo.GeoPoint{
		at,
		{Latitude: 46.5 - 0.0002, Longitude: 7.5},
		{Latitude: 46.5, Longitude: 7.5 + 0.0002},
		{Latitude: 47.5, Longitude: 7.5},
	}
	for i, s := range out {
		if diff := cmp.Diff(wantCoords[i], s.Coordinates, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
			t.Errorf("site %d coordinates (-want +got):\n%s", i, diff)
		}
		if placements[i].Point != s.Coordinates {
			t.Errorf("placement %d point %v != site %v", i, placements[i].Point, s.Coordinates)
		}
	}
	if stats.Sites != 4 || stats.Anchors != 2 || stats.Shifted() != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestDeclutterDataset(t *testing.T) {
	d := sampleDataset()
	d.CellTowers[1].Coordinates = d.CellTowers[0].Coordinates

	out, _, stats := DeclutterDataset(d, declutter.Options{})
	if out.Name != d.Name {
		t.Errorf("Name = %q, want %q", out.Name, d.Name)
	}
	if out.CellTowers[1].Coordinates == d.CellTowers[1].Coordinates {
		t.Error("second site should have been shifted")
	}
	if stats.ShiftedDown != 1 {
		t.Errorf("ShiftedDown = %d, want 1", stats.ShiftedDown)
	}
}
