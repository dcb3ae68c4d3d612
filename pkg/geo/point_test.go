package geo

import (
	"encoding/json"
	"math"
	"testing"
)

func TestPlanarDistance(t *testing.T) {
	a := GeoPoint{Latitude: 46.0, Longitude: 7.0}
	b := GeoPoint{Latitude: 46.0003, Longitude: 7.0004}

	got := a.PlanarDistance(b)
	if math.Abs(got-0.0005) > 1e-12 {
		t.Errorf("PlanarDistance() = %v, want 0.0005", got)
	}
	if a.PlanarDistance(b) != b.PlanarDistance(a) {
		t.Error("PlanarDistance should be symmetric")
	}
	if a.PlanarDistance(a) != 0 {
		t.Error("PlanarDistance to self should be 0")
	}
}

func TestMetersTo(t *testing.T) {
	a := GeoPoint{Latitude: 46.0, Longitude: 7.0}
	b := GeoPoint{Latitude: 46.001, Longitude: 7.0}

	// One thousandth of a degree of latitude is about 111 m.
	got := a.MetersTo(b)
	if got < 110 || got > 112 {
		t.Errorf("MetersTo() = %v, want ~111", got)
	}
}

func TestGeoPointJSON(t *testing.T) {
	p := GeoPoint{Latitude: 46.5, Longitude: 7.25}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[46.5,7.25]" {
		t.Errorf("Marshal = %s, want [46.5,7.25]", data)
	}

	var back GeoPoint
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back != p {
		t.Errorf("Unmarshal = %v, want %v", back, p)
	}

	for _, bad := range []string{`[1]`, `[1,2,3]`, `{"lat":1}`, `["a","b"]`} {
		if err := json.Unmarshal([]byte(bad), &back); err == nil {
			t.Errorf("Unmarshal(%s) should fail", bad)
		}
	}
}

func TestProjectedPointFinite(t *testing.T) {
	if !(ProjectedPoint{Easting: 1, Northing: 2}).Finite() {
		t.Error("finite point reported as non-finite")
	}
	if (ProjectedPoint{Easting: math.Inf(-1), Northing: 2}).Finite() {
		t.Error("infinite point reported as finite")
	}
}

func TestGeoPointFinite(t *testing.T) {
	if !Project(2_600_000, 1_200_000).Finite() {
		t.Error("origin should project to a finite point")
	}
	if Project(1e300, 1_200_000).Finite() {
		t.Error("overflowing easting should project to a non-finite point")
	}
	if (GeoPoint{Latitude: math.NaN()}).Finite() {
		t.Error("NaN latitude should not be finite")
	}
}
