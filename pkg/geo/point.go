package geo

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/golang/geo/s2"
	"gonum.org/v1/gonum/spatial/r2"
)

// EarthRadiusMeters is the mean Earth radius used for great-circle distances.
const EarthRadiusMeters = 6371000.0

// ProjectedPoint is a position in a projected CRS (LV95), in meters.
type ProjectedPoint struct {
	Easting  float64 `json:"easting"`
	Northing float64 `json:"northing"`
}

// Finite reports whether both fields are finite numbers.
func (p ProjectedPoint) Finite() bool {
	return isFinite(p.Easting) && isFinite(p.Northing)
}

// GeoPoint is a WGS84 position in degrees.
//
// It serializes as a two-element JSON array [latitude, longitude], the
// layout of the interchange file.
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

// Finite reports whether both fields are finite numbers.
func (p GeoPoint) Finite() bool {
	return isFinite(p.Latitude) && isFinite(p.Longitude)
}

// PlanarDistance returns sqrt(Δlat² + Δlon²) in degree units.
// It ignores the curvature of the Earth and the shrinking of longitude
// degrees with latitude.
func (p GeoPoint) PlanarDistance(o GeoPoint) float64 {
	d := r2.Sub(p.vec(), o.vec())
	return math.Sqrt(r2.Dot(d, d))
}

// MetersTo returns the great-circle distance to o in meters.
func (p GeoPoint) MetersTo(o GeoPoint) float64 {
	a := s2.LatLngFromDegrees(p.Latitude, p.Longitude)
	b := s2.LatLngFromDegrees(o.Latitude, o.Longitude)
	return a.Distance(b).Radians() * EarthRadiusMeters
}

// Add returns p shifted by the given degree offsets.
func (p GeoPoint) Add(dLat, dLon float64) GeoPoint {
	return GeoPoint{Latitude: p.Latitude + dLat, Longitude: p.Longitude + dLon}
}

// String formats the point as "lat,lon" with 6 decimals (~0.1 m).
func (p GeoPoint) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Latitude, p.Longitude)
}

func (p GeoPoint) vec() r2.Vec {
	return r2.Vec{X: p.Latitude, Y: p.Longitude}
}

// MarshalJSON encodes the point as [latitude, longitude].
func (p GeoPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Latitude, p.Longitude})
}

// UnmarshalJSON decodes a [latitude, longitude] array.
func (p *GeoPoint) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("coordinates: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("coordinates: want [lat, lon], got %d values", len(pair))
	}
	p.Latitude, p.Longitude = pair[0], pair[1]
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
