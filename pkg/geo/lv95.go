package geo

import (
	"encoding/json"
	"errors"
	"fmt"

	apperrors "github.com/matzehuels/celltower/pkg/errors"
)

// LV95 false origin. The polynomial works on offsets from Bern in units of
// 1000 km.
const (
	lv95FalseEasting  = 2_600_000
	lv95FalseNorthing = 1_200_000
	lv95Unit          = 1_000_000
)

// ErrInvalidInput matches every [*InvalidInputError] via errors.Is.
var ErrInvalidInput = errors.New("invalid projection input")

// InvalidInputError reports a coordinate that is not a finite number.
type InvalidInputError struct {
	Field string // "easting" or "northing"
	Value any
}

func (e *InvalidInputError) Error() string {
	if f, ok := e.Value.(float64); ok {
		return fmt.Sprintf("%s must be a finite number, got %v", e.Field, f)
	}
	return fmt.Sprintf("%s must be numeric, got %T (%v)", e.Field, e.Value, e.Value)
}

// Is makes errors.Is(err, ErrInvalidInput) hold.
func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

// Unwrap exposes the INVALID_INPUT code to apperrors.Is.
func (e *InvalidInputError) Unwrap() error {
	return apperrors.New(apperrors.ErrCodeInvalidInput, "%s is not a finite number", e.Field)
}

// Project converts LV95 easting/northing (meters) to WGS84 degrees.
func Project(easting, northing float64) GeoPoint {
	east := (easting - lv95FalseEasting) / lv95Unit
	north := (northing - lv95FalseNorthing) / lv95Unit

	lon := 2.6779094 +
		4.728982*east +
		0.791484*east*north +
		0.1306*east*north*north -
		0.0436*east*east*east
	lon *= 100.0 / 36

	lat := 16.9023892 +
		3.238272*north -
		0.270978*east*east -
		0.002528*north*north -
		0.0447*east*east*north -
		0.0140*north*north*north
	lat *= 100.0 / 36

	return GeoPoint{Latitude: lat, Longitude: lon}
}

// ProjectPoint projects p, rejecting NaN and infinite components.
func ProjectPoint(p ProjectedPoint) (GeoPoint, error) {
	if !isFinite(p.Easting) {
		return GeoPoint{}, &InvalidInputError{Field: "easting", Value: p.Easting}
	}
	if !isFinite(p.Northing) {
		return GeoPoint{}, &InvalidInputError{Field: "northing", Value: p.Northing}
	}
	return Project(p.Easting, p.Northing), nil
}

// ProjectValues projects dynamically typed coordinates, as produced by
// decoding GeoJSON into []any. Any Go integer or float kind and json.Number
// are accepted.
func ProjectValues(easting, northing any) (GeoPoint, error) {
	e, ok := toFloat(easting)
	if !ok {
		return GeoPoint{}, &InvalidInputError{Field: "easting", Value: easting}
	}
	n, ok := toFloat(northing)
	if !ok {
		return GeoPoint{}, &InvalidInputError{Field: "northing", Value: northing}
	}
	return ProjectPoint(ProjectedPoint{Easting: e, Northing: n})
}

func toFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}
