// Package geo holds the coordinate types shared by the loader, the declutter
// engine and the renderers, and the LV95 → WGS84 projector.
//
// # Projection
//
// [Project] implements the polynomial approximation published by swisstopo
// for converting Swiss LV95 (EPSG:2056) easting/northing in meters to WGS84
// latitude/longitude in degrees. The constants are calibrated and fixed; the
// approximation is accurate to about a meter inside Switzerland and produces
// meaningless (but finite) output elsewhere. No range checks are done.
//
//	p := geo.Project(2600000, 1200000) // ≈ {46.9511, 7.4386}, Bern
//
// Loaders that decode untyped JSON use [ProjectValues], which rejects
// non-numeric input with an [*InvalidInputError]:
//
//	p, err := geo.ProjectValues(coords[0], coords[1])
//	if errors.Is(err, geo.ErrInvalidInput) {
//	    // bad feature geometry
//	}
//
// # Distances
//
// [GeoPoint.PlanarDistance] is the plain Euclidean distance in degree units
// used for overlap detection. [GeoPoint.MetersTo] is the great-circle
// distance, used only for reporting.
package geo
