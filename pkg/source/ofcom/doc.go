// Package ofcom imports the OFCOM export of Swiss mobile antenna sites.
//
// The export is a GeoJSON FeatureCollection in the Swiss LV95 grid
// (EPSG:2056). Each feature carries a point geometry [E, N] and the
// properties station, techno_fr and power_fr (techno_en and power_en in the
// English export). [Convert] reprojects every feature to WGS84 with
// [geo.ProjectValues] and categorizes it into a [celltower.Site].
//
// Sources can be local files ([LoadFile]) or a URL ([Fetcher]); downloads
// are retried on transient failures and cached on disk.
package ofcom
