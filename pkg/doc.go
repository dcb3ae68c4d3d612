// Package pkg provides the libraries behind the celltower map of Swiss
// mobile antenna sites.
//
// # Overview
//
// The OFCOM publishes every antenna site in the Swiss LV95 grid. Celltower
// projects the sites to WGS84, nudges sites that would hide each other on a
// map and renders the result. The pkg directory is organized into:
//
//  1. Domain: [geo], [declutter], [celltower]
//  2. Input: [source/ofcom]
//  3. Output: [render], [server]
//  4. Orchestration: [pipeline]
//  5. Infrastructure: [cache], [httputil], [config], [errors], [observability]
//
// # Architecture
//
//	OFCOM GeoJSON export (LV95)
//	         ↓
//	    [source/ofcom] decode + [geo] projection
//	         ↓
//	    [celltower] Dataset (interchange file)
//	         ↓
//	    [declutter] single ordered pass
//	         ↓
//	    [render] html / json / geojson / png / svg / chart / groups
//
// # Quick Start
//
//	fc, _ := ofcom.LoadFile("standorte-mobilfunkanlagen_2056.json")
//	d, _ := ofcom.Convert(fc, ofcom.Options{})
//
//	out, placements, stats := celltower.DeclutterDataset(d, declutter.Options{})
//
//	page, _ := render.HTML(render.Input{Dataset: out, Placements: placements, Stats: stats})
//
// [pipeline.Runner] does the same with caching and is what the CLI uses.
package pkg
