package render

import (
	"encoding/json"
)

// FeatureCollection is the GeoJSON output document.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Name     string    `json:"name,omitempty"`
	Features []Feature `json:"features"`
}

// Feature is one site.
type Feature struct {
	Type       string            `json:"type"`
	Geometry   Geometry          `json:"geometry"`
	Properties FeatureProperties `json:"properties"`
}

// Geometry is a GeoJSON Point in [lon, lat] order.
type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// FeatureProperties describe a site and how it was moved.
type FeatureProperties struct {
	Operator   string      `json:"operator"`
	Station    string      `json:"station,omitempty"`
	Technology string      `json:"technology"`
	Generation string      `json:"generation,omitempty"`
	Power      string      `json:"power"`
	Layer      string      `json:"layer,omitempty"`
	Shifted    bool        `json:"shifted"`
	Direction  string      `json:"direction,omitempty"`
	Original   *[2]float64 `json:"original,omitempty"` // [lon, lat] before decluttering
}

// GeoJSON renders the sites as a FeatureCollection.
func GeoJSON(in Input) ([]byte, error) {
	return json.MarshalIndent(NewFeatureCollection(in), "", "  ")
}

// NewFeatureCollection builds the GeoJSON document of in.
func NewFeatureCollection(in Input) FeatureCollection {
	cfg := in.config()
	sites := in.sites()
	fc := FeatureCollection{Type: "FeatureCollection", Features: make([]Feature, 0, len(sites))}
	if in.Dataset != nil {
		fc.Name = in.Dataset.Name
	}

	for i, s := range sites {
		layer, _ := Layer(cfg, s.Operator)
		props := FeatureProperties{
			Operator:   s.Operator,
			Station:    s.Station,
			Technology: s.Technology,
			Generation: s.Generation(),
			Power:      s.Power,
			Layer:      layer,
		}
		if p, ok := in.placement(i); ok && p.Shifted() {
			props.Shifted = true
			props.Direction = p.Direction.String()
		}
		if o, ok := in.original(i); ok {
			props.Original = &[2]float64{o.Coordinates.Longitude, o.Coordinates.Latitude}
		}

		fc.Features = append(fc.Features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: [2]float64{s.Coordinates.Longitude, s.Coordinates.Latitude},
			},
			Properties: props,
		})
	}
	return fc
}
