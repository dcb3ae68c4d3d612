package ofcom

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	apperrors "github.com/matzehuels/celltower/pkg/errors"
)

// FeatureCollection is the top-level GeoJSON object of the export.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Name     string    `json:"name,omitempty"`
	Features []Feature `json:"features"`
}

// Feature is one antenna site record.
type Feature struct {
	Type       string     `json:"type"`
	Geometry   Geometry   `json:"geometry"`
	Properties Properties `json:"properties"`
}

// Geometry holds the raw LV95 coordinates. Values are kept untyped so that
// malformed records reach the projector and fail there with INVALID_INPUT.
type Geometry struct {
	Type        string `json:"type"`
	Coordinates []any  `json:"coordinates"`
}

// Properties are the descriptive fields of a feature.
type Properties struct {
	Station  string `json:"station"`
	TechnoFR string `json:"techno_fr,omitempty"`
	TechnoEN string `json:"techno_en,omitempty"`
	PowerFR  string `json:"power_fr,omitempty"`
	PowerEN  string `json:"power_en,omitempty"`
}

// Technology returns the technology label in lang ("fr" or "en"), falling
// back to the other language when the preferred one is empty.
func (p Properties) Technology(lang string) string {
	return pick(lang, p.TechnoFR, p.TechnoEN)
}

// Power returns the power descriptor in lang with the same fallback rule.
func (p Properties) Power(lang string) string {
	return pick(lang, p.PowerFR, p.PowerEN)
}

func pick(lang, fr, en string) string {
	if lang == LangEN {
		fr, en = en, fr
	}
	if fr != "" {
		return fr
	}
	return en
}

// Decode reads a FeatureCollection. Numbers are decoded as json.Number so
// coordinates keep their exact textual value until projection.
func Decode(r io.Reader) (*FeatureCollection, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var fc FeatureCollection
	if err := dec.Decode(&fc); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode geojson")
	}
	if fc.Type != "" && fc.Type != "FeatureCollection" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidFormat, "expected FeatureCollection, got %q", fc.Type)
	}
	return &fc, nil
}

// DecodeBytes is Decode over an in-memory payload.
func DecodeBytes(data []byte) (*FeatureCollection, error) {
	return Decode(bytesReader(data))
}

// LoadFile decodes the GeoJSON file at path.
func LoadFile(path string) (*FeatureCollection, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, err
	}
	defer f.Close()

	fc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fc, nil
}
