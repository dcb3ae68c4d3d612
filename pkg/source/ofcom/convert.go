package ofcom

import (
	"bytes"
	"fmt"
	"io"

	"github.com/matzehuels/celltower/pkg/celltower"
	apperrors "github.com/matzehuels/celltower/pkg/errors"
	"github.com/matzehuels/celltower/pkg/geo"
)

// Languages of the descriptive properties.
const (
	LangFR = "fr"
	LangEN = "en"
)

// Options configures [Convert].
type Options struct {
	// Name is the dataset name. Defaults to [celltower.DefaultDatasetName].
	Name string
	// Lang selects the preferred property language. Defaults to [LangFR].
	Lang string
}

// Convert projects and categorizes every feature in order. The first
// failing feature aborts the conversion; its index is added to the error
// and the underlying cause stays in the chain.
func Convert(fc *FeatureCollection, opts Options) (*celltower.Dataset, error) {
	if opts.Name == "" {
		opts.Name = celltower.DefaultDatasetName
	}
	if opts.Lang == "" {
		opts.Lang = LangFR
	}

	sites := make([]celltower.Site, 0, len(fc.Features))
	for i, f := range fc.Features {
		site, err := convertFeature(f, opts.Lang)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		sites = append(sites, site)
	}
	return &celltower.Dataset{Name: opts.Name, CellTowers: sites}, nil
}

func convertFeature(f Feature, lang string) (celltower.Site, error) {
	coords := f.Geometry.Coordinates
	if len(coords) < 2 {
		return celltower.Site{}, &geo.InvalidInputError{Field: "coordinates", Value: coords}
	}
	pt, err := geo.ProjectValues(coords[0], coords[1])
	if err != nil {
		return celltower.Site{}, err
	}
	// Huge but finite inputs overflow inside the polynomial.
	if !pt.Finite() {
		return celltower.Site{}, apperrors.New(apperrors.ErrCodeInvalidInput,
			"coordinates [%v, %v] project to a non-finite point (%v, %v)", coords[0], coords[1], pt.Latitude, pt.Longitude)
	}

	station := f.Properties.Station
	return celltower.Site{
		Coordinates: pt,
		Operator:    celltower.OperatorFromStation(station),
		Technology:  f.Properties.Technology(lang),
		Power:       celltower.ClassifyPower(f.Properties.Power(lang)),
		Station:     station,
	}, nil
}

func bytesReader(data []byte) io.Reader { return bytes.NewReader(data) }
