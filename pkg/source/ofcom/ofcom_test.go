package ofcom

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/celltower/pkg/celltower"
	apperrors "github.com/matzehuels/celltower/pkg/errors"
	"github.com/matzehuels/celltower/pkg/geo"
)

func TestLoadFileAndConvert(t *testing.T) {
	fc, err := LoadFile(filepath.Join("testdata", "antennes.json"))
	require.NoError(t, err)
	require.Len(t, fc.Features, 4)

	d, err := Convert(fc, Options{})
	require.NoError(t, err)

	assert.Equal(t, celltower.DefaultDatasetName, d.Name)
	require.Len(t, d.CellTowers, 4)

	want := []struct {
		operator, technology, power string
		lat, lon                    float64
	}{
		{"Swisscom", "5G, 4G, 3G", celltower.PowerMedium, 46.9510811, 7.4386372},
		{"Sunrise", "4G, 2G", celltower.PowerVeryLow, 47.37857, 8.53983},
		{"Salt", "4G", celltower.PowerHigh, 46.21101, 6.14671},
		{"Swisscom", "3G", celltower.PowerLow, 46.00445, 8.95421},
	}
	for i, w := range want {
		got := d.CellTowers[i]
		assert.Equal(t, w.operator, got.Operator, "site %d operator", i)
		assert.Equal(t, w.technology, got.Technology, "site %d technology", i)
		assert.Equal(t, w.power, got.Power, "site %d power", i)
		assert.InDelta(t, w.lat, got.Coordinates.Latitude, 1e-4, "site %d latitude", i)
		assert.InDelta(t, w.lon, got.Coordinates.Longitude, 1e-4, "site %d longitude", i)
	}
	assert.Equal(t, "Swisscom (Suisse) SA BEBE", d.CellTowers[0].Station)
}

func TestConvert_LanguagePreference(t *testing.T) {
	fc := &FeatureCollection{Features: []Feature{{
		Geometry: Geometry{Coordinates: []any{2600000.0, 1200000.0}},
		Properties: Properties{
			Station:  "Salt Mobile SA",
			TechnoFR: "4G (fr)",
			TechnoEN: "4G (en)",
			PowerFR:  "Puissance forte",
			PowerEN:  "Very low power",
		},
	}}}

	fr, err := Convert(fc, Options{Lang: LangFR})
	require.NoError(t, err)
	assert.Equal(t, "4G (fr)", fr.CellTowers[0].Technology)
	assert.Equal(t, celltower.PowerHigh, fr.CellTowers[0].Power)

	en, err := Convert(fc, Options{Lang: LangEN, Name: "english"})
	require.NoError(t, err)
	assert.Equal(t, "english", en.Name)
	assert.Equal(t, "4G (en)", en.CellTowers[0].Technology)
	assert.Equal(t, celltower.PowerVeryLow, en.CellTowers[0].Power)
}

func TestConvert_InvalidCoordinates(t *testing.T) {
	tests := []struct {
		name   string
		coords string
	}{
		{"string easting", `["2600000", 1200000]`},
		{"null northing", `[2600000, null]`},
		{"bool", `[true, 1200000]`},
		{"too short", `[2600000]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `{"type":"FeatureCollection","features":[
				{"type":"Feature","geometry":{"type":"Point","coordinates":[2600000,1200000]},"properties":{"station":"Salt x"}},
				{"type":"Feature","geometry":{"type":"Point","coordinates":` + tt.coords + `},"properties":{"station":"Salt y"}}]}`
			fc, err := Decode(strings.NewReader(doc))
			require.NoError(t, err)

			_, err = Convert(fc, Options{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "feature 1")
			assert.ErrorIs(t, err, geo.ErrInvalidInput)
			assert.True(t, apperrors.Is(err, apperrors.ErrCodeInvalidInput))

			var inputErr *geo.InvalidInputError
			assert.True(t, errors.As(err, &inputErr))
		})
	}
}

func TestConvert_OverflowingCoordinates(t *testing.T) {
	fc := &FeatureCollection{Features: []Feature{
		{Geometry: Geometry{Coordinates: []any{2600000.0, 1200000.0}}, Properties: Properties{Station: "Salt x"}},
		{Geometry: Geometry{Coordinates: []any{1e300, 1200000.0}}, Properties: Properties{Station: "Salt y"}},
	}}
	_, err := Convert(fc, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feature 1")
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeInvalidInput))
}

func TestConvert_UnknownPowerPassesThrough(t *testing.T) {
	fc := &FeatureCollection{Features: []Feature{{
		Geometry:   Geometry{Coordinates: []any{2600000, 1200000}},
		Properties: Properties{Station: "Swisscom", PowerFR: "Inconnue"},
	}}}
	d, err := Convert(fc, Options{})
	require.NoError(t, err)
	assert.Equal(t, "Inconnue", d.CellTowers[0].Power)
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"type":`))
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeInvalidFormat))

	_, err = Decode(strings.NewReader(`{"type":"Feature"}`))
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeInvalidFormat))
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeFileNotFound))
}
