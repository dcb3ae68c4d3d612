// Package config loads the optional TOML configuration file.
//
// Every field has a default, so a missing file is not an error. Command
// line flags override values read from the file.
//
//	[map]
//	title = "Antennes de téléphonie mobile"
//	center = [46.8182, 8.2275]
//	zoom = 8
//
//	[[operators]]
//	name = "Swisscom"
//	color = "darkblue"
//	hex = "#00008b"
//
//	[declutter]
//	tolerance = 0.001
//
//	[cache]
//	redis_url = "redis://localhost:6379/0"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/celltower/pkg/declutter"
	apperrors "github.com/matzehuels/celltower/pkg/errors"
)

// Config is the root of the configuration file.
type Config struct {
	Map       MapConfig         `toml:"map" json:"map"`
	Operators []Operator        `toml:"operators" json:"operators"`
	Declutter declutter.Options `toml:"declutter" json:"declutter"`
	Source    SourceConfig      `toml:"source" json:"source"`
	Cache     CacheConfig       `toml:"cache" json:"-"`
}

// MapConfig controls the Leaflet view.
type MapConfig struct {
	Title       string     `toml:"title" json:"title"`
	Center      [2]float64 `toml:"center" json:"center"` // [lat, lon]
	Zoom        int        `toml:"zoom" json:"zoom"`
	Attribution string     `toml:"attribution" json:"attribution"` // HTML, inserted before the tile attribution
}

// Operator is one map layer. Sites whose operator is not listed are left
// off the map.
type Operator struct {
	Name  string `toml:"name" json:"name"`
	Color string `toml:"color" json:"color"` // marker color name
	Hex   string `toml:"hex" json:"hex"`     // plot color
}

// SourceConfig holds defaults for the OFCOM import.
type SourceConfig struct {
	URL  string `toml:"url" json:"url"`
	Lang string `toml:"lang" json:"lang"`
	Name string `toml:"name" json:"name"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Dir         string `toml:"dir"`
	RedisURL    string `toml:"redis_url"`
	RedisPrefix string `toml:"redis_prefix"`
}

// DefaultCenter is the geographic center of Switzerland.
var DefaultCenter = [2]float64{46.8182, 8.2275}

// DefaultAttribution credits the source repository and the OFCOM dataset.
const DefaultAttribution = `Repo open source : ` +
	`<a href="https://github.com/francoisbrouchoud/celltowermap" target="_blank">github.com/francoisbrouchoud/celltowermap</a> ` +
	`sous licence MIT <br> Source des données : ` +
	`<a href="https://www.geocat.ch/geonetwork/srv/fre/catalog.search#/metadata/6a972f46-ae47-4db9-b5a7-dcfd3598bd95" target="_blank">OFCOM</a> ` +
	`récupéré le 16.03.2024 | `

// FallbackColor is used for operators without a configured color.
const FallbackColor = "black"

// FallbackHex is the plot color matching FallbackColor.
const FallbackHex = "#000000"

// MarkerColors are the colors available to map markers.
var MarkerColors = []string{
	"red", "darkred", "lightred", "orange", "beige",
	"green", "darkgreen", "lightgreen",
	"blue", "darkblue", "lightblue", "cadetblue",
	"purple", "darkpurple", "pink",
	"white", "gray", "lightgray", "black",
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Map: MapConfig{
			Title:       "Antennes de téléphonie mobile en Suisse",
			Center:      DefaultCenter,
			Zoom:        8,
			Attribution: DefaultAttribution,
		},
		Operators: []Operator{
			{Name: "Swisscom", Color: "darkblue", Hex: "#00008b"},
			{Name: "Sunrise", Color: "red", Hex: "#ff0000"},
			{Name: "Salt", Color: "green", Hex: "#008000"},
		},
		Declutter: declutter.Options{}.WithDefaults(),
		Source:    SourceConfig{Lang: "fr"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/celltower/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "celltower", "config.toml"), nil
}

// Load reads path on top of [Default]. Unknown keys are rejected. When
// optional is set, a missing file yields the defaults.
func Load(path string, optional bool) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if optional {
			return cfg, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.decode(string(data)); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "%s", path)
	}
	return cfg, nil
}

// Parse decodes a TOML document on top of [Default].
func Parse(doc string) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(doc); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "parse config")
	}
	return cfg, nil
}

func (c *Config) decode(doc string) error {
	// A file that lists operators replaces the default palette.
	c.Operators = nil
	md, err := toml.Decode(doc, c)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if !md.IsDefined("operators") {
		c.Operators = Default().Operators
	}
	if md.IsDefined("declutter", "tolerance") && c.Declutter.Tolerance == 0 {
		return fmt.Errorf("declutter.tolerance: %w: 0", declutter.ErrInvalidTolerance)
	}
	if err := c.Declutter.Validate(); err != nil {
		return fmt.Errorf("declutter: %w", err)
	}
	c.Declutter = c.Declutter.WithDefaults()
	return c.Validate()
}

// Validate checks operator names, colors and the declutter parameters.
func (c *Config) Validate() error {
	if err := c.Declutter.Validate(); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "declutter")
	}
	seen := make(map[string]bool, len(c.Operators))
	for i, op := range c.Operators {
		if op.Name == "" {
			return fmt.Errorf("operators[%d]: name is required", i)
		}
		if seen[op.Name] {
			return fmt.Errorf("duplicate operator %q", op.Name)
		}
		seen[op.Name] = true
		if op.Color != "" && !slices.Contains(MarkerColors, op.Color) {
			return fmt.Errorf("operator %q: unknown marker color %q", op.Name, op.Color)
		}
	}
	if c.Map.Zoom < 0 || c.Map.Zoom > 19 {
		return errors.New("map.zoom must be within 0..19")
	}
	return nil
}

// OperatorNames lists the configured layers in order.
func (c *Config) OperatorNames() []string {
	names := make([]string, len(c.Operators))
	for i, op := range c.Operators {
		names[i] = op.Name
	}
	return names
}

// Operator returns the configured operator called name.
func (c *Config) Operator(name string) (Operator, bool) {
	for _, op := range c.Operators {
		if op.Name == name {
			return op, true
		}
	}
	return Operator{}, false
}

// MarkerColor returns the marker color of an operator, or [FallbackColor].
func (c *Config) MarkerColor(name string) string {
	if op, ok := c.Operator(name); ok && op.Color != "" {
		return op.Color
	}
	return FallbackColor
}

// HexColor returns the plot color of an operator, or [FallbackHex].
func (c *Config) HexColor(name string) string {
	if op, ok := c.Operator(name); ok && op.Hex != "" {
		return op.Hex
	}
	return FallbackHex
}
