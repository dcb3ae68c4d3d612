// Package pipeline runs the convert → declutter → render pipeline.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Convert: load an OFCOM export (file, URL or bytes) and project it to
//     the interchange dataset, or load an interchange file as is
//  2. Declutter: nudge overlapping sites apart, in dataset order
//  3. Render: produce artifacts (html, json, geojson, png, svg, chart, groups)
//
// Convert results and artifacts are cached; decluttering is cheap and
// always recomputed.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:   "standorte-mobilfunkanlagen_2056.json",
//	    Formats: []string{"html"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	page := result.Artifacts["html"]
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/celltower/pkg/cache"
	"github.com/matzehuels/celltower/pkg/celltower"
	"github.com/matzehuels/celltower/pkg/config"
	"github.com/matzehuels/celltower/pkg/declutter"
	apperrors "github.com/matzehuels/celltower/pkg/errors"
	"github.com/matzehuels/celltower/pkg/source/ofcom"
)

// Input sources.
const (
	SourceAuto    = "auto"
	SourceOFCOM   = "ofcom"
	SourceDataset = "dataset"
)

// Format constants for output formats.
const (
	FormatHTML    = "html"
	FormatJSON    = "json"
	FormatGeoJSON = "geojson"
	FormatPNG     = "png"
	FormatSVG     = "svg"
	FormatChart   = "chart"
	FormatGroups  = "groups"
)

// AllFormats lists every format in a stable order.
var AllFormats = []string{FormatHTML, FormatJSON, FormatGeoJSON, FormatPNG, FormatSVG, FormatChart, FormatGroups}

// ValidSources is the set of supported input sources.
var ValidSources = map[string]bool{
	SourceAuto:    true,
	SourceOFCOM:   true,
	SourceDataset: true,
}

// DefaultFormats is used when no format is requested.
var DefaultFormats = []string{FormatHTML}

// Options contains all configuration for the pipeline.
type Options struct {
	// Convert options
	Input   string `json:"input,omitempty"` // local file
	URL     string `json:"url,omitempty"`   // remote OFCOM export
	Data    []byte `json:"-"`               // in-memory document, takes precedence
	Source  string `json:"source,omitempty"`
	Name    string `json:"name,omitempty"`
	Lang    string `json:"lang,omitempty"`
	Refresh bool   `json:"refresh,omitempty"`

	// Operators restricts the dataset before decluttering. Empty keeps all.
	Operators []string `json:"operators,omitempty"`

	// Declutter options; zero values fall back to Config, then defaults.
	Tolerance     float64 `json:"tolerance,omitempty"`
	DownOffset    float64 `json:"down_offset,omitempty"`
	RightOffset   float64 `json:"right_offset,omitempty"`
	SkipDeclutter bool    `json:"skip_declutter,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Title   string   `json:"title,omitempty"`

	// Runtime options (not serialized)
	Config *config.Config `json:"-"`
	Logger *log.Logger    `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string

	// Original is the converted dataset before decluttering.
	Original *celltower.Dataset

	// Dataset holds the sites at their rendered positions.
	Dataset *celltower.Dataset

	// DatasetHash is the content hash of Dataset.
	DatasetHash string

	// Placements has one declutter outcome per site.
	Placements []declutter.Placement

	// Declutter summarizes the declutter pass.
	Declutter declutter.Stats

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	SiteCount     int
	ConvertTime   time.Duration
	DeclutterTime time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ConvertHit bool // Whether the dataset came from cache
	RenderHit  bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !slices.Contains(AllFormats, format) {
		return apperrors.New(apperrors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(AllFormats, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated list, trimming blanks and
// dropping duplicates. "all" expands to [AllFormats].
func ParseFormats(s string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || slices.Contains(out, f) {
			continue
		}
		if f == "all" {
			return slices.Clone(AllFormats), nil
		}
		if err := ValidateFormat(f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// ValidateSource checks that a source is valid.
func ValidateSource(source string) error {
	if !ValidSources[source] {
		return apperrors.New(apperrors.ErrCodeInvalidInput,
			"invalid source: %q (must be one of: auto, ofcom, dataset)", source)
	}
	return nil
}

// Extension returns the file suffix of an artifact.
func Extension(format string) string {
	switch format {
	case FormatChart:
		return ".chart.html"
	case FormatGroups:
		return ".groups.svg"
	default:
		return "." + format
	}
}

// ContentType returns the MIME type of an artifact.
func ContentType(format string) string {
	switch format {
	case FormatHTML, FormatChart:
		return "text/html; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatGeoJSON:
		return "application/geo+json"
	case FormatPNG:
		return "image/png"
	case FormatSVG, FormatGroups:
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForConvert(); err != nil {
		return err
	}
	if err := o.ValidateForDeclutter(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForConvert checks that an input is given and applies convert defaults.
func (o *Options) ValidateForConvert() error {
	if len(o.Data) == 0 && o.Input == "" && o.URL == "" {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "input file or url is required")
	}
	o.setCommonDefaults()
	if o.Source == "" {
		o.Source = SourceAuto
	}
	if o.Lang == "" {
		o.Lang = o.Config.Source.Lang
	}
	if o.Lang == "" {
		o.Lang = ofcom.LangFR
	}
	if o.Lang != ofcom.LangFR && o.Lang != ofcom.LangEN {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "invalid lang: %q (must be fr or en)", o.Lang)
	}
	if o.Name == "" {
		o.Name = o.Config.Source.Name
	}
	if o.Name != "" {
		if err := apperrors.ValidateDatasetName(o.Name); err != nil {
			return err
		}
	}
	if o.URL != "" {
		if err := apperrors.ValidateDatasetURL(o.URL); err != nil {
			return err
		}
	}
	return ValidateSource(o.Source)
}

// ValidateForDeclutter rejects a negative or non-finite tolerance and
// non-finite offsets. Zero leaves the configured value in place.
func (o *Options) ValidateForDeclutter() error {
	flags := declutter.Options{Tolerance: o.Tolerance, DownOffset: o.DownOffset, RightOffset: o.RightOffset}
	if err := flags.Validate(); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "declutter options")
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	o.setCommonDefaults()
	if len(o.Formats) == 0 {
		o.Formats = slices.Clone(DefaultFormats)
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

func (o *Options) setCommonDefaults() {
	if o.Config == nil {
		o.Config = config.Default()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// DeclutterOptions merges flags over the configuration file.
func (o *Options) DeclutterOptions() declutter.Options {
	out := declutter.Options{}
	if o.Config != nil {
		out = o.Config.Declutter
	}
	if o.Tolerance != 0 {
		out.Tolerance = o.Tolerance
	}
	if o.DownOffset != 0 {
		out.DownOffset = o.DownOffset
	}
	if o.RightOffset != 0 {
		out.RightOffset = o.RightOffset
	}
	return out.WithDefaults()
}

// DatasetKeyOpts returns cache key options for conversion.
func (o *Options) DatasetKeyOpts(source string) cache.DatasetKeyOpts {
	return cache.DatasetKeyOpts{
		Source: source,
		Name:   o.Name,
		Lang:   o.Lang,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:     format,
		Title:      o.Title,
		Operators:  o.Operators,
		ConfigHash: configHash(o.Config),
	}
}

func describeInput(o Options) string {
	switch {
	case len(o.Data) > 0:
		return fmt.Sprintf("<%d bytes>", len(o.Data))
	case o.URL != "":
		return o.URL
	default:
		return o.Input
	}
}
