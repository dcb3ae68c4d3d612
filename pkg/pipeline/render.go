package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/celltower/pkg/cache"
	"github.com/matzehuels/celltower/pkg/config"
	"github.com/matzehuels/celltower/pkg/observability"
	"github.com/matzehuels/celltower/pkg/render"
)

// Render generates output artifacts in the requested formats.
func Render(in render.Input, formats []string) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(formats))
	for _, format := range formats {
		var data []byte
		var err error

		switch format {
		case FormatHTML:
			data, err = render.HTML(in)
		case FormatJSON:
			data, err = render.JSON(in)
		case FormatGeoJSON:
			data, err = render.GeoJSON(in)
		case FormatPNG:
			data, err = render.PNG(in)
		case FormatSVG:
			data, err = render.SVG(in)
		case FormatChart:
			data, err = render.Chart(in)
		case FormatGroups:
			data, err = render.Groups(in)
		default:
			return nil, ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, in render.Input, opts Options) (artifacts map[string][]byte, hit bool, err error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)
	if in.Config == nil {
		in.Config = opts.Config
	}
	if in.Title == "" {
		in.Title = opts.Title
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() { hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err) }()

	inputHash, err := inputHash(in)
	if err != nil {
		// Not hashable (NaN coordinates); render without caching.
		opts.Logger.Debug("render input not cacheable", "err", err)
		artifacts, err = Render(in, opts.Formats)
		return artifacts, false, err
	}

	// Try to get all formats from cache
	artifacts = make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(inputHash, artifactKeyOpts(in, opts, format))
		data, hit, err := r.Cache.Get(ctx, cacheKey)
		if err != nil || !hit {
			observability.Cache().OnCacheMiss(ctx, "artifact")
			break
		}
		observability.Cache().OnCacheHit(ctx, "artifact")
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	rendered, err := Render(in, opts.Formats)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(inputHash, artifactKeyOpts(in, opts, format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err != nil {
			opts.Logger.Debug("artifact cache write failed", "format", format, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return rendered, false, nil
}

// inputHash identifies everything the sinks read besides the options.
func inputHash(in render.Input) (string, error) {
	data, err := json.Marshal(struct {
		Dataset    any `json:"dataset"`
		Original   any `json:"original"`
		Placements any `json:"placements"`
		Stats      any `json:"stats"`
	}{in.Dataset, in.Original, in.Placements, in.Stats})
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}

// artifactKeyOpts keys an artifact on the config and title the sinks
// actually render with, which may come from in rather than opts.
func artifactKeyOpts(in render.Input, opts Options, format string) cache.ArtifactKeyOpts {
	k := opts.ArtifactKeyOpts(format)
	k.Title = in.Title
	k.ConfigHash = configHash(in.Config)
	return k
}

func configHash(cfg *config.Config) string {
	if cfg == nil {
		return ""
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, in render.Input, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, in, opts)
	return artifacts, err
}
