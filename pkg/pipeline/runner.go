package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/celltower/pkg/cache"
	"github.com/matzehuels/celltower/pkg/celltower"
	"github.com/matzehuels/celltower/pkg/declutter"
	"github.com/matzehuels/celltower/pkg/httputil"
	"github.com/matzehuels/celltower/pkg/observability"
	"github.com/matzehuels/celltower/pkg/render"
	"github.com/matzehuels/celltower/pkg/source/ofcom"
)

// Runner encapsulates pipeline execution with caching.
// Both the CLI commands and the HTTP server use it.
//
// The Runner is stateless except for the cache, fetcher and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Fetcher downloads remote inputs. Created on first use when nil.
	Fetcher *ofcom.Fetcher

	fetcherOnce sync.Once
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete convert → declutter → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{RunID: uuid.NewString()}
	logger := opts.Logger.With("run", result.RunID[:8])
	hooks := observability.Pipeline()

	// Stage 1: Convert
	convertStart := time.Now()
	original, convertHit, err := r.ConvertWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	original = filterOperators(original, opts.Operators)
	result.Original = original
	result.Stats.ConvertTime = time.Since(convertStart)
	result.Stats.SiteCount = original.Len()
	result.CacheInfo.ConvertHit = convertHit

	logger.Info("loaded sites",
		"sites", original.Len(),
		"cached", convertHit,
		"duration", result.Stats.ConvertTime)

	// Stage 2: Declutter
	hooks.OnDeclutterStart(ctx, original.Len())
	declutterStart := time.Now()
	d, placements, stats := r.Declutter(ctx, original, opts)
	result.Dataset = d
	result.Placements = placements
	result.Declutter = stats
	result.Stats.DeclutterTime = time.Since(declutterStart)
	hooks.OnDeclutterComplete(ctx, stats.Anchors, stats.Shifted(), result.Stats.DeclutterTime)

	if data, err := celltower.MarshalDataset(d); err == nil {
		result.DatasetHash = cache.Hash(data)
	}

	logger.Info("decluttered sites",
		"anchors", stats.Anchors,
		"shifted", stats.Shifted(),
		"max_group", stats.MaxGroupSize,
		"duration", result.Stats.DeclutterTime)

	// Stage 3: Render
	renderStart := time.Now()
	in := render.Input{
		Dataset:    d,
		Original:   original,
		Placements: placements,
		Stats:      stats,
		Config:     opts.Config,
		Title:      opts.Title,
	}
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, in, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ConvertWithCacheInfo loads the input and converts it to a dataset,
// reporting whether the dataset came from cache.
func (r *Runner) ConvertWithCacheInfo(ctx context.Context, opts Options) (d *celltower.Dataset, hit bool, err error) {
	if err := opts.ValidateForConvert(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	input := describeInput(opts)
	hooks := observability.Pipeline()
	hooks.OnConvertStart(ctx, opts.Source, input)
	start := time.Now()
	defer func() {
		n := 0
		if d != nil {
			n = d.Len()
		}
		hooks.OnConvertComplete(ctx, opts.Source, input, n, time.Since(start), err)
	}()

	data, err := r.load(ctx, opts)
	if err != nil {
		return nil, false, err
	}

	source := opts.Source
	if source == SourceAuto {
		if source, err = DetectSource(data); err != nil {
			return nil, false, err
		}
	}
	opts.Logger.Debug("detected input", "source", source, "bytes", len(data))

	// Interchange files are already the cached form.
	if source == SourceDataset {
		d, err := ConvertBytes(data, source, opts)
		return d, false, err
	}

	cacheKey := r.Keyer.DatasetKey(cache.Hash(data), opts.DatasetKeyOpts(source))

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if d, err := celltower.UnmarshalDataset(cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "dataset")
				return d, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "dataset")
	}

	d, err = ConvertBytes(data, source, opts)
	if err != nil {
		return nil, false, err
	}

	if encoded, err := celltower.MarshalDataset(d); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, encoded, cache.TTLDataset); err == nil {
			observability.Cache().OnCacheSet(ctx, "dataset", len(encoded))
		}
	}
	return d, false, nil
}

// Convert is a convenience wrapper that calls ConvertWithCacheInfo and discards the cache hit info.
func (r *Runner) Convert(ctx context.Context, opts Options) (*celltower.Dataset, error) {
	d, _, err := r.ConvertWithCacheInfo(ctx, opts)
	return d, err
}

// Declutter runs one declutter pass over d in order. With SkipDeclutter
// every site is kept in place and reported as its own anchor.
func (r *Runner) Declutter(ctx context.Context, d *celltower.Dataset, opts Options) (*celltower.Dataset, []declutter.Placement, declutter.Stats) {
	if opts.SkipDeclutter {
		placements := make([]declutter.Placement, d.Len())
		for i, s := range d.CellTowers {
			placements[i] = declutter.Placement{Point: s.Coordinates, Anchor: -1}
		}
		return d.Clone(), placements, declutter.Stats{Sites: d.Len(), Anchors: d.Len(), MaxGroupSize: min(d.Len(), 1)}
	}
	return celltower.DeclutterDataset(d, opts.DeclutterOptions())
}

// fetcher returns the runner's fetcher, creating one with the default
// download cache on first use.
func (r *Runner) fetcher() *ofcom.Fetcher {
	r.fetcherOnce.Do(func() {
		if r.Fetcher != nil {
			return
		}
		httpCache, err := httputil.NewCache("", httputil.DefaultTTL)
		if err != nil {
			r.Logger.Warn("download cache unavailable", "err", err)
			httpCache = nil
		}
		r.Fetcher = ofcom.NewFetcher(nil, httpCache, r.Logger)
	})
	return r.Fetcher
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
