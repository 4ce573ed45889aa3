package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flamechart/pkg/cache"
	"github.com/matzehuels/flamechart/pkg/errors"
	"github.com/matzehuels/flamechart/pkg/flamechart"
	"github.com/matzehuels/flamechart/pkg/httputil"
	"github.com/matzehuels/flamechart/pkg/observability"
	"github.com/matzehuels/flamechart/pkg/search"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is how long rendered artifacts stay cached. Zero means
	// cache.TTLArtifact.
	TTL time.Duration

	// Fetcher downloads profiles given as http(s) URLs.
	Fetcher *httputil.Fetcher
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
		logger = log.New(io.Discard)
	}
	fetcher := httputil.NewFetcher(c)
	fetcher.Logger = logger
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
		Fetcher: fetcher,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{}

	loadStart := time.Now()
	loaded, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Profile = loaded
	result.Stats.LoadTime = time.Since(loadStart)

	r.Logger.Info("loaded profile",
		"input", loaded.Input,
		"frames", loaded.Profile.Frames().Len(),
		"duration", result.Stats.LoadTime)

	layoutStart := time.Now()
	chart, err := r.Layout(ctx, loaded, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Chart = chart
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.FrameCount = chart.FrameCount()
	result.Stats.LayerCount = len(chart.Layers())

	r.Logger.Info("computed layout",
		"kind", opts.Kind,
		"frames", result.Stats.FrameCount,
		"layers", result.Stats.LayerCount,
		"duration", result.Stats.LayoutTime)

	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, loaded, chart, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads and decodes the profile at opts.Path, which may be an http(s)
// URL.
func (r *Runner) Load(ctx context.Context, opts Options) (*Loaded, error) {
	if err := errors.ValidateInputPath(opts.Path); err != nil {
		return nil, err
	}
	if httputil.IsURL(opts.Path) && r.Fetcher != nil {
		data, err := r.Fetcher.Fetch(ctx, opts.Path)
		if err != nil {
			return nil, err
		}
		return r.LoadBytes(ctx, data, opts)
	}
	data, err := os.ReadFile(opts.Path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "profile %s not found", opts.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", opts.Path, err)
	}
	return r.LoadBytes(ctx, data, opts)
}

// LoadBytes decodes a profile held in memory.
func (r *Runner) LoadBytes(ctx context.Context, data []byte, opts Options) (*Loaded, error) {
	opts.SetDefaults()
	if opts.Input == "" {
		opts.Input = InputCollapsed
	}
	if err := ValidateInput(opts.Input); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, opts.Input, opts.Path)
	start := time.Now()

	p, err := Decode(data, opts.Input, opts)
	frames := 0
	if err == nil {
		frames = p.Frames().Len()
	}
	hooks.OnLoadComplete(ctx, opts.Input, opts.Path, frames, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	return &Loaded{
		Profile: p,
		Input:   opts.Input,
		Key:     r.Keyer.ProfileKey(cache.Hash(data), opts.ProfileKeyOpts()),
	}, nil
}

// Layout builds the flame chart for a loaded profile.
func (r *Runner) Layout(ctx context.Context, loaded *Loaded, opts Options) (*flamechart.Flamechart, error) {
	opts.SetDefaults()
	kind, err := flamechart.ParseKind(opts.Kind)
	if err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, string(kind))
	start := time.Now()

	chart, err := GenerateLayout(loaded.Profile, kind, opts.RootFilter)
	frames := 0
	if err == nil {
		frames = chart.FrameCount()
	}
	hooks.OnLayoutComplete(ctx, string(kind), frames, time.Since(start), err)
	return chart, err
}

// RenderWithCacheInfo generates artifacts with caching and returns whether
// every artifact came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, loaded *Loaded, chart *flamechart.Flamechart, opts Options) (map[string][]byte, bool, error) {
	if err := opts.Validate(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(loaded.Key, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[format] = data
				continue
			} else if err != nil {
				r.Logger.Warn("cache read failed", "format", format, "err", err)
			}
			observability.Cache().OnCacheMiss(ctx, "artifact")
		}
		allCached = false

		data, err := r.renderOne(ctx, chart, format, opts)
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data

		if err := r.Cache.Set(ctx, key, data, r.artifactTTL()); err != nil {
			r.Logger.Warn("cache write failed", "format", format, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return artifacts, allCached, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, loaded *Loaded, chart *flamechart.Flamechart, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, loaded, chart, opts)
	return artifacts, err
}

func (r *Runner) renderOne(ctx context.Context, chart *flamechart.Flamechart, format string, opts Options) ([]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()
	data, err := RenderFormat(ctx, chart, format, opts)
	hooks.OnRenderComplete(ctx, format, len(data), time.Since(start), err)
	return data, err
}

// Search runs a search of the given mode over chart.
func (r *Runner) Search(chart *flamechart.Flamechart, mode search.Mode, query string) (flamechart.SearchResult, error) {
	if err := errors.ValidateQuery(query); err != nil {
		return flamechart.SearchResult{}, err
	}
	if query == "" {
		return flamechart.SearchResult{}, nil
	}
	res := chart.Search(search.New(mode, query))
	r.Logger.Debug("searched chart", "mode", mode, "query", query, "matches", len(res.Matches))
	return res, nil
}

func (r *Runner) artifactTTL() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return cache.TTLArtifact
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
