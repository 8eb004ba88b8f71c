package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/waterfall/pkg/cache"
	"github.com/matzehuels/waterfall/pkg/chart"
	"github.com/matzehuels/waterfall/pkg/dashboard"
	"github.com/matzehuels/waterfall/pkg/observability"
	"github.com/matzehuels/waterfall/pkg/waterfall"
)

// Runner executes the pipeline with caching. It holds no per-run state and
// is safe for concurrent use.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner returns a runner. A nil cache disables caching and a nil keyer
// uses [cache.DefaultKeyer].
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
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute computes the series for opts.Period and renders every requested format.
func (r *Runner) Execute(ctx context.Context, p *dashboard.Payload, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.Title == "" {
		opts.Title = p.DisplayTitle(opts.PeriodValue())
	}

	result := &Result{}

	computeStart := time.Now()
	s, hit, err := r.ComputeWithCacheInfo(ctx, p, opts)
	if err != nil {
		return nil, err
	}
	result.Series = s
	result.Stats.Bars = s.Len()
	result.Stats.ComputeTime = time.Since(computeStart)
	result.CacheInfo.SeriesHit = hit
	if result.SeriesHash, err = cache.HashJSON(s); err != nil {
		return nil, fmt.Errorf("hash series: %w", err)
	}

	r.Logger.Info("computed series",
		"period", opts.Period,
		"bars", s.Len(),
		"total", s.Total(),
		"cached", hit,
		"duration", result.Stats.ComputeTime)

	result.Chart = BuildChart(s, opts)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result.Chart, result.SeriesHash, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ComputeWithCacheInfo returns the series for one period and whether it came from cache.
func (r *Runner) ComputeWithCacheInfo(ctx context.Context, p *dashboard.Payload, opts Options) (waterfall.Series, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return waterfall.Series{}, false, err
	}
	period := opts.PeriodValue()

	payloadHash, err := cache.HashJSON(p)
	if err != nil {
		return waterfall.Series{}, false, fmt.Errorf("hash payload: %w", err)
	}
	key := r.Keyer.SeriesKey(payloadHash, string(period))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var s waterfall.Series
			if err := json.Unmarshal(data, &s); err == nil {
				observability.Cache().OnCacheHit(ctx, "series")
				return s, true, nil
			}
		} else if err != nil {
			r.Logger.Warn("series cache lookup failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "series")
	}

	hooks := observability.Pipeline()
	_, deltas := p.Data(period)
	hooks.OnComputeStart(ctx, string(period), len(deltas))
	start := time.Now()
	s, err := p.Series(period)
	hooks.OnComputeComplete(ctx, string(period), s.Len(), time.Since(start), err)
	if err != nil {
		return waterfall.Series{}, false, err
	}

	if data, err := json.Marshal(s); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLSeries); err != nil {
			r.Logger.Warn("series cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "series", len(data))
		}
	}
	return s, false, nil
}

// Compute is ComputeWithCacheInfo without the cache flag.
func (r *Runner) Compute(ctx context.Context, p *dashboard.Payload, opts Options) (waterfall.Series, error) {
	s, _, err := r.ComputeWithCacheInfo(ctx, p, opts)
	return s, err
}

// BuildChart turns a series into the chart contract using the options' palette and title.
func BuildChart(s waterfall.Series, opts Options) chart.Chart {
	c := chart.FromSeries(s, opts.PaletteValue())
	c.Title = opts.Title
	return c
}

// RenderWithCacheInfo renders every requested format, reusing cached
// artifacts keyed by seriesHash. The flag is true only if all formats hit.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, c chart.Chart, seriesHash string, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(seriesHash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[format] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, "artifact")
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	sub := opts
	sub.Formats = missing
	rendered, err := Render(ctx, c, sub)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		artifacts[format] = data
		key := r.Keyer.ArtifactKey(seriesHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("artifact cache write failed", "format", format, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return artifacts, false, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
