package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mazeroute/pkg/cache"
	gridio "github.com/matzehuels/mazeroute/pkg/io"
	"github.com/matzehuels/mazeroute/pkg/maze"
	"github.com/matzehuels/mazeroute/pkg/observability"
	"github.com/matzehuels/mazeroute/pkg/route"
)

// Cache key types reported to observability hooks.
const (
	keyTypeRoute  = "route"
	keyTypeRender = "render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
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

// Execute runs the complete parse → route → render pipeline with caching.
//
// A search cut short by ctx still yields a result (the best routing found
// so far, or the fallback pass); such results are not cached.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		InputHash: cache.Hash(opts.Input),
	}

	// Stage 1: Parse
	parseStart := time.Now()
	g, err := Parse(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.Nets = g.NetCount()

	r.Logger.Info("parsed input",
		"source", opts.Source,
		"grid", fmt.Sprintf("%d×%d", g.Rows, g.Cols),
		"nets", g.NetCount(),
		"duration", result.Stats.ParseTime)

	// Stage 2: Route
	routeStart := time.Now()
	routed, search, routeHit := r.RouteWithCacheInfo(ctx, g, result.InputHash, opts)
	result.Grid = routed
	result.Search = search
	result.Stats.RouteTime = time.Since(routeStart)
	result.Stats.Cost = routed.Usage()
	result.Stats.Failed = len(routed.Failed())
	result.CacheInfo.RouteHit = routeHit

	result.Solution = gridio.NewSolution(routed)
	var buf bytes.Buffer
	if err := gridio.WriteJSON(result.Solution, &buf); err != nil {
		return nil, fmt.Errorf("encode solution: %w", err)
	}
	result.SolutionHash = cache.Hash(buf.Bytes())

	r.Logger.Info("routed nets",
		"cost", result.Stats.Cost,
		"failed", result.Stats.Failed,
		"attempts", search.Attempts,
		"cached", routeHit,
		"duration", result.Stats.RouteTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, routed, result.SolutionHash, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// RouteWithCacheInfo routes g, replaying a cached solution when one exists
// for the same input and router options. g is left untouched; the routed
// grid is returned along with whether it came from the cache.
func (r *Runner) RouteWithCacheInfo(ctx context.Context, g *maze.Grid, inputHash string, opts Options) (*maze.Grid, route.Result, bool) {
	r.applyLogger(&opts)
	opts.SetRouteDefaults()
	hooks := observability.Cache()
	cacheKey := r.Keyer.RouteKey(inputHash, opts.RouteKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if c, ok := r.cachedSolution(ctx, g, cacheKey); ok {
			hooks.OnCacheHit(ctx, keyTypeRoute)
			return c, route.Result{Grid: c, Cost: c.Usage(), Complete: c.Complete()}, true
		}
		hooks.OnCacheMiss(ctx, keyTypeRoute)
	}

	res := Route(ctx, g, opts)
	if res.Fallback {
		opts.Logger.Warn("no ordering routed every net, using partial result",
			"attempts", res.Attempts, "failed", len(res.Grid.Failed()))
	}

	// Cache the result
	if ctx.Err() == nil {
		var buf bytes.Buffer
		if err := gridio.WriteJSON(gridio.NewSolution(res.Grid), &buf); err == nil {
			if err := r.Cache.Set(ctx, cacheKey, buf.Bytes(), cache.TTLRoute); err != nil {
				opts.Logger.Warn("cache write failed", "error", err)
			} else {
				hooks.OnCacheSet(ctx, keyTypeRoute, buf.Len())
			}
		}
	}

	return res.Grid, res, false
}

func (r *Runner) cachedSolution(ctx context.Context, g *maze.Grid, key string) (*maze.Grid, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		return nil, false
	}
	sol, err := gridio.ReadJSON(bytes.NewReader(data))
	if err != nil {
		return nil, false
	}
	c := g.Clone()
	if err := gridio.ApplySolution(c, sol); err != nil {
		// Stale or foreign entry: recompute
		r.Logger.Debug("discarding cached solution", "error", err)
		return nil, false
	}
	return c, true
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *maze.Grid, solutionHash string, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	hooks := observability.Cache()

	allCached := true
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.RenderKey(solutionHash, opts.RenderKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			hooks.OnCacheHit(ctx, keyTypeRender)
			artifacts[format] = data
			continue
		}
		hooks.OnCacheMiss(ctx, keyTypeRender)
		allCached = false

		data, err := RenderFormat(ctx, g, format, opts)
		if err != nil {
			return nil, false, err
		}
		artifacts[format] = data
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLRender); err == nil {
			hooks.OnCacheSet(ctx, keyTypeRender, len(data))
		}
	}

	return artifacts, allCached, nil
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
