package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/layerroute/pkg/cache"
	"github.com/matzehuels/layerroute/pkg/design"
	"github.com/matzehuels/layerroute/pkg/errors"
	"github.com/matzehuels/layerroute/pkg/grid"
	"github.com/matzehuels/layerroute/pkg/observability"
	"github.com/matzehuels/layerroute/pkg/route"
	"github.com/matzehuels/layerroute/pkg/route/ordering"
	"github.com/matzehuels/layerroute/pkg/route/pathfind"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner holds no per-run state. Multiple goroutines can safely use
// the same Runner with different designs and options.
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

// Execute validates d, routes it and renders the requested formats.
func (r *Runner) Execute(ctx context.Context, d *design.Design, opts Options) (*Result, error) {
	if d == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "design is required")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	opts.MergeDesign(d)
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	g, err := d.BuildGrid()
	if err != nil {
		return nil, err
	}
	result := &Result{Design: d, Grid: g}
	for _, n := range d.OutsideNets() {
		opts.Logger.Warn("Invalid net coordinates, skipping", "net", n.ID, "start", n.Start, "target", n.Target)
	}

	// Stage 1: Route
	hooks := observability.Pipeline()
	hooks.OnRouteStart(ctx, d.Name, len(d.Nets))
	routeStart := time.Now()
	search, hit, err := r.RouteWithCacheInfo(ctx, d, g, opts)
	result.Stats.RouteTime = time.Since(routeStart)
	if err != nil {
		hooks.OnRouteComplete(ctx, d.Name, 0, result.Stats.RouteTime, err)
		return nil, err
	}
	hooks.OnRouteComplete(ctx, d.Name, search.Outcome.Routed, result.Stats.RouteTime, nil)

	result.DesignHash = search.designHash
	result.Outcome = search.Outcome
	result.Search = search.Search
	result.CacheInfo.RouteHit = hit
	result.Stats.Nets = len(d.Nets)
	result.Stats.Routed = search.Outcome.Routed
	result.Stats.TotalCost = search.Outcome.TotalCost

	opts.Logger.Info("routed nets",
		"design", d.Name,
		"routed", result.Stats.Routed,
		"nets", result.Stats.Nets,
		"cost", result.Stats.TotalCost,
		"strategy", search.Search.Strategy,
		"trials", search.Search.Trials,
		"cached", hit,
		"duration", result.Stats.RouteTime)

	// Stage 2: Render
	hooks.OnRenderStart(ctx, opts.Formats)
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, g, search, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	hooks.OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Routed is the cacheable output of the route stage.
type Routed struct {
	Outcome *route.Outcome
	Search  ordering.Stats

	designHash string
}

// routedRecord is the cache encoding of Routed. Per-net errors are kept as
// code and message.
type routedRecord struct {
	Outcome  *route.Outcome  `json:"outcome"`
	Search   ordering.Stats  `json:"search"`
	Failures []failureRecord `json:"failures,omitempty"`
}

type failureRecord struct {
	Position int         `json:"position"`
	Code     errors.Code `json:"code"`
	Message  string      `json:"message"`
}

func marshalRouted(rt *Routed) ([]byte, error) {
	rec := routedRecord{Outcome: rt.Outcome, Search: rt.Search}
	for i, res := range rt.Outcome.Results {
		if res.Err != nil {
			rec.Failures = append(rec.Failures, failureRecord{
				Position: i,
				Code:     errors.GetCode(res.Err),
				Message:  errors.UserMessage(res.Err),
			})
		}
	}
	return json.Marshal(rec)
}

func unmarshalRouted(data []byte) (*Routed, error) {
	var rec routedRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	if rec.Outcome == nil {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "cached outcome is empty")
	}
	for _, f := range rec.Failures {
		if f.Position < 0 || f.Position >= len(rec.Outcome.Results) {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "cached failure position %d out of range", f.Position)
		}
		rec.Outcome.Results[f.Position].Err = errors.New(f.Code, "%s", f.Message)
	}
	return &Routed{Outcome: rec.Outcome, Search: rec.Search}, nil
}

// DesignHash returns the content hash of d.
func DesignHash(d *design.Design) (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "serialize design")
	}
	return cache.Hash(data), nil
}

// RouteWithCacheInfo routes d on g with caching and reports whether the
// outcome came from the cache. Searches cut short by a timeout are not
// cached.
func (r *Runner) RouteWithCacheInfo(ctx context.Context, d *design.Design, g *grid.Grid, opts Options) (*Routed, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRoute(); err != nil {
		return nil, false, err
	}

	designHash, err := DesignHash(d)
	if err != nil {
		return nil, false, err
	}
	cacheKey := r.Keyer.OutcomeKey(designHash, opts.OutcomeKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if rt, err := unmarshalRouted(data); err == nil {
				rt.designHash = designHash
				return rt, true, nil
			}
			opts.Logger.Warn("discarding unreadable cached outcome", "key", cacheKey)
		}
	}

	res, err := Route(ctx, d, g, opts)
	if err != nil {
		return nil, false, err
	}
	rt := &Routed{Outcome: res.Best, Search: res.Stats, designHash: designHash}

	if res.Stats.Complete {
		if data, err := marshalRouted(rt); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLOutcome)
		}
	}
	return rt, false, nil
}

// Route runs the order search for d without caching.
func Route(ctx context.Context, d *design.Design, g *grid.Grid, opts Options) (*ordering.Result, error) {
	if err := opts.ValidateForRoute(); err != nil {
		return nil, err
	}
	router := route.NewRouter(pathfind.New(d.FinderConfig()), opts.Logger)
	opt, err := ordering.New(opts.StrategyName(), ordering.Options{
		Router:   router,
		Policy:   d.Policy(),
		Timeout:  opts.Timeout,
		Limit:    opts.Limit,
		Workers:  opts.Workers,
		MaxNets:  opts.MaxNets,
		Progress: opts.Progress,
	})
	if err != nil {
		return nil, err
	}
	return opt.Optimize(ctx, g, d.RouteNets())
}

// RenderWithCacheInfo renders every requested format with caching and
// reports whether all of them came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *grid.Grid, rt *Routed, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	data, err := marshalRouted(rt)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize outcome for cache key")
	}
	renderHash := cache.Hash(append([]byte(rt.designHash), data...))

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		if data, hit, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(renderHash, artifactVariant(format, opts))); err == nil && hit {
			artifacts[format] = data
		} else {
			break
		}
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	rendered, err := Render(ctx, g, rt.Outcome, rt.Search, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		_ = r.Cache.Set(ctx, r.Keyer.ArtifactKey(renderHash, artifactVariant(format, opts)), data, cache.TTLArtifact)
	}
	return rendered, false, nil
}

// artifactVariant folds format-specific options into the cache key.
func artifactVariant(format string, opts Options) string {
	if format == FormatPNG {
		return format + "@" + formatScale(opts.Scale)
	}
	return format
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
