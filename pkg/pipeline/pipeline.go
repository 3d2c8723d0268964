// Package pipeline runs a routing session end to end.
//
// This package implements the design → route → render pipeline shared by
// the CLI and the HTTP API, so both entry points apply the same defaults,
// caching and hooks.
//
// # Stages
//
//  1. Route: build the grid, pick an order search and route every net
//  2. Render: produce the requested artifacts (text, json, dot, svg, png, pdf)
//
// # Usage
//
//	runner := pipeline.NewRunner(cache.NewMemoryCache(0), nil, logger)
//	d, err := design.Load("board.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := runner.Execute(ctx, d, pipeline.Options{Formats: []string{"text"}})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Stdout.Write(result.Artifacts["text"])
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/layerroute/pkg/cache"
	"github.com/matzehuels/layerroute/pkg/design"
	"github.com/matzehuels/layerroute/pkg/errors"
	"github.com/matzehuels/layerroute/pkg/grid"
	"github.com/matzehuels/layerroute/pkg/route"
	"github.com/matzehuels/layerroute/pkg/route/ordering"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWorkers runs order trials on the calling goroutine.
	DefaultWorkers = 1

	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0

	// DefaultMaxNets is the exhaustive-search ceiling.
	DefaultMaxNets = ordering.DefaultMaxNets
)

// DefaultStrategy is the order search used when neither the design nor the
// caller picks one.
const DefaultStrategy = ordering.StrategyAuto

// Format constants for output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"

	// FormatChart is an HTML chart of the order search.
	FormatChart = "chart"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatText: true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,

	FormatChart: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options overrides the design's [router] settings and picks outputs.
// Zero fields fall back to the design, then to the package defaults.
type Options struct {
	// Route options
	Strategy string        `json:"strategy,omitempty"`
	Timeout  time.Duration `json:"timeout,omitempty"`
	Workers  int           `json:"workers,omitempty"`
	Limit    int           `json:"limit,omitempty"`
	MaxNets  int           `json:"max_nets,omitempty"`
	Refresh  bool          `json:"refresh,omitempty"` // bypass the outcome cache

	// Render options
	Formats []string `json:"formats,omitempty"`
	Scale   float64  `json:"scale,omitempty"`

	// Runtime options (not serialized)
	Logger   *log.Logger           `json:"-"`
	Progress ordering.ProgressFunc `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Design *design.Design
	// DesignHash is the content hash of the design.
	DesignHash string
	Grid       *grid.Grid
	Outcome    *route.Outcome
	// Search describes the order search that produced Outcome.
	Search ordering.Stats
	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Nets       int
	Routed     int
	TotalCost  int
	RouteTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	RouteHit  bool // Whether the outcome came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: %s)", format, strings.Join(FormatNames(), ", "))
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

// FormatNames lists the formats in a stable order.
func FormatNames() []string {
	return []string{FormatText, FormatJSON, FormatDOT, FormatSVG, FormatPNG, FormatPDF, FormatChart}
}

// =============================================================================
// Options Methods
// =============================================================================

// MergeDesign fills unset route options from the design's [router] table.
func (o *Options) MergeDesign(d *design.Design) {
	r := d.Router
	if o.Strategy == "" {
		o.Strategy = r.Strategy
	}
	if o.Timeout == 0 {
		o.Timeout = time.Duration(r.Timeout)
	}
	if o.Workers == 0 {
		o.Workers = r.Workers
	}
	if o.Limit == 0 {
		o.Limit = r.Limit
	}
	if o.MaxNets == 0 {
		o.MaxNets = r.MaxNets
	}
}

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForRoute(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForRoute checks and defaults the route options.
func (o *Options) ValidateForRoute() error {
	st, err := ordering.ParseStrategy(o.Strategy)
	if err != nil {
		return err
	}
	o.Strategy = string(st)

	if o.Timeout < 0 || o.Workers < 0 || o.Limit < 0 || o.MaxNets < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "timeout, workers, limit and max_nets must be >= 0")
	}
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	if o.MaxNets == 0 {
		o.MaxNets = DefaultMaxNets
	}
	o.setLogger()
	return nil
}

// ValidateForRender checks and defaults the render options.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatText}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be > 0, got %g", o.Scale)
	}
	o.setLogger()
	return ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// StrategyName returns the parsed strategy. Call after ValidateForRoute.
func (o *Options) StrategyName() ordering.Strategy {
	return ordering.Strategy(o.Strategy)
}

// OutcomeKeyOpts returns cache key options for the route stage. Workers
// and Timeout are not part of the key; only complete searches are cached.
func (o *Options) OutcomeKeyOpts() cache.OutcomeKeyOpts {
	return cache.OutcomeKeyOpts{
		Strategy: o.Strategy,
		Limit:    o.Limit,
		MaxNets:  o.MaxNets,
	}
}
