// Package pipeline runs the parse → route → render pipeline for mazeroute.
//
// The CLI and the HTTP service share this package, so both parse input,
// consult the cache, search orderings and render output the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: read the routing problem into a [maze.Grid]
//  2. Route: run the ordering search, or replay a cached solution
//  3. Render: produce outputs (txt, json, dot, svg, png, pdf)
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:   data,
//	    Formats: []string{pipeline.FormatTXT},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Stdout.Write(result.Artifacts[pipeline.FormatTXT])
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mazeroute/pkg/cache"
	apperr "github.com/matzehuels/mazeroute/pkg/errors"
	gridio "github.com/matzehuels/mazeroute/pkg/io"
	"github.com/matzehuels/mazeroute/pkg/maze"
	"github.com/matzehuels/mazeroute/pkg/route"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// Format constants for output formats.
const (
	FormatTXT  = "txt"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatTXT:  true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the routing pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Input is the routing problem in the text input format.
	Input []byte `json:"-"`

	// Source names the input in logs and hooks.
	Source string `json:"source,omitempty"`

	// Route options
	Budget           time.Duration `json:"budget,omitempty"`
	MaxRequeues      int           `json:"max_requeues,omitempty"`
	CollisionPenalty int           `json:"collision_penalty,omitempty"`
	Refresh          bool          `json:"refresh,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Labels  bool     `json:"labels,omitempty"`

	// Runtime options (not serialized)
	Logger   *log.Logger       `json:"-"`
	Progress func(route.Event) `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Grid is the routed grid.
	Grid *maze.Grid

	// InputHash is the content hash of the input.
	InputHash string

	// Solution is the JSON form of Grid.
	Solution *gridio.Solution

	// SolutionHash is the content hash of Solution's JSON encoding.
	SolutionHash string

	// Search is the ordering search outcome. It is zero on a cache hit.
	Search route.Result

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Nets       int
	Failed     int
	Cost       int
	ParseTime  time.Duration
	RouteTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	RouteHit  bool // Whether the solution came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return apperr.New(apperr.ErrCodeInvalidFormat, "invalid format: %q (must be one of: txt, json, dot, svg, png, pdf)", format)
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

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	o.SetRouteDefaults()
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks required fields for parsing.
func (o *Options) ValidateForParse() error {
	if len(o.Input) == 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "input is required")
	}
	if o.Source == "" {
		o.Source = "input"
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetRouteDefaults fills unset router options.
func (o *Options) SetRouteDefaults() {
	ro := o.RouteOptions()
	o.Budget = ro.Budget
	o.MaxRequeues = ro.MaxRequeues
	o.CollisionPenalty = ro.CollisionPenalty
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatTXT}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	for i, f := range o.Formats {
		if slices.Contains(o.Formats[:i], f) {
			return apperr.New(apperr.ErrCodeInvalidFormat, "duplicate format %q", f)
		}
	}
	return nil
}

// RouteOptions returns the search options, with defaults applied.
func (o *Options) RouteOptions() route.Options {
	return route.Options{
		Budget:           o.Budget,
		MaxRequeues:      o.MaxRequeues,
		CollisionPenalty: o.CollisionPenalty,
	}.WithDefaults()
}

// RouteKeyOpts returns cache key options for routing results.
func (o *Options) RouteKeyOpts() cache.RouteKeyOpts {
	ro := o.RouteOptions()
	return cache.RouteKeyOpts{
		Budget:           ro.Budget,
		MaxRequeues:      ro.MaxRequeues,
		CollisionPenalty: ro.CollisionPenalty,
	}
}

// RenderKeyOpts returns cache key options for artifact rendering.
func (o *Options) RenderKeyOpts(format string) cache.RenderKeyOpts {
	return cache.RenderKeyOpts{
		Format: format,
		Labels: o.Labels,
	}
}

// String summarizes the options for logs.
func (o *Options) String() string {
	ro := o.RouteOptions()
	return fmt.Sprintf("%s budget=%s max_requeues=%d penalty=%d formats=%v",
		o.Source, ro.Budget, ro.MaxRequeues, ro.CollisionPenalty, o.Formats)
}
