// Package pipeline provides the load → layout → render pipeline shared by the
// CLI and the HTTP host.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: decode a profile file (collapsed stacks, pprof, interval JSON)
//  2. Layout: build a flame chart preset from the profile
//  3. Render: draw the chart to PNG, or export its call tree as DOT or SVG
//
// Each stage can be run independently or as part of the complete pipeline.
// Rendered artifacts are cached by a key derived from the profile's content
// hash and every option that changes the output.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Path:    "cpu.pb.gz",
//	    Kind:    "left-heavy",
//	    Formats: []string{"png"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	png := result.Artifacts["png"]
package pipeline

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flamechart/pkg/cache"
	"github.com/matzehuels/flamechart/pkg/errors"
	"github.com/matzehuels/flamechart/pkg/flamechart"
	"github.com/matzehuels/flamechart/pkg/httputil"
	"github.com/matzehuels/flamechart/pkg/render"
	"github.com/matzehuels/flamechart/pkg/search"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWidth is the default image width in logical pixels.
	DefaultWidth = 1200

	// DefaultHeight is the default image height in logical pixels.
	DefaultHeight = 600

	// DefaultDPR is the default device pixel ratio.
	DefaultDPR = 1.0

	// DefaultKind is the default layout preset.
	DefaultKind = flamechart.KindDefault

	// DefaultTheme is the default theme name.
	DefaultTheme = "light"

	// MaxDimension bounds the logical width and height of a render.
	MaxDimension = 8192
)

// Input formats.
const (
	InputCollapsed = "collapsed"
	InputPprof     = "pprof"
	InputInterval  = "interval"
)

// Output formats.
const (
	FormatPNG = "png" // rendered flame chart
	FormatSVG = "svg" // call tree through graphviz
	FormatDOT = "dot" // call tree as DOT source
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG: true,
	FormatSVG: true,
	FormatDOT: true,
}

// ValidInputs is the set of supported input formats.
var ValidInputs = map[string]bool{
	InputCollapsed: true,
	InputPprof:     true,
	InputInterval:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Path       string `json:"path,omitempty"`
	Input      string `json:"input,omitempty"` // input format, detected from Path when empty
	SampleType string `json:"sample_type,omitempty"`
	Unit       string `json:"unit,omitempty"` // value unit of collapsed stacks

	// Layout options
	Kind       string `json:"kind,omitempty"`
	RootFilter string `json:"root_filter,omitempty"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Width       int      `json:"width,omitempty"`
	Height      int      `json:"height,omitempty"`
	DPR         float64  `json:"dpr,omitempty"`
	Theme       string   `json:"theme,omitempty"`
	Left        *float64 `json:"left,omitempty"`
	Span        *float64 `json:"span,omitempty"`
	Top         float64  `json:"top,omitempty"`
	Search      string   `json:"search,omitempty"`
	SearchMode  string   `json:"search_mode,omitempty"`
	FocusSearch bool     `json:"focus_search,omitempty"`
	Detailed    bool     `json:"detailed,omitempty"` // tree labels with width and file:line
	Refresh     bool     `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger      *log.Logger     `json:"-"`
	ThemeColors *render.Theme   `json:"-"` // overrides merged onto the named theme
	Timings     []render.Timing `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Profile is the loaded profile.
	Profile *Loaded

	// Chart is the laid-out flame chart.
	Chart *flamechart.Flamechart

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	FrameCount int
	LayerCount int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: png, svg, dot)", format)
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

// ParseSize parses an image size of the form "WIDTHxHEIGHT" in logical
// pixels, e.g. "1200x600".
func ParseSize(s string) (width, height int, err error) {
	ws, hs, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if ok {
		width, err = strconv.Atoi(ws)
		if err == nil {
			height, err = strconv.Atoi(hs)
		}
	}
	if !ok || err != nil || width <= 0 || height <= 0 {
		return 0, 0, errors.New(errors.ErrCodeInvalidView, "invalid size %q (want WIDTHxHEIGHT, e.g. 1200x600)", s)
	}
	return width, height, nil
}

// ValidateInput checks that an input format is valid.
func ValidateInput(input string) error {
	if !ValidInputs[input] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid input format: %q (must be one of: collapsed, pprof, interval)", input)
	}
	return nil
}

// DetectInput guesses the input format from a file name.
func DetectInput(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 && httputil.IsURL(path) {
		path = path[:i]
	}
	name := strings.ToLower(filepath.Base(path))
	name = strings.TrimSuffix(name, ".gz")
	switch {
	case strings.HasSuffix(name, ".pprof"), strings.HasSuffix(name, ".pb"), strings.HasSuffix(name, ".prof"):
		return InputPprof
	case strings.HasSuffix(name, ".json"):
		return InputInterval
	default:
		return InputCollapsed
	}
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills unset fields. It is idempotent.
func (o *Options) SetDefaults() {
	if o.Input == "" && o.Path != "" {
		o.Input = DetectInput(o.Path)
	}
	if o.Kind == "" {
		o.Kind = string(DefaultKind)
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatPNG}
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.DPR == 0 {
		o.DPR = DefaultDPR
	}
	if o.Theme == "" {
		o.Theme = DefaultTheme
	}
	if o.SearchMode == "" {
		o.SearchMode = string(search.ModeName)
	}
}

// Validate applies defaults and checks every field.
func (o *Options) Validate() error {
	o.SetDefaults()
	if o.Input != "" {
		if err := ValidateInput(o.Input); err != nil {
			return err
		}
	}
	if _, err := flamechart.ParseKind(o.Kind); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return o.validateView()
}

func (o *Options) validateView() error {
	if o.Width <= 0 || o.Height <= 0 || o.Width > MaxDimension || o.Height > MaxDimension {
		return errors.New(errors.ErrCodeInvalidView, "size %dx%d out of range (1..%d)", o.Width, o.Height, MaxDimension)
	}
	if o.DPR <= 0 || o.DPR > 4 {
		return errors.New(errors.ErrCodeInvalidView, "dpr %v out of range (0, 4]", o.DPR)
	}
	var left, span float64
	if o.Left != nil {
		left = *o.Left
	}
	if o.Span != nil {
		span = *o.Span
	}
	if err := errors.ValidateViewport(left, span, o.Top); err != nil {
		return err
	}
	if err := errors.ValidateQuery(o.Search); err != nil {
		return err
	}
	switch search.Mode(o.SearchMode) {
	case search.ModeName, search.ModeFile, search.ModeKey:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "invalid search mode: %q (must be one of: name, file, key)", o.SearchMode)
	}
	if _, err := render.ThemeByName(o.Theme); err != nil {
		return err
	}
	return nil
}

// ProfileKeyOpts returns cache key options for profile decoding.
func (o *Options) ProfileKeyOpts() cache.ProfileKeyOpts {
	return cache.ProfileKeyOpts{Format: o.Input, SampleType: o.SampleType}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:     format,
		Kind:       o.Kind,
		Theme:      o.Theme,
		RootFilter: o.RootFilter,
	}
	if o.ThemeColors != nil {
		k.Theme += ":" + cache.ShortHash(o.ThemeColors)
	}
	if format == FormatPNG {
		if len(o.Timings) > 0 {
			k.Timings = cache.ShortHash(o.Timings)
		}
		k.Width, k.Height, k.DPR = o.Width, o.Height, o.DPR
		k.Top = o.Top
		k.Search, k.SearchMode, k.Focus = o.Search, o.SearchMode, o.FocusSearch
		if o.Left != nil {
			k.Left = *o.Left
		}
		if o.Span != nil {
			k.Span = *o.Span
		}
	} else {
		k.Detailed = o.Detailed
	}
	return k
}
