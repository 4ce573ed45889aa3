package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flamechart/pkg/flamechart"
	"github.com/matzehuels/flamechart/pkg/geom"
	"github.com/matzehuels/flamechart/pkg/render"
	"github.com/matzehuels/flamechart/pkg/render/tree"
	"github.com/matzehuels/flamechart/pkg/search"
	"github.com/matzehuels/flamechart/pkg/view"
)

// maxFlushFrames bounds the scheduled frames drained after setup.
const maxFlushFrames = 16

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, chart *flamechart.Flamechart, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := RenderFormat(ctx, chart, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderFormat renders a single artifact.
func RenderFormat(ctx context.Context, chart *flamechart.Flamechart, format string, opts Options) ([]byte, error) {
	theme, err := ThemeFor(opts)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatPNG:
		return RenderPNG(chart, theme, opts)
	case FormatDOT:
		return []byte(tree.ToDOT(chart, tree.Options{Detailed: opts.Detailed, Theme: theme})), nil
	case FormatSVG:
		return tree.RenderSVG(ctx, tree.ToDOT(chart, tree.Options{Detailed: opts.Detailed, Theme: theme}))
	default:
		return nil, ValidateFormat(format)
	}
}

// ThemeFor resolves the named theme and applies color overrides.
func ThemeFor(opts Options) (render.Theme, error) {
	name := opts.Theme
	if name == "" {
		name = DefaultTheme
	}
	theme, err := render.ThemeByName(name)
	if err != nil {
		return render.Theme{}, err
	}
	if opts.ThemeColors != nil {
		theme = theme.Merge(*opts.ThemeColors)
	}
	return theme, nil
}

// RenderPNG draws chart through a view controller, the same path an
// interactive host takes, and encodes the result.
//
// The viewport starts at Left spanning Span (the full range when unset) and
// is scrolled down Top rows. With FocusSearch the view jumps to the search
// matches instead.
func RenderPNG(chart *flamechart.Flamechart, theme render.Theme, opts Options) ([]byte, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	r := render.NewRenderer(render.NewSoftwareRaster(chart, theme))
	defer r.Close()

	props := view.Props{DisableTimelineCursor: true}
	if opts.Left != nil || opts.Span != nil {
		initial := requestedRange(chart, opts)
		props.InitialLeft = view.Float(initial.Left())
		props.InitialRight = view.Float(initial.Right())
	}

	sched := view.NewManualScheduler(time.Time{})
	c := view.NewController(chart, r, props,
		view.WithScheduler(sched),
		view.WithTheme(theme),
		view.WithTimings(opts.Timings),
		view.WithLogger(logger),
	)
	defer c.Close()

	dpr := opts.DPR
	if dpr == 0 {
		dpr = DefaultDPR
	}
	c.Resize(float64(opts.Width), float64(opts.Height), dpr)
	if opts.Top != 0 {
		c.Pan(geom.V(0, opts.Top*render.LogicalFrameHeight))
	}
	if opts.Search != "" {
		engine := search.New(search.Mode(opts.SearchMode), opts.Search)
		c.SetSearch(engine)
		if opts.FocusSearch {
			res := chart.Search(engine)
			if rect, ok := c.ComputeFocusRect(res.Matches, res.Best); ok {
				c.FocusToRect(rect, false)
			}
		}
	}
	sched.Flush(maxFlushFrames)

	if err := c.Err(); err != nil {
		return nil, err
	}
	if c.Renders() == 0 {
		return nil, fmt.Errorf("nothing rendered for %dx%d view", opts.Width, opts.Height)
	}
	logger.Debug("rendered flame chart", "viewport", c.Viewport(), "renders", c.Renders())

	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// requestedRange fits the Left/Span options into the chart, so a span below
// the zoom cap or a left edge past the data still yields a full viewport.
func requestedRange(chart *flamechart.Flamechart, opts Options) geom.Rect {
	left, span := chart.MinValue(), chart.TotalWeight()
	if opts.Left != nil {
		left = *opts.Left
	}
	if opts.Span != nil && *opts.Span > 0 {
		span = *opts.Span
	}
	return chart.ClampedViewportRect(geom.R(left, 0, span, 1), false)
}
