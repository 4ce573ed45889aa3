package view

import (
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flamechart/pkg/flamechart"
	"github.com/matzehuels/flamechart/pkg/geom"
	"github.com/matzehuels/flamechart/pkg/render"
)

// maxZoom caps how far the viewport may be narrowed relative to the full
// range before float64 precision breaks down.
const maxZoom = 1 << 40

// defaultBottomPadding is the number of empty rows below the last layer.
const defaultBottomPadding = 20

// Renderer draws one frame of the view. *render.Renderer implements it.
type Renderer interface {
	Render(width, height int, viewport geom.Rect, props render.Props) (*render.Feedback, error)
}

// Option configures a [Controller].
type Option func(*Controller)

// WithScheduler sets the frame scheduler. The default is a
// [ManualScheduler] starting at the zero time.
func WithScheduler(s Scheduler) Option { return func(c *Controller) { c.sched = s } }

// WithBinding joins the controller to a binding group.
func WithBinding(b *BindingManager) Option { return func(c *Controller) { c.binding = b } }

// WithLogger sets the logger used for render failures.
func WithLogger(l *log.Logger) Option { return func(c *Controller) { c.logger = l } }

// WithTheme sets the render theme.
func WithTheme(t render.Theme) Option { return func(c *Controller) { c.theme = t } }

// WithTimings sets the timing markers drawn over the chart.
func WithTimings(ts []render.Timing) Option { return func(c *Controller) { c.timings = ts } }

// Controller owns the interaction state of one view. It is not safe for
// concurrent use; drive it from a single goroutine.
type Controller struct {
	chart    *flamechart.Flamechart
	renderer Renderer
	props    Props
	sched    Scheduler
	binding  *BindingManager
	logger   *log.Logger
	theme    render.Theme
	timings  []render.Timing

	unsubscribe func()

	viewport     geom.Rect
	physicalSize geom.Vec2
	dpr          float64

	selected *flamechart.FlamechartFrame
	hovered  *flamechart.FlamechartFrame
	cursor   *float64
	search   flamechart.Matcher
	feedback *render.Feedback
	err      error

	matchedOutlineWidth float64

	lastDragPos    *geom.Vec2
	pointerDownPos *geom.Vec2

	renderRequest FrameHandle
	tween         FrameHandle
	pulse         FrameHandle

	renders int
	closed  bool
}

// NewController returns a controller for chart. Nothing is drawn until the
// first [Controller.Resize].
func NewController(chart *flamechart.Flamechart, renderer Renderer, props Props, opts ...Option) *Controller {
	c := &Controller{
		chart:    chart,
		renderer: renderer,
		props:    props,
		dpr:      1,
		theme:    render.LightTheme,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sched == nil {
		c.sched = NewManualScheduler(time.Time{})
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	if c.binding != nil {
		c.unsubscribe = c.binding.Subscribe(c)
	}

	left := chart.MinValue()
	if props.InitialLeft != nil {
		left = *props.InitialLeft
	}
	right := chart.MaxValue()
	if props.InitialRight != nil {
		right = *props.InitialRight
	}
	c.viewport = geom.R(left, c.topPadding(), right-left, 0)
	return c
}

// Viewport returns the current viewport in config space.
func (c *Controller) Viewport() geom.Rect { return c.viewport }

// Selected returns the selected frame, nil when nothing is selected.
func (c *Controller) Selected() *flamechart.FlamechartFrame { return c.selected }

// Hovered returns the frame under the pointer, nil when there is none.
func (c *Controller) Hovered() *flamechart.FlamechartFrame { return c.hovered }

// TimelineCursor returns the cursor position in config space.
func (c *Controller) TimelineCursor() (float64, bool) {
	if c.cursor == nil {
		return 0, false
	}
	return *c.cursor, true
}

// Dragging reports whether a pointer drag is in progress.
func (c *Controller) Dragging() bool { return c.lastDragPos != nil }

// MatchedOutlineWidth returns the current search outline pulse width.
func (c *Controller) MatchedOutlineWidth() float64 { return c.matchedOutlineWidth }

// Feedback returns the hit-test data of the last render.
func (c *Controller) Feedback() *render.Feedback { return c.feedback }

// Err returns the error of the last render, if it failed.
func (c *Controller) Err() error { return c.err }

// Renders returns how many renders have run.
func (c *Controller) Renders() int { return c.renders }

// PhysicalSize returns the render target size in physical pixels.
func (c *Controller) PhysicalSize() geom.Vec2 { return c.physicalSize }

// Chart returns the chart the controller shows.
func (c *Controller) Chart() *flamechart.Flamechart { return c.chart }

// SetSearch sets the search used for highlighting. Nil clears it.
func (c *Controller) SetSearch(m flamechart.Matcher) {
	c.search = m
	c.requestRender()
}

// HighlightSearch pulses the outline of search matches.
func (c *Controller) HighlightSearch() { c.startOutlinePulse(animationDuration, 0) }

// SetHover sets the hovered frame.
func (c *Controller) SetHover(f *flamechart.FlamechartFrame) {
	c.hovered = f
	c.requestRender()
}

// SetSelected sets the selected frame.
func (c *Controller) SetSelected(f *flamechart.FlamechartFrame) {
	c.selected = f
	c.requestRender()
}

// SetTheme replaces the theme of subsequent renders.
func (c *Controller) SetTheme(t render.Theme) {
	c.theme = t
	c.requestRender()
}

// Resize sets the logical size of the view and its device pixel ratio, then
// renders synchronously.
func (c *Controller) Resize(logicalWidth, logicalHeight, dpr float64) {
	if c.closed {
		return
	}
	if dpr <= 0 {
		dpr = 1
	}
	size := geom.V(logicalWidth*dpr, logicalHeight*dpr)
	if size != c.physicalSize || dpr != c.dpr {
		c.dpr = dpr
		c.physicalSize = size
		rows := size.Y / (render.LogicalFrameHeight * dpr)
		c.viewport = c.limitViewport(c.viewport.WithSize(c.viewport.Size.WithY(rows)))
	}
	c.stopTween()
	c.syncRender()
}

// Close detaches the controller from its binding group and cancels pending
// frames and animations. It is safe to call more than once.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	c.stopTween()
	c.stopOutlinePulse()
	if c.renderRequest != 0 {
		c.sched.Cancel(c.renderRequest)
		c.renderRequest = 0
	}
}

// ApplyViewport implements [Listener].
func (c *Controller) ApplyViewport(x, width float64) {
	if c.closed {
		return
	}
	c.viewport = c.viewport.WithOrigin(c.viewport.Origin.WithX(x)).WithSize(c.viewport.Size.WithX(width))
	c.stopTween()
	c.requestRender()
}

// ApplyTimelineCursor implements [Listener].
func (c *Controller) ApplyTimelineCursor(x *float64) {
	if c.closed {
		return
	}
	c.cursor = x
	c.requestRender()
}

func (c *Controller) configToPhysical() geom.AffineTransform {
	return geom.BetweenRects(c.viewport, geom.Rect{Size: c.physicalSize})
}

func (c *Controller) logicalToPhysical() geom.AffineTransform {
	return geom.WithScale(geom.V(c.dpr, c.dpr))
}

// toConfig converts a logical position to config space.
func (c *Controller) toConfig(logical geom.Vec2) (config, physical geom.Vec2, ok bool) {
	physical = c.logicalToPhysical().TransformPosition(logical)
	config, ok = c.configToPhysical().InverseTransformPosition(physical)
	return config, physical, ok
}

// Pan moves the viewport by a logical pixel delta and clears hover.
func (c *Controller) Pan(logicalDelta geom.Vec2) {
	physDelta := c.logicalToPhysical().TransformVector(logicalDelta)
	configDelta, ok := c.configToPhysical().InverseTransformVector(physDelta)

	c.hovered = nil
	if c.props.OnNodeHover != nil {
		c.props.OnNodeHover(nil, geom.Vec2{})
	}
	if c.props.OnTimingHover != nil {
		c.props.OnTimingHover(nil, geom.Vec2{})
	}
	if !ok {
		return
	}
	c.transformViewport(geom.WithTranslation(configDelta))
	c.requestRender()
}

// Zoom scales the viewport width by multiplier around a logical position,
// keeping the value under it in place.
func (c *Controller) Zoom(logicalCenter geom.Vec2, multiplier float64) {
	center, _, ok := c.toConfig(logicalCenter)
	if !ok {
		return
	}
	zoom := geom.WithTranslation(center.Times(-1)).
		ScaledBy(geom.V(multiplier, 1)).
		TranslatedBy(center)
	c.transformViewport(zoom)
	c.requestRender()
}

func (c *Controller) transformViewport(t geom.AffineTransform) {
	c.viewport = c.limitViewport(t.TransformRect(c.viewport))
}

func (c *Controller) topPadding() float64 {
	switch {
	case c.props.TopPadding != nil:
		return -*c.props.TopPadding
	case c.props.Inverted:
		return 0
	case len(c.timings) > 0 && !c.props.BottomTimingLabels:
		return -2.5
	default:
		return -1
	}
}

// limitViewport clamps the width between the chart's narrowest useful width
// and the full range, and keeps the origin inside the pannable area.
func (c *Controller) limitViewport(vp geom.Rect) geom.Rect {
	maxWidth := c.chart.TotalWeight()
	if c.props.MinLeft != nil && c.props.MaxRight != nil {
		maxWidth = *c.props.MaxRight - *c.props.MinLeft
	}
	minWidth := math.Min(math.Max(maxWidth/maxZoom, c.chart.ClampedViewportWidth(0)), maxWidth)
	minLeft := c.chart.MinValue()
	if c.props.MinLeft != nil {
		minLeft = *c.props.MinLeft
	}
	maxRight := c.chart.MaxValue()
	if c.props.MaxRight != nil {
		maxRight = *c.props.MaxRight
	}

	size := vp.Size.WithX(geom.Clamp(vp.Size.X, minWidth, maxWidth))

	top := c.topPadding()
	bottom := float64(defaultBottomPadding)
	if c.props.BottomPadding != nil {
		bottom = *c.props.BottomPadding
	}
	layers := float64(len(c.chart.Layers()))

	origin := geom.ClampVec(
		vp.Origin,
		geom.V(minLeft, top),
		geom.Max(geom.V(math.Inf(-1), top), geom.V(maxRight, layers+bottom).Minus(size)),
	)
	return geom.Rect{Origin: origin, Size: size}
}

// ComputeFocusRect returns a viewport showing all frames with 30% horizontal
// margin, vertically centered on them. When primary would sit within 30% of
// the viewport height of an edge, the rect is shifted to keep it clear of
// that edge. ok is false when frames is empty.
func (c *Controller) ComputeFocusRect(frames []*flamechart.FlamechartFrame, primary *flamechart.FlamechartFrame) (geom.Rect, bool) {
	if len(frames) == 0 {
		return geom.Rect{}, false
	}
	height := c.viewport.Height()
	left, right := math.Inf(1), math.Inf(-1)
	top, bottom := math.Inf(1), math.Inf(-1)
	for _, f := range frames {
		left = math.Min(left, f.Start)
		right = math.Max(right, f.End)
		top = math.Min(top, float64(f.Depth))
		bottom = math.Max(bottom, float64(f.Depth))
	}

	length := right - left
	left -= length * 0.3
	right += length * 0.3
	top = top + (bottom-top)/2 - height/2
	bottom = top + height

	if primary != nil {
		pad := height * 0.3
		depth := float64(primary.Depth)
		if depth < top+pad {
			top = depth - pad
		} else if depth > bottom-pad {
			bottom = depth + pad
			top = bottom - height
		}
	}
	return c.limitViewport(geom.R(left, top, right-left, height)), true
}

// FocusMatches animates to the matches of a search. It does nothing when
// nothing matched.
func (c *Controller) FocusMatches(res flamechart.SearchResult) {
	rect, ok := c.ComputeFocusRect(res.Matches, res.Best)
	if !ok {
		return
	}
	c.FocusToRect(rect, true)
}

// FocusToRect moves the viewport to rect, animated or at once.
func (c *Controller) FocusToRect(rect geom.Rect, animate bool) {
	if animate {
		c.startTween(rect, animationDuration)
		return
	}
	c.viewport = rect
	c.requestRender()
	c.notifyViewport()
}

// FocusFrame animates to fit f horizontally, one row below the top edge.
func (c *Controller) FocusFrame(f *flamechart.FlamechartFrame) {
	if f == nil {
		return
	}
	rect := geom.R(f.Start, float64(f.Depth)-1, f.Width(), c.viewport.Height())
	c.startTween(c.limitViewport(rect), animationDuration)
}

func (c *Controller) renderProps() render.Props {
	p := render.Props{
		Chart:                 c.chart,
		Theme:                 c.theme,
		DPR:                   c.dpr,
		Search:                c.search,
		Selected:              c.selected,
		Hovered:               c.hovered,
		MatchedOutlineWidth:   c.matchedOutlineWidth,
		Timings:               c.timings,
		BottomTimingLabels:    c.props.BottomTimingLabels,
		HiddenFrameLabels:     c.props.HiddenFrameLabels,
		DisableTimeIndicators: c.props.DisableTimeIndicators,
		Outlines:              c.props.Outlines,
	}
	if !c.props.DisableTimelineCursor {
		p.TimelineCursor = c.cursor
	}
	return p
}

// requestRender schedules a render on the next frame. Requests made before
// that frame runs share it.
func (c *Controller) requestRender() {
	if c.closed || c.renderRequest != 0 {
		return
	}
	c.renderRequest = c.sched.RequestFrame(func(_ time.Time) {
		c.renderRequest = 0
		c.renderNow()
	})
}

// syncRender renders immediately and drops any pending request.
func (c *Controller) syncRender() {
	if c.renderRequest != 0 {
		c.sched.Cancel(c.renderRequest)
		c.renderRequest = 0
	}
	c.renderNow()
}

func (c *Controller) renderNow() {
	if c.renderer == nil || c.physicalSize.X < 1 || c.physicalSize.Y < 1 {
		return
	}
	w := int(math.Round(c.physicalSize.X))
	h := int(math.Round(c.physicalSize.Y))
	fb, err := c.renderer.Render(w, h, c.viewport, c.renderProps())
	c.renders++
	c.err = err
	if err != nil {
		c.logger.Warn("render failed", "width", w, "height", h, "err", err)
		return
	}
	if fb != nil {
		c.feedback = fb
	}
}

func (c *Controller) notifyViewport() {
	if c.binding != nil && !c.closed {
		c.binding.NotifyViewport(c, c.viewport.Left(), c.viewport.Width())
	}
}

func (c *Controller) notifyTimelineCursor() {
	if c.binding != nil && !c.closed {
		c.binding.NotifyTimelineCursor(c, c.cursor)
	}
}
