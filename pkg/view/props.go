package view

import (
	"github.com/matzehuels/flamechart/pkg/flamechart"
	"github.com/matzehuels/flamechart/pkg/geom"
	"github.com/matzehuels/flamechart/pkg/render"
)

// Props configures a [Controller]. Pointer fields are optional.
type Props struct {
	// MinLeft and MaxRight bound horizontal panning in config space. They
	// default to the chart's value range.
	MinLeft, MaxRight *float64

	// InitialLeft and InitialRight set the first horizontal viewport.
	InitialLeft, InitialRight *float64

	// TopPadding is how many rows may be scrolled above layer 0. It defaults
	// to 1, or 2.5 when timing labels sit on top.
	TopPadding *float64
	// BottomPadding is how many empty rows may be scrolled below the last
	// layer. Defaults to 20.
	BottomPadding *float64

	// OnNodeHover is called with the hovered frame after every pointer move
	// and with nil when hover is cleared. pos is in logical pixels.
	OnNodeHover func(frame *flamechart.FlamechartFrame, pos geom.Vec2)
	// OnTimingHover reports the timing marker under the pointer, nil when
	// there is none.
	OnTimingHover func(timing *render.Timing, pos geom.Vec2)
	// OnNodeSelect reports selection changes, nil when cleared.
	OnNodeSelect func(frame *flamechart.FlamechartFrame)

	DisableTimeIndicators bool
	BottomTimingLabels    bool
	HiddenFrameLabels     bool
	DisableTimelineCursor bool

	// Inverted removes the padding row above layer 0.
	Inverted bool

	// Outlines asks the raster backend to separate adjacent frames.
	Outlines bool
}

// Float returns a pointer to v, for optional Props fields.
func Float(v float64) *float64 { return &v }

// DeltaMode is the unit of a wheel delta.
type DeltaMode int

const (
	DeltaPixel DeltaMode = iota
	DeltaLine
	DeltaPage
)

// linePixels converts line-mode wheel deltas to pixels.
const linePixels = 25

// PointerEvent is a pointer position in logical pixels relative to the view.
type PointerEvent struct {
	Pos geom.Vec2
}

// WheelEvent is a scroll or pinch gesture.
type WheelEvent struct {
	Pos            geom.Vec2
	DeltaX, DeltaY float64
	DeltaMode      DeltaMode
	// Precise marks pinch-to-zoom gestures, which zoom faster.
	Precise bool
}
