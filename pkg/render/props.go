package render

import (
	"github.com/matzehuels/flamechart/pkg/flamechart"
)

// LogicalFrameHeight is the height of one flame chart row in logical pixels.
const LogicalFrameHeight = 25

// Props is everything a single render reads besides the viewport.
type Props struct {
	Chart *flamechart.Flamechart
	Theme Theme

	// DPR is the device pixel ratio. Zero means 1.
	DPR float64

	// Search highlights matching frames. Nil disables highlighting.
	Search flamechart.Matcher

	Selected *flamechart.FlamechartFrame
	Hovered  *flamechart.FlamechartFrame

	// MatchedOutlineWidth is the animated extra outline of search matches.
	MatchedOutlineWidth float64

	Timings            []Timing
	BottomTimingLabels bool

	// TimelineCursor is a config-space x position, nil when hidden.
	TimelineCursor *float64

	HiddenFrameLabels     bool
	DisableTimeIndicators bool

	// Outlines asks the raster backend to separate adjacent frames.
	Outlines bool
}

func (p Props) dpr() float64 {
	if p.DPR <= 0 {
		return 1
	}
	return p.DPR
}

// sizes holds the physical metrics derived from the device pixel ratio.
type sizes struct {
	dpr               float64
	fontSize          float64
	frameHeight       float64
	labelPadding      float64
	frameOutline      float64
	secondaryOutline  float64
	frameTriangle     float64
	matchedStroke     float64
	timingFontSize    float64
	timingPadH        float64
	timingPadV        float64
	timingLineWidth   float64
	timingPointSize   float64
	cursorPillRadius  float64
	gridTargetSpacing float64
}

func newSizes(dpr float64) sizes {
	return sizes{
		dpr:               dpr,
		fontSize:          11 * dpr,
		frameHeight:       LogicalFrameHeight * dpr,
		labelPadding:      5 * dpr,
		frameOutline:      2 * dpr,
		secondaryOutline:  1,
		frameTriangle:     10 * dpr,
		matchedStroke:     2 * dpr,
		timingFontSize:    11 * dpr,
		timingPadH:        10 * dpr,
		timingPadV:        4 * dpr,
		timingLineWidth:   1 * dpr,
		timingPointSize:   8 * dpr,
		cursorPillRadius:  5 * dpr,
		gridTargetSpacing: 200,
	}
}
