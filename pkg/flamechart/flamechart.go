package flamechart

import (
	"math"

	"github.com/matzehuels/flamechart/pkg/geom"
	"github.com/matzehuels/flamechart/pkg/profile"
)

// maxZoom caps zoom so that total+viewportWidth stays distinguishable from
// total in float64 arithmetic.
var maxZoom = math.Pow(2, 40)

// FlamechartFrame is one laid-out rectangle.
type FlamechartFrame struct {
	Node     *profile.CallTreeNode
	Start    float64
	End      float64
	Depth    int
	Parent   *FlamechartFrame
	Children []*FlamechartFrame
}

// Width returns End - Start.
func (f *FlamechartFrame) Width() float64 { return f.End - f.Start }

// ConfigRect returns the frame's rectangle in config space.
func (f *FlamechartFrame) ConfigRect() geom.Rect {
	return geom.R(f.Start, float64(f.Depth), f.Width(), 1)
}

// detach removes f from its parent's children.
func (f *FlamechartFrame) detach() {
	p := f.Parent
	if p == nil {
		return
	}
	for i := len(p.Children) - 1; i >= 0; i-- {
		if p.Children[i] == f {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			return
		}
	}
}

// Flamechart is an immutable layout: rows of frames plus the value range
// they were laid out against.
type Flamechart struct {
	layers        [][]*FlamechartFrame
	minValue      float64
	maxValue      float64
	minFrameWidth float64
	bucket        func(*profile.Frame) float64
	format        func(float64) string
	byNode        map[*profile.CallTreeNode]*FlamechartFrame
}

func newFlamechart(src DataSource, rows [][]*FlamechartFrame, minFrameWidth float64) *Flamechart {
	fc := &Flamechart{
		layers:        rows,
		minValue:      src.MinValue(),
		maxValue:      src.MaxValue(),
		minFrameWidth: minFrameWidth,
		bucket:        src.ColorBucket,
		format:        src.FormatValue,
		byNode:        make(map[*profile.CallTreeNode]*FlamechartFrame),
	}
	for _, layer := range rows {
		for _, f := range layer {
			if _, ok := fc.byNode[f.Node]; !ok {
				fc.byNode[f.Node] = f
			}
		}
	}
	return fc
}

// TotalWeight is MaxValue - MinValue.
func (fc *Flamechart) TotalWeight() float64 { return fc.maxValue - fc.minValue }

func (fc *Flamechart) MinValue() float64                    { return fc.minValue }
func (fc *Flamechart) MaxValue() float64                    { return fc.maxValue }
func (fc *Flamechart) Layers() [][]*FlamechartFrame         { return fc.layers }
func (fc *Flamechart) MinFrameWidth() float64               { return fc.minFrameWidth }
func (fc *Flamechart) ColorBucket(f *profile.Frame) float64 { return fc.bucket(f) }
func (fc *Flamechart) FormatValue(v float64) string         { return fc.format(v) }

// FrameCount returns the number of frames across all layers.
func (fc *Flamechart) FrameCount() int {
	n := 0
	for _, l := range fc.layers {
		n += len(l)
	}
	return n
}

// Frame returns the first laid-out frame for node, scanning layers top down.
func (fc *Flamechart) Frame(node *profile.CallTreeNode) (*FlamechartFrame, bool) {
	f, ok := fc.byNode[node]
	return f, ok
}

// ClampedViewportWidth clamps a desired viewport width to what can be shown.
// The narrowest width is three times the narrowest frame, but never beyond
// the 2^40 zoom cap and never wider than the whole chart.
func (fc *Flamechart) ClampedViewportWidth(width float64) float64 {
	maxWidth := fc.TotalWeight()
	minWidth := geom.Clamp(3*fc.minFrameWidth, maxWidth/maxZoom, maxWidth)
	return geom.Clamp(width, minWidth, maxWidth)
}

// ClampedViewportRect fits a config-space viewport inside the chart: x stays
// within [MinValue, MaxValue], inverted charts start at row 0 and upright
// charts leave one row of headroom.
func (fc *Flamechart) ClampedViewportRect(r geom.Rect, inverted bool) geom.Rect {
	size := r.Size.WithX(fc.ClampedViewportWidth(r.Width()))
	top := -1.0
	if inverted {
		top = 0
	}
	bounds := geom.V(fc.TotalWeight(), float64(len(fc.layers)))
	slack := geom.Max(geom.Zero, bounds.Minus(size).Plus(geom.V(0, 1)))
	origin := geom.ClampVec(
		r.Origin,
		geom.V(fc.minValue, top),
		slack.Plus(geom.V(fc.minValue, 0)),
	)
	return geom.Rect{Origin: origin, Size: size}
}

// Match is a search hit. Ranges are half-open byte ranges into the matched
// text, empty when the engine does not report them.
type Match struct {
	Score  float64
	Ranges [][2]int
}

// Matcher scores frames against a query. Nil means no match.
type Matcher interface {
	MatchForFrame(*FlamechartFrame) *Match
}

// SearchResult lists matching frames in layer order.
type SearchResult struct {
	Matches []*FlamechartFrame
	Best    *FlamechartFrame
}

// Empty reports whether nothing matched.
func (r SearchResult) Empty() bool { return len(r.Matches) == 0 }

// Search scans all layers. Best is the first frame reaching the highest
// score, nil when nothing matched.
func (fc *Flamechart) Search(m Matcher) SearchResult {
	var res SearchResult
	best := math.Inf(-1)
	for _, layer := range fc.layers {
		for _, f := range layer {
			match := m.MatchForFrame(f)
			if match == nil {
				continue
			}
			res.Matches = append(res.Matches, f)
			if match.Score > best {
				best = match.Score
				res.Best = f
			}
		}
	}
	return res
}
