package render

import (
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/matzehuels/flamechart/pkg/geom"
	"github.com/matzehuels/flamechart/pkg/profile"
	"github.com/matzehuels/flamechart/pkg/search"
)

// overlay is one overlay pass over a prepared context.
type overlay struct {
	dc       *gg.Context
	props    Props
	sz       sizes
	faces    *faceSet
	viewport geom.Rect
	physical geom.Rect
	toPhys   geom.AffineTransform
}

type frameBatches struct {
	longTask      RectBatch
	indirect      RectBatch
	direct        RectBatch
	matched       RectBatch
	textHighlight RectBatch
	hovered       RectBatch
	fadedLabels   TextBatch
	labels        TextBatch
}

// frames draws labels, search highlights and frame outlines for the
// visible layers.
func (o *overlay) frames() error {
	var b frameBatches
	chart := o.props.Chart
	vp := o.viewport
	searching := o.props.Search != nil

	mOutline := o.props.MatchedOutlineWidth
	mStroke := o.sz.matchedStroke
	pad := o.sz.labelPadding
	hlPad := (o.sz.frameHeight-o.sz.fontSize)/2 - 2
	measure := o.faces.regularMeasure

	for depth, layer := range chart.Layers() {
		d := float64(depth)
		if d+1 < vp.Top() || d > vp.Bottom() {
			continue
		}
		for _, f := range layer {
			if f.Start > vp.Right() {
				break
			}
			if f.End < vp.Left() {
				continue
			}
			phys := o.toPhys.TransformRect(f.ConfigRect())

			if f.Node.Attributes.Has(profile.AttrLongTask) {
				b.longTask.Rect(inset(phys, o.sz.secondaryOutline))
			}
			if sel := o.props.Selected; sel != nil && f.Node.Frame == sel.Node.Frame {
				if f == sel {
					b.direct.Rect(inset(phys, o.sz.frameOutline))
				} else {
					b.indirect.Rect(inset(phys, o.sz.frameOutline))
				}
			}
			if f == o.props.Hovered {
				b.hovered.Rect(inset(phys, o.sz.frameOutline))
			}

			var match *search.Match
			if searching {
				match = o.props.Search.MatchForFrame(f)
			}
			if match != nil {
				b.matched.Rect(geom.R(
					math.Round(phys.Left()+mStroke/2-mOutline/2),
					math.Round(phys.Top()+mStroke/2-mOutline/2),
					math.Round(math.Max(0, phys.Width()-mStroke+mOutline)),
					math.Round(math.Max(0, phys.Height()-mStroke+mOutline)),
				))
			}

			if o.props.HiddenFrameLabels {
				continue
			}
			left := math.Max(phys.Left(), 0)
			right := math.Min(phys.Right(), o.physical.Width())
			width := right - left
			if width < o.faces.minWidthToRender {
				continue
			}
			trimmed := measure.TrimMid(search.DisplayName(f.Node.Frame.Name), width-2*pad)
			x := left + pad
			baseline := math.Round(phys.Bottom() - (o.sz.frameHeight-o.sz.fontSize)/2)

			if match != nil {
				for _, rg := range trimmed.RemapRanges(match.Ranges) {
					if rg[0] < 0 || rg[1] > len(trimmed.Text) || rg[0] >= rg[1] {
						continue
					}
					hx := x + measure.Width(trimmed.Text[:rg[0]])
					hw := measure.Width(trimmed.Text[rg[0]:rg[1]])
					b.textHighlight.Rect(geom.R(hx, phys.Top()+hlPad, hw, o.sz.frameHeight-2*hlPad))
				}
			}
			if searching && match == nil {
				b.fadedLabels.Text(trimmed.Text, x, baseline)
			} else {
				b.labels.Text(trimmed.Text, x, baseline)
			}
		}
	}
	return o.flushFrames(&b)
}

func (o *overlay) flushFrames(b *frameBatches) error {
	th := o.props.Theme
	steps := []func() error{
		func() error { return b.longTask.Fill(o.dc, gg.Hex(th.WarningBg)) },
		func() error { return b.longTask.Stroke(o.dc, gg.Hex(th.Warning), o.sz.secondaryOutline) },
		func() error { return b.longTask.Triangle(o.dc, gg.Hex(th.Warning), o.sz.frameTriangle) },
		func() error { return b.indirect.Stroke(o.dc, gg.Hex(th.SelectionSecondary), o.sz.frameOutline) },
		func() error { return b.direct.Stroke(o.dc, gg.Hex(th.SelectionPrimary), o.sz.frameOutline) },
		func() error { return b.matched.Fill(o.dc, gg.Hex(th.SearchMatchSecondary)) },
		func() error {
			return b.matched.Stroke(o.dc, gg.Hex(th.SearchMatchPrimary), o.sz.matchedStroke+o.props.MatchedOutlineWidth)
		},
		func() error { return b.textHighlight.Fill(o.dc, gg.Hex(th.SearchMatchPrimary)) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	b.fadedLabels.Fill(o.dc, o.faces.regular, gg.Hex(th.FgSecondary))
	labelColor := th.FgPrimary
	if o.props.Search != nil {
		labelColor = th.SearchMatchText
	}
	b.labels.Fill(o.dc, o.faces.regular, gg.Hex(labelColor))

	return b.hovered.Stroke(o.dc, gg.Hex(th.FgPrimary), o.sz.frameOutline)
}

// inset shrinks r so a stroke of width w stays inside it.
func inset(r geom.Rect, w float64) geom.Rect {
	return geom.R(r.Left()+w/2, r.Top()+w/2, r.Width()-w, r.Height()-w)
}

// baselineFor converts a text top coordinate to a baseline for face.
func baselineFor(face text.Face, top float64) float64 {
	return top + face.Metrics().Ascent
}
