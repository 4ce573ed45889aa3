package render

import (
	"math"

	"github.com/gogpu/gg"

	"github.com/matzehuels/flamechart/pkg/geom"
)

// maxGridLines bounds the grid loop when the interval degenerates.
const maxGridLines = 10000

// timings draws timing markers and returns where they landed.
func (o *overlay) timings() ([]TimingArea, error) {
	if len(o.props.Timings) == 0 {
		return nil, nil
	}
	th := o.props.Theme
	sz := o.sz
	font := sz.timingFontSize
	lw := sz.timingLineWidth
	height := o.physical.Height()

	markerY := -0.75
	if o.props.BottomTimingLabels {
		markerY = float64(len(o.props.Chart.Layers())) + 0.5
	}
	y := o.toPhys.TransformPosition(geom.V(0, markerY)).Y

	var areas []TimingArea
	lastLabelEnd := math.Inf(-1)
	for _, t := range orderTimings(o.props.Timings) {
		x := o.toPhys.TransformPosition(geom.V(t.Value, 0)).X
		col := gg.Hex(th.FgPrimary)
		if t.Color != "" {
			col = gg.Hex(t.Color)
		}

		if t.Style == TimingPoint {
			s := sz.timingPointSize
			o.dc.MoveTo(x, y)
			o.dc.CubicTo(x+s, y-s, x+s, y-2*s, x, y-2*s)
			o.dc.CubicTo(x-s, y-2*s, x-s, y-s, x, y)
			o.dc.ClosePath()
			o.dc.SetColor(col.Color())
			if err := o.dc.FillPreserve(); err != nil {
				return nil, err
			}
			o.dc.SetColor(gg.Hex(th.BgPrimary).Color())
			o.dc.SetLineWidth(lw)
			if err := o.dc.Stroke(); err != nil {
				return nil, err
			}
			areas = append(areas, TimingArea{Timing: t, Area: geom.R(x-s, y-2*s, 2*s, 2*s)})
			continue
		}

		tw := o.faces.boldMeasure.Width(t.Name)
		labelStart := math.Max(x, lastLabelEnd)
		pill := geom.R(labelStart, y-sz.timingPadV-font, 2*sz.timingPadH+tw, 2*sz.timingPadV+font)
		o.dc.DrawRectangle(pill.Left(), pill.Top(), pill.Width(), pill.Height())
		o.dc.SetColor(col.Color())
		if err := o.dc.Fill(); err != nil {
			return nil, err
		}
		o.dc.SetFont(o.faces.bold)
		o.dc.SetColor(gg.Hex("#ffffff").Color())
		o.dc.DrawString(t.Name, labelStart+sz.timingPadH, baselineFor(o.faces.bold, y-font))
		lastLabelEnd = pill.Right()
		areas = append(areas, TimingArea{Timing: t, Area: pill})

		o.dc.SetDash(4*sz.dpr, 4*sz.dpr)
		o.dc.MoveTo(x+lw/2, 0)
		o.dc.LineTo(x+lw/2, height)
		o.dc.SetColor(col.Color())
		o.dc.SetLineWidth(lw)
		err := o.dc.Stroke()
		o.dc.ClearDash()
		if err != nil {
			return nil, err
		}
	}
	return areas, nil
}

// gridInterval picks a 1, 2 or 5 times power-of-ten step close to target.
func gridInterval(target float64) float64 {
	if target <= 0 || math.IsNaN(target) || math.IsInf(target, 0) {
		return 0
	}
	interval := math.Pow(10, math.Floor(math.Log10(target)))
	switch {
	case target/interval > 5:
		interval *= 5
	case target/interval > 2:
		interval *= 2
	}
	return interval
}

// grid draws vertical grid lines about every 200 logical pixels and, unless
// time indicators are disabled, their value labels on a header band.
func (o *overlay) grid() error {
	inv, ok := o.toPhys.Inverted()
	if !ok {
		return nil
	}
	th := o.props.Theme
	sz := o.sz
	target := inv.Times(geom.WithScale(geom.V(sz.dpr, sz.dpr))).TransformVector(geom.V(sz.gridTargetSpacing, 1)).X
	interval := gridInterval(target)
	if interval == 0 {
		return nil
	}
	showLabels := !o.props.DisableTimeIndicators
	width, height := o.physical.Width(), o.physical.Height()

	if showLabels {
		o.dc.DrawRectangle(0, 0, width, sz.frameHeight)
		o.dc.SetColor(withAlpha(th.BgPrimary, 0.8).Color())
		if err := o.dc.Fill(); err != nil {
			return err
		}
		o.dc.SetFont(o.faces.regular)
	}

	var lines RectBatch
	labelColor := gg.Hex(th.FgPrimary).Color()
	left, right := o.viewport.Left(), o.viewport.Right()
	x := math.Ceil(left/interval) * interval
	for i := 0; x < right && i < maxGridLines; i++ {
		pos := math.Round(o.toPhys.TransformPosition(geom.V(x, 0)).X)
		if showLabels {
			label := o.props.Chart.FormatValue(x)
			tw := o.faces.regularMeasure.Width(label)
			o.dc.SetColor(labelColor)
			o.dc.DrawString(label, pos-tw-sz.labelPadding, baselineFor(o.faces.regular, sz.labelPadding))
		}
		lines.Rect(geom.R(pos, 0, 1, height))
		x += interval
	}
	return lines.Fill(o.dc, gg.Hex(th.Border))
}

// cursor draws the timeline cursor line and, unless time indicators are
// disabled, a pill with the formatted value.
func (o *overlay) cursor() error {
	if o.props.TimelineCursor == nil {
		return nil
	}
	th := o.props.Theme
	sz := o.sz
	value := *o.props.TimelineCursor
	pos := o.toPhys.TransformPosition(geom.V(value, 0)).X
	lw := sz.timingLineWidth

	o.dc.MoveTo(pos+lw/2, 0)
	o.dc.LineTo(pos+lw/2, o.physical.Height())
	o.dc.SetColor(gg.Hex(th.TimelineCursor).Color())
	o.dc.SetLineWidth(lw)
	if err := o.dc.Stroke(); err != nil {
		return err
	}
	if o.props.DisableTimeIndicators {
		return nil
	}

	label := o.props.Chart.FormatValue(value)
	tw := o.faces.regularMeasure.Width(label)
	o.dc.DrawRoundedRectangle(pos-tw/2-sz.labelPadding, 0, tw+2*sz.labelPadding, sz.frameHeight, sz.cursorPillRadius)
	o.dc.SetColor(gg.Hex(th.TimelineCursorBg).Color())
	if err := o.dc.Fill(); err != nil {
		return err
	}
	o.dc.SetFont(o.faces.regular)
	o.dc.SetColor(gg.Hex(th.TimelineCursorFg).Color())
	o.dc.DrawString(label, pos-tw/2, baselineFor(o.faces.regular, sz.labelPadding))
	return nil
}
