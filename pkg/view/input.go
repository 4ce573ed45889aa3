package view

import (
	"math"

	"github.com/matzehuels/flamechart/pkg/flamechart"
	"github.com/matzehuels/flamechart/pkg/geom"
	"github.com/matzehuels/flamechart/pkg/render"
)

// clickSlop is how far, in logical pixels, the pointer may move between
// press and click for the click to still select.
const clickSlop = 5

// PointerDown starts a potential drag or click. A running viewport tween
// stops where it is.
func (c *Controller) PointerDown(ev PointerEvent) {
	c.stopTween()
	pos := ev.Pos
	c.pointerDownPos = &pos
	drag := ev.Pos
	c.lastDragPos = &drag
}

// PointerMove updates the timeline cursor and hover state, and pans when a
// drag is in progress.
func (c *Controller) PointerMove(ev PointerEvent) {
	if c.closed {
		return
	}
	config, physical, ok := c.toConfig(ev.Pos)
	if ok {
		x := config.X
		c.cursor = &x
		if c.lastDragPos == nil {
			c.hovered = c.hitTest(config)
			if c.props.OnNodeHover != nil {
				c.props.OnNodeHover(c.hovered, ev.Pos)
			}
			if c.props.OnTimingHover != nil {
				c.props.OnTimingHover(c.timingAt(physical), ev.Pos)
			}
		}
	}
	c.requestRender()
	c.notifyTimelineCursor()

	if c.lastDragPos != nil {
		c.Pan(c.lastDragPos.Minus(ev.Pos))
		pos := ev.Pos
		c.lastDragPos = &pos
		c.stopTween()
		c.requestRender()
		c.notifyViewport()
	}
}

// PointerUp ends a drag.
func (c *Controller) PointerUp(PointerEvent) {
	c.lastDragPos = nil
	c.requestRender()
}

// PointerLeave clears hover and the timeline cursor.
func (c *Controller) PointerLeave() {
	if c.closed {
		return
	}
	c.hovered = nil
	c.cursor = nil
	if c.props.OnNodeHover != nil {
		c.props.OnNodeHover(nil, geom.Vec2{})
	}
	if c.props.OnTimingHover != nil {
		c.props.OnTimingHover(nil, geom.Vec2{})
	}
	c.requestRender()
	c.notifyTimelineCursor()
}

// Click selects the hovered frame, or clears the selection when nothing is
// hovered. A click that ends a drag longer than clickSlop is ignored.
func (c *Controller) Click(ev PointerEvent) {
	if c.closed {
		return
	}
	down := c.pointerDownPos
	c.pointerDownPos = nil
	if down != nil && ev.Pos.Minus(*down).Length() > clickSlop {
		return
	}
	c.selected = c.hovered
	if c.props.OnNodeSelect != nil {
		c.props.OnNodeSelect(c.selected)
	}
	c.requestRender()
}

// DoubleClick focuses the hovered frame.
func (c *Controller) DoubleClick(PointerEvent) {
	if c.hovered != nil {
		c.FocusFrame(c.hovered)
	}
}

// Wheel zooms around the pointer with vertical deltas and pans with
// horizontal ones.
func (c *Controller) Wheel(ev WheelEvent) {
	if c.closed {
		return
	}
	dx, dy := ev.DeltaX, ev.DeltaY
	if ev.DeltaMode == DeltaLine {
		dx *= linePixels
		dy *= linePixels
	}
	// Horizontal trackpad swipes pan without zooming.
	if math.Abs(dx) > math.Abs(dy) {
		dy = 0
	}
	multiplier := 1 + dy/100
	if ev.Precise {
		multiplier = 1 + dy/40
	}
	multiplier = geom.Clamp(multiplier, 0.1, 10)

	c.Zoom(ev.Pos, multiplier)
	c.Pan(geom.V(dx, 0))

	if config, _, ok := c.toConfig(ev.Pos); ok {
		x := config.X
		c.cursor = &x
	}
	c.stopTween()
	c.requestRender()
	c.notifyViewport()
	c.notifyTimelineCursor()
}

// hitTest returns the frame containing a config-space point. Overlapping
// frames resolve to the last one in layer order.
func (c *Controller) hitTest(p geom.Vec2) *flamechart.FlamechartFrame {
	var hit *flamechart.FlamechartFrame
	for depth, layer := range c.chart.Layers() {
		for _, f := range layer {
			if p.X < f.Start || p.X > f.End {
				continue
			}
			if geom.R(f.Start, float64(depth), f.Width(), 1).Contains(p) {
				hit = f
			}
		}
	}
	return hit
}

// timingAt returns the timing marker drawn at a physical position in the
// last render.
func (c *Controller) timingAt(physical geom.Vec2) *render.Timing {
	t, ok := c.feedback.TimingAt(physical)
	if !ok {
		return nil
	}
	return &t
}
