package view

import (
	"time"

	"github.com/matzehuels/flamechart/pkg/geom"
)

// animationDuration is the length of the viewport tween and outline pulse.
const animationDuration = 300 * time.Millisecond

// maxOutlinePulse is the peak outline pulse width in logical pixels.
const maxOutlinePulse = 5

func progress(now, start time.Time, d time.Duration) float64 {
	return float64(now.Sub(start)) / float64(d)
}

// startTween eases left, top and width towards to. The height follows the
// live viewport so a resize during the tween is kept.
func (c *Controller) startTween(to geom.Rect, d time.Duration) {
	if c.closed {
		return
	}
	c.stopTween()
	start := c.sched.Now()
	from := c.viewport

	var loop func(now time.Time)
	loop = func(now time.Time) {
		c.tween = 0
		t := progress(now, start, d)
		if t >= 1 {
			c.viewport = to.WithSize(to.Size.WithY(c.viewport.Height()))
			c.requestRender()
			c.notifyViewport()
			return
		}
		c.viewport = geom.R(
			EaseInOutQuad(t, from.Left(), to.Left()),
			EaseInOutQuad(t, from.Top(), to.Top()),
			EaseInOutQuad(t, from.Width(), to.Width()),
			c.viewport.Height(),
		)
		c.requestRender()
		c.notifyViewport()
		c.tween = c.sched.RequestFrame(loop)
	}
	c.tween = c.sched.RequestFrame(loop)
}

func (c *Controller) stopTween() {
	if c.tween != 0 {
		c.sched.Cancel(c.tween)
		c.tween = 0
	}
}

// Animating reports whether a viewport tween is running.
func (c *Controller) Animating() bool { return c.tween != 0 }

// startOutlinePulse grows the search outline to its peak over the first
// half of d and shrinks it back over the second half, after delay.
func (c *Controller) startOutlinePulse(d, delay time.Duration) {
	if c.closed {
		return
	}
	c.stopOutlinePulse()
	start := c.sched.Now().Add(delay)
	peak := maxOutlinePulse * c.dpr

	var loop func(now time.Time)
	loop = func(now time.Time) {
		c.pulse = 0
		t := progress(now, start, d)
		switch {
		case t < 0:
			c.matchedOutlineWidth = 0
		case t < 0.5:
			c.matchedOutlineWidth = EaseInOutCubic(t*2, 0, peak)
		case t < 1:
			c.matchedOutlineWidth = EaseInOutCubic((t-0.5)*2, peak, 0)
		default:
			c.matchedOutlineWidth = 0
			c.requestRender()
			return
		}
		c.requestRender()
		c.pulse = c.sched.RequestFrame(loop)
	}
	c.pulse = c.sched.RequestFrame(loop)
}

func (c *Controller) stopOutlinePulse() {
	if c.pulse != 0 {
		c.sched.Cancel(c.pulse)
		c.pulse = 0
	}
}
