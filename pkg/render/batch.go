package render

import (
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/matzehuels/flamechart/pkg/geom"
)

// RectBatch collects rectangles that share a paint and draws them with a
// single path.
type RectBatch struct {
	rects []geom.Rect
}

// Rect queues r.
func (b *RectBatch) Rect(r geom.Rect) { b.rects = append(b.rects, r) }

// Len returns the number of queued rectangles.
func (b *RectBatch) Len() int { return len(b.rects) }

// Fill fills every queued rectangle with col.
func (b *RectBatch) Fill(dc *gg.Context, col gg.RGBA) error {
	if len(b.rects) == 0 {
		return nil
	}
	for _, r := range b.rects {
		dc.DrawRectangle(r.Left(), r.Top(), r.Width(), r.Height())
	}
	dc.SetColor(col.Color())
	return dc.Fill()
}

// Stroke outlines every queued rectangle.
func (b *RectBatch) Stroke(dc *gg.Context, col gg.RGBA, width float64) error {
	if len(b.rects) == 0 {
		return nil
	}
	for _, r := range b.rects {
		dc.DrawRectangle(r.Left(), r.Top(), r.Width(), r.Height())
	}
	dc.SetColor(col.Color())
	dc.SetLineWidth(width)
	return dc.Stroke()
}

// Triangle fills a right triangle of the given size in the top-right corner
// of every queued rectangle wide and tall enough to hold it.
func (b *RectBatch) Triangle(dc *gg.Context, col gg.RGBA, size float64) error {
	n := 0
	for _, r := range b.rects {
		if r.Width() < size || r.Height() < size {
			continue
		}
		dc.MoveTo(r.Right()-size, r.Top())
		dc.LineTo(r.Right(), r.Top())
		dc.LineTo(r.Right(), r.Top()+size)
		dc.ClosePath()
		n++
	}
	if n == 0 {
		return nil
	}
	dc.SetColor(col.Color())
	return dc.Fill()
}

type textItem struct {
	text string
	x, y float64
}

// TextBatch collects labels drawn with the same face and color.
type TextBatch struct {
	items []textItem
}

// Text queues s with its baseline origin at (x, y).
func (b *TextBatch) Text(s string, x, y float64) {
	b.items = append(b.items, textItem{text: s, x: x, y: y})
}

// Len returns the number of queued labels.
func (b *TextBatch) Len() int { return len(b.items) }

// Fill draws every queued label with face.
func (b *TextBatch) Fill(dc *gg.Context, face text.Face, col gg.RGBA) {
	if len(b.items) == 0 {
		return
	}
	dc.SetFont(face)
	dc.SetColor(col.Color())
	for _, it := range b.items {
		dc.DrawString(it.text, it.x, it.y)
	}
}
