package geom

import "math"

// Rect is an axis-aligned rectangle described by its top-left origin and size.
type Rect struct {
	Origin Vec2
	Size   Vec2
}

// R builds a Rect from x, y, width and height.
func R(x, y, w, h float64) Rect {
	return Rect{Origin: Vec2{X: x, Y: y}, Size: Vec2{X: w, Y: h}}
}

// Empty is the zero rectangle.
var Empty = Rect{}

func (r Rect) Left() float64   { return r.Origin.X }
func (r Rect) Right() float64  { return r.Origin.X + r.Size.X }
func (r Rect) Top() float64    { return r.Origin.Y }
func (r Rect) Bottom() float64 { return r.Origin.Y + r.Size.Y }
func (r Rect) Width() float64  { return r.Size.X }
func (r Rect) Height() float64 { return r.Size.Y }

func (r Rect) TopLeft() Vec2     { return r.Origin }
func (r Rect) BottomRight() Vec2 { return r.Origin.Plus(r.Size) }

// IsEmpty reports whether the rectangle has zero area.
func (r Rect) IsEmpty() bool { return r.Size.X == 0 || r.Size.Y == 0 }

func (r Rect) WithOrigin(o Vec2) Rect { return Rect{Origin: o, Size: r.Size} }
func (r Rect) WithSize(s Vec2) Rect   { return Rect{Origin: r.Origin, Size: s} }

// Contains reports whether p lies inside r. Edges are inclusive, matching
// hit-testing of adjacent bars where the later one wins.
func (r Rect) Contains(p Vec2) bool {
	return r.Left() <= p.X && p.X <= r.Right() && r.Top() <= p.Y && p.Y <= r.Bottom()
}

// HasIntersectionWith reports whether the rectangles overlap or touch.
func (r Rect) HasIntersectionWith(o Rect) bool {
	return !(r.Right() < o.Left() || o.Right() < r.Left() || r.Bottom() < o.Top() || o.Bottom() < r.Top())
}

// Intersect returns the overlapping region, or Empty.
func (r Rect) Intersect(o Rect) Rect {
	left := math.Max(r.Left(), o.Left())
	top := math.Max(r.Top(), o.Top())
	right := math.Min(r.Right(), o.Right())
	bottom := math.Min(r.Bottom(), o.Bottom())
	if right <= left || bottom <= top {
		return Empty
	}
	return R(left, top, right-left, bottom-top)
}

// Union returns the smallest rectangle containing both.
func (r Rect) Union(o Rect) Rect {
	tl := Min(r.TopLeft(), o.TopLeft())
	br := Max(r.BottomRight(), o.BottomRight())
	return Rect{Origin: tl, Size: br.Minus(tl)}
}
