package geom

import "github.com/gogpu/gg"

// AffineTransform is a 2x3 affine map:
//
//	x' = m00*x + m01*y + m02
//	y' = m10*x + m11*y + m12
//
// The zero value is not the identity; use [Identity].
type AffineTransform struct {
	m gg.Matrix
}

// Identity returns the identity transform.
func Identity() AffineTransform { return AffineTransform{m: gg.Identity()} }

// FromMatrix wraps an existing gg matrix.
func FromMatrix(m gg.Matrix) AffineTransform { return AffineTransform{m: m} }

// WithTranslation returns a pure translation by t.
func WithTranslation(t Vec2) AffineTransform { return AffineTransform{m: gg.Translate(t.X, t.Y)} }

// WithScale returns a pure scale by s.
func WithScale(s Vec2) AffineTransform { return AffineTransform{m: gg.Scale(s.X, s.Y)} }

// BetweenRects maps from onto to: from's origin lands on to's origin and
// from's size is stretched to to's size.
func BetweenRects(from, to Rect) AffineTransform {
	return WithTranslation(from.Origin.Times(-1)).
		ScaledBy(to.Size.DividedByPointwise(from.Size)).
		TranslatedBy(to.Origin)
}

// Matrix exposes the underlying drawing matrix.
func (t AffineTransform) Matrix() gg.Matrix { return t.m }

// Scale returns the diagonal scale components.
func (t AffineTransform) Scale() Vec2 { return Vec2{X: t.m.A, Y: t.m.E} }

// Translation returns the translation components.
func (t AffineTransform) Translation() Vec2 { return Vec2{X: t.m.C, Y: t.m.F} }

// Times composes t with o so that o is applied first.
func (t AffineTransform) Times(o AffineTransform) AffineTransform {
	return AffineTransform{m: t.m.Multiply(o.m)}
}

// ScaledBy applies a scale after t.
func (t AffineTransform) ScaledBy(s Vec2) AffineTransform { return WithScale(s).Times(t) }

// TranslatedBy applies a translation after t.
func (t AffineTransform) TranslatedBy(v Vec2) AffineTransform { return WithTranslation(v).Times(t) }

// Det returns the determinant of the linear part.
func (t AffineTransform) Det() float64 { return t.m.A*t.m.E - t.m.B*t.m.D }

// Inverted returns the inverse transform. ok is false when t is singular.
//
// gg.Matrix.Invert treats tiny determinants as singular, which breaks deep
// zoom levels, so the inverse is computed here against an exact zero.
func (t AffineTransform) Inverted() (inv AffineTransform, ok bool) {
	det := t.Det()
	if det == 0 {
		return AffineTransform{}, false
	}
	m := t.m
	return AffineTransform{m: gg.Matrix{
		A: m.E / det,
		B: -m.B / det,
		C: (m.B*m.F - m.C*m.E) / det,
		D: -m.D / det,
		E: m.A / det,
		F: (m.C*m.D - m.A*m.F) / det,
	}}, true
}

// TransformVector applies the linear part only.
func (t AffineTransform) TransformVector(v Vec2) Vec2 {
	p := t.m.TransformVector(gg.Pt(v.X, v.Y))
	return Vec2{X: p.X, Y: p.Y}
}

// TransformPosition applies the full transform to a point.
func (t AffineTransform) TransformPosition(v Vec2) Vec2 {
	p := t.m.TransformPoint(gg.Pt(v.X, v.Y))
	return Vec2{X: p.X, Y: p.Y}
}

// TransformRect maps both corners and returns their bounding box.
func (t AffineTransform) TransformRect(r Rect) Rect {
	a := t.TransformPosition(r.TopLeft())
	b := t.TransformPosition(r.BottomRight())
	tl := Min(a, b)
	br := Max(a, b)
	return Rect{Origin: tl, Size: br.Minus(tl)}
}

// InverseTransformVector maps v through the inverse. ok is false when t is
// singular.
func (t AffineTransform) InverseTransformVector(v Vec2) (Vec2, bool) {
	inv, ok := t.Inverted()
	if !ok {
		return Vec2{}, false
	}
	return inv.TransformVector(v), true
}

// InverseTransformPosition maps p through the inverse.
func (t AffineTransform) InverseTransformPosition(p Vec2) (Vec2, bool) {
	inv, ok := t.Inverted()
	if !ok {
		return Vec2{}, false
	}
	return inv.TransformPosition(p), true
}

// InverseTransformRect maps r through the inverse.
func (t AffineTransform) InverseTransformRect(r Rect) (Rect, bool) {
	inv, ok := t.Inverted()
	if !ok {
		return Rect{}, false
	}
	return inv.TransformRect(r), true
}
