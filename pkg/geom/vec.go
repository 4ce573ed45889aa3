package geom

import "math"

// Vec2 is a 2D point or vector.
type Vec2 struct {
	X, Y float64
}

// Zero is the origin.
var Zero = Vec2{}

// V is shorthand for Vec2{x, y}.
func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) WithX(x float64) Vec2 { return Vec2{X: x, Y: v.Y} }
func (v Vec2) WithY(y float64) Vec2 { return Vec2{X: v.X, Y: y} }

func (v Vec2) Plus(o Vec2) Vec2  { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec2) Minus(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }
func (v Vec2) Times(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// TimesPointwise multiplies component by component.
func (v Vec2) TimesPointwise(o Vec2) Vec2 { return Vec2{X: v.X * o.X, Y: v.Y * o.Y} }

// DividedByPointwise divides component by component.
func (v Vec2) DividedByPointwise(o Vec2) Vec2 { return Vec2{X: v.X / o.X, Y: v.Y / o.Y} }

// Length returns the Euclidean norm.
func (v Vec2) Length() float64 { return math.Hypot(v.X, v.Y) }

// Min returns the component-wise minimum.
func Min(a, b Vec2) Vec2 { return Vec2{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)} }

// Max returns the component-wise maximum.
func Max(a, b Vec2) Vec2 { return Vec2{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)} }

// ClampVec clamps each component of v into [lo, hi].
func ClampVec(v, lo, hi Vec2) Vec2 {
	return Vec2{X: Clamp(v.X, lo.X, hi.X), Y: Clamp(v.Y, lo.Y, hi.Y)}
}

// Clamp limits x to [lo, hi]. When lo > hi, lo wins.
func Clamp(x, lo, hi float64) float64 {
	if x > hi {
		x = hi
	}
	if x < lo {
		x = lo
	}
	return x
}
