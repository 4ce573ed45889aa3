package geom

import (
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) <= 1e-9*math.Max(1, math.Abs(b)) }

func vecApprox(a, b Vec2) bool { return approx(a.X, b.X) && approx(a.Y, b.Y) }

func TestClamp(t *testing.T) {
	tests := []struct {
		name            string
		x, lo, hi, want float64
	}{
		{"inside", 5, 0, 10, 5},
		{"below", -1, 0, 10, 0},
		{"above", 11, 0, 10, 10},
		{"inverted bounds prefer lo", 5, 8, 2, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.x, tt.lo, tt.hi); got != tt.want {
				t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.x, tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	r := R(10, 1, 5, 1)
	if !r.Contains(V(12, 1.5)) {
		t.Error("point inside should be contained")
	}
	if !r.Contains(V(15, 2)) {
		t.Error("edges are inclusive")
	}
	if r.Contains(V(16, 1.5)) {
		t.Error("point right of rect should not be contained")
	}
	if !R(0, 0, 0, 3).IsEmpty() {
		t.Error("zero width rect should be empty")
	}
}

func TestBetweenRects(t *testing.T) {
	from := R(100, 2, 50, 4)
	to := R(0, 0, 1000, 100)
	m := BetweenRects(from, to)

	if got := m.TransformPosition(from.TopLeft()); !vecApprox(got, to.TopLeft()) {
		t.Errorf("top-left = %v, want %v", got, to.TopLeft())
	}
	if got := m.TransformPosition(from.BottomRight()); !vecApprox(got, to.BottomRight()) {
		t.Errorf("bottom-right = %v, want %v", got, to.BottomRight())
	}
	if got := m.TransformRect(from); !vecApprox(got.Size, to.Size) {
		t.Errorf("rect size = %v, want %v", got.Size, to.Size)
	}
}

func TestInverseRoundTrip(t *testing.T) {
	m := WithTranslation(V(-3, 7)).ScaledBy(V(2.5, 25)).TranslatedBy(V(11, -4))
	p := V(42, 3.25)

	back, ok := m.InverseTransformPosition(m.TransformPosition(p))
	if !ok {
		t.Fatal("transform should be invertible")
	}
	if !vecApprox(back, p) {
		t.Errorf("round trip = %v, want %v", back, p)
	}

	v := V(-8, 0.5)
	vb, _ := m.InverseTransformVector(m.TransformVector(v))
	if !vecApprox(vb, v) {
		t.Errorf("vector round trip = %v, want %v", vb, v)
	}
}

func TestInverseDeepZoom(t *testing.T) {
	// A 1000px surface showing 2^50 units has a determinant far below what
	// gg.Matrix.Invert accepts.
	m := BetweenRects(R(0, 0, math.Pow(2, 50), 1), R(0, 0, 1000, 25))
	if _, ok := m.Inverted(); !ok {
		t.Fatal("tiny but nonzero determinant must invert")
	}
	if _, ok := WithScale(V(0, 1)).Inverted(); ok {
		t.Error("singular transform must not invert")
	}
}

func TestTimesOrder(t *testing.T) {
	scale := WithScale(V(2, 2))
	move := WithTranslation(V(10, 0))

	// move applied first, then scale
	got := scale.Times(move).TransformPosition(V(1, 1))
	if !vecApprox(got, V(22, 2)) {
		t.Errorf("scale*move = %v, want (22, 2)", got)
	}
}
