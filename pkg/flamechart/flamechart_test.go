package flamechart

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/matzehuels/flamechart/pkg/errors"
	"github.com/matzehuels/flamechart/pkg/geom"
	"github.com/matzehuels/flamechart/pkg/profile"
)

type event struct {
	open  bool
	node  *profile.CallTreeNode
	value float64
}

type script []event

func (s script) source(lo, hi float64) Source {
	return Source{
		Min: lo,
		Max: hi,
		Calls: func(openFrame, closeFrame func(*profile.CallTreeNode, float64)) {
			for _, e := range s {
				if e.open {
					openFrame(e.node, e.value)
				} else {
					closeFrame(e.node, e.value)
				}
			}
		},
	}
}

func node(name string) *profile.CallTreeNode {
	return profile.NewCallTreeNode(profile.NewFrame(profile.FrameInfo{Key: name}), nil)
}

func openAt(n *profile.CallTreeNode, v float64) event  { return event{open: true, node: n, value: v} }
func closeAt(n *profile.CallTreeNode, v float64) event { return event{node: n, value: v} }

// describe renders layers as "name[start,end]" rows for comparison.
func describe(fc *Flamechart) []string {
	var out []string
	for _, layer := range fc.Layers() {
		row := ""
		for i, f := range layer {
			if i > 0 {
				row += " "
			}
			row += fmt.Sprintf("%s[%g,%g]", f.Node.Frame.Name, f.Start, f.End)
		}
		out = append(out, row)
	}
	return out
}

func equalRows(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBuild(t *testing.T) {
	a, b, c := node("A"), node("B"), node("C")
	fc := Build(script{
		openAt(a, 0), openAt(b, 0), closeAt(b, 3), openAt(c, 3), closeAt(c, 5), closeAt(a, 10),
	}.source(0, 10))

	want := []string{"A[0,10]", "B[0,3] C[3,5]"}
	if got := describe(fc); !equalRows(got, want) {
		t.Fatalf("layers = %q, want %q", got, want)
	}
	if fc.MinFrameWidth() != 2 {
		t.Errorf("MinFrameWidth = %v, want 2", fc.MinFrameWidth())
	}
	fa, _ := fc.Frame(a)
	fb, _ := fc.Frame(b)
	if fb.Parent != fa || len(fa.Children) != 2 || fb.Depth != 1 {
		t.Errorf("tree links wrong: parent=%v children=%d depth=%d", fb.Parent, len(fa.Children), fb.Depth)
	}
}

func TestBuildDropsZeroWidth(t *testing.T) {
	a, z, zc := node("A"), node("Z"), node("Zc")
	fc := Build(script{
		openAt(a, 0), openAt(z, 4), openAt(zc, 4), closeAt(zc, 4), closeAt(z, 4), closeAt(a, 8),
	}.source(0, 8))

	want := []string{"A[0,8]"}
	if got := describe(fc); !equalRows(got, want) {
		t.Fatalf("layers = %q, want %q", got, want)
	}
	fa, _ := fc.Frame(a)
	if len(fa.Children) != 0 {
		t.Errorf("zero-width child still linked: %d children", len(fa.Children))
	}
	if _, ok := fc.Frame(z); ok {
		t.Error("zero-width frame found by lookup")
	}
}

func TestBuildRootFilter(t *testing.T) {
	r, a, b, keep := node("R"), node("A"), node("B"), node("K")
	events := script{
		openAt(r, 0), openAt(a, 0), closeAt(a, 2), openAt(b, 2), closeAt(b, 4), closeAt(r, 4),
	}
	reject := WithRootFilter(func(n *profile.CallTreeNode) bool { return n != r })

	fc := Build(events.source(0, 4), reject)
	if n := len(fc.Layers()); n != 0 {
		t.Errorf("layers = %d, want 0 (%q)", n, describe(fc))
	}

	fc = Build(append(events, openAt(keep, 4), closeAt(keep, 6)).source(0, 6), reject)
	want := []string{"K[4,6]"}
	if got := describe(fc); !equalRows(got, want) {
		t.Errorf("layers = %q, want %q", got, want)
	}
}

func TestBuildUnderflowPanics(t *testing.T) {
	defer func() {
		rec := recover()
		err, ok := rec.(error)
		if !ok || !errors.Is(err, errors.ErrCodeInvariant) {
			t.Fatalf("recovered %v, want invariant error", rec)
		}
	}()
	Build(script{closeAt(node("A"), 1)}.source(0, 1))
}

func TestBuildEmpty(t *testing.T) {
	fc := Build(script{}.source(0, 0))
	if fc.MinFrameWidth() != 1 {
		t.Errorf("MinFrameWidth = %v, want 1", fc.MinFrameWidth())
	}
	if len(fc.Layers()) != 0 {
		t.Errorf("layers = %d, want 0", len(fc.Layers()))
	}
}

func TestBuildNonStack(t *testing.T) {
	x, y, z := node("X"), node("Y"), node("Z")
	fc := BuildNonStack(script{
		openAt(x, 0), openAt(y, 5), closeAt(x, 15), closeAt(y, 20), openAt(z, 21), closeAt(z, 30),
	}.source(0, 30))

	want := []string{"X[0,15] Z[21,30]", "Y[5,20]"}
	if got := describe(fc); !equalRows(got, want) {
		t.Fatalf("layers = %q, want %q", got, want)
	}
	if fc.MinFrameWidth() != 9 {
		t.Errorf("MinFrameWidth = %v, want 9", fc.MinFrameWidth())
	}
}

func TestBuildNonStackPlaceholderKeepsDepth(t *testing.T) {
	x, y, z := node("X"), node("Y"), node("Z")
	// Y is still open above X's placeholder, so Z cannot reuse row 0.
	fc := BuildNonStack(script{
		openAt(x, 0), openAt(y, 5), closeAt(x, 10), openAt(z, 12), closeAt(z, 14), closeAt(y, 20),
	}.source(0, 20))

	want := []string{"X[0,10]", "Y[5,20]", "Z[12,14]"}
	if got := describe(fc); !equalRows(got, want) {
		t.Errorf("layers = %q, want %q", got, want)
	}
}

func TestBuildWithProcessor(t *testing.T) {
	a, b, bad := node("A"), node("B"), node("bad")
	places := map[*profile.CallTreeNode]Placement{
		a: {Level: 2, Start: 1, End: 4},
		b: {Level: 0, Start: 0, End: 10},
	}
	proc := func(n *profile.CallTreeNode) (Placement, error) {
		p, ok := places[n]
		if !ok {
			return Placement{}, fmt.Errorf("unknown node")
		}
		return p, nil
	}

	fc := BuildWithProcessor(script{openAt(a, 0), closeAt(a, 0), openAt(b, 0), closeAt(b, 0)}.source(0, 10), proc)
	want := []string{"B[0,10]", "", "A[1,4]"}
	if got := describe(fc); !equalRows(got, want) {
		t.Fatalf("layers = %q, want %q", got, want)
	}

	t.Run("processor error panics", func(t *testing.T) {
		defer func() {
			if err, ok := recover().(error); !ok || !errors.Is(err, errors.ErrCodeInvariant) {
				t.Errorf("recovered %v, want invariant error", err)
			}
		}()
		BuildWithProcessor(script{openAt(bad, 0)}.source(0, 1), proc)
	})
}

func TestClampedViewportWidth(t *testing.T) {
	a, b := node("A"), node("B")
	fc := Build(script{openAt(a, 0), closeAt(a, 2), openAt(b, 2), closeAt(b, 100)}.source(0, 100))

	tests := []struct {
		name  string
		width float64
		want  float64
	}{
		{"too narrow", 1, 6},
		{"inside", 50, 50},
		{"too wide", 1000, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fc.ClampedViewportWidth(tt.width); got != tt.want {
				t.Errorf("ClampedViewportWidth(%v) = %v, want %v", tt.width, got, tt.want)
			}
		})
	}
}

func TestClampedViewportWidthZoomCap(t *testing.T) {
	total := math.Pow(2, 50)
	a, b := node("A"), node("B")
	fc := Build(script{openAt(a, 0), closeAt(a, 1), openAt(b, 1), closeAt(b, total)}.source(0, total))
	if got := fc.ClampedViewportWidth(1); got != 1024 {
		t.Errorf("ClampedViewportWidth(1) = %v, want 2^10", got)
	}
}

func TestClampedViewportRect(t *testing.T) {
	a, b := node("A"), node("B")
	fc := Build(script{openAt(a, 0), openAt(b, 0), closeAt(b, 1), closeAt(a, 100)}.source(0, 100))

	tests := []struct {
		name     string
		in       geom.Rect
		inverted bool
		want     geom.Rect
	}{
		{"clamp origin", geom.R(-10, -5, 50, 3), false, geom.R(0, -1, 50, 3)},
		{"inverted top", geom.R(-10, -5, 50, 3), true, geom.R(0, 0, 50, 3)},
		{"past right", geom.R(90, 0, 50, 1), false, geom.R(50, 0, 50, 1)},
		{"past bottom", geom.R(0, 10, 50, 1), false, geom.R(0, 2, 50, 1)},
		{"width clamped", geom.R(0, 0, 500, 1), false, geom.R(0, 0, 100, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fc.ClampedViewportRect(tt.in, tt.inverted); got != tt.want {
				t.Errorf("ClampedViewportRect(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestClampedViewportRectOffsetDomain(t *testing.T) {
	a, b := node("A"), node("B")
	fc := Build(script{openAt(a, 1000), openAt(b, 1000), closeAt(b, 1001), closeAt(a, 1100)}.source(1000, 1100))

	tests := []struct {
		name string
		in   geom.Rect
		want geom.Rect
	}{
		{"inside", geom.R(1040, 0, 20, 5), geom.R(1040, 0, 20, 5)},
		{"before start", geom.R(900, 0, 20, 1), geom.R(1000, 0, 20, 1)},
		{"past end", geom.R(1095, 0, 20, 1), geom.R(1080, 0, 20, 1)},
		{"full width", geom.R(0, 0, 1000, 1), geom.R(1000, 0, 100, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fc.ClampedViewportRect(tt.in, false); got != tt.want {
				t.Errorf("ClampedViewportRect(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// randomNested returns a properly nested stream over integer values, with
// zero-width calls mixed in, and the value of its last event.
func randomNested(r *rand.Rand) (script, float64) {
	var s script
	now := 0.0
	var calls func(depth int)
	calls = func(depth int) {
		for i, n := 0, r.IntN(4); i < n; i++ {
			nd := node(fmt.Sprintf("f%d", r.IntN(8)))
			now += float64(r.IntN(3))
			s = append(s, openAt(nd, now))
			if depth < 6 {
				calls(depth + 1)
			}
			now += float64(r.IntN(3))
			s = append(s, closeAt(nd, now))
		}
	}
	calls(0)
	return s, now
}

// narrowestCall pairs opens with closes and returns the smallest positive
// width, or 1 when every call is empty.
func narrowestCall(s script) float64 {
	var open []float64
	narrowest := math.Inf(1)
	for _, e := range s {
		if e.open {
			open = append(open, e.value)
			continue
		}
		start := open[len(open)-1]
		open = open[:len(open)-1]
		if w := e.value - start; w > 0 {
			narrowest = math.Min(narrowest, w)
		}
	}
	if math.IsInf(narrowest, 1) {
		return 1
	}
	return narrowest
}

func TestBuildRandomStreams(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 500; i++ {
		s, end := randomNested(r)
		fc := Build(s.source(0, math.Max(end, 1)))

		for depth, layer := range fc.Layers() {
			for j, f := range layer {
				if !(f.End > f.Start) {
					t.Fatalf("stream %d: zero-width frame %s[%g,%g]", i, f.Node.Frame.Name, f.Start, f.End)
				}
				if f.Depth != depth {
					t.Fatalf("stream %d: frame at depth %d in layer %d", i, f.Depth, depth)
				}
				if j > 0 && f.Start < layer[j-1].End {
					t.Fatalf("stream %d layer %d: %q overlaps or precedes its neighbour", i, depth, describe(fc)[depth])
				}
			}
		}
		if got, want := fc.MinFrameWidth(), narrowestCall(s); got != want {
			t.Fatalf("stream %d: MinFrameWidth = %g, want %g", i, got, want)
		}
	}
}

func TestClampedViewportWidthRandom(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 200; i++ {
		s, end := randomNested(r)
		// Scaling spreads totals over many orders of magnitude, so the 2^40
		// cap binds for some charts.
		scale := math.Pow(2, float64(r.IntN(60)))
		for j := range s {
			s[j].value *= scale
		}
		fc := Build(s.source(0, math.Max(end, 1)*scale))

		total := fc.TotalWeight()
		lo := math.Min(math.Max(3*fc.MinFrameWidth(), total/maxZoom), total)
		for k := 0; k < 20; k++ {
			desired := total * math.Pow(2, r.Float64()*120-100)
			got := fc.ClampedViewportWidth(desired)
			if got < lo || got > total {
				t.Fatalf("chart %d: ClampedViewportWidth(%g) = %g outside [%g, %g]", i, desired, got, lo, total)
			}
			if desired >= lo && desired <= total && got != desired {
				t.Fatalf("chart %d: in-range width %g changed to %g", i, desired, got)
			}
		}
	}
}

type nameMatcher map[string]float64

func (m nameMatcher) MatchForFrame(f *FlamechartFrame) *Match {
	score, ok := m[f.Node.Frame.Name]
	if !ok {
		return nil
	}
	return &Match{Score: score}
}

func TestSearch(t *testing.T) {
	a, b, c := node("A"), node("B"), node("C")
	fc := Build(script{
		openAt(a, 0), openAt(b, 0), closeAt(b, 3), openAt(c, 3), closeAt(c, 5), closeAt(a, 10),
	}.source(0, 10))

	tests := []struct {
		name     string
		matcher  nameMatcher
		wantN    int
		wantBest *profile.CallTreeNode
	}{
		{"none", nameMatcher{}, 0, nil},
		{"best", nameMatcher{"A": 1, "C": 5}, 2, c},
		{"tie keeps first", nameMatcher{"B": 2, "C": 2}, 2, b},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := fc.Search(tt.matcher)
			if len(res.Matches) != tt.wantN {
				t.Errorf("matches = %d, want %d", len(res.Matches), tt.wantN)
			}
			switch {
			case tt.wantBest == nil && res.Best != nil:
				t.Errorf("best = %v, want nil", res.Best.Node.Frame.Name)
			case tt.wantBest != nil && (res.Best == nil || res.Best.Node != tt.wantBest):
				t.Errorf("best = %v, want %s", res.Best, tt.wantBest.Frame.Name)
			}
		})
	}
}
