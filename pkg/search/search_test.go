package search

import (
	"reflect"
	"testing"
	"unicode/utf8"

	"github.com/matzehuels/flamechart/pkg/flamechart"
	"github.com/matzehuels/flamechart/pkg/profile"
)

func TestFuzzyMatch(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		pattern string
		want    [][2]int // nil means no match
	}{
		{"no match", "alpha", "xyz", nil},
		{"blank pattern", "alpha", "  ", nil},
		{"case insensitive", "HandleClick", "click", [][2]int{{6, 11}}},
		{"split ranges", "parse_json", "pj", [][2]int{{0, 1}, {6, 7}}},
		{"tightest window", "a_a_b", "ab", [][2]int{{2, 3}, {4, 5}}},
		{"multibyte", "ñandú", "dú", [][2]int{{4, 7}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := FuzzyMatch(tt.text, tt.pattern)
			if tt.want == nil {
				if m != nil {
					t.Fatalf("FuzzyMatch(%q, %q) = %+v, want nil", tt.text, tt.pattern, m)
				}
				return
			}
			if m == nil {
				t.Fatalf("FuzzyMatch(%q, %q) = nil", tt.text, tt.pattern)
			}
			if !reflect.DeepEqual(m.Ranges, tt.want) {
				t.Errorf("ranges = %v, want %v", m.Ranges, tt.want)
			}
			for _, r := range m.Ranges {
				if !utf8.ValidString(tt.text[r[0]:r[1]]) {
					t.Errorf("range %v splits a rune", r)
				}
			}
		})
	}
}

func TestFuzzyMatchScoring(t *testing.T) {
	tests := []struct {
		name          string
		better, worse string
		pattern       string
	}{
		{"prefix beats inner", "foobar", "xfoobar", "foo"},
		{"consecutive beats scattered", "abcxx", "axbxc", "abc"},
		{"boundary beats inner", "get_value", "getvalue", "v"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, w := FuzzyMatch(tt.better, tt.pattern), FuzzyMatch(tt.worse, tt.pattern)
			if b == nil || w == nil {
				t.Fatalf("expected both to match: %v %v", b, w)
			}
			if b.Score <= w.Score {
				t.Errorf("score(%q) = %v, want > score(%q) = %v", tt.better, b.Score, tt.worse, w.Score)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"![logo](http://x/y.png) render", "logo render"},
		{`<img src="a.png"/> Button`, "Button"},
		{"a < b", "a < b"},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.in); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func newNode(parent *profile.CallTreeNode, info profile.FrameInfo) *profile.CallTreeNode {
	return profile.NewCallTreeNode(profile.NewFrame(info), parent)
}

func TestNameAndFileEngines(t *testing.T) {
	n := newNode(profile.NewRoot(), profile.FrameInfo{Key: "k", Name: "![logo](http://x) render", File: "src/app/logo.tsx"})

	m := NewNameEngine("logo").MatchForNode(n)
	if m == nil || !reflect.DeepEqual(m.Ranges, [][2]int{{0, 4}}) {
		t.Errorf("name match = %+v, want ranges [[0 4]]", m)
	}

	fe := NewFileEngine("app")
	fm := fe.MatchForNode(n)
	if fm == nil {
		t.Fatal("file engine did not match")
	}
	if fm.Ranges != nil {
		t.Errorf("file engine ranges = %v, want nil", fm.Ranges)
	}
	if again := fe.MatchForNode(n); again != fm {
		t.Error("second lookup was not served from cache")
	}
	if NewFileEngine("zzz").MatchForNode(n) != nil {
		t.Error("unexpected file match")
	}
}

func TestKeyEngine(t *testing.T) {
	root := profile.NewRoot()
	main := newNode(root, profile.FrameInfo{Key: "main"})
	a := newNode(main, profile.FrameInfo{Key: "a"})
	deep := newNode(a, profile.FrameInfo{Key: "target"})
	other := newNode(root, profile.FrameInfo{Key: "other"})
	shallow := newNode(other, profile.FrameInfo{Key: "target"})

	tests := []struct {
		name   string
		engine Engine
		node   *profile.CallTreeNode
		match  bool
	}{
		{"key only deep", NewKeyEngine("target"), deep, true},
		{"key only shallow", NewKeyEngine("target"), shallow, true},
		{"full chain", NewKeyEngine("target", "a", "main"), deep, true},
		{"chain mismatch", NewKeyEngine("target", "a", "main"), shallow, false},
		{"skipped ancestor", NewKeyEngine("target", "main"), deep, false},
		{"chain past root", NewKeyEngine("main", "x"), main, false},
		{"wrong key", NewKeyEngine("nope"), deep, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.engine.MatchForNode(tt.node) != nil; got != tt.match {
				t.Errorf("match = %v, want %v", got, tt.match)
			}
		})
	}
}

func TestEngineWithFlamechart(t *testing.T) {
	b := profile.NewSampleProfileBuilder()
	for _, st := range [][]string{{"main", "parseTree"}, {"main", "render"}, {"main", "parseTree", "render"}} {
		var stack []profile.FrameInfo
		for _, n := range st {
			stack = append(stack, profile.FrameInfo{Key: n})
		}
		if err := b.AppendSample(stack, 1); err != nil {
			t.Fatal(err)
		}
	}
	fc, err := flamechart.ForProfile(flamechart.KindDefault, b.Build(), nil)
	if err != nil {
		t.Fatal(err)
	}

	res := fc.Search(NewNameEngine("render"))
	if len(res.Matches) != 2 {
		t.Errorf("matches = %d, want 2", len(res.Matches))
	}
	if res.Best == nil || res.Best.Node.Frame.Key != "render" {
		t.Errorf("best = %+v", res.Best)
	}
	if empty := fc.Search(NewNameEngine("xyz")); !empty.Empty() || empty.Best != nil {
		t.Errorf("expected empty result, got %+v", empty)
	}
}

func TestNew(t *testing.T) {
	for mode, want := range map[Mode]string{ModeName: "*search.fuzzyEngine", ModeFile: "*search.fuzzyEngine", ModeKey: "*search.keyEngine"} {
		if got := reflect.TypeOf(New(mode, "q")).String(); got != want {
			t.Errorf("New(%s) = %s, want %s", mode, got, want)
		}
	}
}
