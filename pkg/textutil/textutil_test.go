package textutil

import (
	"reflect"
	"testing"
	"unicode/utf8"
)

func TestTrim(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"abcdef", 10, "abcdef"},
		{"abcdef", 6, "abcdef"},
		{"abcdef", 5, "ab…ef"},
		{"abcdef", 4, "ab…f"},
		{"abcdef", 1, "…"},
		{"abcdef", 0, "…"},
		{"ñandú!", 4, "ña…!"},
	}
	for _, tt := range tests {
		got := Trim(tt.in, tt.n)
		if got.Text != tt.want {
			t.Errorf("Trim(%q, %d) = %q, want %q", tt.in, tt.n, got.Text, tt.want)
		}
		if n := utf8.RuneCountInString(got.Text); tt.n < utf8.RuneCountInString(tt.in) && n != max(tt.n, 1) {
			t.Errorf("Trim(%q, %d) has %d runes", tt.in, tt.n, n)
		}
	}
}

func TestTrimMid(t *testing.T) {
	perRune := func(s string) float64 { return 10 * float64(utf8.RuneCountInString(s)) }
	tests := []struct {
		name     string
		in       string
		maxWidth float64
		want     string
	}{
		{"fits", "render", 100, "render"},
		{"exact", "render", 60, "render"},
		{"trimmed", "renderFrame", 50, "re…me"},
		{"ellipsis only", "renderFrame", 5, "…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimMid(tt.in, tt.maxWidth, perRune); got.Text != tt.want {
				t.Errorf("TrimMid(%q, %v) = %q, want %q", tt.in, tt.maxWidth, got.Text, tt.want)
			}
		})
	}
}

func TestRemapRanges(t *testing.T) {
	// "abcdefghij" trimmed to 5 runes: "ab…ij", ellipsis at bytes [2,5).
	tr := Trim("abcdefghij", 5)
	if tr.Text != "ab…ij" {
		t.Fatalf("Text = %q", tr.Text)
	}
	tests := []struct {
		name string
		in   [][2]int
		want [][2]int
	}{
		{"prefix", [][2]int{{0, 2}}, [][2]int{{0, 2}}},
		{"hidden", [][2]int{{4, 6}}, [][2]int{{2, 5}}},
		{"suffix", [][2]int{{9, 10}}, [][2]int{{6, 7}}},
		{"spanning", [][2]int{{1, 9}}, [][2]int{{1, 6}}},
		{"several", [][2]int{{0, 1}, {3, 4}, {8, 10}}, [][2]int{{0, 1}, {2, 7}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tr.RemapRanges(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("RemapRanges(%v) = %v, want %v", tt.in, got, tt.want)
			}
			for _, r := range got {
				if !utf8.ValidString(tr.Text[r[0]:r[1]]) {
					t.Errorf("range %v splits a rune in %q", r, tr.Text)
				}
			}
		})
	}

	untrimmed := Trim("abc", 10)
	if got := untrimmed.RemapRanges([][2]int{{0, 1}}); !reflect.DeepEqual(got, [][2]int{{0, 1}}) {
		t.Errorf("untrimmed remap = %v", got)
	}
}

func TestMeasurerCaches(t *testing.T) {
	calls := 0
	m := NewMeasurerFunc(func(s string) float64 {
		calls++
		return float64(len(s))
	})
	for i := 0; i < 3; i++ {
		if w := m.Width("hello"); w != 5 {
			t.Fatalf("Width = %v", w)
		}
	}
	if calls != 1 {
		t.Errorf("advance called %d times, want 1", calls)
	}
	if got := m.TrimMid("abcdefghij", 5).Text; got != "a…j" {
		t.Errorf("TrimMid = %q", got)
	}
}
