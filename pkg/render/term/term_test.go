package term

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/flamechart/pkg/flamechart"
	"github.com/matzehuels/flamechart/pkg/geom"
	"github.com/matzehuels/flamechart/pkg/profile"
	"github.com/matzehuels/flamechart/pkg/render"
)

func chart() *flamechart.Flamechart {
	mk := func(name string) *profile.CallTreeNode {
		return profile.NewCallTreeNode(profile.NewFrame(profile.FrameInfo{Key: name}), nil)
	}
	a, b, c, d := mk("main"), mk("parse"), mk("emit"), mk("sliver")
	return flamechart.Build(flamechart.Source{
		Min: 0,
		Max: 100,
		Calls: func(openFrame, closeFrame func(*profile.CallTreeNode, float64)) {
			openFrame(a, 0)
			openFrame(b, 0)
			closeFrame(b, 50)
			openFrame(d, 50)
			closeFrame(d, 50.1)
			openFrame(c, 60)
			closeFrame(c, 100)
			closeFrame(a, 100)
		},
	})
}

func TestLayout(t *testing.T) {
	g := Layout(chart(), geom.R(0, 0, 100, 3), 10, 3)

	tests := []struct {
		col, row int
		want     string
	}{
		{0, 0, "main"},
		{9, 0, "main"},
		{0, 1, "parse"},
		{4, 1, "parse"},
		{5, 1, "sliver"},
		{6, 1, "emit"},
		{9, 1, "emit"},
		{0, 2, ""},
		{10, 0, ""},
		{-1, 0, ""},
	}
	for _, tt := range tests {
		got := ""
		if f := g.At(tt.col, tt.row); f != nil {
			got = f.Node.Frame.Name
		}
		if got != tt.want {
			t.Errorf("At(%d, %d) = %q, want %q", tt.col, tt.row, got, tt.want)
		}
	}
}

func TestLayoutScrolled(t *testing.T) {
	g := Layout(chart(), geom.R(50, 1, 50, 2), 10, 2)
	if f := g.At(0, 0); f == nil || f.Node.Frame.Name != "sliver" {
		t.Errorf("first cell = %v, want sliver", f)
	}
	if f := g.At(9, 0); f == nil || f.Node.Frame.Name != "emit" {
		t.Errorf("last cell = %v, want emit", f)
	}
	if f := g.At(0, 1); f != nil {
		t.Errorf("row below chart = %v, want empty", f)
	}
}

func TestRender(t *testing.T) {
	cursor := 55.0
	out := Render(chart(), geom.R(0, 0, 100, 3), Options{
		Cols:           40,
		Rows:           3,
		Theme:          render.DarkTheme,
		TimelineCursor: &cursor,
	})
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	for i, l := range lines {
		if w := lipgloss.Width(l); w != 40 {
			t.Errorf("line %d width = %d, want 40", i, w)
		}
	}
	if !strings.Contains(out, "main") || !strings.Contains(out, "parse") {
		t.Errorf("labels missing:\n%s", out)
	}
	if !strings.Contains(lines[2], "│") {
		t.Errorf("cursor missing from empty row: %q", lines[2])
	}
}

func TestScreen(t *testing.T) {
	s := NewScreen()
	if s.String() != "" {
		t.Fatal("new screen should be empty")
	}
	fb, err := s.Render(20, 3*render.LogicalFrameHeight, geom.R(0, 0, 100, 3), render.Props{Chart: chart(), DPR: 1})
	if err != nil || fb == nil {
		t.Fatalf("Render = %v, %v", fb, err)
	}
	lines := strings.Split(s.String(), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d rows, want 3", len(lines))
	}
	for i, l := range lines {
		if w := lipgloss.Width(l); w != 20 {
			t.Errorf("row %d width = %d, want 20", i, w)
		}
	}

	if _, err := s.Render(20, 50, geom.R(0, 0, 100, 2), render.Props{}); err != nil || s.String() != "" {
		t.Errorf("nil chart should clear the screen, got %q, %v", s.String(), err)
	}
}
