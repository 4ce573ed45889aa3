package tree

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/flamechart/pkg/flamechart"
	"github.com/matzehuels/flamechart/pkg/profile"
)

func chart() *flamechart.Flamechart {
	mk := func(name string) *profile.CallTreeNode {
		return profile.NewCallTreeNode(profile.NewFrame(profile.FrameInfo{Key: name, File: name + ".go", Line: 3}), nil)
	}
	main, parse, emit, tiny := mk("main"), mk("parse"), mk("emit"), mk("tiny")
	return flamechart.Build(flamechart.Source{
		Min: 0,
		Max: 100,
		Calls: func(openFrame, closeFrame func(*profile.CallTreeNode, float64)) {
			openFrame(main, 0)
			openFrame(parse, 0)
			openFrame(tiny, 0)
			closeFrame(tiny, 0.5)
			closeFrame(parse, 60)
			openFrame(emit, 60)
			closeFrame(emit, 90)
			closeFrame(main, 100)
		},
	})
}

func TestToDOT(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		want    []string
		notWant []string
	}{
		{
			name: "all frames",
			opts: Options{},
			want: []string{`label="main"`, `label="tiny"`, "f0 -> f1;", "f1 -> f2;", "f0 -> f3;"},
		},
		{
			name:    "min fraction prunes",
			opts:    Options{MinFraction: 0.01},
			want:    []string{`label="emit"`, "f0 -> f2;"},
			notWant: []string{`label="tiny"`},
		},
		{
			name:    "max depth",
			opts:    Options{MaxDepth: 1},
			want:    []string{`label="main"`},
			notWant: []string{`label="parse"`, "->"},
		},
		{
			name: "detailed",
			opts: Options{Detailed: true},
			want: []string{`label="parse\n60\nparse.go:3"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dot := ToDOT(chart(), tt.opts)
			if !strings.HasPrefix(dot, "digraph G {") {
				t.Fatalf("not a digraph:\n%s", dot)
			}
			for _, w := range tt.want {
				if !strings.Contains(dot, w) {
					t.Errorf("missing %q in:\n%s", w, dot)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(dot, w) {
					t.Errorf("unexpected %q in:\n%s", w, dot)
				}
			}
		})
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.50 200.25" xmlns="x"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.50 200.25" width="100" height="200"`) {
		t.Errorf("normalizeViewBox = %s", out)
	}
	if string(normalizeViewBox([]byte("<svg>"))) != "<svg>" {
		t.Error("svg without viewBox should be unchanged")
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(chart(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") || !strings.Contains(string(svg), "main") {
		t.Errorf("unexpected SVG output: %.200s", svg)
	}
}
