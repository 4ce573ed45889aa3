package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/flamechart/pkg/pipeline"
)

func TestComputeLayerStats(t *testing.T) {
	path := writeFixture(t)
	c := testCLI()
	opts := pipeline.Options{Path: path}
	if err := c.applyConfig(&opts); err != nil {
		t.Fatal(err)
	}
	_, chart, err := c.layoutProfile(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}

	stats := computeLayerStats(chart)
	want := []struct {
		frames   int
		coverage float64
		widest   string
	}{
		{1, 1.0, "main"},
		{2, 1.0, "parse"},
		{1, 0.2, "lex"},
	}
	if len(stats) != len(want) {
		t.Fatalf("layers = %d, want %d", len(stats), len(want))
	}
	for i, w := range want {
		s := stats[i]
		if s.frames != w.frames || s.coverage != w.coverage || s.widest.Node.Frame.Name != w.widest {
			t.Errorf("layer %d = {%d %v %s}, want %+v", i, s.frames, s.coverage, s.widest.Node.Frame.Name, w)
		}
	}
}

func TestRunInspect(t *testing.T) {
	path := writeFixture(t)
	c := testCLI()
	opts := pipeline.Options{Path: path}
	if err := c.applyConfig(&opts); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := c.runInspect(context.Background(), &buf, opts, 2); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, s := range []string{"Layer", "Coverage", "Self", "render"} {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q:\n%s", s, out)
		}
	}
}
