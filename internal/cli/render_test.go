package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/flamechart/pkg/config"
	"github.com/matzehuels/flamechart/pkg/pipeline"
)

const collapsedFixture = "main;parse 3\nmain;parse;lex 2\nmain;render 5\n"

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stacks.folded")
	if err := os.WriteFile(path, []byte(collapsedFixture), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testCLI() *CLI {
	c := New(io.Discard, LogInfo)
	c.Config.Cache.Backend = config.BackendNone
	return c
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to png", "", []string{"png"}},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "png,dot", []string{"png", "dot"}},
		{"spaces and empties", " png , ,svg", []string{"png", "svg"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i, v := range got {
				if v != tt.want[i] {
					t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
				}
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{"derived from input", "", "profiles/cpu.folded", "profiles/cpu"},
		{"gzip input", "", "cpu.pb.gz", "cpu"},
		{"output with format ext", "out/chart.png", "cpu.folded", "out/chart"},
		{"output without ext", "out/chart", "cpu.folded", "out/chart"},
		{"output with other ext", "chart.v2", "cpu.folded", "chart.v2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.input); got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestApplyConfig(t *testing.T) {
	c := testCLI()
	c.Config.View.Width = 640
	c.Config.View.Kind = "left-heavy"
	c.Config.Theme.Name = "dark"
	c.Config.Theme.Colors.BgPrimary = "#000000"

	opts := pipeline.Options{Height: 300}
	if err := c.applyConfig(&opts); err != nil {
		t.Fatal(err)
	}
	if opts.Width != 640 || opts.Height != 300 || opts.Kind != "left-heavy" || opts.Theme != "dark" {
		t.Errorf("options = %+v", opts)
	}
	if opts.ThemeColors == nil || opts.ThemeColors.BgPrimary != "#000000" {
		t.Errorf("theme colors = %+v", opts.ThemeColors)
	}

	explicit := pipeline.Options{Theme: "light"}
	if err := c.applyConfig(&explicit); err != nil {
		t.Fatal(err)
	}
	if explicit.ThemeColors != nil {
		t.Error("config colors should not apply to an explicitly chosen theme")
	}

	bad := pipeline.Options{Kind: "sideways"}
	if err := c.applyConfig(&bad); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestRunRender(t *testing.T) {
	path := writeFixture(t)
	out := t.TempDir()

	tests := []struct {
		name    string
		formats []string
		output  string
		want    []string
	}{
		{"single png to output", []string{"png"}, filepath.Join(out, "one.png"), []string{"one.png"}},
		{"multiple to base", []string{"png", "dot"}, filepath.Join(out, "multi"), []string{"multi.png", "multi.dot"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testCLI()
			opts := pipeline.Options{Path: path, Formats: tt.formats, Width: 200, Height: 100}
			if err := c.applyConfig(&opts); err != nil {
				t.Fatal(err)
			}
			if err := c.runRender(context.Background(), opts, renderOpts{output: tt.output}); err != nil {
				t.Fatalf("runRender: %v", err)
			}
			for _, name := range tt.want {
				data, err := os.ReadFile(filepath.Join(out, name))
				if err != nil {
					t.Fatalf("missing output %s: %v", name, err)
				}
				if filepath.Ext(name) == ".png" && !bytes.HasPrefix(data, []byte("\x89PNG")) {
					t.Errorf("%s is not a PNG", name)
				}
			}
		})
	}
}

func TestRunRenderMissingFile(t *testing.T) {
	c := testCLI()
	opts := pipeline.Options{Path: filepath.Join(t.TempDir(), "missing.folded")}
	if err := c.applyConfig(&opts); err != nil {
		t.Fatal(err)
	}
	if err := c.runRender(context.Background(), opts, renderOpts{}); err == nil {
		t.Error("expected error for a missing profile")
	}
}

func TestReadTimings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timings.json")
	if err := os.WriteFile(path, []byte(`[{"name":"load","value":4}]`), 0644); err != nil {
		t.Fatal(err)
	}
	timings, err := readTimings(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(timings) != 1 || timings[0].Name != "load" || timings[0].Value != 4 {
		t.Errorf("timings = %+v", timings)
	}

	if err := os.WriteFile(path, []byte(`{`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := readTimings(path); err == nil {
		t.Error("expected error for malformed timings")
	}
}
