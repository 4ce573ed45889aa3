package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flamechart/pkg/pipeline"
	"github.com/matzehuels/flamechart/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output      string  // output file path (or base path for multiple outputs)
	formats     string  // comma-separated output formats
	timingsPath string  // JSON file with timing markers
	size        string  // image size WIDTHxHEIGHT in logical pixels
	left        float64 // viewport left edge, only used when the flag is set
	width       float64 // viewport width in profile units, only used when set
	noCache     bool
}

// renderCommand creates the render command for generating images.
func (c *CLI) renderCommand() *cobra.Command {
	var ro renderOpts
	var opts pipeline.Options

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a profile to a PNG flame chart or a call-tree diagram",
		Long: `Render lays out a profile and writes it as a PNG flame chart (png),
a Graphviz call tree (svg), or the DOT source of that tree (dot).

The profile may be a local file or an http(s) URL; downloads are cached.
The input format is detected from the file name: .pprof/.pb/.prof(.gz) are
pprof, .json is interval JSON, anything else is collapsed stacks.`,
		Example: `  flamechart render cpu.pb.gz --kind left-heavy
  flamechart render stacks.folded --search parse --focus-search -o parse.png
  flamechart render trace.json --kind grouped --size 1600x800 --dpr 2
  flamechart render stacks.folded --left 200 --width 50 --top 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]
			opts.Formats = parseFormats(ro.formats)
			if cmd.Flags().Changed("left") {
				opts.Left = &ro.left
			}
			if cmd.Flags().Changed("width") {
				opts.Span = &ro.width
			}
			if ro.size != "" {
				w, h, err := pipeline.ParseSize(ro.size)
				if err != nil {
					return err
				}
				opts.Width, opts.Height = w, h
			}
			if ro.timingsPath != "" {
				timings, err := readTimings(ro.timingsPath)
				if err != nil {
					return err
				}
				opts.Timings = timings
			}
			if err := c.applyConfig(&opts); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), opts, ro)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&ro.output, "output", "o", "", "output file (single format) or base path (multiple)")
	f.StringVarP(&ro.formats, "format", "f", "", "output format(s): png (default), svg, dot (comma-separated)")
	addProfileFlags(f, &opts)
	f.StringVar(&ro.size, "size", "", "image size in logical pixels, e.g. 1200x600")
	f.Float64Var(&opts.DPR, "dpr", 0, "device pixel ratio")
	f.StringVar(&opts.Theme, "theme", "", "theme: light, dark")
	f.Float64Var(&ro.left, "left", 0, "viewport left edge in profile units")
	f.Float64Var(&ro.width, "width", 0, "viewport width in profile units")
	f.Float64Var(&opts.Top, "top", 0, "rows to scroll down")
	f.StringVarP(&opts.Search, "search", "s", "", "highlight frames matching this query")
	f.StringVar(&opts.SearchMode, "search-mode", "", "search mode: name (default), file, key")
	f.BoolVar(&opts.FocusSearch, "focus-search", false, "zoom to the search matches")
	f.BoolVar(&opts.Detailed, "detailed", false, "include widths and source locations in call trees")
	f.StringVar(&ro.timingsPath, "timings", "", "JSON file with timing markers to draw")
	f.BoolVar(&ro.noCache, "no-cache", false, "disable the artifact cache")
	f.BoolVar(&opts.Refresh, "refresh", false, "re-render even when cached")

	return cmd
}

// readTimings loads timing markers: [{"name": "load", "value": 1200}].
func readTimings(path string) ([]render.Timing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read timings: %w", err)
	}
	var timings []render.Timing
	if err := json.Unmarshal(data, &timings); err != nil {
		return nil, fmt.Errorf("parse timings %s: %w", path, err)
	}
	return timings, nil
}

func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, ro renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	runner, err := c.newRunner(ctx, ro.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinner(ctx, os.Stderr, "Rendering "+filepath.Base(opts.Path)+"...")
	spinner.Start()
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			return ctx.Err()
		}
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	printSuccess("Rendered %s", filepath.Base(opts.Path))
	printStats(result.Stats, result.CacheInfo.RenderHit)

	base := basePath(ro.output, opts.Path)
	for _, format := range opts.Formats {
		path := base + "." + format
		if len(opts.Formats) == 1 && ro.output != "" {
			path = ro.output
		}
		if err := writeFile(path, result.Artifacts[format]); err != nil {
			return err
		}
		printFile(path)
	}
	prog.done("Render complete")
	printNextStep("Explore interactively", "flamechart explore "+opts.Path)
	return nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension (and a trailing .gz) from input.
// If output has a format extension, it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		input = strings.TrimSuffix(input, ".gz")
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeFile writes data to path, creating parent directories.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
