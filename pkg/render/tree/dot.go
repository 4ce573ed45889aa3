package tree

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/flamechart/pkg/flamechart"
	"github.com/matzehuels/flamechart/pkg/profile"
	"github.com/matzehuels/flamechart/pkg/render"
	"github.com/matzehuels/flamechart/pkg/search"
)

// Options configures call-tree export.
type Options struct {
	// Detailed includes the formatted width and file:line in node labels.
	// When false, only the frame name is shown.
	Detailed bool

	// Theme colors the boxes. The zero value uses the light theme.
	Theme render.Theme

	// MaxDepth stops the export at this many layers. Zero means no limit.
	MaxDepth int

	// MinFraction drops frames narrower than this fraction of the chart's
	// total weight, together with their subtrees.
	MinFraction float64
}

// ToDOT converts the frame tree of chart to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG] or [RenderPNG].
//
// Long tasks are drawn with a bold red outline.
func ToDOT(chart *flamechart.Flamechart, opts Options) string {
	th := opts.Theme
	if th.BgPrimary == "" {
		th = render.LightTheme.Merge(th)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=14, fontname=\"Helvetica\", margin=\"0.2,0.1\"];\n")
	fmt.Fprintf(&buf, "  edge [color=%q];\n", th.Border)
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")

	ids := make(map[*flamechart.FlamechartFrame]string)
	minWidth := opts.MinFraction * chart.TotalWeight()

	var edges []string
	var visit func(f *flamechart.FlamechartFrame)
	visit = func(f *flamechart.FlamechartFrame) {
		if opts.MaxDepth > 0 && f.Depth >= opts.MaxDepth {
			return
		}
		if f.Width() < minWidth {
			return
		}
		id := "f" + strconv.Itoa(len(ids))
		ids[f] = id
		fmt.Fprintf(&buf, "  %s [%s];\n", id, strings.Join(fmtAttrs(chart, f, th, opts.Detailed), ", "))
		if p, ok := ids[f.Parent]; ok && f.Parent != nil {
			edges = append(edges, fmt.Sprintf("  %s -> %s;\n", p, id))
		}
		for _, c := range f.Children {
			visit(c)
		}
	}
	layers := chart.Layers()
	if len(layers) > 0 {
		for _, f := range layers[0] {
			visit(f)
		}
	}

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(chart *flamechart.Flamechart, f *flamechart.FlamechartFrame, detailed bool) string {
	name := search.DisplayName(f.Node.Frame.Name)
	if !detailed {
		return name
	}
	parts := []string{chart.FormatValue(f.Width())}
	if file := f.Node.Frame.File; file != "" {
		if line := f.Node.Frame.Line; line > 0 {
			file += ":" + strconv.Itoa(line)
		}
		parts = append(parts, file)
	}
	return name + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(chart *flamechart.Flamechart, f *flamechart.FlamechartFrame, th render.Theme, detailed bool) []string {
	fill := th.ColorForBucket(chart.ColorBucket(f.Node.Frame))
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(chart, f, detailed)),
		fmt.Sprintf("fillcolor=%q", hex(fill.R, fill.G, fill.B)),
		fmt.Sprintf("fontcolor=%q", th.FgPrimary),
	}
	if f.Node.Attributes.Has(profile.AttrLongTask) {
		attrs = append(attrs, fmt.Sprintf("color=%q", th.Warning), "penwidth=2")
	}
	return attrs
}

func hex(r, g, b float64) string {
	return fmt.Sprintf("#%02x%02x%02x", uint8(r*255+0.5), uint8(g*255+0.5), uint8(b*255+0.5))
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := renderDOT(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderDOT(ctx, dot, graphviz.PNG)
}

func renderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
