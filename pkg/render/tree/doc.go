// Package tree exports the call tree of a flame chart as a node-link diagram.
//
// # Overview
//
// Every laid-out frame becomes a box, colored like its flame chart
// rectangle, with an edge from its parent frame. The diagram is a compact
// way to read deep call stacks that are too narrow to label in the chart.
//
// # Usage
//
//	dot := tree.ToDOT(chart, tree.Options{Theme: render.LightTheme, MinFraction: 0.01})
//	svg, err := tree.RenderSVG(ctx, dot)
//
// # Options
//
//   - Detailed adds the formatted width and the source location to labels
//   - MaxDepth stops the export below a layer
//   - MinFraction drops frames narrower than a fraction of the chart
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG and
// PNG rendering.
package tree
