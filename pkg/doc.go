// Package pkg provides the core libraries for flamechart, a flame chart
// layout and rendering engine.
//
// # Overview
//
// flamechart turns call events (sampled stacks, traced intervals, user
// timings) into layers of frames and draws interactive or static views of
// them. The pkg directory is organized into three areas:
//
//  1. Domain logic: [profile], [flamechart], [search], [view], [render]
//  2. Infrastructure: [cache], [config], [httputil], [observability], [errors]
//  3. Orchestration: [pipeline] (load → layout → render)
//
// # Architecture
//
// The typical data flow:
//
//	collapsed stacks / pprof / interval JSON
//	         ↓
//	    [profile] package (frames + call events)
//	         ↓
//	    [flamechart] package (layers of frames)
//	         ↓
//	    [view] package (viewport, zoom, selection, search)
//	         ↓
//	    [render] package (PNG, terminal, DOT/SVG tree)
//
// # Quick Start
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), cache.NewDefaultKeyer(), nil)
//	defer runner.Close()
//
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Path:    "cpu.collapsed",
//	    Kind:    "left-heavy",
//	    Formats: []string{"png"},
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("cpu.png", res.Artifacts["png"], 0o644)
//
// # Main Packages
//
// ## Domain Logic
//
// [profile] - Frames, call-tree nodes, value formatters and the producers
// for collapsed stacks, pprof and interval lists.
//
// [flamechart] - Builds the layered layout. Presets cover chronological
// stacks, left-heavy merged stacks, network intervals, grouped lanes and
// user timings.
//
// [search] - Fuzzy name and file engines plus exact key matching, with
// highlight ranges for labels.
//
// [view] - Interaction controller: viewport clamping, zoom, pan, focus
// tweens, hover, selection and search navigation.
//
// [render] - Draws a viewport into a gg context. Subpackages:
//
//   - [render/term]: colored cell grid for terminals
//   - [render/tree]: call tree as a Graphviz node-link diagram
//
// [geom] - Vectors, rectangles and affine transforms between config,
// logical and physical space.
//
// [textutil] - Middle ellipsis trimming and cached text measurement.
//
// [fonts] - Embedded label fonts.
//
// ## Infrastructure
//
// [pipeline] - Load, layout and render orchestration shared by the CLI and
// the HTTP host. Results are cached by content hash.
//
// [cache] - Cache backends: filesystem (CLI), Redis (server) and null.
//
// [config] - TOML configuration with XDG path resolution.
//
// [httputil] - Profile downloads with retries and size limits.
//
// [observability] - Hooks for render and request events.
//
// [errors] - Coded errors and their HTTP status mapping.
//
// [buildinfo] - Version metadata stamped at build time.
//
// # Testing
//
//	go test ./pkg/...
//	go test ./pkg/flamechart/...
//
// [profile]: https://pkg.go.dev/github.com/matzehuels/flamechart/pkg/profile
// [flamechart]: https://pkg.go.dev/github.com/matzehuels/flamechart/pkg/flamechart
// [search]: https://pkg.go.dev/github.com/matzehuels/flamechart/pkg/search
// [view]: https://pkg.go.dev/github.com/matzehuels/flamechart/pkg/view
// [render]: https://pkg.go.dev/github.com/matzehuels/flamechart/pkg/render
// [render/term]: https://pkg.go.dev/github.com/matzehuels/flamechart/pkg/render/term
// [render/tree]: https://pkg.go.dev/github.com/matzehuels/flamechart/pkg/render/tree
// [geom]: https://pkg.go.dev/github.com/matzehuels/flamechart/pkg/geom
// [textutil]: https://pkg.go.dev/github.com/matzehuels/flamechart/pkg/textutil
// [fonts]: https://pkg.go.dev/github.com/matzehuels/flamechart/pkg/fonts
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/flamechart/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/flamechart/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/flamechart/pkg/config
// [httputil]: https://pkg.go.dev/github.com/matzehuels/flamechart/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/flamechart/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/flamechart/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/flamechart/pkg/buildinfo
package pkg
