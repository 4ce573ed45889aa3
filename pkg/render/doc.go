// Package render draws a flame chart viewport into a gg context.
//
// # Overview
//
// A [Renderer] runs two passes over one [gg.Context]:
//
//   - the raster pass delegates the colored frame rectangles to a [Raster]
//     backend ([SoftwareRaster] ships with the package);
//   - the overlay pass draws what changes with interaction: labels, search
//     highlights, selection and hover outlines, long-task decorations,
//     timing markers, the time grid and the timeline cursor.
//
// Overlay outlines are accumulated in [RectBatch]es and labels in
// [TextBatch]es. Each batch is flushed with a single fill or stroke.
//
// # Coordinates
//
// Rendering happens in physical pixels. The viewport is a rectangle in
// config space (value axis by layer index) and is mapped onto the whole
// target with [geom.BetweenRects]. A row is [LogicalFrameHeight] logical
// pixels tall, scaled by the device pixel ratio.
//
// # Feedback
//
// [Renderer.Render] returns a [Feedback] listing where timing markers ended
// up on screen so the caller can hit-test them.
package render
