// Package geom provides the coordinate math shared by the flame chart layout,
// controller and renderer.
//
// Three spaces are in play:
//
//   - config space: x is a position on the value axis, y is a fractional
//     layer index. Layout and viewport math happen here.
//   - physical space: device pixels of the drawing surface.
//   - logical space: host-reported, unscaled pixels (physical / DPR).
//
// [AffineTransform] maps between them. It is backed by a [gg.Matrix] so the
// renderer can hand it straight to a drawing context.
package geom
