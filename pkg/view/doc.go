// Package view holds the interaction state of one flame chart view.
//
// # Overview
//
// A [Controller] owns the viewport (a rectangle in config space: value
// along x, layer index along y) together with the hovered and selected
// frames, the timeline cursor and the active search. Host input arrives as
// plain event values ([PointerEvent], [WheelEvent]) in logical pixels and is
// converted to config space through the device pixel ratio and the
// viewport-to-physical transform.
//
// # Scheduling
//
// Nothing in this package starts goroutines. Re-renders and animations are
// queued on a [Scheduler], and the host decides when frames run:
// [ManualScheduler] advances a virtual clock (tests, one-shot renders) and
// [TickerScheduler] is pumped from a UI loop. Any number of state changes
// between two frames produce a single render.
//
// # Binding
//
// Controllers sharing a [BindingManager] mirror each other's horizontal
// viewport and timeline cursor. Applying a mirrored update never broadcasts
// it again.
package view
