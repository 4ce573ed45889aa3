// Package flamechart lays out call events into layers of non-zero-width
// frames and answers the queries a viewer needs: value range, zoom limits,
// node lookup and search.
//
// # Layout variants
//
// Three builders consume a [DataSource] event stream:
//
//   - [Build]: strict call-stack nesting. A frame's depth is the number of
//     frames open when it closes.
//   - [BuildNonStack]: arbitrarily overlapping intervals (network waterfalls).
//     Closed entries stay on the stack as placeholders until a later open
//     starts after them, which keeps deeper rows stable.
//   - [BuildWithProcessor]: the caller assigns each node a row and interval.
//
// A [Flamechart] is immutable once built and can be shared between viewers.
//
// # Coordinates
//
// Config space uses the value axis for x and the layer index for y. Zoom is
// capped at 2^40 so a viewport one unit wide can still be panned within the
// largest profiles without the float64 mantissa swallowing the offset.
package flamechart
