// Package profile holds the data model consumed by the flame chart layout
// engine: frames, call-tree nodes, value formatters and a handful of
// reference producers.
//
// # Frames and nodes
//
// A [Frame] identifies a code location or task by key. Frames are owned by a
// [FrameSet], which deduplicates them by key so that weights accumulate on a
// single instance. A [CallTreeNode] is one occurrence of a frame at a given
// position in a call tree. Nodes carry [Attribute] flags (for example
// [AttrLongTask]) and, for interval data, explicit Start/End values.
//
// # Producers
//
// The layout engine only needs a value range, a value formatter and an
// ordered open/close event stream. This package ships three producers:
//
//   - [SampleProfile]: stacks appended in order, built by [SampleProfileBuilder].
//     ForEachCall replays them chronologically, ForEachCallGrouped walks the
//     merged ("left heavy") tree.
//   - [IntervalProfile]: independent intervals that may overlap arbitrarily,
//     used for network waterfalls and user timings.
//   - Importers: [DecodeCollapsed] for folded stack text and [ImportPprof] for
//     pprof protobuf profiles.
package profile
