package flamechart

import (
	"math"

	"github.com/matzehuels/flamechart/pkg/errors"
	"github.com/matzehuels/flamechart/pkg/profile"
)

// RootFilter decides whether a top-level node and its subtree are laid out.
type RootFilter func(*profile.CallTreeNode) bool

// Placement is the row and interval a [Processor] assigns to a node.
type Placement struct {
	Level      int
	Start, End float64
}

// Processor places a node explicitly. An error means the producer emitted a
// node the processor cannot classify.
type Processor func(*profile.CallTreeNode) (Placement, error)

// Option configures a layout builder.
type Option func(*buildOptions)

type buildOptions struct {
	rootFilter RootFilter
}

// WithRootFilter skips top-level nodes rejected by f, together with
// everything nested under them.
func WithRootFilter(f RootFilter) Option {
	return func(o *buildOptions) { o.rootFilter = f }
}

func newBuildOptions(opts []Option) buildOptions {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o buildOptions) rejects(n *profile.CallTreeNode) bool {
	return o.rootFilter != nil && !o.rootFilter(n)
}

// layers accumulates committed frames and the narrowest committed width.
type layers struct {
	rows     [][]*FlamechartFrame
	minWidth float64
}

func newLayers() *layers { return &layers{minWidth: math.Inf(1)} }

// commit appends f to row f.Depth. Frames without positive width are dropped
// and commit reports false.
func (l *layers) commit(f *FlamechartFrame) bool {
	w := f.End - f.Start
	if !(w > 0) {
		return false
	}
	for len(l.rows) <= f.Depth {
		l.rows = append(l.rows, nil)
	}
	l.rows[f.Depth] = append(l.rows[f.Depth], f)
	l.minWidth = math.Min(l.minWidth, w)
	return true
}

func (l *layers) chart(src DataSource) *Flamechart {
	mfw := l.minWidth
	if math.IsInf(mfw, 1) {
		mfw = 1
	}
	return newFlamechart(src, l.rows, mfw)
}

// Build lays out a properly nested event stream.
//
// Every open pushes a frame linked under the current stack top. Every close
// pops the top, sets its end and commits it to the row equal to the stack
// height after the pop. The root filter is consulted only while the stack is
// empty.
func Build(src DataSource, opts ...Option) *Flamechart {
	o := newBuildOptions(opts)
	out := newLayers()

	var stack []*FlamechartFrame
	skipped := 0 // open nodes inside a filtered subtree

	src.ForEachCall(
		func(node *profile.CallTreeNode, value float64) {
			if skipped > 0 {
				skipped++
				return
			}
			if len(stack) == 0 && o.rejects(node) {
				skipped = 1
				return
			}
			f := &FlamechartFrame{Node: node, Start: value, End: value}
			if n := len(stack); n > 0 {
				f.Parent = stack[n-1]
				f.Parent.Children = append(f.Parent.Children, f)
			}
			stack = append(stack, f)
		},
		func(node *profile.CallTreeNode, value float64) {
			if skipped > 0 {
				skipped--
				return
			}
			n := len(stack)
			if n == 0 {
				errors.Panic("layout: close of %q with an empty stack", node.Frame.Name)
			}
			f := stack[n-1]
			stack = stack[:n-1]
			f.End = value
			f.Depth = len(stack)
			if !out.commit(f) {
				f.detach()
			}
		},
	)
	return out.chart(src)
}

// BuildNonStack lays out intervals that may overlap without nesting.
//
// An open first evicts, from the top of the stack, entries that ended at or
// before its value, then pushes a still-open entry at depth len(stack). A
// close looks its entry up by node anywhere in the stack, sets the end and
// commits it at that entry's depth; the entry itself stays behind until it
// is evicted.
func BuildNonStack(src DataSource, opts ...Option) *Flamechart {
	o := newBuildOptions(opts)
	out := newLayers()

	var stack []*FlamechartFrame
	rejected := make(map[*profile.CallTreeNode]int)

	src.ForEachCall(
		func(node *profile.CallTreeNode, value float64) {
			for n := len(stack); n > 0 && stack[n-1].End <= value; n = len(stack) {
				stack = stack[:n-1]
			}
			if len(stack) == 0 && o.rejects(node) {
				rejected[node]++
				return
			}
			f := &FlamechartFrame{Node: node, Start: value, End: math.Inf(1), Depth: len(stack)}
			if n := len(stack); n > 0 {
				f.Parent = stack[n-1]
				f.Parent.Children = append(f.Parent.Children, f)
			}
			stack = append(stack, f)
		},
		func(node *profile.CallTreeNode, value float64) {
			if rejected[node] > 0 {
				rejected[node]--
				return
			}
			i := len(stack) - 1
			for ; i >= 0; i-- {
				if stack[i].Node == node && math.IsInf(stack[i].End, 1) {
					break
				}
			}
			if i < 0 {
				errors.Panic("layout: close of %q which is not open", node.Frame.Name)
			}
			f := stack[i]
			f.End = value
			if !out.commit(f) {
				f.detach()
			}
		},
	)
	return out.chart(src)
}

// BuildWithProcessor places every node where processor says. Nodes are not
// linked to each other. The root filter is applied to every node. A
// processor error is a producer/processor mismatch and panics.
func BuildWithProcessor(src DataSource, processor Processor, opts ...Option) *Flamechart {
	o := newBuildOptions(opts)
	out := newLayers()

	src.ForEachCall(
		func(node *profile.CallTreeNode, _ float64) {
			if o.rejects(node) {
				return
			}
			p, err := processor(node)
			if err != nil {
				panic(errors.Wrap(errors.ErrCodeInvariant, err, "layout: cannot place %q", node.Frame.Name))
			}
			if p.Level < 0 {
				errors.Panic("layout: negative level %d for %q", p.Level, node.Frame.Name)
			}
			out.commit(&FlamechartFrame{Node: node, Start: p.Start, End: p.End, Depth: p.Level})
		},
		func(*profile.CallTreeNode, float64) {},
	)
	return out.chart(src)
}
