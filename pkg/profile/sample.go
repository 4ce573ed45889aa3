package profile

import (
	"math"
	"sort"

	"github.com/matzehuels/flamechart/pkg/errors"
)

// SampleProfileBuilder accumulates stack samples in append order.
//
// Two trees are built side by side: an append-order tree in which a child is
// reused only while it is the most recent child on the path, and a grouped
// tree in which identical paths always merge.
type SampleProfileBuilder struct {
	opts        options
	frames      FrameSet
	appendRoot  *CallTreeNode
	groupedRoot *CallTreeNode
	samples     []*CallTreeNode
	weights     []float64
	total       float64
}

// NewSampleProfileBuilder returns an empty builder.
func NewSampleProfileBuilder(opts ...Option) *SampleProfileBuilder {
	return &SampleProfileBuilder{
		opts:        buildOptions(opts),
		appendRoot:  NewRoot(),
		groupedRoot: NewRoot(),
	}
}

// AppendSample records stack (outermost frame first) with weight. An empty
// stack records idle time. Zero weights are ignored.
func (b *SampleProfileBuilder) AppendSample(stack []FrameInfo, weight float64) error {
	if math.IsNaN(weight) || math.IsInf(weight, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "sample weight must be finite, got %v", weight)
	}
	if weight < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "sample weight must not be negative, got %v", weight)
	}
	if weight == 0 {
		return nil
	}
	for _, fi := range stack {
		if fi.Key == "" {
			return errors.New(errors.ErrCodeInvalidInput, "frame key must not be empty")
		}
	}

	leaf := b.appendStack(stack, weight, true)
	b.appendStack(stack, weight, false)

	if n := len(b.samples); n > 0 && b.samples[n-1] == leaf {
		b.weights[n-1] += weight
	} else {
		b.samples = append(b.samples, leaf)
		b.weights = append(b.weights, weight)
	}
	b.total += weight
	return nil
}

// AppendIdle records a gap with no active frames.
func (b *SampleProfileBuilder) AppendIdle(weight float64) error {
	return b.AppendSample(nil, weight)
}

func (b *SampleProfileBuilder) appendStack(stack []FrameInfo, weight float64, appendOrder bool) *CallTreeNode {
	node := b.groupedRoot
	if appendOrder {
		node = b.appendRoot
	}
	node.AddToTotalWeight(weight)

	seen := make(map[*Frame]bool, len(stack))
	for _, fi := range stack {
		frame := b.frames.GetOrInsert(fi)

		var next *CallTreeNode
		if appendOrder {
			if n := len(node.Children); n > 0 {
				if last := node.Children[n-1]; !last.isFrozen() && last.Frame == frame {
					next = last
				}
			}
		} else {
			for _, c := range node.Children {
				if c.Frame == frame {
					next = c
					break
				}
			}
		}
		if next == nil {
			next = NewCallTreeNode(frame, node)
		}
		node = next
		node.AddToTotalWeight(weight)

		// Recursive frames count once per sample.
		if appendOrder && !seen[frame] {
			frame.AddToTotalWeight(weight)
			seen[frame] = true
		}
	}

	node.AddToSelfWeight(weight)
	if appendOrder {
		if !node.IsRoot() {
			node.Frame.AddToSelfWeight(weight)
		}
		// Anything below the leaf is closed; a later sample re-entering the
		// same frame is a new call.
		for _, c := range node.Children {
			c.freeze()
		}
	}
	return node
}

// Build finalizes the profile. The builder must not be used afterwards.
func (b *SampleProfileBuilder) Build() *SampleProfile {
	p := &SampleProfile{
		name:        b.opts.name,
		frames:      &b.frames,
		formatter:   b.opts.formatter,
		appendRoot:  b.appendRoot,
		groupedRoot: b.groupedRoot,
		samples:     b.samples,
		weights:     b.weights,
		minValue:    0,
		maxValue:    b.total,
	}
	if b.opts.minValue != nil {
		p.minValue = *b.opts.minValue
		p.maxValue = *b.opts.maxValue
	}
	if fn := b.opts.attrs; fn != nil {
		for _, root := range []*CallTreeNode{b.appendRoot, b.groupedRoot} {
			root.Walk(func(n *CallTreeNode) {
				if !n.IsRoot() {
					n.Attributes = fn(n)
				}
			})
		}
	}
	return p
}

// SampleProfile is an immutable stack-sample profile.
type SampleProfile struct {
	name        string
	frames      *FrameSet
	formatter   ValueFormatter
	appendRoot  *CallTreeNode
	groupedRoot *CallTreeNode
	samples     []*CallTreeNode
	weights     []float64
	minValue    float64
	maxValue    float64
}

func (p *SampleProfile) Name() string              { return p.name }
func (p *SampleProfile) Frames() *FrameSet         { return p.frames }
func (p *SampleProfile) Formatter() ValueFormatter { return p.formatter }
func (p *SampleProfile) MinValue() float64         { return p.minValue }
func (p *SampleProfile) MaxValue() float64         { return p.maxValue }

// TotalWeight is the sum of all sample weights, idle included.
func (p *SampleProfile) TotalWeight() float64 { return p.appendRoot.TotalWeight() }

// TotalNonIdleWeight excludes samples recorded with an empty stack.
func (p *SampleProfile) TotalNonIdleWeight() float64 {
	return p.groupedRoot.TotalWeight() - p.groupedRoot.SelfWeight()
}

// AppendOrderRoot returns the root of the chronological call tree.
func (p *SampleProfile) AppendOrderRoot() *CallTreeNode { return p.appendRoot }

// GroupedRoot returns the root of the merged call tree.
func (p *SampleProfile) GroupedRoot() *CallTreeNode { return p.groupedRoot }

// ForEachCall replays samples in append order. Frames shared by consecutive
// samples stay open; the value axis advances by each sample's weight,
// starting at MinValue.
func (p *SampleProfile) ForEachCall(openFrame, closeFrame func(*CallTreeNode, float64)) {
	var prev []*CallTreeNode
	open := make(map[*CallTreeNode]bool)
	value := p.minValue

	for i, top := range p.samples {
		// Lowest common ancestor with the previously open stack.
		var lca *CallTreeNode
		for lca = top; lca != nil && !lca.IsRoot() && !open[lca]; lca = lca.Parent {
		}
		for len(prev) > 0 && prev[len(prev)-1] != lca {
			n := prev[len(prev)-1]
			prev = prev[:len(prev)-1]
			delete(open, n)
			closeFrame(n, value)
		}

		var toOpen []*CallTreeNode
		for n := top; n != nil && !n.IsRoot() && n != lca; n = n.Parent {
			toOpen = append(toOpen, n)
		}
		for j := len(toOpen) - 1; j >= 0; j-- {
			openFrame(toOpen[j], value)
			prev = append(prev, toOpen[j])
			open[toOpen[j]] = true
		}
		value += p.weights[i]
	}
	for j := len(prev) - 1; j >= 0; j-- {
		closeFrame(prev[j], value)
	}
}

// ForEachCallGrouped walks the merged tree depth first with children ordered
// by descending total weight (ties keep first-seen order). Values start at 0
// and idle time is left out, so the axis ends at TotalNonIdleWeight.
func (p *SampleProfile) ForEachCallGrouped(openFrame, closeFrame func(*CallTreeNode, float64)) {
	var visit func(n *CallTreeNode, start float64)
	visit = func(n *CallTreeNode, start float64) {
		if !n.IsRoot() {
			openFrame(n, start)
		}
		children := make([]*CallTreeNode, len(n.Children))
		copy(children, n.Children)
		sort.SliceStable(children, func(i, j int) bool {
			return children[i].TotalWeight() > children[j].TotalWeight()
		})
		child := start
		for _, c := range children {
			visit(c, child)
			child += c.TotalWeight()
		}
		if !n.IsRoot() {
			closeFrame(n, start+n.TotalWeight())
		}
	}
	visit(p.groupedRoot, 0)
}
