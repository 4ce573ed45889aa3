package profile

import (
	"math"
	"sort"

	"github.com/matzehuels/flamechart/pkg/errors"
)

// IntervalProfile holds independent intervals that may overlap in any way,
// such as network requests or user timings. Every interval is a direct child
// of the root. Intervals are appended first and replayed afterwards; the
// profile must not be appended to once it is being read.
type IntervalProfile struct {
	opts   options
	frames FrameSet
	root   *CallTreeNode
	nodes  []*CallTreeNode
	levels map[*CallTreeNode]int

	lo, hi float64
}

// NewIntervalProfile returns an empty interval profile.
func NewIntervalProfile(opts ...Option) *IntervalProfile {
	return &IntervalProfile{
		opts: buildOptions(opts),
		root: NewRoot(),
		lo:   math.Inf(1),
		hi:   math.Inf(-1),
	}
}

// Append records an interval for info spanning [start, end].
func (p *IntervalProfile) Append(info FrameInfo, start, end float64) (*CallTreeNode, error) {
	if info.Key == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "frame key must not be empty")
	}
	if math.IsNaN(start) || math.IsNaN(end) || math.IsInf(start, 0) || math.IsInf(end, 0) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "interval %q has non-finite bounds", info.Key)
	}
	if end < start {
		return nil, errors.New(errors.ErrCodeInvalidInput, "interval %q ends before it starts (%v < %v)", info.Key, end, start)
	}
	frame := p.frames.GetOrInsert(info)
	return p.appendNode(frame, start, end), nil
}

func (p *IntervalProfile) appendNode(frame *Frame, start, end float64) *CallTreeNode {
	n := NewCallTreeNode(frame, p.root)
	n.Start, n.End = start, end
	w := end - start
	n.AddToTotalWeight(w)
	n.AddToSelfWeight(w)
	frame.AddToTotalWeight(w)
	frame.AddToSelfWeight(w)
	p.root.AddToTotalWeight(w)
	if fn := p.opts.attrs; fn != nil {
		n.Attributes = fn(n)
	}
	p.nodes = append(p.nodes, n)
	p.lo = math.Min(p.lo, start)
	p.hi = math.Max(p.hi, end)
	return n
}

func (p *IntervalProfile) Name() string              { return p.opts.name }
func (p *IntervalProfile) Frames() *FrameSet         { return &p.frames }
func (p *IntervalProfile) Formatter() ValueFormatter { return p.opts.formatter }

// Root returns the shared parent of all intervals.
func (p *IntervalProfile) Root() *CallTreeNode { return p.root }

// Nodes returns intervals in append order.
func (p *IntervalProfile) Nodes() []*CallTreeNode { return p.nodes }

// MinValue is the configured minimum, or the earliest start (0 when empty).
func (p *IntervalProfile) MinValue() float64 {
	if p.opts.minValue != nil {
		return *p.opts.minValue
	}
	if len(p.nodes) == 0 {
		return 0
	}
	return p.lo
}

// MaxValue is the configured maximum, or the latest end (0 when empty).
func (p *IntervalProfile) MaxValue() float64 {
	if p.opts.maxValue != nil {
		return *p.opts.maxValue
	}
	if len(p.nodes) == 0 {
		return 0
	}
	return p.hi
}

type eventKind int

const (
	eventClose eventKind = iota
	eventOpen
)

type event struct {
	node  *CallTreeNode
	value float64
	kind  eventKind
	seq   int
}

// ForEachCall emits one open and one close per interval, sorted by value.
// At equal values closes come before opens. A zero-length interval is opened
// and immediately closed among the opens of its value.
func (p *IntervalProfile) ForEachCall(openFrame, closeFrame func(*CallTreeNode, float64)) {
	events := make([]event, 0, 2*len(p.nodes))
	for i, n := range p.nodes {
		events = append(events, event{node: n, value: n.Start, kind: eventOpen, seq: i})
		if n.End > n.Start {
			events = append(events, event{node: n, value: n.End, kind: eventClose, seq: i})
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.value != b.value {
			return a.value < b.value
		}
		if a.kind != b.kind {
			return a.kind < b.kind
		}
		return a.seq < b.seq
	})
	for _, e := range events {
		switch {
		case e.kind == eventClose:
			closeFrame(e.node, e.value)
		case e.node.End == e.node.Start:
			openFrame(e.node, e.value)
			closeFrame(e.node, e.value)
		default:
			openFrame(e.node, e.value)
		}
	}
}

// Grouped reports whether p was produced by [IntervalProfile.GroupBy].
func (p *IntervalProfile) Grouped() bool { return p.levels != nil }

// Level returns the lane assigned to n by [IntervalProfile.GroupBy].
func (p *IntervalProfile) Level(n *CallTreeNode) (int, bool) {
	l, ok := p.levels[n]
	return l, ok
}

// GroupBy returns a new profile in which intervals are split into lanes by
// key. Each group gets a header interval (KindGroup) spanning its members,
// followed by as many rows as its members need to avoid overlapping. Groups
// are ordered by first appearance, members are packed greedily by start.
func (p *IntervalProfile) GroupBy(key func(*CallTreeNode) string) *IntervalProfile {
	out := NewIntervalProfile()
	out.opts = p.opts
	out.levels = make(map[*CallTreeNode]int)

	sorted := make([]*CallTreeNode, len(p.nodes))
	copy(sorted, p.nodes)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var order []string
	members := make(map[string][]*CallTreeNode)
	for _, n := range sorted {
		k := key(n)
		if _, ok := members[k]; !ok {
			order = append(order, k)
		}
		members[k] = append(members[k], n)
	}

	level := 0
	for _, k := range order {
		group := members[k]
		start, end := math.Inf(1), math.Inf(-1)
		for _, n := range group {
			start = math.Min(start, n.Start)
			end = math.Max(end, n.End)
		}
		header := out.frames.GetOrInsert(FrameInfo{Key: "group:" + k, Name: k, Kind: KindGroup, Level: level, Group: k})
		out.levels[out.appendNode(header, start, end)] = level

		var laneEnds []float64
		for _, n := range group {
			lane := -1
			for i, e := range laneEnds {
				if e <= n.Start {
					lane = i
					break
				}
			}
			if lane < 0 {
				lane = len(laneEnds)
				laneEnds = append(laneEnds, n.End)
			} else {
				laneEnds[lane] = n.End
			}
			frame := out.frames.GetOrInsert(n.Frame.FrameInfo)
			c := out.appendNode(frame, n.Start, n.End)
			c.Attributes = n.Attributes
			out.levels[c] = level + 1 + lane
		}
		level += 1 + len(laneEnds)
	}
	return out
}
