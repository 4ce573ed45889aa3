package profile

// Attribute is a bit set of node decorations consumed by the renderer.
type Attribute uint8

const (
	// AttrNormal marks an undecorated node.
	AttrNormal Attribute = 0
	// AttrLongTask marks a top-level task whose total weight exceeds
	// [LongTaskThreshold].
	AttrLongTask Attribute = 1 << 0
)

// Has reports whether all bits of flag are set.
func (a Attribute) Has(flag Attribute) bool { return a&flag == flag && flag != 0 }

// LongTaskThreshold is the total weight (in microseconds) above which a root
// child is flagged [AttrLongTask].
const LongTaskThreshold = 50000

// AttributeFunc computes the attributes of a node once its weights are final.
type AttributeFunc func(*CallTreeNode) Attribute

// LongTaskAttributes flags root children heavier than [LongTaskThreshold].
func LongTaskAttributes(n *CallTreeNode) Attribute {
	if n.Parent != nil && n.Parent.IsRoot() && n.TotalWeight() > LongTaskThreshold {
		return AttrLongTask
	}
	return AttrNormal
}

// CallTreeNode is one occurrence of a frame in a call tree.
type CallTreeNode struct {
	Frame      *Frame
	Parent     *CallTreeNode
	Children   []*CallTreeNode
	Attributes Attribute

	// Start and End are set by interval producers only.
	Start, End float64

	selfWeight  float64
	totalWeight float64
	frozen      bool
}

// NewCallTreeNode creates a node for frame and appends it to parent's
// children when parent is non-nil.
func NewCallTreeNode(frame *Frame, parent *CallTreeNode) *CallTreeNode {
	n := &CallTreeNode{Frame: frame, Parent: parent}
	if parent != nil {
		parent.Children = append(parent.Children, n)
	}
	return n
}

// NewRoot returns an empty root node.
func NewRoot() *CallTreeNode { return &CallTreeNode{Frame: RootFrame} }

// IsRoot reports whether n is the root of its tree.
func (n *CallTreeNode) IsRoot() bool { return n.Parent == nil }

func (n *CallTreeNode) SelfWeight() float64  { return n.selfWeight }
func (n *CallTreeNode) TotalWeight() float64 { return n.totalWeight }

func (n *CallTreeNode) AddToSelfWeight(w float64)  { n.selfWeight += w }
func (n *CallTreeNode) AddToTotalWeight(w float64) { n.totalWeight += w }

// Depth returns the number of ancestors below the root.
func (n *CallTreeNode) Depth() int {
	d := 0
	for p := n.Parent; p != nil && !p.IsRoot(); p = p.Parent {
		d++
	}
	return d
}

// Walk visits n and its descendants in pre-order.
func (n *CallTreeNode) Walk(fn func(*CallTreeNode)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

func (n *CallTreeNode) freeze()        { n.frozen = true }
func (n *CallTreeNode) isFrozen() bool { return n.frozen }
