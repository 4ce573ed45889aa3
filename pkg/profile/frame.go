package profile

import "sort"

// FrameKind tags what a frame represents. Producers resolve it when the frame
// is created so consumers can branch on it without type assertions.
type FrameKind int

const (
	// KindCall is a regular function call frame.
	KindCall FrameKind = iota
	// KindTask is a scheduler task (main-thread task, event handler).
	KindTask
	// KindGroup is a synthetic lane header grouping other frames.
	KindGroup
	// KindTiming is a user timing or mark.
	KindTiming
	// KindRequest is a network request.
	KindRequest
)

var kindNames = map[FrameKind]string{
	KindCall:    "call",
	KindTask:    "task",
	KindGroup:   "group",
	KindTiming:  "timing",
	KindRequest: "request",
}

func (k FrameKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// FrameInfo describes a frame before insertion into a [FrameSet].
type FrameInfo struct {
	Key  string    // Identity within a FrameSet (required)
	Name string    // Display name
	File string    // Source file, if known
	Line int       // 1-based line, 0 when unknown
	Col  int       // 1-based column, 0 when unknown
	Kind FrameKind // What the frame represents

	// Level and Group assign the frame to a lane in grouped layouts.
	// Level is the row index, Group the lane label.
	Level int
	Group string
}

// Frame is a deduplicated code location or task. Identity fields never change
// after insertion; weights accumulate while a profile is being built.
type Frame struct {
	FrameInfo

	selfWeight  float64
	totalWeight float64
}

// NewFrame returns a frame for info. Most callers should go through
// [FrameSet.GetOrInsert] instead so weights land on a shared instance.
func NewFrame(info FrameInfo) *Frame {
	if info.Name == "" {
		info.Name = info.Key
	}
	return &Frame{FrameInfo: info}
}

func (f *Frame) SelfWeight() float64  { return f.selfWeight }
func (f *Frame) TotalWeight() float64 { return f.totalWeight }

func (f *Frame) AddToSelfWeight(w float64)  { f.selfWeight += w }
func (f *Frame) AddToTotalWeight(w float64) { f.totalWeight += w }

// RootFrame is the sentinel frame of every call-tree root.
var RootFrame = NewFrame(FrameInfo{Key: "(root)", Name: "(root)"})

// FrameSet owns frames keyed by [FrameInfo.Key], preserving insertion order.
// The zero value is ready to use.
type FrameSet struct {
	byKey map[string]*Frame
	order []*Frame
}

// GetOrInsert returns the frame registered under info.Key, creating it on
// first use. Info of later calls with the same key is ignored.
func (s *FrameSet) GetOrInsert(info FrameInfo) *Frame {
	if s.byKey == nil {
		s.byKey = make(map[string]*Frame)
	}
	if f, ok := s.byKey[info.Key]; ok {
		return f
	}
	f := NewFrame(info)
	s.byKey[info.Key] = f
	s.order = append(s.order, f)
	return f
}

// Get looks up a frame by key.
func (s *FrameSet) Get(key string) (*Frame, bool) {
	f, ok := s.byKey[key]
	return f, ok
}

// Len returns the number of frames in the set.
func (s *FrameSet) Len() int { return len(s.order) }

// Frames returns the frames in insertion order. The slice must not be modified.
func (s *FrameSet) Frames() []*Frame { return s.order }

// ForEach calls fn for each frame in insertion order.
func (s *FrameSet) ForEach(fn func(*Frame)) {
	for _, f := range s.order {
		fn(f)
	}
}

// SortedByFileAndName returns a copy of the frames ordered by file then name.
func (s *FrameSet) SortedByFileAndName() []*Frame {
	out := make([]*Frame, len(s.order))
	copy(out, s.order)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].File+out[i].Name < out[j].File+out[j].Name
	})
	return out
}
