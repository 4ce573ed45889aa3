package flamechart

import (
	"fmt"
	"math"

	"github.com/matzehuels/flamechart/pkg/errors"
	"github.com/matzehuels/flamechart/pkg/profile"
)

// Kind names a layout preset.
type Kind string

const (
	KindDefault   Kind = "default"    // chronological call stacks
	KindLeftHeavy Kind = "left-heavy" // merged stacks, heaviest first
	KindNetwork   Kind = "network"    // overlapping request intervals
	KindGrouped   Kind = "grouped"    // lanes assigned by IntervalProfile.GroupBy
	KindTiming    Kind = "timing"     // user timings, colored by category
)

// Kinds lists the presets accepted by [ForProfile].
var Kinds = []Kind{KindDefault, KindLeftHeavy, KindNetwork, KindGrouped, KindTiming}

// Timing categories recognized by the timing preset through FrameInfo.Group.
const (
	TimingComponentRender = "component render"
	TimingMeasure         = "measure"
	TimingNativeEvent     = "native event"
	TimingSuspenseEvent   = "suspense event"
)

var timingBuckets = map[string]float64{
	TimingComponentRender: 160,
	TimingMeasure:         200,
	TimingNativeEvent:     50,
	TimingSuspenseEvent:   90,
}

// ColorBuckets spreads frames over buckets 0..255 in file+name order, so
// frames from the same file get neighbouring colors.
func ColorBuckets(set *profile.FrameSet) func(*profile.Frame) float64 {
	frames := set.SortedByFileAndName()
	buckets := make(map[string]float64, len(frames))
	for i, f := range frames {
		buckets[f.Key] = math.Floor(255 * float64(i) / float64(len(frames)))
	}
	return func(f *profile.Frame) float64 { return buckets[f.Key] }
}

// ParseKind validates a preset name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown flamechart kind %q (want one of %v)", s, Kinds)
}

type leveler interface {
	Grouped() bool
	Level(*profile.CallTreeNode) (int, bool)
}

// ForProfile builds the flame chart preset kind for p.
func ForProfile(kind Kind, p profile.Profile, filter RootFilter) (*Flamechart, error) {
	var opts []Option
	if filter != nil {
		opts = append(opts, WithRootFilter(filter))
	}
	src := Source{
		Min:       p.MinValue(),
		Max:       p.MaxValue(),
		Formatter: p.Formatter(),
		Bucket:    ColorBuckets(p.Frames()),
		Calls:     p.ForEachCall,
	}

	switch kind {
	case KindDefault, "":
		return Build(src, opts...), nil

	case KindLeftHeavy:
		gp, ok := p.(profile.GroupedProfile)
		if !ok {
			return nil, errors.New(errors.ErrCodeUnsupported, "%s layout needs a stack-sample profile", kind)
		}
		src.Min, src.Max = 0, gp.TotalNonIdleWeight()
		src.Calls = gp.ForEachCallGrouped
		return Build(src, opts...), nil

	case KindNetwork:
		src.Bucket = func(*profile.Frame) float64 { return 1 }
		return BuildNonStack(src, opts...), nil

	case KindTiming:
		src.Bucket = func(f *profile.Frame) float64 { return timingBuckets[f.Group] }
		return BuildNonStack(src, opts...), nil

	case KindGrouped:
		lv, ok := p.(leveler)
		if !ok || !lv.Grouped() {
			return nil, errors.New(errors.ErrCodeUnsupported, "%s layout needs a grouped interval profile", kind)
		}
		src.Bucket = func(f *profile.Frame) float64 { return float64(f.Level) }
		processor := func(n *profile.CallTreeNode) (Placement, error) {
			level, ok := lv.Level(n)
			if !ok {
				return Placement{}, fmt.Errorf("node %q has no lane", n.Frame.Name)
			}
			return Placement{Level: level, Start: n.Start, End: n.End}, nil
		}
		return BuildWithProcessor(src, processor, opts...), nil

	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown flamechart kind %q", kind)
	}
}
