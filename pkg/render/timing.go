package render

import (
	"sort"

	"github.com/matzehuels/flamechart/pkg/geom"
)

// TimingStyle selects how a timing marker is drawn.
type TimingStyle string

const (
	// TimingPoint draws a small pin at the timing's value.
	TimingPoint TimingStyle = "point"
	// TimingLabel draws a dashed guide with a name pill.
	TimingLabel TimingStyle = "label"
)

// Timing is a named marker on the value axis, such as a page milestone.
type Timing struct {
	Name  string      `json:"name"`
	Value float64     `json:"value"`
	Color string      `json:"color"`
	Style TimingStyle `json:"style"`
}

// TimingArea is where a timing marker was drawn, in physical pixels.
type TimingArea struct {
	Timing Timing
	Area   geom.Rect
}

// Feedback is returned by a render for hit-testing.
type Feedback struct {
	TimingAreas []TimingArea
}

// TimingAt returns the last-drawn timing whose area contains p.
func (f *Feedback) TimingAt(p geom.Vec2) (Timing, bool) {
	if f == nil {
		return Timing{}, false
	}
	for i := len(f.TimingAreas) - 1; i >= 0; i-- {
		if f.TimingAreas[i].Area.Contains(p) {
			return f.TimingAreas[i].Timing, true
		}
	}
	return Timing{}, false
}

// orderTimings returns label timings then point timings, each sorted by
// value. The input is not modified.
func orderTimings(timings []Timing) []Timing {
	sorted := make([]Timing, len(timings))
	copy(sorted, timings)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Value < sorted[j].Value })

	out := make([]Timing, 0, len(sorted))
	for _, t := range sorted {
		if t.Style != TimingPoint {
			out = append(out, t)
		}
	}
	for _, t := range sorted {
		if t.Style == TimingPoint {
			out = append(out, t)
		}
	}
	return out
}
