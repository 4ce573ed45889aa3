package pipeline

import (
	"strings"

	"github.com/matzehuels/flamechart/pkg/flamechart"
	"github.com/matzehuels/flamechart/pkg/profile"
)

// GenerateLayout builds the flame chart preset kind for p. Interval profiles
// asked for the grouped preset are split into lanes by FrameInfo.Group first.
func GenerateLayout(p profile.Profile, kind flamechart.Kind, rootFilter string) (*flamechart.Flamechart, error) {
	if ip, ok := p.(*profile.IntervalProfile); ok && kind == flamechart.KindGrouped && !ip.Grouped() {
		p = ip.GroupBy(func(n *profile.CallTreeNode) string { return n.Frame.Group })
	}
	return flamechart.ForProfile(kind, p, RootFilterFor(rootFilter))
}

// RootFilterFor keeps top-level nodes whose name contains substr, ignoring
// case. An empty substr keeps everything.
func RootFilterFor(substr string) flamechart.RootFilter {
	if substr == "" {
		return nil
	}
	needle := strings.ToLower(substr)
	return func(n *profile.CallTreeNode) bool {
		return strings.Contains(strings.ToLower(n.Frame.Name), needle)
	}
}
