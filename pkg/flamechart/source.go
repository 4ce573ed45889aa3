package flamechart

import "github.com/matzehuels/flamechart/pkg/profile"

// CallFunc replays a producer's events. openFrame and closeFrame receive the
// node and the value at which the event happens.
type CallFunc func(openFrame, closeFrame func(node *profile.CallTreeNode, value float64))

// DataSource is what the layout engine needs from a producer.
type DataSource interface {
	MinValue() float64
	MaxValue() float64
	FormatValue(v float64) string
	ColorBucket(f *profile.Frame) float64
	ForEachCall(openFrame, closeFrame func(node *profile.CallTreeNode, value float64))
}

// Source adapts plain values and funcs to [DataSource].
type Source struct {
	Min, Max  float64
	Formatter profile.ValueFormatter
	Bucket    func(*profile.Frame) float64
	Calls     CallFunc
}

var _ DataSource = Source{}

func (s Source) MinValue() float64 { return s.Min }
func (s Source) MaxValue() float64 { return s.Max }

func (s Source) FormatValue(v float64) string {
	if s.Formatter == nil {
		return profile.RawFormatter{}.Format(v)
	}
	return s.Formatter.Format(v)
}

func (s Source) ColorBucket(f *profile.Frame) float64 {
	if s.Bucket == nil {
		return 0
	}
	return s.Bucket(f)
}

func (s Source) ForEachCall(openFrame, closeFrame func(*profile.CallTreeNode, float64)) {
	if s.Calls != nil {
		s.Calls(openFrame, closeFrame)
	}
}
