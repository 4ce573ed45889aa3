package profile

// Profile is the producer contract the layout engine consumes.
//
// ForEachCall must emit properly ordered events: values are non-decreasing,
// and for stack-shaped data every open is matched by a close in LIFO order.
type Profile interface {
	Name() string
	Frames() *FrameSet
	MinValue() float64
	MaxValue() float64
	Formatter() ValueFormatter
	ForEachCall(openFrame, closeFrame func(node *CallTreeNode, value float64))
}

// GroupedProfile is a [Profile] that can also replay its merged call tree,
// heaviest children first.
type GroupedProfile interface {
	Profile
	TotalNonIdleWeight() float64
	ForEachCallGrouped(openFrame, closeFrame func(node *CallTreeNode, value float64))
}

// Option configures a profile builder.
type Option func(*options)

type options struct {
	name      string
	formatter ValueFormatter
	minValue  *float64
	maxValue  *float64
	attrs     AttributeFunc
}

func buildOptions(opts []Option) options {
	o := options{formatter: RawFormatter{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithName sets the profile's display name.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithFormatter sets the value formatter. Defaults to [RawFormatter].
func WithFormatter(f ValueFormatter) Option {
	return func(o *options) {
		if f != nil {
			o.formatter = f
		}
	}
}

// WithValueRange overrides the value range derived from the data.
func WithValueRange(lo, hi float64) Option {
	return func(o *options) {
		o.minValue = &lo
		o.maxValue = &hi
	}
}

// WithAttributes sets the function computing node attributes at build time.
func WithAttributes(fn AttributeFunc) Option {
	return func(o *options) { o.attrs = fn }
}
