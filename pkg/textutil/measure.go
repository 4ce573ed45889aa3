package textutil

import "github.com/gogpu/gg/text"

const measureCacheLimit = 4096

// Measurer caches label widths. Labels repeat across frames, so most widths
// are served from the cache after the first render.
type Measurer struct {
	advance func(string) float64
	cache   *text.Cache[string, float64]
}

// NewMeasurer measures with face advances.
func NewMeasurer(face text.Face) *Measurer {
	return NewMeasurerFunc(func(s string) float64 {
		w, _ := text.Measure(s, face)
		return w
	})
}

// NewMeasurerFunc measures with fn.
func NewMeasurerFunc(fn func(string) float64) *Measurer {
	return &Measurer{advance: fn, cache: text.NewCache[string, float64](measureCacheLimit)}
}

// Width returns the advance width of s.
func (m *Measurer) Width(s string) float64 {
	return m.cache.GetOrCreate(s, func() float64 { return m.advance(s) })
}

// Len returns the number of cached widths.
func (m *Measurer) Len() int { return m.cache.Len() }

// TrimMid fits s into maxWidth using cached widths.
func (m *Measurer) TrimMid(s string, maxWidth float64) Trimmed {
	return TrimMid(s, maxWidth, m.Width)
}
