package render

import (
	"math"
	"sort"

	"github.com/gogpu/gg"

	"github.com/matzehuels/flamechart/pkg/flamechart"
	"github.com/matzehuels/flamechart/pkg/geom"
)

// Raster draws the colored frame rectangles of a viewport. configSrc is
// mapped onto physicalDst. When outlines is set, adjacent frames are kept
// visually separate.
type Raster interface {
	Render(dst *gg.Context, physicalDst geom.Rect, configSrc geom.Rect, outlines bool) error
}

// SoftwareRaster fills frame rectangles with gg paths, one path per color
// bucket. Nothing is cached between calls.
type SoftwareRaster struct {
	chart *flamechart.Flamechart
	theme Theme
}

// NewSoftwareRaster returns a raster backend for chart colored with theme.
func NewSoftwareRaster(chart *flamechart.Flamechart, theme Theme) *SoftwareRaster {
	return &SoftwareRaster{chart: chart, theme: theme}
}

// SetTheme replaces the palette used by subsequent renders.
func (r *SoftwareRaster) SetTheme(t Theme) { r.theme = t }

// Render implements [Raster].
func (r *SoftwareRaster) Render(dst *gg.Context, physicalDst, configSrc geom.Rect, outlines bool) error {
	if configSrc.IsEmpty() || physicalDst.IsEmpty() {
		return nil
	}
	toPhys := geom.BetweenRects(configSrc, physicalDst)

	batches := make(map[float64]*RectBatch)
	for depth, layer := range r.chart.Layers() {
		d := float64(depth)
		if d+1 < configSrc.Top() || d > configSrc.Bottom() {
			continue
		}
		for _, f := range layer {
			if f.Start > configSrc.Right() {
				break
			}
			if f.End < configSrc.Left() {
				continue
			}
			phys := toPhys.TransformRect(f.ConfigRect())
			phys = snap(phys)
			if outlines {
				phys = geom.R(phys.Left(), phys.Top(), math.Max(phys.Width()-1, 0), math.Max(phys.Height()-1, 0))
			}
			if phys.Width() <= 0 || phys.Height() <= 0 {
				continue
			}
			bucket := r.chart.ColorBucket(f.Node.Frame)
			b, ok := batches[bucket]
			if !ok {
				b = &RectBatch{}
				batches[bucket] = b
			}
			b.Rect(phys)
		}
	}

	buckets := make([]float64, 0, len(batches))
	for k := range batches {
		buckets = append(buckets, k)
	}
	sort.Float64s(buckets)
	for _, k := range buckets {
		if err := batches[k].Fill(dst, r.theme.ColorForBucket(k)); err != nil {
			return err
		}
	}
	return nil
}

// snap rounds r's edges to whole pixels, keeping at least one pixel of width
// so very narrow frames stay visible.
func snap(r geom.Rect) geom.Rect {
	left, right := math.Round(r.Left()), math.Round(r.Right())
	top, bottom := math.Round(r.Top()), math.Round(r.Bottom())
	if right-left < 1 {
		right = left + 1
	}
	return geom.R(left, top, right-left, bottom-top)
}
