package render

import (
	"io"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/matzehuels/flamechart/pkg/errors"
	"github.com/matzehuels/flamechart/pkg/fonts"
	"github.com/matzehuels/flamechart/pkg/geom"
	"github.com/matzehuels/flamechart/pkg/textutil"
)

// faceSet holds the faces and width caches for one device pixel ratio.
type faceSet struct {
	regular        text.Face
	bold           text.Face
	regularMeasure *textutil.Measurer
	boldMeasure    *textutil.Measurer

	// minWidthToRender is the narrowest label slot worth drawing into.
	minWidthToRender float64
}

func newFaceSet(sz sizes) (*faceSet, error) {
	regular, err := fonts.Face(fonts.Regular, sz.fontSize)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load label font")
	}
	bold, err := fonts.Face(fonts.Bold, sz.timingFontSize)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load timing font")
	}
	fs := &faceSet{
		regular:        regular,
		bold:           bold,
		regularMeasure: textutil.NewMeasurer(regular),
		boldMeasure:    textutil.NewMeasurer(bold),
	}
	fs.minWidthToRender = fs.regularMeasure.Width("M" + textutil.Ellipsis + "M")
	return fs, nil
}

// Renderer draws viewports of a flame chart. It owns one gg context that is
// reused and resized across renders. A Renderer is not safe for concurrent
// use.
type Renderer struct {
	raster Raster
	dc     *gg.Context
	faces  map[float64]*faceSet
}

// NewRenderer returns a renderer delegating frame rectangles to raster.
// A nil raster skips the raster pass.
func NewRenderer(raster Raster) *Renderer {
	return &Renderer{raster: raster, faces: make(map[float64]*faceSet)}
}

func (r *Renderer) facesFor(sz sizes) (*faceSet, error) {
	if fs, ok := r.faces[sz.dpr]; ok {
		return fs, nil
	}
	fs, err := newFaceSet(sz)
	if err != nil {
		return nil, err
	}
	r.faces[sz.dpr] = fs
	return fs, nil
}

// Render draws viewport (config space) onto a width by height pixel target.
// An empty viewport skips rendering and returns nil feedback.
func (r *Renderer) Render(width, height int, viewport geom.Rect, props Props) (*Feedback, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidView, "render target %dx%d must have positive size", width, height)
	}
	if props.Chart == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "render needs a flame chart")
	}
	if viewport.IsEmpty() {
		return nil, nil
	}
	if props.Theme.BgPrimary == "" {
		props.Theme = LightTheme.Merge(props.Theme)
	}

	if r.dc == nil {
		r.dc = gg.NewContext(width, height)
	} else if r.dc.Width() != width || r.dc.Height() != height {
		if err := r.dc.Resize(width, height); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "resize render target")
		}
	}

	sz := newSizes(props.dpr())
	fs, err := r.facesFor(sz)
	if err != nil {
		return nil, err
	}

	physical := geom.R(0, 0, float64(width), float64(height))
	r.dc.ClearWithColor(gg.Hex(props.Theme.BgPrimary))

	if r.raster != nil {
		if err := r.raster.Render(r.dc, physical, viewport, props.Outlines); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "raster pass")
		}
	}

	o := &overlay{
		dc:       r.dc,
		props:    props,
		sz:       sz,
		faces:    fs,
		viewport: viewport,
		physical: physical,
		toPhys:   geom.BetweenRects(viewport, physical),
	}
	if err := o.frames(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "overlay frames")
	}
	areas, err := o.timings()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "overlay timings")
	}
	if err := o.grid(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "overlay grid")
	}
	if err := o.cursor(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "overlay cursor")
	}
	return &Feedback{TimingAreas: areas}, nil
}

// Context returns the context of the last render, nil before the first one.
func (r *Renderer) Context() *gg.Context { return r.dc }

// EncodePNG writes the last render as PNG.
func (r *Renderer) EncodePNG(w io.Writer) error {
	if r.dc == nil {
		return errors.New(errors.ErrCodeInvalidView, "nothing rendered yet")
	}
	return r.dc.EncodePNG(w)
}

// Close releases the render target.
func (r *Renderer) Close() error {
	if r.dc == nil {
		return nil
	}
	err := r.dc.Close()
	r.dc = nil
	return err
}
