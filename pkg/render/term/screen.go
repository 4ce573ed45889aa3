package term

import (
	"math"

	"github.com/matzehuels/flamechart/pkg/geom"
	"github.com/matzehuels/flamechart/pkg/render"
)

// Screen adapts cell rendering to the renderer a view controller drives.
// Width is taken as columns and height as rows of LogicalFrameHeight·DPR
// pixels, so a controller resized to (cols, rows·LogicalFrameHeight, 1)
// maps one logical pixel to one column.
type Screen struct {
	out string
}

// NewScreen returns an empty screen.
func NewScreen() *Screen { return &Screen{} }

// Render draws props.Chart into the screen buffer.
func (s *Screen) Render(width, height int, viewport geom.Rect, props render.Props) (*render.Feedback, error) {
	dpr := props.DPR
	if dpr <= 0 {
		dpr = 1
	}
	rows := int(math.Round(float64(height) / (render.LogicalFrameHeight * dpr)))
	opts := Options{
		Cols:           width,
		Rows:           rows,
		Theme:          props.Theme,
		Search:         props.Search,
		Selected:       props.Selected,
		Hovered:        props.Hovered,
		TimelineCursor: props.TimelineCursor,
	}
	if props.Chart == nil {
		s.out = ""
		return &render.Feedback{}, nil
	}
	s.out = Render(props.Chart, viewport, opts)
	return &render.Feedback{}, nil
}

// String returns the last rendered frame.
func (s *Screen) String() string { return s.out }
