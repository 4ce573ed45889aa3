// Package term draws a flame chart viewport as a grid of styled terminal
// cells. One text row is one flame chart layer and one column is one
// logical pixel.
package term

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/flamechart/pkg/flamechart"
	"github.com/matzehuels/flamechart/pkg/geom"
	"github.com/matzehuels/flamechart/pkg/render"
	"github.com/matzehuels/flamechart/pkg/search"
	"github.com/matzehuels/flamechart/pkg/textutil"
)

// Options configures a cell render.
type Options struct {
	Cols, Rows int
	Theme      render.Theme

	Search   flamechart.Matcher
	Selected *flamechart.FlamechartFrame
	Hovered  *flamechart.FlamechartFrame

	// TimelineCursor is a config-space x position, nil when hidden. It is
	// drawn over empty cells only.
	TimelineCursor *float64
}

// Grid holds which frame covers each cell after layout.
type Grid struct {
	cols, rows int
	firstLayer int
	cells      [][]*flamechart.FlamechartFrame
}

// Layout assigns frames to cells. Row r shows layer floor(viewport.Top())+r.
// A cell belongs to the first frame that covers its left edge; frames
// narrower than a cell still claim the cell they start in when it is free.
func Layout(chart *flamechart.Flamechart, viewport geom.Rect, cols, rows int) *Grid {
	g := &Grid{cols: cols, rows: rows, firstLayer: int(math.Floor(viewport.Top()))}
	g.cells = make([][]*flamechart.FlamechartFrame, rows)
	for r := range g.cells {
		g.cells[r] = make([]*flamechart.FlamechartFrame, cols)
	}
	if cols <= 0 || viewport.Width() <= 0 {
		return g
	}
	scale := float64(cols) / viewport.Width()
	layers := chart.Layers()
	for r := 0; r < rows; r++ {
		depth := g.firstLayer + r
		if depth < 0 || depth >= len(layers) {
			continue
		}
		row := g.cells[r]
		for _, f := range layers[depth] {
			if f.Start > viewport.Right() {
				break
			}
			if f.End < viewport.Left() {
				continue
			}
			c0 := int(math.Ceil((f.Start - viewport.Left()) * scale))
			c1 := int(math.Ceil((f.End - viewport.Left()) * scale))
			if c1 <= c0 {
				c0 = int(math.Floor((f.Start - viewport.Left()) * scale))
				c1 = c0 + 1
			}
			for c := max(c0, 0); c < min(c1, cols); c++ {
				if row[c] == nil {
					row[c] = f
				}
			}
		}
	}
	return g
}

// At returns the frame covering a cell, nil for empty or out-of-range cells.
func (g *Grid) At(col, row int) *flamechart.FlamechartFrame {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		return nil
	}
	return g.cells[row][col]
}

// Render draws viewport into opts.Cols by opts.Rows cells and returns the
// rows joined by newlines.
func Render(chart *flamechart.Flamechart, viewport geom.Rect, opts Options) string {
	th := opts.Theme
	if th.BgPrimary == "" {
		th = render.LightTheme.Merge(th)
	}
	g := Layout(chart, viewport, opts.Cols, opts.Rows)

	cursorCol := -1
	if opts.TimelineCursor != nil && viewport.Width() > 0 {
		cursorCol = int(math.Floor((*opts.TimelineCursor - viewport.Left()) * float64(opts.Cols) / viewport.Width()))
	}
	empty := lipgloss.NewStyle().Background(lipgloss.Color(th.BgPrimary))
	cursor := lipgloss.NewStyle().Foreground(lipgloss.Color(th.TimelineCursor)).Background(lipgloss.Color(th.BgPrimary))

	lines := make([]string, opts.Rows)
	for r := 0; r < opts.Rows; r++ {
		var b strings.Builder
		for c := 0; c < opts.Cols; {
			f := g.cells[r][c]
			end := c + 1
			for end < opts.Cols && g.cells[r][end] == f {
				end++
			}
			if f == nil {
				run := strings.Repeat(" ", end-c)
				if cursorCol >= c && cursorCol < end {
					b.WriteString(empty.Render(run[:cursorCol-c]))
					b.WriteString(cursor.Render("│"))
					b.WriteString(empty.Render(run[cursorCol-c+1:]))
				} else {
					b.WriteString(empty.Render(run))
				}
			} else {
				b.WriteString(cell(chart, f, end-c, th, opts))
			}
			c = end
		}
		lines[r] = b.String()
	}
	return strings.Join(lines, "\n")
}

// cell renders one frame spanning width columns.
func cell(chart *flamechart.Flamechart, f *flamechart.FlamechartFrame, width int, th render.Theme, opts Options) string {
	bg := th.ColorForBucket(chart.ColorBucket(f.Node.Frame))
	style := lipgloss.NewStyle().
		Background(lipgloss.Color(hex(bg.Color()))).
		Foreground(lipgloss.Color(th.FgPrimary))

	if opts.Search != nil {
		if opts.Search.MatchForFrame(f) != nil {
			style = style.Bold(true).Background(lipgloss.Color(th.SearchMatchPrimary)).Foreground(lipgloss.Color(th.SearchMatchText))
		} else {
			style = style.Foreground(lipgloss.Color(th.FgSecondary))
		}
	}
	if sel := opts.Selected; sel != nil && f.Node.Frame == sel.Node.Frame {
		style = style.Underline(true)
		if f == sel {
			style = style.Reverse(true)
		}
	}
	if f == opts.Hovered {
		style = style.Bold(true).Underline(true)
	}

	label := ""
	if width >= 3 {
		label = " " + textutil.Trim(search.DisplayName(f.Node.Frame.Name), width-2).Text
	}
	pad := width - lipgloss.Width(label)
	if pad < 0 {
		pad = 0
	}
	return style.Render(label + strings.Repeat(" ", pad))
}

func hex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
