package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flamechart/pkg/flamechart"
	"github.com/matzehuels/flamechart/pkg/geom"
	"github.com/matzehuels/flamechart/pkg/pipeline"
	"github.com/matzehuels/flamechart/pkg/render"
	"github.com/matzehuels/flamechart/pkg/render/term"
	"github.com/matzehuels/flamechart/pkg/search"
	"github.com/matzehuels/flamechart/pkg/view"
)

const (
	// frameInterval paces animation ticks while the controller has frames queued.
	frameInterval = 16 * time.Millisecond
	// doubleClickWindow is the longest gap between two clicks of a double click.
	doubleClickWindow = 400 * time.Millisecond
	// chromeRows is the number of rows taken by the header and status lines.
	chromeRows = 2
)

// exploreCommand creates the explore command, an interactive terminal view.
func (c *CLI) exploreCommand() *cobra.Command {
	var opts pipeline.Options

	cmd := &cobra.Command{
		Use:   "explore [file]",
		Short: "Pan, zoom and search a flame chart in the terminal",
		Long: `Explore opens a full-screen flame chart. Drag or use the arrow keys to pan,
scroll or +/- to zoom, click to select, double-click or enter to focus a
frame, / to search, n/N to step through matches, 0 to reset and q to quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]
			if err := c.applyConfig(&opts); err != nil {
				return err
			}
			loaded, chart, err := c.layoutProfile(cmd.Context(), opts)
			if err != nil {
				return err
			}
			theme, err := pipeline.ThemeFor(opts)
			if err != nil {
				return err
			}

			name := loaded.Profile.Name()
			if name == "" {
				name = filepath.Base(opts.Path)
			}
			m := newExploreModel(chart, theme, name)
			defer m.ctrl.Close()

			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}

	addProfileFlags(cmd.Flags(), &opts)
	cmd.Flags().StringVar(&opts.Theme, "theme", "", "theme: light, dark")

	return cmd
}

// frameMsg carries the time of an animation tick.
type frameMsg time.Time

// exploreModel is the bubbletea model driving a view controller that draws
// into a terminal screen. One logical pixel is one column; one row is
// render.LogicalFrameHeight logical pixels.
type exploreModel struct {
	chart  *flamechart.Flamechart
	ctrl   *view.Controller
	screen *term.Screen
	sched  *view.TickerScheduler
	name   string

	width, height int
	ticking       bool

	searching bool
	query     string
	result    flamechart.SearchResult
	matchIdx  int

	lastClick    time.Time
	lastClickPos geom.Vec2
}

func newExploreModel(chart *flamechart.Flamechart, theme render.Theme, name string) *exploreModel {
	screen := term.NewScreen()
	sched := view.NewTickerScheduler(nil)
	ctrl := view.NewController(chart, screen, view.Props{}, view.WithScheduler(sched), view.WithTheme(theme))
	return &exploreModel{
		chart:  chart,
		ctrl:   ctrl,
		screen: screen,
		sched:  sched,
		name:   name,
	}
}

func (m *exploreModel) Init() tea.Cmd {
	return nil
}

func (m *exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		rows := max(msg.Height-chromeRows, 1)
		m.ctrl.Resize(float64(msg.Width), float64(rows)*render.LogicalFrameHeight, 1)

	case frameMsg:
		m.sched.Tick(time.Time(msg))
		m.ticking = false

	case tea.KeyMsg:
		if m.searching {
			m.updateSearchInput(msg)
		} else if quit := m.updateKey(msg); quit {
			return m, tea.Quit
		}

	case tea.MouseMsg:
		m.updateMouse(msg)
	}
	return m, m.scheduleTick()
}

// scheduleTick starts an animation tick when the controller has queued
// frames and no tick is in flight.
func (m *exploreModel) scheduleTick() tea.Cmd {
	if m.ticking || !m.sched.Pending() {
		return nil
	}
	m.ticking = true
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m *exploreModel) updateKey(msg tea.KeyMsg) (quit bool) {
	step := float64(max(m.width/10, 1))
	center := geom.V(float64(m.width)/2, 0)
	switch msg.String() {
	case "q", "ctrl+c":
		return true
	case "left", "h":
		m.ctrl.Pan(geom.V(-step, 0))
	case "right", "l":
		m.ctrl.Pan(geom.V(step, 0))
	case "up", "k":
		m.ctrl.Pan(geom.V(0, -render.LogicalFrameHeight))
	case "down", "j":
		m.ctrl.Pan(geom.V(0, render.LogicalFrameHeight))
	case "+", "=":
		m.ctrl.Zoom(center, 0.8)
	case "-", "_":
		m.ctrl.Zoom(center, 1.25)
	case "0":
		m.ctrl.ApplyViewport(m.chart.MinValue(), m.chart.TotalWeight())
	case "enter":
		m.ctrl.FocusFrame(m.ctrl.Selected())
	case "/":
		m.searching = true
		m.query = ""
	case "n":
		m.stepMatch(1)
	case "N":
		m.stepMatch(-1)
	case "esc":
		m.clearSearch()
	}
	return false
}

func (m *exploreModel) updateSearchInput(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.applySearch()
	case tea.KeyEsc:
		m.searching = false
		m.clearSearch()
	case tea.KeyBackspace:
		if r := []rune(m.query); len(r) > 0 {
			m.query = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.query += string(msg.Runes)
	}
}

func (m *exploreModel) applySearch() {
	if strings.TrimSpace(m.query) == "" {
		m.clearSearch()
		return
	}
	engine := search.New(search.ModeName, m.query)
	m.ctrl.SetSearch(engine)
	m.result = m.chart.Search(engine)
	m.matchIdx = -1
	m.ctrl.FocusMatches(m.result)
}

func (m *exploreModel) clearSearch() {
	m.query = ""
	m.result = flamechart.SearchResult{}
	m.ctrl.SetSearch(nil)
}

// stepMatch selects and focuses the next or previous match.
func (m *exploreModel) stepMatch(dir int) {
	n := len(m.result.Matches)
	if n == 0 {
		return
	}
	m.matchIdx = ((m.matchIdx+dir)%n + n) % n
	f := m.result.Matches[m.matchIdx]
	m.ctrl.SetSelected(f)
	m.ctrl.FocusFrame(f)
}

// cellPos maps a terminal cell to the logical position of its center.
func cellPos(x, y int) geom.Vec2 {
	return geom.V(float64(x)+0.5, (float64(y-1)+0.5)*render.LogicalFrameHeight)
}

func (m *exploreModel) updateMouse(msg tea.MouseMsg) {
	pos := cellPos(msg.X, msg.Y)
	inChart := msg.Y >= 1 && msg.Y <= m.height-chromeRows
	if !inChart && !m.ctrl.Dragging() {
		if msg.Action == tea.MouseActionMotion {
			m.ctrl.PointerLeave()
		}
		return
	}
	ev := view.PointerEvent{Pos: pos}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.ctrl.Wheel(view.WheelEvent{Pos: pos, DeltaY: -1, DeltaMode: view.DeltaLine})
		return
	case tea.MouseButtonWheelDown:
		m.ctrl.Wheel(view.WheelEvent{Pos: pos, DeltaY: 1, DeltaMode: view.DeltaLine})
		return
	case tea.MouseButtonWheelLeft:
		m.ctrl.Wheel(view.WheelEvent{Pos: pos, DeltaX: -1, DeltaMode: view.DeltaLine})
		return
	case tea.MouseButtonWheelRight:
		m.ctrl.Wheel(view.WheelEvent{Pos: pos, DeltaX: 1, DeltaMode: view.DeltaLine})
		return
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.ctrl.PointerDown(ev)
		}
	case tea.MouseActionMotion:
		m.ctrl.PointerMove(ev)
	case tea.MouseActionRelease:
		m.ctrl.PointerUp(ev)
		m.ctrl.Click(ev)
		now := time.Now()
		if now.Sub(m.lastClick) < doubleClickWindow && pos == m.lastClickPos {
			m.ctrl.DoubleClick(ev)
			now = time.Time{}
		}
		m.lastClick, m.lastClickPos = now, pos
	}
}

func (m *exploreModel) View() string {
	if m.width == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.screen.String())
	b.WriteString("\n")
	b.WriteString(m.status())
	return b.String()
}

func (m *exploreModel) header() string {
	vp := m.ctrl.Viewport()
	span := fmt.Sprintf("%s … %s", m.chart.FormatValue(vp.Left()-m.chart.MinValue()), m.chart.FormatValue(vp.Right()-m.chart.MinValue()))
	left := StyleTitle.Render(m.name) + "  " + StyleDim.Render(span)
	help := StyleDim.Render("drag/←→ pan  scroll/± zoom  / search  q quit")
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(help), 1)
	return left + strings.Repeat(" ", gap) + help
}

func (m *exploreModel) status() string {
	if m.searching {
		return StyleHighlight.Render("/") + m.query + StyleDim.Render("▏")
	}
	var parts []string
	if f := m.ctrl.Hovered(); f != nil {
		parts = append(parts, frameSummary(m.chart, f))
	} else if f := m.ctrl.Selected(); f != nil {
		parts = append(parts, StyleSuccess.Render("selected")+" "+frameSummary(m.chart, f))
	}
	if m.query != "" {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%q: %d matches", m.query, len(m.result.Matches))))
	}
	if err := m.ctrl.Err(); err != nil {
		parts = append(parts, StyleWarning.Render(err.Error()))
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}

// frameSummary formats a frame's name, width and location for the status line.
func frameSummary(chart *flamechart.Flamechart, f *flamechart.FlamechartFrame) string {
	s := StyleValue.Render(search.DisplayName(f.Node.Frame.Name)) + " " + StyleNumber.Render(chart.FormatValue(f.Width()))
	if loc := frameLocation(f); loc != "" {
		s += " " + StyleDim.Render(loc)
	}
	return s
}
