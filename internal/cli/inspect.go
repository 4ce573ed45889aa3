package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flamechart/pkg/flamechart"
	"github.com/matzehuels/flamechart/pkg/pipeline"
	"github.com/matzehuels/flamechart/pkg/profile"
	"github.com/matzehuels/flamechart/pkg/search"
)

// inspectCommand creates the inspect command, which summarizes a layout.
func (c *CLI) inspectCommand() *cobra.Command {
	var opts pipeline.Options
	var top int

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Print layer statistics and the heaviest frames of a profile",
		Example: `  flamechart inspect cpu.pb.gz
  flamechart inspect trace.json --kind network --top 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]
			if err := c.applyConfig(&opts); err != nil {
				return err
			}
			return c.runInspect(cmd.Context(), os.Stdout, opts, top)
		},
	}

	addProfileFlags(cmd.Flags(), &opts)
	cmd.Flags().IntVar(&top, "top", 10, "number of heaviest frames to list")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, w io.Writer, opts pipeline.Options, top int) error {
	loaded, chart, err := c.layoutProfile(ctx, opts)
	if err != nil {
		return err
	}

	name := loaded.Profile.Name()
	if name == "" {
		name = opts.Path
	}
	fmt.Fprintln(w, StyleTitle.Render(name))
	printKeyValue("Input", loaded.Input)
	printKeyValue("Layout", opts.Kind)
	printKeyValue("Range", fmt.Sprintf("%s … %s", chart.FormatValue(chart.MinValue()), chart.FormatValue(chart.MaxValue())))
	printKeyValue("Total", chart.FormatValue(chart.TotalWeight()))
	printKeyValue("Frames", fmt.Sprintf("%d unique, %d laid out", loaded.Profile.Frames().Len(), chart.FrameCount()))
	printKeyValue("Layers", strconv.Itoa(len(chart.Layers())))
	printNewline()

	fmt.Fprintln(w, layerTable(chart))
	if top > 0 {
		fmt.Fprintln(w, heaviestTable(loaded.Profile, top))
	}
	return nil
}

// layerStats summarizes one layer of a chart.
type layerStats struct {
	frames   int
	coverage float64 // fraction of the chart's range covered by frames
	widest   *flamechart.FlamechartFrame
}

func computeLayerStats(chart *flamechart.Flamechart) []layerStats {
	total := chart.TotalWeight()
	stats := make([]layerStats, len(chart.Layers()))
	for i, layer := range chart.Layers() {
		s := layerStats{frames: len(layer)}
		var covered float64
		for _, f := range layer {
			covered += f.Width()
			if s.widest == nil || f.Width() > s.widest.Width() {
				s.widest = f
			}
		}
		if total > 0 {
			s.coverage = covered / total
		}
		stats[i] = s
	}
	return stats
}

func layerTable(chart *flamechart.Flamechart) string {
	stats := computeLayerStats(chart)
	rows := make([][]string, len(stats))
	for i, s := range stats {
		widest := ""
		if s.widest != nil {
			widest = fmt.Sprintf("%s (%s)", search.DisplayName(s.widest.Node.Frame.Name), chart.FormatValue(s.widest.Width()))
		}
		rows[i] = []string{
			strconv.Itoa(i),
			strconv.Itoa(s.frames),
			fmt.Sprintf("%.1f%%", 100*s.coverage),
			widest,
		}
	}
	return statsTable([]string{"Layer", "Frames", "Coverage", "Widest"}, rows)
}

// heaviestTable lists the frames with the largest self weight.
func heaviestTable(p profile.Profile, n int) string {
	frames := append([]*profile.Frame(nil), p.Frames().Frames()...)
	sort.SliceStable(frames, func(i, j int) bool {
		return frames[i].SelfWeight() > frames[j].SelfWeight()
	})
	if len(frames) > n {
		frames = frames[:n]
	}

	format := p.Formatter()
	rows := make([][]string, len(frames))
	for i, f := range frames {
		rows[i] = []string{
			search.DisplayName(f.Name),
			format.Format(f.SelfWeight()),
			format.Format(f.TotalWeight()),
		}
	}
	return statsTable([]string{"Frame", "Self", "Total"}, rows)
}

func statsTable(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorMuted).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorFaint)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return listNormalStyle
			}
			return StyleNumber
		}).
		String()
}
