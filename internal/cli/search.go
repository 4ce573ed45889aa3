package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flamechart/pkg/flamechart"
	"github.com/matzehuels/flamechart/pkg/pipeline"
	"github.com/matzehuels/flamechart/pkg/search"
)

// searchCommand creates the search command, which lists matching frames.
func (c *CLI) searchCommand() *cobra.Command {
	var opts pipeline.Options
	var limit int

	cmd := &cobra.Command{
		Use:   "search [file] [query]",
		Short: "List frames matching a query",
		Long: `Search lays out a profile and lists the frames whose name (or file, or key)
matches the query, in layer order. The best match is marked.`,
		Example: `  flamechart search cpu.pb.gz parse
  flamechart search stacks.folded lexer.go --mode file`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]
			opts.Search = args[1]
			if err := c.applyConfig(&opts); err != nil {
				return err
			}
			return c.runSearch(cmd.Context(), os.Stdout, opts, limit)
		},
	}

	addProfileFlags(cmd.Flags(), &opts)
	cmd.Flags().StringVarP(&opts.SearchMode, "mode", "m", "", "search mode: name (default), file, key")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum matches to list (0 for all)")

	return cmd
}

func (c *CLI) runSearch(ctx context.Context, w io.Writer, opts pipeline.Options, limit int) error {
	_, chart, err := c.layoutProfile(ctx, opts)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(nil, nil, c.Logger)
	res, err := runner.Search(chart, search.Mode(opts.SearchMode), opts.Search)
	if err != nil {
		return err
	}
	if res.Empty() {
		printWarning("No frames match %q", opts.Search)
		return nil
	}

	fmt.Fprintln(w, searchTable(chart, res, limit))
	shown := len(res.Matches)
	if limit > 0 && shown > limit {
		shown = limit
	}
	printDetail("%d of %d matches", shown, len(res.Matches))
	return nil
}

// searchTable renders matches as a table: depth, name, location, start and
// width in profile units.
func searchTable(chart *flamechart.Flamechart, res flamechart.SearchResult, limit int) string {
	matches := res.Matches
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	rows := make([][]string, 0, len(matches))
	for _, f := range matches {
		marker := "  "
		if f == res.Best {
			marker = "▸ "
		}
		rows = append(rows, []string{
			marker,
			strconv.Itoa(f.Depth),
			search.DisplayName(f.Node.Frame.Name),
			frameLocation(f),
			chart.FormatValue(f.Start - chart.MinValue()),
			chart.FormatValue(f.Width()),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorMuted).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorFaint)).
		Headers("", "Depth", "Frame", "Location", "Start", "Width").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < len(matches) && matches[row] == res.Best {
				return listSelectedStyle
			}
			if col == 3 {
				return listDimStyle
			}
			return listNormalStyle
		}).
		String()
}

// frameLocation formats file:line, or the empty string for frames without
// a source file.
func frameLocation(f *flamechart.FlamechartFrame) string {
	info := f.Node.Frame.FrameInfo
	switch {
	case info.File == "":
		return ""
	case info.Line > 0:
		return fmt.Sprintf("%s:%d", info.File, info.Line)
	default:
		return info.File
	}
}
