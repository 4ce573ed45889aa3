// Package cli implements the flamechart command-line interface.
//
// This package provides commands for rendering profiles as flame charts,
// searching and inspecting their layouts, exploring them interactively in the
// terminal, serving them over HTTP, and managing the artifact cache. The CLI
// is built using cobra and logs via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - render: Generate PNG flame charts or SVG/DOT call trees
//   - search: List frames matching a query
//   - inspect: Print per-layer statistics of a layout
//   - explore: Pan, zoom and search a flame chart in the terminal
//   - serve: Host profiles and render viewports over HTTP
//   - cache: Manage the artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
//
// # Example
//
//	import "github.com/matzehuels/flamechart/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a leveled logger stamping each line with the wall clock
// to the hundredth of a second.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times a command and the stages inside it. Not safe for
// concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
	last   time.Time
}

func newProgress(l *log.Logger) *progress {
	now := time.Now()
	return &progress{logger: l, start: now, last: now}
}

// stage logs at debug level how long the stage that just finished took.
func (p *progress) stage(name string, keyvals ...any) {
	now := time.Now()
	p.logger.Debug(name, append([]any{"took", now.Sub(p.last).Round(time.Microsecond)}, keyvals...)...)
	p.last = now
}

// done logs msg with the total elapsed time, e.g. "Render complete (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// loggerFromContext returns the logger attached by setup, or log.Default
// for contexts that never went through it.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
