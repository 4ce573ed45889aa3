package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/flamechart/pkg/pipeline"
)

// Terminal palette. The warm tones follow the light theme's frame ramp so
// CLI output and explore view read as one tool.
var (
	colorFlame = lipgloss.Color("209") // frame orange: headings, numbers
	colorOK    = lipgloss.Color("35")
	colorWarn  = lipgloss.Color("220")
	colorFail  = lipgloss.Color("167")
	colorLink  = lipgloss.Color("75")
	colorText  = lipgloss.Color("255")
	colorMuted = lipgloss.Color("245")
	colorFaint = lipgloss.Color("240")
)

// Exported styles shared with the explore view.
var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorFlame)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorFlame)
	StyleNumber    = lipgloss.NewStyle().Foreground(colorFlame)
	StyleLink      = lipgloss.NewStyle().Foreground(colorLink).Underline(true)
	StyleDim       = lipgloss.NewStyle().Foreground(colorFaint)
	StyleValue     = lipgloss.NewStyle().Foreground(colorText)
	StyleSuccess   = lipgloss.NewStyle().Foreground(colorOK)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorWarn)
)

var (
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorFlame)
	styleCached      = lipgloss.NewStyle().Foreground(colorOK)
	styleComputed    = lipgloss.NewStyle().Foreground(colorMuted)
	styleCommand     = lipgloss.NewStyle().Foreground(colorLink)
	styleKey         = lipgloss.NewStyle().Foreground(colorMuted).Width(12)

	// search and inspect tables
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorFlame)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorText)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorFaint)
)

const (
	iconArrow  = "→"
	iconCached = "cached"
	iconFresh  = "fresh"
)

// statusKind selects the icon and color of a status line.
type statusKind int

const (
	statusOK statusKind = iota
	statusFail
	statusWarn
	statusInfo
)

var statusIcons = [...]struct {
	icon  string
	style lipgloss.Style
}{
	statusOK:   {"✓", lipgloss.NewStyle().Foreground(colorOK)},
	statusFail: {"✗", lipgloss.NewStyle().Foreground(colorFail)},
	statusWarn: {"!", lipgloss.NewStyle().Foreground(colorWarn)},
	statusInfo: {"›", lipgloss.NewStyle().Foreground(colorMuted)},
}

// statusLine formats one icon-prefixed line.
func statusLine(kind statusKind, msg string) string {
	s := statusIcons[kind]
	if kind == statusWarn {
		msg = StyleWarning.Render(msg)
	}
	return s.style.Render(s.icon) + " " + msg
}

func printSuccess(format string, args ...any) {
	fmt.Println(statusLine(statusOK, fmt.Sprintf(format, args...)))
}

func printError(format string, args ...any) {
	fmt.Println(statusLine(statusFail, fmt.Sprintf(format, args...)))
}

func printWarning(format string, args ...any) {
	fmt.Println(statusLine(statusWarn, fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(statusLine(statusInfo, fmt.Sprintf(format, args...)))
}

// printDetail prints an indented, muted line under a status line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a fixed-width label and its value.
func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printStats prints the size of a chart and where its artifacts came from
// on a single line: frames, layers, stage timings and cache status.
func printStats(stats pipeline.Stats, cached bool) {
	var parts []string
	if stats.FrameCount > 0 {
		parts = append(parts, fmt.Sprintf("%d frames", stats.FrameCount))
	}
	if stats.LayerCount > 0 {
		parts = append(parts, fmt.Sprintf("%d layers", stats.LayerCount))
	}
	for _, stage := range []struct {
		name string
		d    time.Duration
	}{
		{"load", stats.LoadTime},
		{"layout", stats.LayoutTime},
		{"render", stats.RenderTime},
	} {
		if stage.d > 0 {
			parts = append(parts, fmt.Sprintf("%s %s", stage.name, stage.d.Round(time.Millisecond)))
		}
	}

	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}

	styled := make([]string, 0, len(parts)+1)
	for _, part := range parts {
		styled = append(styled, StyleDim.Render(part))
	}
	styled = append(styled, statusStyle.Render(status))
	fmt.Println("  " + strings.Join(styled, StyleDim.Render(" · ")))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() { fmt.Println() }
