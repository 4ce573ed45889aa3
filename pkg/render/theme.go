package render

import (
	"math"

	"github.com/gogpu/gg"

	"github.com/matzehuels/flamechart/pkg/errors"
)

// Theme holds the overlay palette as hex strings ("#RRGGBB" or "#RRGGBBAA").
type Theme struct {
	Name string `toml:"name"`

	FgPrimary   string `toml:"fg_primary"`
	FgSecondary string `toml:"fg_secondary"`
	BgPrimary   string `toml:"bg_primary"`
	BgSecondary string `toml:"bg_secondary"`
	Border      string `toml:"border"`

	SelectionPrimary   string `toml:"selection_primary"`
	SelectionSecondary string `toml:"selection_secondary"`

	SearchMatchPrimary   string `toml:"search_match_primary"`
	SearchMatchSecondary string `toml:"search_match_secondary"`
	SearchMatchText      string `toml:"search_match_text"`

	Warning   string `toml:"warning"`
	WarningBg string `toml:"warning_bg"`

	TimelineCursor   string `toml:"timeline_cursor"`
	TimelineCursorBg string `toml:"timeline_cursor_bg"`
	TimelineCursorFg string `toml:"timeline_cursor_fg"`

	// Dark selects the dark bucket palette.
	Dark bool `toml:"dark"`
}

// LightTheme is the default theme.
var LightTheme = Theme{
	Name:                 "light",
	FgPrimary:            "#000000",
	FgSecondary:          "#a2a2a2",
	BgPrimary:            "#ffffff",
	BgSecondary:          "#f6f6f6",
	Border:               "#bdbdbd",
	SelectionPrimary:     "#0f7bff",
	SelectionSecondary:   "#49a0ff",
	SearchMatchPrimary:   "#ffd700",
	SearchMatchSecondary: "#ffd70033",
	SearchMatchText:      "#000000",
	Warning:              "#e03e2d",
	WarningBg:            "#e03e2d33",
	TimelineCursor:       "#0f7bff",
	TimelineCursorBg:     "#0f7bff",
	TimelineCursorFg:     "#ffffff",
}

// DarkTheme is a dark variant of [LightTheme].
var DarkTheme = Theme{
	Name:                 "dark",
	FgPrimary:            "#f2f2f2",
	FgSecondary:          "#777777",
	BgPrimary:            "#1e1e1e",
	BgSecondary:          "#2b2b2b",
	Border:               "#3d3d3d",
	SelectionPrimary:     "#4ea1ff",
	SelectionSecondary:   "#2c6fbf",
	SearchMatchPrimary:   "#ffd700",
	SearchMatchSecondary: "#ffd70033",
	SearchMatchText:      "#ffffff",
	Warning:              "#ff6b5e",
	WarningBg:            "#ff6b5e33",
	TimelineCursor:       "#4ea1ff",
	TimelineCursorBg:     "#4ea1ff",
	TimelineCursorFg:     "#000000",
	Dark:                 true,
}

// ThemeByName returns a built-in theme.
func ThemeByName(name string) (Theme, error) {
	switch name {
	case "", "light":
		return LightTheme, nil
	case "dark":
		return DarkTheme, nil
	default:
		return Theme{}, errors.New(errors.ErrCodeInvalidInput, "unknown theme %q (want light or dark)", name)
	}
}

// Merge returns t with every non-empty color of o applied on top.
func (t Theme) Merge(o Theme) Theme {
	pick := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	pick(&t.FgPrimary, o.FgPrimary)
	pick(&t.FgSecondary, o.FgSecondary)
	pick(&t.BgPrimary, o.BgPrimary)
	pick(&t.BgSecondary, o.BgSecondary)
	pick(&t.Border, o.Border)
	pick(&t.SelectionPrimary, o.SelectionPrimary)
	pick(&t.SelectionSecondary, o.SelectionSecondary)
	pick(&t.SearchMatchPrimary, o.SearchMatchPrimary)
	pick(&t.SearchMatchSecondary, o.SearchMatchSecondary)
	pick(&t.SearchMatchText, o.SearchMatchText)
	pick(&t.Warning, o.Warning)
	pick(&t.WarningBg, o.WarningBg)
	pick(&t.TimelineCursor, o.TimelineCursor)
	pick(&t.TimelineCursorBg, o.TimelineCursorBg)
	pick(&t.TimelineCursorFg, o.TimelineCursorFg)
	return t
}

// ColorForBucket maps a color bucket (0..255) to a frame fill color.
// Neighbouring buckets get visibly different hues while the overall sweep
// runs once around the color wheel.
func (t Theme) ColorForBucket(bucket float64) gg.RGBA {
	x := triangle(30 * bucket / 255)
	h := 360 * 0.9 * bucket / 255
	c, l := 0.25+0.2*x, 0.8-0.15*x
	if t.Dark {
		c, l = 0.2+0.1*x, 0.3+0.05*x
	}
	return fromLumaChromaHue(l, c, h)
}

func triangle(x float64) float64 {
	_, frac := math.Modf(x)
	return 2*math.Abs(frac-0.5) - 1
}

// fromLumaChromaHue converts luma/chroma/hue (L, C in [0,1], H in degrees)
// to RGB using Rec. 601 luma weights.
func fromLumaChromaHue(l, c, h float64) gg.RGBA {
	hp := math.Mod(h, 360) / 60
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))
	var r, g, b float64
	switch {
	case hp < 1:
		r, g, b = c, x, 0
	case hp < 2:
		r, g, b = x, c, 0
	case hp < 3:
		r, g, b = 0, c, x
	case hp < 4:
		r, g, b = 0, x, c
	case hp < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	m := l - (0.3*r + 0.59*g + 0.11*b)
	clamp := func(v float64) float64 { return math.Max(0, math.Min(1, v)) }
	return gg.RGB(clamp(r+m), clamp(g+m), clamp(b+m))
}

// withAlpha returns hex's color with alpha replaced.
func withAlpha(hex string, a float64) gg.RGBA {
	c := gg.Hex(hex)
	c.A = a
	return c
}
