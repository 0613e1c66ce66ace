package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// Theme bundles the styles used by the tour views. Styles are created once
// at startup, not per frame.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary lipgloss.AdaptiveColor
	Subtext lipgloss.AdaptiveColor
	Border  lipgloss.AdaptiveColor
	Accent  lipgloss.AdaptiveColor

	Base      lipgloss.Style
	Header    lipgloss.Style
	StatusBar lipgloss.Style
	Muted     lipgloss.Style
	Axis      lipgloss.Style
	Curve     lipgloss.Style
	Selected  lipgloss.Style
	Pane      lipgloss.Style

	// WeightLow..WeightHigh shade observation glyphs by kernel weight.
	WeightLow  lipgloss.Style
	WeightMid  lipgloss.Style
	WeightHigh lipgloss.Style
}

// DefaultTheme returns the standard adaptive theme.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary: lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Subtext: lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},
		Border:  lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Accent:  lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})
	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)
	t.StatusBar = r.NewStyle().Foreground(t.Subtext)
	t.Muted = r.NewStyle().Foreground(t.Subtext)
	t.Axis = r.NewStyle().Foreground(t.Border)
	t.Curve = r.NewStyle().Foreground(t.Accent)
	t.Selected = r.NewStyle().
		Background(lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"}).
		Bold(true)
	t.Pane = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)

	t.WeightLow = r.NewStyle().Foreground(ThemeFg("#4A5568"))
	t.WeightMid = r.NewStyle().Foreground(ThemeFg("#63B3ED"))
	t.WeightHigh = r.NewStyle().Foreground(ThemeFg("#2B6CB0")).Bold(true)

	return t
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
