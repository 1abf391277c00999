// Package styles holds the palette and lipgloss styles of the TV shell.
package styles

import "github.com/charmbracelet/lipgloss"

// Theme is the color palette.
type Theme struct {
	Primary   lipgloss.Color // focused tile, highlighted control
	Secondary lipgloss.Color // now-playing accent

	FgBase   lipgloss.Color
	FgMuted  lipgloss.Color
	FgSubtle lipgloss.Color

	BgFocus lipgloss.Color

	Border      lipgloss.Color
	BorderFocus lipgloss.Color

	Error lipgloss.Color

	styles *Styles
}

// Styles are the pre-built styles of a theme.
type Styles struct {
	Base      lipgloss.Style
	Muted     lipgloss.Style
	Subtle    lipgloss.Style
	Title     lipgloss.Style
	RowTitle  lipgloss.Style
	Playing   lipgloss.Style
	Focus     lipgloss.Style
	Control   lipgloss.Style
	Highlight lipgloss.Style
	Error     lipgloss.Style

	Tile        lipgloss.Style
	TileFocused lipgloss.Style
}

var defaultTheme = Theme{
	Primary:   lipgloss.Color("#ff9900"),
	Secondary: lipgloss.Color("#00a8e1"),

	FgBase:   lipgloss.Color("#e6e6e6"),
	FgMuted:  lipgloss.Color("#8c8c8c"),
	FgSubtle: lipgloss.Color("#595959"),

	BgFocus: lipgloss.Color("#2b2b2b"),

	Border:      lipgloss.Color("#3d3d3d"),
	BorderFocus: lipgloss.Color("#ff9900"),

	Error: lipgloss.Color("#ff5555"),
}

// T returns the default theme.
func T() *Theme {
	return &defaultTheme
}

// S returns the pre-built styles for this theme.
func (t *Theme) S() *Styles {
	if t.styles == nil {
		t.styles = t.buildStyles()
	}
	return t.styles
}

func (t *Theme) buildStyles() *Styles {
	base := lipgloss.NewStyle().Foreground(t.FgBase)
	tile := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)

	return &Styles{
		Base:     base,
		Muted:    lipgloss.NewStyle().Foreground(t.FgMuted),
		Subtle:   lipgloss.NewStyle().Foreground(t.FgSubtle),
		Title:    base.Bold(true),
		RowTitle: lipgloss.NewStyle().Foreground(t.FgMuted).Bold(true),
		Playing:  lipgloss.NewStyle().Foreground(t.Secondary).Bold(true),
		Focus: lipgloss.NewStyle().
			Background(t.BgFocus).
			Foreground(t.Primary),
		Control: lipgloss.NewStyle().Foreground(t.FgMuted).Padding(0, 1),
		Highlight: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true).
			Padding(0, 1),
		Error: lipgloss.NewStyle().Foreground(t.Error),

		Tile:        tile,
		TileFocused: tile.BorderForeground(t.BorderFocus).Foreground(t.Primary),
	}
}
