// Package playerbar renders the transport area of the player screen: track
// info, the seekbar and the three on-screen controls.
package playerbar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/wavestv/internal/lifecycle"
	"github.com/llehouerou/wavestv/internal/ui/render"
	"github.com/llehouerou/wavestv/internal/ui/styles"
)

const (
	playSymbol     = "▶"
	pauseSymbol    = "⏸"
	rewindSymbol   = "⏪"
	forwardSymbol  = "⏩"
	bufferSymbol   = "…"
	minBarWidth    = 5
	seekbarFill    = "━"
	seekbarEmpty   = "─"
)

// State holds everything the bar shows.
type State struct {
	Title  string
	Album  string
	Artist string
	Index  int // 0-based position in the queue
	Total  int

	Position time.Duration
	Duration time.Duration
	Paused   bool
	Loading  bool

	// Buffering replaces the play/pause symbol with an ellipsis.
	Buffering bool

	// Seeking is set while a debounced seek is pending; Target is where
	// it will land.
	Seeking bool
	Target  time.Duration

	SeekbarFocused bool
	Highlight      lifecycle.Control
	StepSeconds    int
}

// Render returns the bar for the given width.
func Render(s State, width int) string {
	width = max(width, 20)
	lines := []string{
		renderTitle(s, width),
		renderInfo(s, width),
		"",
		Seekbar(s, width),
		"",
		Controls(s, width),
	}
	return strings.Join(lines, "\n")
}

func renderTitle(s State, width int) string {
	title := s.Title
	if title == "" {
		title = "Unknown Track"
	}
	title = styles.T().S().Title.Render(render.Truncate(title, width))
	if s.Total <= 0 {
		return title
	}
	pos := styles.T().S().Muted.Render(fmt.Sprintf("%d/%d", s.Index+1, s.Total))
	return render.Row(title, pos, width)
}

func renderInfo(s State, width int) string {
	var parts []string
	if s.Artist != "" {
		parts = append(parts, s.Artist)
	}
	if s.Album != "" {
		parts = append(parts, s.Album)
	}
	return styles.T().S().Muted.Render(render.Truncate(strings.Join(parts, " · "), width))
}

// Seekbar renders "1:23 ━━━━────── 4:56". While a seek is pending the
// left time shows the target.
func Seekbar(s State, width int) string {
	pos := s.Position
	if s.Seeking {
		pos = s.Target
	}
	left := render.Clock(pos)
	right := render.Clock(s.Duration)
	if s.Duration <= 0 {
		right = "--:--"
	}
	barWidth := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if barWidth < minBarWidth {
		return left + " / " + right
	}

	t := styles.T()
	fill, empty := t.S().Muted, t.S().Subtle
	if s.SeekbarFocused {
		fill = lipgloss.NewStyle().Foreground(t.Primary)
	}
	filled := render.Filled(pos, s.Duration, barWidth)
	bar := fill.Render(strings.Repeat(seekbarFill, filled)) +
		empty.Render(strings.Repeat(seekbarEmpty, barWidth-filled))
	return left + " " + bar + " " + right
}

// Controls renders the skip-backward, play/pause and skip-forward buttons,
// centered, with the highlighted one emphasized.
func Controls(s State, width int) string {
	step := s.StepSeconds
	if step <= 0 {
		step = int(lifecycle.DefaultSeekStep / time.Second)
	}
	center := pauseSymbol
	switch {
	case s.Loading || s.Buffering:
		center = bufferSymbol
	case s.Paused:
		center = playSymbol
	}
	buttons := []struct {
		control lifecycle.Control
		label   string
	}{
		{lifecycle.ControlSkipBackward, fmt.Sprintf("%s %ds", rewindSymbol, step)},
		{lifecycle.ControlPlayPause, center},
		{lifecycle.ControlSkipForward, fmt.Sprintf("%ds %s", step, forwardSymbol)},
	}
	st := styles.T().S()
	rendered := make([]string, len(buttons))
	for i, b := range buttons {
		style := st.Control
		if b.control == s.Highlight {
			style = st.Highlight
		}
		rendered[i] = style.Render(b.label)
	}
	row := strings.Join(rendered, "   ")
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, row)
}
