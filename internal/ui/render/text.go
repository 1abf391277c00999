// Package render formats catalog text and playback times for the terminal.
package render

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Sanitize drops control characters and invalid UTF-8 from catalog text.
// Non-breaking spaces become plain spaces.
func Sanitize(s string) string {
	clean := true
	for _, r := range s {
		if r == utf8.RuneError || r == '\u00a0' || (r != '\t' && unicode.IsControl(r)) {
			clean = false
			break
		}
	}
	if clean {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		switch {
		case r == utf8.RuneError && size <= 1:
		case r != '\t' && unicode.IsControl(r):
		case r == '\u00a0':
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Truncate fits s into width cells, ending with "…" when cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(Sanitize(s), width, "…")
}

// Fit truncates s and pads it to exactly width cells.
func Fit(s string, width int) string {
	return runewidth.FillRight(Truncate(s, width), width)
}

// Row places left and right at both ends of a width-cell line.
func Row(left, right string, width int) string {
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

// Separator is a horizontal rule of width cells.
func Separator(width int) string {
	return strings.Repeat("─", max(width, 0))
}

// Clock formats d as m:ss, or h:mm:ss from one hour on. Negative values
// render as zero.
func Clock(d time.Duration) string {
	d = max(d, 0).Truncate(time.Second)
	h := int(d / time.Hour)
	m := int(d/time.Minute) % 60
	s := int(d/time.Second) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Filled is the number of cells of a width-cell bar covered by pos out of
// dur. An unknown duration fills nothing.
func Filled(pos, dur time.Duration, width int) int {
	if width <= 0 || dur <= 0 {
		return 0
	}
	ratio := float64(min(max(pos, 0), dur)) / float64(dur)
	return min(int(float64(width)*ratio), width)
}

// Bar draws a width-cell progress bar for pos out of dur.
func Bar(pos, dur time.Duration, width int, filled, empty string) string {
	if width <= 0 {
		return ""
	}
	n := Filled(pos, dur, width)
	return strings.Repeat(filled, n) + strings.Repeat(empty, width-n)
}
