// Package popup renders modal dialogs and composes them over a frame.
package popup

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/llehouerou/wavestv/internal/ui/styles"
)

// Dialog is a bordered box with a centered title and footer.
type Dialog struct {
	Title  string
	Body   string
	Footer string
	Width  int // inner width; 0 fits the content
}

// Render returns the box, at most maxWidth columns wide.
func (d Dialog) Render(maxWidth int) string {
	st := styles.T().S()
	inner := d.Width
	if inner == 0 {
		inner = max(widest(d.Body), lipgloss.Width(d.Title), lipgloss.Width(d.Footer)) + 2
	}
	inner = max(min(inner, maxWidth-4), 1)

	var lines []string
	if d.Title != "" {
		lines = append(lines, lipgloss.PlaceHorizontal(inner, lipgloss.Center, st.Title.Render(d.Title)), "")
	}
	for line := range strings.SplitSeq(d.Body, "\n") {
		if lipgloss.Width(line) > inner {
			line = ansi.Truncate(line, inner, "…")
		}
		lines = append(lines, line)
	}
	if d.Footer != "" {
		lines = append(lines, "", lipgloss.PlaceHorizontal(inner, lipgloss.Center, st.Subtle.Render(d.Footer)))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.T().BorderFocus).
		Padding(0, 1).
		Width(inner + 2).
		Render(strings.Join(lines, "\n"))
}

func widest(s string) int {
	w := 0
	for line := range strings.SplitSeq(s, "\n") {
		w = max(w, lipgloss.Width(line))
	}
	return w
}

// Overlay draws box centered over base, a frame of width columns and
// height lines.
func Overlay(base, box string, width, height int) string {
	boxLines := strings.Split(box, "\n")
	x := max((width-widest(box))/2, 0)
	y := max((height-len(boxLines))/2, 0)
	return Place(base, box, x, y, width)
}

// Place draws box over base with its top-left corner at column x, line y.
// Cells of base outside the box keep their styling.
func Place(base, box string, x, y, width int) string {
	lines := strings.Split(base, "\n")
	for i, b := range strings.Split(box, "\n") {
		row := y + i
		if row >= len(lines) {
			break
		}
		w := ansi.StringWidth(b)
		if w == 0 {
			continue
		}
		line := lines[row]
		if lw := ansi.StringWidth(line); lw < width {
			line += strings.Repeat(" ", width-lw)
		}
		left := cut(line, 0, x)
		right := cut(line, x+w, width)
		lines[row] = left + "\x1b[0m" + b + "\x1b[0m" + right
	}
	return strings.Join(lines, "\n")
}

// cut returns columns [from, to) of s, padding where a wide rune was split.
func cut(s string, from, to int) string {
	if to <= from {
		return ""
	}
	part := ansi.Cut(s, from, to)
	if w := ansi.StringWidth(part); w < to-from {
		part += strings.Repeat(" ", to-from-w)
	}
	return part
}
