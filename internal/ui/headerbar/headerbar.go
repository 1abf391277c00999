// Package headerbar renders the top line of the shell.
package headerbar

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/llehouerou/wavestv/internal/ui/render"
	"github.com/llehouerou/wavestv/internal/ui/styles"
)

// Height is the number of lines Render returns.
const Height = 1

const crumbSep = " › "

// Render returns the brand followed by the navigation path, with status
// right-aligned. Leading crumbs are dropped first when space runs out.
func Render(brand string, crumbs []string, status string, width int) string {
	if width <= 0 {
		return ""
	}
	st := styles.T().S()
	left := styles.T().Brand(brand)
	avail := width - lipgloss.Width(left) - lipgloss.Width(status) - 4

	for len(crumbs) > 1 && lipgloss.Width(strings.Join(crumbs, crumbSep)) > avail {
		crumbs = crumbs[1:]
	}
	if len(crumbs) > 0 && avail > 0 {
		path := make([]string, len(crumbs))
		for i, c := range crumbs {
			style := st.Muted
			if i == len(crumbs)-1 {
				style = st.Base
			}
			path[i] = style.Render(render.Sanitize(c))
		}
		left += "  " + ansi.Truncate(strings.Join(path, st.Subtle.Render(crumbSep)), avail, "…")
	}
	return render.Row(left, status, width)
}
