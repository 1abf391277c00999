// Package grid tracks the focused tile in rows of tiles, the way a TV
// launcher does: each row keeps its own column and scroll offset.
package grid

// Grid is a 2D focus position. Row and column counts are given by the
// caller since the catalog can change under it.
type Grid struct {
	row     int
	top     int   // first visible row
	cols    []int // focused column per row
	offsets []int // first visible column per row
	lengths []int
	margin  int
}

// New creates a grid for rows of the given lengths. margin is the number
// of tiles kept visible past the focus when scrolling.
func New(lengths []int, margin int) Grid {
	g := Grid{margin: max(margin, 0)}
	g.SetLengths(lengths)
	return g
}

// SetLengths resizes the grid, clamping the focus into the new bounds.
func (g *Grid) SetLengths(lengths []int) {
	cols := make([]int, len(lengths))
	offsets := make([]int, len(lengths))
	for i, n := range lengths {
		if i < len(g.cols) {
			cols[i] = clamp(g.cols[i], n-1)
			offsets[i] = clamp(g.offsets[i], max(n-1, 0))
		}
	}
	g.cols, g.offsets = cols, offsets
	g.row = clamp(g.row, len(lengths)-1)
	g.top = clamp(g.top, g.row)
	g.lengths = append([]int(nil), lengths...)
}

// Pos returns the focused row and column.
func (g Grid) Pos() (row, col int) {
	if len(g.cols) == 0 {
		return 0, 0
	}
	return g.row, g.cols[g.row]
}

// Rows returns the number of rows.
func (g Grid) Rows() int { return len(g.cols) }

// Move shifts the focus by the given deltas. visibleRows and visibleCols
// are the viewport size in tiles. It reports whether the focus moved.
// Rows do not wrap.
func (g *Grid) Move(dRow, dCol, visibleRows, visibleCols int) bool {
	if len(g.cols) == 0 {
		return false
	}
	row, col := g.Pos()
	next := clamp(row+dRow, len(g.cols)-1)
	// Skip empty rows in the direction of travel.
	for next != row && g.lengths[next] == 0 {
		step := 1
		if dRow < 0 {
			step = -1
		}
		if next+step < 0 || next+step >= len(g.cols) {
			next = row
			break
		}
		next += step
	}
	g.row = next
	if n := g.lengths[g.row]; n > 0 {
		g.cols[g.row] = clamp(g.cols[g.row]+dCol, n-1)
	}
	g.scroll(visibleRows, visibleCols)
	r, c := g.Pos()
	return r != row || c != col
}

// Jump focuses an absolute position, clamped to the grid.
func (g *Grid) Jump(row, col, visibleRows, visibleCols int) {
	if len(g.cols) == 0 {
		return
	}
	g.row = clamp(row, len(g.cols)-1)
	g.cols[g.row] = clamp(col, g.lengths[g.row]-1)
	g.scroll(visibleRows, visibleCols)
}

func (g *Grid) scroll(visibleRows, visibleCols int) {
	g.top = window(g.top, g.row, len(g.cols), visibleRows, g.margin)
	n := g.lengths[g.row]
	g.offsets[g.row] = window(g.offsets[g.row], g.cols[g.row], n, visibleCols, g.margin)
}

// window returns the new start of a visible window of size height over n
// items, so that pos stays margin items away from either edge.
func window(start, pos, n, height, margin int) int {
	if height <= 0 || n == 0 {
		return 0
	}
	margin = min(margin, (height-1)/2)
	if pos < start+margin {
		start = pos - margin
	}
	if pos >= start+height-margin {
		start = pos - height + margin + 1
	}
	return clamp(start, max(n-height, 0))
}

// VisibleRows returns the range [start, end) of rows on screen.
func (g Grid) VisibleRows(height int) (start, end int) {
	if height <= 0 {
		return 0, 0
	}
	return g.top, min(g.top+height, len(g.cols))
}

// VisibleCols returns the range [start, end) of tiles of row on screen.
func (g Grid) VisibleCols(row, width int) (start, end int) {
	if row < 0 || row >= len(g.cols) || width <= 0 {
		return 0, 0
	}
	return g.offsets[row], min(g.offsets[row]+width, g.lengths[row])
}

func clamp(v, hi int) int {
	if v > hi {
		v = hi
	}
	if v < 0 {
		return 0
	}
	return v
}
