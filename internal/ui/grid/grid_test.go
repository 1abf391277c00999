package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMove(t *testing.T) {
	tests := []struct {
		name       string
		lengths    []int
		start      [2]int
		dRow, dCol int
		want       [2]int
		moved      bool
	}{
		{"right", []int{5, 3}, [2]int{0, 0}, 0, 1, [2]int{0, 1}, true},
		{"left clamps", []int{5, 3}, [2]int{0, 0}, 0, -1, [2]int{0, 0}, false},
		{"right clamps", []int{5, 3}, [2]int{1, 2}, 0, 1, [2]int{1, 2}, false},
		{"down keeps row column", []int{5, 3}, [2]int{0, 4}, 1, 0, [2]int{1, 0}, true},
		{"up past top", []int{5, 3}, [2]int{0, 2}, -1, 0, [2]int{0, 2}, false},
		{"down skips empty row", []int{2, 0, 4}, [2]int{0, 1}, 1, 0, [2]int{2, 0}, true},
		{"down into trailing empty row", []int{2, 0}, [2]int{0, 1}, 1, 0, [2]int{0, 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(tt.lengths, 0)
			g.Jump(tt.start[0], tt.start[1], 10, 10)
			assert.Equal(t, tt.moved, g.Move(tt.dRow, tt.dCol, 10, 10))
			r, c := g.Pos()
			assert.Equal(t, tt.want, [2]int{r, c})
		})
	}
}

func TestMove_RowsRememberColumn(t *testing.T) {
	g := New([]int{5, 5}, 0)
	g.Move(0, 3, 2, 5)
	g.Move(1, 0, 2, 5)
	g.Move(-1, 0, 2, 5)
	r, c := g.Pos()
	assert.Equal(t, 0, r)
	assert.Equal(t, 3, c)
}

func TestScrollKeepsMargin(t *testing.T) {
	g := New([]int{10}, 1)
	for range 4 {
		g.Move(0, 1, 1, 4)
	}
	start, end := g.VisibleCols(0, 4)
	assert.Equal(t, 2, start)
	assert.Equal(t, 6, end)

	g.Jump(0, 9, 1, 4)
	start, end = g.VisibleCols(0, 4)
	assert.Equal(t, 6, start)
	assert.Equal(t, 10, end)
}

func TestVisibleRows(t *testing.T) {
	g := New([]int{1, 1, 1, 1, 1, 1}, 0)
	g.Jump(5, 0, 3, 1)
	start, end := g.VisibleRows(3)
	assert.Equal(t, 3, start)
	assert.Equal(t, 6, end)
}

func TestSetLengthsClamps(t *testing.T) {
	g := New([]int{5, 5, 5}, 0)
	g.Jump(2, 4, 10, 10)
	g.SetLengths([]int{2})
	r, c := g.Pos()
	assert.Equal(t, 0, r)
	assert.Equal(t, 0, c)
	assert.Equal(t, 1, g.Rows())

	empty := New(nil, 0)
	assert.False(t, empty.Move(1, 1, 1, 1))
}
