package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func occupied(rows, cols int, cells ...Cell) *Grid {
	g := New(rows, cols)
	for _, c := range cells {
		g.Occupy(c)
	}
	return g
}

func TestNextEmptyFrom_WrapsToNextRow(t *testing.T) {
	g := occupied(4, 3, Cell{1, 1}, Cell{1, 2}, Cell{1, 3})

	got, ok := g.NextEmptyFrom(Cell{1, 3})
	require.True(t, ok)
	assert.Equal(t, Cell{2, 1}, got)
}

func TestNextEmptyFrom_StartIsEmpty(t *testing.T) {
	g := occupied(2, 2, Cell{1, 1})

	got, ok := g.NextEmptyFrom(Cell{1, 2})
	require.True(t, ok)
	assert.Equal(t, Cell{1, 2}, got)
}

func TestNextEmptyFrom_NothingAfterStart(t *testing.T) {
	// (1,1) is empty but lies before the start cell
	g := occupied(2, 2, Cell{1, 2}, Cell{2, 1}, Cell{2, 2})

	got, ok := g.NextEmptyFrom(Cell{1, 2})
	assert.False(t, ok)
	assert.Equal(t, Cell{2, 2}, got)
}

func TestNextEmptyFrom_OutsideGrid(t *testing.T) {
	g := New(2, 2)

	got, ok := g.NextEmptyFrom(Cell{3, 1})
	assert.False(t, ok)
	assert.Equal(t, Cell{3, 1}, got)
}

func TestAdvance(t *testing.T) {
	tests := []struct {
		name string
		g    *Grid
		from Cell
		want Cell
	}{
		{"next column", occupied(3, 3, Cell{1, 1}), Cell{1, 1}, Cell{1, 2}},
		{"wrap row", occupied(3, 3, Cell{1, 3}), Cell{1, 3}, Cell{2, 1}},
		{"skip occupied", occupied(3, 3, Cell{1, 1}, Cell{1, 2}, Cell{1, 3}, Cell{2, 1}), Cell{1, 1}, Cell{2, 2}},
		{"last cell stays", occupied(2, 2, Cell{2, 2}), Cell{2, 2}, Cell{2, 2}},
		{"never backward", occupied(2, 2, Cell{1, 2}, Cell{2, 1}, Cell{2, 2}), Cell{1, 2}, Cell{2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.g.Advance(tt.from))
		})
	}
}

func TestAdvance_FullGridIsIdempotent(t *testing.T) {
	g := New(3, 4)
	for r := 1; r <= 3; r++ {
		for c := 1; c <= 4; c++ {
			g.Occupy(Cell{r, c})
		}
	}
	require.True(t, g.Full())

	cur := g.Advance(Cell{1, 1})
	for i := 0; i < 5; i++ {
		next := g.Advance(cur)
		assert.Equal(t, cur, next)
		cur = next
	}
	assert.Equal(t, Cell{3, 4}, cur)
}

func TestOrigin_RoundTrip(t *testing.T) {
	c := ZeroBased.ToCell(0, 0)
	assert.Equal(t, Cell{1, 1}, c)
	r, col := ZeroBased.FromCell(Cell{2, 3})
	assert.Equal(t, []int{1, 2}, []int{r, col})

	assert.Equal(t, Cell{2, 3}, OneBased.ToCell(2, 3))
}

func TestOccupied_RowMajor(t *testing.T) {
	g := occupied(2, 2, Cell{2, 1}, Cell{1, 2})
	assert.Equal(t, []Cell{{1, 2}, {2, 1}}, g.Occupied())

	g.Vacate(Cell{2, 1})
	assert.False(t, g.IsOccupied(Cell{2, 1}))

	g.Occupy(Cell{9, 9})
	assert.Len(t, g.Occupied(), 1)
}

func before(a, b Cell) bool {
	return a.Row < b.Row || (a.Row == b.Row && a.Col < b.Col)
}

func TestNextEmptyFrom_ScanOrderProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rows := rapid.IntRange(1, 6).Draw(t, "rows")
		cols := rapid.IntRange(1, 6).Draw(t, "cols")
		g := New(rows, cols)
		for r := 1; r <= rows; r++ {
			for c := 1; c <= cols; c++ {
				if rapid.Bool().Draw(t, "occupied") {
					g.Occupy(Cell{r, c})
				}
			}
		}
		start := Cell{
			Row: rapid.IntRange(1, rows).Draw(t, "row"),
			Col: rapid.IntRange(1, cols).Draw(t, "col"),
		}

		got, ok := g.NextEmptyFrom(start)
		if before(got, start) {
			t.Fatalf("returned %v before start %v", got, start)
		}

		anyEmpty := false
		for r := 1; r <= rows; r++ {
			for c := 1; c <= cols; c++ {
				cell := Cell{r, c}
				if !before(cell, start) && !g.IsOccupied(cell) {
					anyEmpty = true
				}
			}
		}
		if ok != anyEmpty {
			t.Fatalf("ok=%v but empty cell from %v exists=%v", ok, start, anyEmpty)
		}
		if ok && g.IsOccupied(got) {
			t.Fatalf("returned occupied cell %v", got)
		}
		if !ok && got != (Cell{rows, cols}) {
			t.Fatalf("full scan should end on last cell, got %v", got)
		}
	})
}
