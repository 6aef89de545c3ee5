// Package grid models the cells of a rack as a rows × cols grid and the
// cursor that walks it while devices are being placed.
//
// Cells are 1-indexed inside this package (row 1, column 1 is the top-left
// cell of a rack). Callers that think in 0-indexed coordinates, such as the
// warehouse layout, convert at the boundary through Origin.
package grid

import "fmt"

// Cell is a 1-indexed grid coordinate.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Cell) String() string { return fmt.Sprintf("(%d,%d)", c.Row, c.Col) }

// Origin is the index origin used by a caller.
type Origin int

const (
	OneBased  Origin = 1 // rack detail grid, location x/y columns
	ZeroBased Origin = 0 // warehouse layout grid, labels
)

// ToCell converts caller coordinates into a canonical cell.
func (o Origin) ToCell(row, col int) Cell {
	shift := 1 - int(o)
	return Cell{Row: row + shift, Col: col + shift}
}

// FromCell converts a canonical cell into caller coordinates.
func (o Origin) FromCell(c Cell) (row, col int) {
	shift := 1 - int(o)
	return c.Row - shift, c.Col - shift
}

// Grid is a rectangular occupancy map.
type Grid struct {
	Rows     int
	Cols     int
	occupied map[Cell]bool
}

// New returns an empty grid. Non-positive dimensions yield a grid with no cells.
func New(rows, cols int) *Grid {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	return &Grid{Rows: rows, Cols: cols, occupied: make(map[Cell]bool)}
}

// Contains reports whether c lies inside the grid.
func (g *Grid) Contains(c Cell) bool {
	return c.Row >= 1 && c.Row <= g.Rows && c.Col >= 1 && c.Col <= g.Cols
}

// Occupy marks c as occupied. Cells outside the grid are ignored.
func (g *Grid) Occupy(c Cell) {
	if g.Contains(c) {
		g.occupied[c] = true
	}
}

// Vacate marks c as empty.
func (g *Grid) Vacate(c Cell) { delete(g.occupied, c) }

// IsOccupied reports whether a device currently sits at c.
func (g *Grid) IsOccupied(c Cell) bool { return g.occupied[c] }

// Full reports whether every cell is occupied.
func (g *Grid) Full() bool { return len(g.occupied) >= g.Rows*g.Cols }

// Occupied lists occupied cells in row-major order.
func (g *Grid) Occupied() []Cell {
	out := make([]Cell, 0, len(g.occupied))
	for r := 1; r <= g.Rows; r++ {
		for c := 1; c <= g.Cols; c++ {
			if g.occupied[Cell{r, c}] {
				out = append(out, Cell{r, c})
			}
		}
	}
	return out
}

// Clone returns an independent copy.
func (g *Grid) Clone() *Grid {
	cp := New(g.Rows, g.Cols)
	for c := range g.occupied {
		cp.occupied[c] = true
	}
	return cp
}

// NextEmptyFrom scans forward from c (inclusive) in row-major order and
// returns the first empty cell. When nothing is empty from c onward it returns
// the last cell it checked, (Rows, Cols), and false. A start cell outside the
// grid is returned as is with false.
func (g *Grid) NextEmptyFrom(c Cell) (Cell, bool) {
	if !g.Contains(c) {
		return c, false
	}
	r, col := c.Row, c.Col
	for {
		cur := Cell{r, col}
		if !g.occupied[cur] {
			return cur, true
		}
		if r == g.Rows && col == g.Cols {
			return cur, false
		}
		col++
		if col > g.Cols {
			col = 1
			r++
		}
	}
}

// Advance computes the cursor position after a device was placed at c:
// step one cell forward (wrapping to column 1 of the next row, or staying put
// on the last cell), then skip forward to the next empty cell. The cursor
// never moves backward.
func (g *Grid) Advance(c Cell) Cell {
	next := c
	switch {
	case c.Col == g.Cols && c.Row == g.Rows:
		// grid exhausted, stay
	case c.Col == g.Cols:
		next = Cell{Row: c.Row + 1, Col: 1}
	default:
		next = Cell{Row: c.Row, Col: c.Col + 1}
	}
	found, _ := g.NextEmptyFrom(next)
	return found
}
