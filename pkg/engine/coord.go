package engine

// InvalidIndex is returned by the coordinate conversions for locations
// outside the board. Callers compare against it instead of handling an error.
const InvalidIndex = -1

// Grid maps linear cell indices to (row, col) locations and back.
//
// A 3x3 grid numbers its cells like:
//
//	6 7 8
//	3 4 5
//	0 1 2
//
// so cell 5 is at row 1, col 2.
type Grid struct {
	Width  int
	Height int
}

// Size returns the number of cells on the grid.
func (g Grid) Size() int {
	return g.Width * g.Height
}

// Contains reports whether index names a cell of the grid.
func (g Grid) Contains(index int) bool {
	return index >= 0 && index < g.Size()
}

// ToRowCol converts a cell index into its (row, col) location.
func (g Grid) ToRowCol(index int) (row, col int) {
	return index / g.Width, index % g.Width
}

// ToIndex converts a (row, col) location into a cell index.
// Returns InvalidIndex if the location is off the grid.
func (g Grid) ToIndex(row, col int) int {
	if row < 0 || row >= g.Height {
		return InvalidIndex
	}
	if col < 0 || col >= g.Width {
		return InvalidIndex
	}
	return row*g.Width + col
}

// LocationToIndex converts a [row, col] pair into a cell index.
// Returns InvalidIndex unless loc has exactly two elements naming an on-grid cell.
func (g Grid) LocationToIndex(loc []int) int {
	if len(loc) != 2 {
		return InvalidIndex
	}
	return g.ToIndex(loc[0], loc[1])
}
