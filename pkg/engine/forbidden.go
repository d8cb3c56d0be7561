package engine

// Cell values used by the forbidden-move pattern windows.
const (
	patEmpty = 0
	patSelf  = 1 // First mover's stone
	patOther = 2
)

// Line shapes that count as an open three.
var threePatterns = [...][]int8{
	{0, 1, 1, 1, 0},
	{0, 1, 0, 1, 1, 0},
	{0, 1, 1, 0, 1, 0},
}

// Line shapes that count as a four, including those closed by either colour.
var fourPatterns = [...][]int8{
	{0, 1, 1, 1, 1, 0},
	{0, 1, 1, 1, 0, 1},
	{0, 1, 0, 1, 1, 1},
	{1, 1, 1, 0, 1, 0},
	{1, 0, 1, 1, 1, 0},
	{2, 1, 1, 1, 1, 0},
	{2, 1, 1, 1, 0, 1},
	{2, 1, 0, 1, 1, 1},
	{0, 1, 1, 1, 1, 2},
	{1, 1, 1, 0, 1, 2},
	{1, 0, 1, 1, 1, 2},
}

// Line directions as (row step, col step).
var lineDirections = [4][2]int{
	{1, 0},
	{1, 1},
	{0, 1},
	{-1, 1},
}

// forbiddenApplies reports whether the last move is subject to the rule.
func (b *Board) forbiddenApplies() bool {
	return b.cfg.ForbiddenHands &&
		b.moveCount > 0 &&
		b.cells[b.lastMove] == b.FirstMover()
}

// IsForbidden reports whether the last move formed two or more open threes,
// or two or more fours. It only inspects lines through the last move and
// returns false on an empty board.
func (b *Board) IsForbidden() bool {
	threes, fours := b.ForbiddenCounts()
	return threes > 1 || fours > 1
}

// ForbiddenCounts returns how many (direction, pattern) pairs of the three
// and four families match through the last move, with the first mover's
// stones as "self".
func (b *Board) ForbiddenCounts() (threes, fours int) {
	if b.lastMove == NoMove {
		return 0, 0
	}
	return b.countMatches(threePatterns[:]), b.countMatches(fourPatterns[:])
}

// countMatches counts the (direction, pattern) pairs that match through the
// last move. A pair counts once however many alignments of it match.
// Patterns are at most six cells long.
func (b *Board) countMatches(patterns [][]int8) int {
	var buf [6]int8
	n := 0
	for _, d := range lineDirections {
		for _, p := range patterns {
			if b.matchPattern(p, d, buf[:len(p)]) {
				n++
			}
		}
	}
	return n
}

// matchPattern tries every alignment of pattern that puts a "self" slot on
// the last move.
func (b *Board) matchPattern(pattern []int8, dir [2]int, buf []int8) bool {
	for i, x := range pattern {
		if x != patSelf {
			continue
		}
		if b.collectPieces(dir, i, buf) && equalPieces(buf, pattern) {
			return true
		}
	}
	return false
}

// collectPieces fills buf with the cells of the line through the last move
// along dir, starting lookBack cells behind it. Returns false if the segment
// leaves the board.
func (b *Board) collectPieces(dir [2]int, lookBack int, buf []int8) bool {
	row, col := b.grid.ToRowCol(b.lastMove)
	row -= dir[0] * lookBack
	col -= dir[1] * lookBack

	self := b.FirstMover()
	for i := range buf {
		idx := b.grid.ToIndex(row+i*dir[0], col+i*dir[1])
		if idx == InvalidIndex {
			return false
		}
		switch p := b.cells[idx]; {
		case p == NoPlayer:
			buf[i] = patEmpty
		case p == self:
			buf[i] = patSelf
		default:
			buf[i] = patOther
		}
	}
	return true
}

func equalPieces(a, b []int8) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
