package engine

// OutcomeKind classifies the state of a game.
type OutcomeKind int

const (
	InProgress OutcomeKind = iota
	Win
	Tie
)

func (k OutcomeKind) String() string {
	switch k {
	case Win:
		return "winner"
	case Tie:
		return "tie"
	default:
		return "in_progress"
	}
}

// Outcome is the result of Status.
type Outcome struct {
	Kind      OutcomeKind
	Winner    Player // NoPlayer unless Kind == Win
	Forbidden bool   // The win was awarded because the loser played a forbidden move
}

// HasWinner reports whether a player has won, and who.
//
// With the forbidden-move rule enabled, a forbidden last move by the first
// mover hands the win to the opponent before any run is looked for.
func (b *Board) HasWinner() (bool, Player) {
	won, winner, _ := b.winner()
	return won, winner
}

// GameEnd reports whether the game is over. The winner is NoPlayer on a tie.
func (b *Board) GameEnd() (bool, Player) {
	if won, winner := b.HasWinner(); won {
		return true, winner
	}
	if b.IsFull() {
		return true, NoPlayer
	}
	return false, NoPlayer
}

// Status returns whether the game is in progress, won or tied.
func (b *Board) Status() Outcome {
	won, winner, forbidden := b.winner()
	switch {
	case won:
		return Outcome{Kind: Win, Winner: winner, Forbidden: forbidden}
	case b.IsFull():
		return Outcome{Kind: Tie, Winner: NoPlayer}
	default:
		return Outcome{Kind: InProgress, Winner: NoPlayer}
	}
}

func (b *Board) winner() (won bool, winner Player, forbidden bool) {
	if b.forbiddenApplies() && b.IsForbidden() {
		return true, b.Opponent(b.FirstMover()), true
	}

	n := b.cfg.NInRow
	// Turns alternate, so nobody can hold n stones before 2n-1 moves.
	if b.moveCount < 2*n-1 {
		return false, NoPlayer, false
	}

	width, height := b.grid.Width, b.grid.Height
	for m, p := range b.cells {
		if p == NoPlayer {
			continue
		}
		h, w := b.grid.ToRowCol(m)

		if w <= width-n && b.runFrom(m, 1, p) {
			return true, p, false
		}
		if h <= height-n && b.runFrom(m, width, p) {
			return true, p, false
		}
		if w <= width-n && h <= height-n && b.runFrom(m, width+1, p) {
			return true, p, false
		}
		if w >= n-1 && h <= height-n && b.runFrom(m, width-1, p) {
			return true, p, false
		}
	}
	return false, NoPlayer, false
}

// runFrom reports whether the n cells starting at anchor and advancing by
// step all belong to p. The caller guarantees the run fits on the board.
func (b *Board) runFrom(anchor, step int, p Player) bool {
	for i, idx := 1, anchor+step; i < b.cfg.NInRow; i, idx = i+1, idx+step {
		if b.cells[idx] != p {
			return false
		}
	}
	return true
}
