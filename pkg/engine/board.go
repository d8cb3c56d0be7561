// Package engine provides the board-state authority for Gomoku-family games:
// move application, win and forbidden-move detection, and the model input encodings.
package engine

import (
	"fmt"
	"slices"
)

// Player identifies the occupant of a cell.
type Player int8

const (
	NoPlayer Player = -1 // Empty cell, or no winner
	Player1  Player = 1
	Player2  Player = 2
)

// NoMove is the last move of a board on which nothing has been played.
const NoMove = -1

// HistoryLen is the length of the recent move window fed to the history encoding.
const HistoryLen = 16

// HistoryFill is the value of history slots that predate the first move.
// It is a valid cell index (cell 0); the encoders rely on this exact value.
const HistoryFill = 0

// Board is the mutable state of one game. A Board is owned by a single
// goroutine; parallel games use separate instances (see Clone).
type Board struct {
	cfg  Config
	grid Grid

	players     [2]Player
	startPlayer int
	current     Player

	cells      []Player // Occupant per cell index, NoPlayer when empty
	availables []int    // Empty cells in ascending order
	lastMove   int
	history    [HistoryLen]int
	moveCount  int
}

// NewBoard creates a board for cfg and initializes it with player 1 to move.
func NewBoard(cfg Config) (*Board, error) {
	b := &Board{
		cfg:     cfg,
		grid:    cfg.Grid(),
		players: [2]Player{Player1, Player2},
	}
	if err := b.Init(0); err != nil {
		return nil, err
	}
	return b, nil
}

// Init resets the board for a new game. startPlayer selects which of the two
// players moves first (0 = Player1, 1 = Player2).
func (b *Board) Init(startPlayer int) error {
	if err := b.cfg.Validate(); err != nil {
		return err
	}
	if startPlayer != 0 && startPlayer != 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidStartPlayer, startPlayer)
	}

	size := b.grid.Size()
	b.startPlayer = startPlayer
	b.current = b.players[startPlayer]

	if cap(b.cells) < size {
		b.cells = make([]Player, size)
		b.availables = make([]int, size)
	}
	b.cells = b.cells[:size]
	b.availables = b.availables[:size]
	for i := 0; i < size; i++ {
		b.cells[i] = NoPlayer
		b.availables[i] = i
	}

	b.lastMove = NoMove
	for i := range b.history {
		b.history[i] = HistoryFill
	}
	b.moveCount = 0
	return nil
}

// ApplyMove places the current player's stone on index and passes the turn.
// The cell must be on the board and empty; otherwise ErrMoveUnavailable is
// returned and the board is left unchanged.
func (b *Board) ApplyMove(index int) error {
	if !b.grid.Contains(index) || b.cells[index] != NoPlayer {
		return fmt.Errorf("%w: cell %d", ErrMoveUnavailable, index)
	}

	pos, found := slices.BinarySearch(b.availables, index)
	if !found {
		return fmt.Errorf("%w: cell %d", ErrMoveUnavailable, index)
	}
	b.availables = slices.Delete(b.availables, pos, pos+1)

	b.cells[index] = b.current
	b.current = b.Opponent(b.current)
	b.lastMove = index
	copy(b.history[:], b.history[1:])
	b.history[HistoryLen-1] = index
	b.moveCount++
	return nil
}

// Opponent returns the other player id.
func (b *Board) Opponent(p Player) Player {
	if p == b.players[1] {
		return b.players[0]
	}
	return b.players[1]
}

// Clone returns an independent deep copy of the board, for callers that need
// to explore moves without disturbing the game.
func (b *Board) Clone() *Board {
	c := *b
	c.cells = slices.Clone(b.cells)
	c.availables = slices.Clone(b.availables)
	return &c
}

// Config returns the board configuration.
func (b *Board) Config() Config { return b.cfg }

// Grid returns the coordinate mapper of the board.
func (b *Board) Grid() Grid { return b.grid }

// Players returns the two player ids, in first-mover index order.
func (b *Board) Players() [2]Player { return b.players }

// StartPlayer returns the first-mover index passed to Init.
func (b *Board) StartPlayer() int { return b.startPlayer }

// FirstMover returns the id of the player who moved first.
func (b *Board) FirstMover() Player { return b.players[b.startPlayer] }

// CurrentPlayer returns the player to move next.
func (b *Board) CurrentPlayer() Player { return b.current }

// LastMove returns the most recently played cell, or NoMove.
func (b *Board) LastMove() int { return b.lastMove }

// MoveCount returns the number of stones on the board.
func (b *Board) MoveCount() int { return b.moveCount }

// History returns the recent move window, oldest first.
func (b *Board) History() [HistoryLen]int { return b.history }

// At returns the occupant of a cell, NoPlayer for empty or off-board cells.
func (b *Board) At(index int) Player {
	if !b.grid.Contains(index) {
		return NoPlayer
	}
	return b.cells[index]
}

// IsAvailable reports whether a stone can be placed on index.
func (b *Board) IsAvailable(index int) bool {
	return b.grid.Contains(index) && b.cells[index] == NoPlayer
}

// Availables returns the empty cells in ascending index order.
func (b *Board) Availables() []int {
	return slices.Clone(b.availables)
}

// AvailableCount returns the number of empty cells.
func (b *Board) AvailableCount() int { return len(b.availables) }

// IsFull reports whether every cell is occupied.
func (b *Board) IsFull() bool { return len(b.availables) == 0 }
