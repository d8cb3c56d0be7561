package engine

import "fmt"

// Default board configuration values.
const (
	DefaultWidth  = 8
	DefaultHeight = 8
	DefaultNInRow = 5
)

// MaxBoardCells bounds Width*Height so cell indices fit in an int and a
// board's buffers stay allocatable.
const MaxBoardCells = 1 << 20

// Config is the immutable shape of a game: board size, win length and
// whether the forbidden-move rule applies to the first mover.
type Config struct {
	Width          int  `json:"width"`
	Height         int  `json:"height"`
	NInRow         int  `json:"n_in_row"`
	ForbiddenHands bool `json:"forbidden_hands"`
}

// DefaultConfig returns an 8x8 board, five in a row, forbidden moves disabled.
func DefaultConfig() Config {
	return Config{
		Width:  DefaultWidth,
		Height: DefaultHeight,
		NInRow: DefaultNInRow,
	}
}

// Validate checks that a run of NInRow stones fits on the board.
func (c Config) Validate() error {
	if c.NInRow < 1 {
		return &ConfigError{Config: c, Reason: "n_in_row must be at least 1"}
	}
	if c.Width < c.NInRow || c.Height < c.NInRow {
		return &ConfigError{
			Config: c,
			Reason: fmt.Sprintf("board width and height can not be less than %d", c.NInRow),
		}
	}
	// Height >= NInRow >= 1 here.
	if c.Width > MaxBoardCells/c.Height {
		return &ConfigError{
			Config: c,
			Reason: fmt.Sprintf("board has more than %d cells", MaxBoardCells),
		}
	}
	return nil
}

// Grid returns the coordinate mapper for this configuration.
func (c Config) Grid() Grid {
	return Grid{Width: c.Width, Height: c.Height}
}
