package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrMoveUnavailable is returned by ApplyMove for a cell that is
	// off the board or already occupied.
	ErrMoveUnavailable = errors.New("move not available")

	// ErrInvalidStartPlayer is returned by Init when the first mover index is not 0 or 1.
	ErrInvalidStartPlayer = errors.New("start player must be 0 (player 1 first) or 1 (player 2 first)")

	// ErrUnknownVariant is returned by Encode for an unsupported encoding variant.
	ErrUnknownVariant = errors.New("unknown encoding variant")
)

// ConfigError reports a board configuration that cannot host a game.
type ConfigError struct {
	Config Config
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid board config %dx%d n=%d: %s",
		e.Config.Width, e.Config.Height, e.Config.NInRow, e.Reason)
}
