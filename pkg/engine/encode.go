package engine

import (
	"fmt"

	"github.com/yourusername/gomokuzero/internal/planes"
)

// Variant selects a model input encoding.
type Variant int

const (
	// LastMove is the 4-layer encoding: own stones, opponent stones,
	// last move, colour to play.
	LastMove Variant = iota
	// History is the 19-layer encoding: own stones, opponent stones,
	// 16 strided recent-move layers, colour to play.
	History
)

// Layer counts of the two encodings.
const (
	LastMoveLayers = 4
	HistoryLayers  = HistoryLen + 3
)

// Layers returns the number of layers produced by the variant.
func (v Variant) Layers() int {
	if v == History {
		return HistoryLayers
	}
	return LastMoveLayers
}

func (v Variant) String() string {
	switch v {
	case LastMove:
		return "last_move"
	case History:
		return "history"
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// ParseVariant parses a variant name. The layer counts "4" and "19" are
// accepted as aliases.
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "last_move", "4", "":
		return LastMove, nil
	case "history", "19":
		return History, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

// Encode renders the board with the given variant.
func (b *Board) Encode(v Variant) (*planes.Tensor, error) {
	switch v {
	case LastMove:
		return b.CurrentState(), nil
	case History:
		return b.HistoryState(), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownVariant, int(v))
}

// CurrentState returns the 4-layer encoding from the perspective of the
// player to move. Output row 0 is the highest board row.
func (b *Board) CurrentState() *planes.Tensor {
	t := planes.New(LastMoveLayers, b.grid.Height, b.grid.Width)
	if b.moveCount > 0 {
		b.markStones(t)
		b.mark(t, 2, b.lastMove)
	}
	if b.moveCount%2 == 0 {
		t.Fill(3, 1.0)
	}
	t.FlipRows()
	return t
}

// HistoryState returns the 19-layer encoding from the perspective of the
// player to move. Layer 2+i marks the cells stored in history slots
// i, i+2, i+4, ... of the recent move window. Output row 0 is the highest
// board row.
func (b *Board) HistoryState() *planes.Tensor {
	t := planes.New(HistoryLayers, b.grid.Height, b.grid.Width)
	if b.moveCount > 0 {
		b.markStones(t)
		for i := 0; i < HistoryLen; i++ {
			for slot := i; slot < HistoryLen; slot += 2 {
				b.mark(t, 2+i, b.history[slot])
			}
		}
	}
	if b.moveCount%2 == 0 {
		t.Fill(HistoryLayers-1, 1.0)
	}
	t.FlipRows()
	return t
}

// markStones sets layer 0 for the player to move and layer 1 for the opponent.
func (b *Board) markStones(t *planes.Tensor) {
	for idx, p := range b.cells {
		switch {
		case p == NoPlayer:
		case p == b.current:
			b.mark(t, 0, idx)
		default:
			b.mark(t, 1, idx)
		}
	}
}

func (b *Board) mark(t *planes.Tensor, layer, index int) {
	row, col := b.grid.ToRowCol(index)
	t.Set(layer, row, col, 1.0)
}
