// Package api provides the HTTP/JSON and WebSocket position service.
//
// The service is stateless: every request carries a board configuration and
// a move list, which are replayed on a fresh board before answering.
package api

import "github.com/yourusername/gomokuzero/pkg/engine"

// ============================================================================
// Request Types
// ============================================================================

// PositionRequest describes a position as a replay from the empty board.
type PositionRequest struct {
	Config      *engine.Config `json:"config,omitempty"`    // Board config (server default if omitted)
	StartPlayer int            `json:"start_player"`        // 0 = player 1 first, 1 = player 2 first
	Moves       []int          `json:"moves,omitempty"`     // Cell indices in play order
	Locations   [][]int        `json:"locations,omitempty"` // [row, col] pairs, alternative to Moves
}

// EncodeRequest asks for the model input tensor of a position.
type EncodeRequest struct {
	PositionRequest
	Variant string `json:"variant,omitempty"` // "last_move" (default) or "history"
}

// ============================================================================
// Response Types
// ============================================================================

// PositionResponse reports the state of a replayed position.
type PositionResponse struct {
	Status        string `json:"status"`                  // "in_progress", "winner" or "tie"
	Winner        int    `json:"winner"`                  // Winning player id, -1 if none
	Forbidden     bool   `json:"forbidden,omitempty"`     // Win awarded by the forbidden-move rule
	CurrentPlayer int    `json:"current_player"`          // Player to move next
	LastMove      int    `json:"last_move"`               // Last cell played, -1 if none
	LastLocation  []int  `json:"last_location,omitempty"` // [row, col] of the last move
	MoveCount     int    `json:"move_count"`              // Stones on the board
	Available     []int  `json:"available"`               // Empty cells, ascending
}

// EncodeResponse carries an encoded position.
type EncodeResponse struct {
	Variant string        `json:"variant"` // Encoding variant used
	Shape   [3]int        `json:"shape"`   // [layers, height, width]
	Planes  [][][]float64 `json:"planes"`  // [layer][row][col], row 0 = top board row
}

// ErrorResponse is returned when an error occurs.
type ErrorResponse struct {
	Error string `json:"error"`          // Error message
	Code  string `json:"code,omitempty"` // Error code
}

// HealthResponse is the response for health check.
type HealthResponse struct {
	Status  string        `json:"status"`         // "ok"
	Version string        `json:"version"`        // Service version
	Board   engine.Config `json:"board"`          // Default board configuration
	Pool    *PoolStats    `json:"pool,omitempty"` // Worker pool statistics
}

// Error codes.
const (
	CodeInvalidJSON     = "INVALID_JSON"
	CodeInvalidConfig   = "INVALID_CONFIG"
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeInvalidLocation = "INVALID_LOCATION"
	CodeIllegalMove     = "ILLEGAL_MOVE"
	CodeGameOver        = "GAME_OVER"
	CodeInvalidVariant  = "INVALID_VARIANT"
	CodeServerBusy      = "SERVER_BUSY"
)

// NewPositionResponse builds the response for a board.
func NewPositionResponse(b *engine.Board) PositionResponse {
	out := b.Status()
	resp := PositionResponse{
		Status:        out.Kind.String(),
		Winner:        int(out.Winner),
		Forbidden:     out.Forbidden,
		CurrentPlayer: int(b.CurrentPlayer()),
		LastMove:      b.LastMove(),
		MoveCount:     b.MoveCount(),
		Available:     b.Availables(),
	}
	if last := b.LastMove(); last != engine.NoMove {
		row, col := b.Grid().ToRowCol(last)
		resp.LastLocation = []int{row, col}
	}
	return resp
}
