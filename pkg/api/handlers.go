package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/yourusername/gomokuzero/pkg/engine"
)

// maxBodyBytes caps request bodies. A 32x32 move list fits comfortably.
const maxBodyBytes = 1 << 20

// MaxRequestSide is the largest width or height a request may set in its
// own board config. The server's default config is not subject to it.
const MaxRequestSide = 32

// Handlers holds the HTTP handlers and the default board configuration.
type Handlers struct {
	board   engine.Config
	version string
	pool    *WorkerPool
}

// NewHandlers creates a new Handlers instance without a worker pool.
func NewHandlers(board engine.Config, version string) *Handlers {
	return &Handlers{
		board:   board,
		version: version,
	}
}

// NewHandlersWithPool creates a new Handlers instance with a worker pool.
func NewHandlersWithPool(board engine.Config, version string, pool *WorkerPool) *Handlers {
	return &Handlers{
		board:   board,
		version: version,
		pool:    pool,
	}
}

// requestError is a failed request, mapped to an HTTP status and error code.
type requestError struct {
	status int
	code   string
	msg    string
}

func (e *requestError) Error() string { return e.msg }

func newRequestError(status int, code, format string, args ...any) *requestError {
	return &requestError{status: status, code: code, msg: fmt.Sprintf(format, args...)}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("write response")
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, msg string, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: msg,
		Code:  code,
	})
}

func writeRequestError(w http.ResponseWriter, e *requestError) {
	writeError(w, e.status, e.msg, e.code)
}

// replay builds a fresh board from req and plays its moves in order.
// No move may follow the end of the game.
func (h *Handlers) replay(req PositionRequest) (*engine.Board, *requestError) {
	cfg := h.board
	if req.Config != nil {
		cfg = *req.Config
		if cfg.Width > MaxRequestSide || cfg.Height > MaxRequestSide {
			return nil, newRequestError(http.StatusBadRequest, CodeInvalidConfig,
				"board %dx%d exceeds the %dx%d request limit", cfg.Width, cfg.Height, MaxRequestSide, MaxRequestSide)
		}
	}

	b, err := engine.NewBoard(cfg)
	if err != nil {
		return nil, newRequestError(http.StatusBadRequest, CodeInvalidConfig, "%v", err)
	}
	if err := b.Init(req.StartPlayer); err != nil {
		return nil, newRequestError(http.StatusBadRequest, CodeInvalidRequest, "%v", err)
	}

	moves, rerr := requestMoves(b.Grid(), req)
	if rerr != nil {
		return nil, rerr
	}

	for i, m := range moves {
		if out := b.Status(); out.Kind != engine.InProgress {
			return nil, newRequestError(http.StatusConflict, CodeGameOver,
				"move %d (cell %d) played after the game ended (%s)", i, m, out.Kind)
		}
		if err := b.ApplyMove(m); err != nil {
			if errors.Is(err, engine.ErrMoveUnavailable) {
				return nil, newRequestError(http.StatusUnprocessableEntity, CodeIllegalMove, "move %d: %v", i, err)
			}
			return nil, newRequestError(http.StatusInternalServerError, "", "move %d: %v", i, err)
		}
	}
	return b, nil
}

// requestMoves returns the move list of req as cell indices.
func requestMoves(g engine.Grid, req PositionRequest) ([]int, *requestError) {
	if len(req.Moves) > 0 && len(req.Locations) > 0 {
		return nil, newRequestError(http.StatusBadRequest, CodeInvalidRequest,
			"moves and locations are mutually exclusive")
	}
	if len(req.Locations) == 0 {
		return req.Moves, nil
	}

	moves := make([]int, len(req.Locations))
	for i, loc := range req.Locations {
		idx := g.LocationToIndex(loc)
		if idx == engine.InvalidIndex {
			return nil, newRequestError(http.StatusBadRequest, CodeInvalidLocation,
				"location %d: %v is not a [row, col] on a %dx%d board", i, loc, g.Width, g.Height)
		}
		moves[i] = idx
	}
	return moves, nil
}

// position answers a PositionRequest.
func (h *Handlers) position(req PositionRequest) (PositionResponse, *requestError) {
	b, rerr := h.replay(req)
	if rerr != nil {
		return PositionResponse{}, rerr
	}
	return NewPositionResponse(b), nil
}

// encode answers an EncodeRequest.
func (h *Handlers) encode(req EncodeRequest) (EncodeResponse, *requestError) {
	variant, err := engine.ParseVariant(req.Variant)
	if err != nil {
		return EncodeResponse{}, newRequestError(http.StatusBadRequest, CodeInvalidVariant, "%v", err)
	}
	b, rerr := h.replay(req.PositionRequest)
	if rerr != nil {
		return EncodeResponse{}, rerr
	}
	t, err := b.Encode(variant)
	if err != nil {
		return EncodeResponse{}, newRequestError(http.StatusBadRequest, CodeInvalidVariant, "%v", err)
	}
	layers, height, width := t.Shape()
	return EncodeResponse{
		Variant: variant.String(),
		Shape:   [3]int{layers, height, width},
		Planes:  t.Nested(),
	}, nil
}

// acquire takes a worker slot for r. The returned release func is never nil.
func (h *Handlers) acquire(r *http.Request) (func(), bool) {
	if h.pool == nil {
		return func() {}, true
	}
	if err := h.pool.Acquire(r.Context()); err != nil {
		return func() {}, false
	}
	return h.pool.Release, true
}

// Health handles GET /api/health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Version: h.version,
		Board:   h.board,
	}

	// Include pool stats if available
	if h.pool != nil {
		stats := h.pool.Stats()
		resp.Pool = &stats
	}

	writeJSON(w, http.StatusOK, resp)
}

// Position handles POST /api/position
func (h *Handlers) Position(w http.ResponseWriter, r *http.Request) {
	release, ok := h.acquire(r)
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "server busy", CodeServerBusy)
		return
	}
	defer release()

	var req PositionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", CodeInvalidJSON)
		return
	}

	resp, rerr := h.position(req)
	if rerr != nil {
		log.Debug().Str("code", rerr.code).Str("error", rerr.msg).Msg("position rejected")
		writeRequestError(w, rerr)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Encode handles POST /api/encode
func (h *Handlers) Encode(w http.ResponseWriter, r *http.Request) {
	release, ok := h.acquire(r)
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "server busy", CodeServerBusy)
		return
	}
	defer release()

	var req EncodeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", CodeInvalidJSON)
		return
	}

	resp, rerr := h.encode(req)
	if rerr != nil {
		log.Debug().Str("code", rerr.code).Str("error", rerr.msg).Msg("encode rejected")
		writeRequestError(w, rerr)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
