package api

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yourusername/gomokuzero/pkg/engine"
)

// Player 1 fills row 0, columns 0-4 of the default 8x8 board; player 2
// answers on row 1.
var rowWinMoves = []int{0, 8, 1, 9, 2, 10, 3, 11, 4}

// Player 1 closes a horizontal and a vertical open three at (3,4).
var doubleThreeMoves = []int{26, 56, 27, 57, 12, 59, 20, 61, 28}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatalf("Encode request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Decode response: %v", err)
	}
}

func TestHealthHandler(t *testing.T) {
	h := NewHandlers(engine.DefaultConfig(), "test-version")

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	h.Health(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Health status = %d, want %d", w.Code, http.StatusOK)
	}

	var health HealthResponse
	decodeBody(t, w, &health)
	if health.Status != "ok" {
		t.Errorf("Status = %q, want %q", health.Status, "ok")
	}
	if health.Version != "test-version" {
		t.Errorf("Version = %q, want %q", health.Version, "test-version")
	}
	if health.Board != engine.DefaultConfig() {
		t.Errorf("Board = %+v, want %+v", health.Board, engine.DefaultConfig())
	}
	if health.Pool != nil {
		t.Error("Pool stats reported without a pool")
	}
}

func TestHealthHandlerPoolStats(t *testing.T) {
	h := NewHandlersWithPool(engine.DefaultConfig(), "1.0.0", NewWorkerPool(3))

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	var health HealthResponse
	decodeBody(t, w, &health)
	if health.Pool == nil || health.Pool.Max != 3 {
		t.Errorf("Pool = %+v, want max 3", health.Pool)
	}
}

func TestPositionHandler(t *testing.T) {
	forbidden := engine.DefaultConfig()
	forbidden.ForbiddenHands = true

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   string
		check      func(t *testing.T, resp PositionResponse)
	}{
		{
			name:       "empty board",
			body:       PositionRequest{},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, resp PositionResponse) {
				if resp.Status != "in_progress" || resp.Winner != -1 {
					t.Errorf("Status = %q winner %d, want in_progress -1", resp.Status, resp.Winner)
				}
				if resp.CurrentPlayer != 1 || resp.LastMove != -1 || resp.LastLocation != nil {
					t.Errorf("CurrentPlayer %d LastMove %d LastLocation %v", resp.CurrentPlayer, resp.LastMove, resp.LastLocation)
				}
				if len(resp.Available) != 64 {
					t.Errorf("len(Available) = %d, want 64", len(resp.Available))
				}
			},
		},
		{
			name:       "player 2 starts",
			body:       PositionRequest{StartPlayer: 1, Moves: []int{5}},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, resp PositionResponse) {
				if resp.CurrentPlayer != 1 {
					t.Errorf("CurrentPlayer = %d, want 1", resp.CurrentPlayer)
				}
				if resp.LastMove != 5 || len(resp.LastLocation) != 2 || resp.LastLocation[0] != 0 || resp.LastLocation[1] != 5 {
					t.Errorf("LastMove %d LastLocation %v, want 5 [0 5]", resp.LastMove, resp.LastLocation)
				}
			},
		},
		{
			name:       "row win",
			body:       PositionRequest{Moves: rowWinMoves},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, resp PositionResponse) {
				if resp.Status != "winner" || resp.Winner != 1 || resp.Forbidden {
					t.Errorf("Status %q winner %d forbidden %v, want winner 1", resp.Status, resp.Winner, resp.Forbidden)
				}
				if resp.MoveCount != len(rowWinMoves) {
					t.Errorf("MoveCount = %d, want %d", resp.MoveCount, len(rowWinMoves))
				}
			},
		},
		{
			name:       "locations",
			body:       PositionRequest{Locations: [][]int{{0, 0}, {1, 0}, {0, 1}}},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, resp PositionResponse) {
				if resp.LastMove != 1 || resp.MoveCount != 3 {
					t.Errorf("LastMove %d MoveCount %d, want 1 3", resp.LastMove, resp.MoveCount)
				}
			},
		},
		{
			name:       "double three is forbidden",
			body:       PositionRequest{Config: &forbidden, Moves: doubleThreeMoves},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, resp PositionResponse) {
				if resp.Status != "winner" || resp.Winner != 2 || !resp.Forbidden {
					t.Errorf("Status %q winner %d forbidden %v, want forbidden win for 2", resp.Status, resp.Winner, resp.Forbidden)
				}
			},
		},
		{
			name:       "double three without the rule",
			body:       PositionRequest{Moves: doubleThreeMoves},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, resp PositionResponse) {
				if resp.Status != "in_progress" {
					t.Errorf("Status = %q, want in_progress", resp.Status)
				}
			},
		},
		{
			name:       "invalid JSON",
			body:       "{not json",
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeInvalidJSON,
		},
		{
			name:       "board smaller than win length",
			body:       PositionRequest{Config: &engine.Config{Width: 4, Height: 8, NInRow: 5}},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeInvalidConfig,
		},
		{
			name:       "board cells overflow",
			body:       PositionRequest{Config: &engine.Config{Width: math.MaxInt / 2, Height: math.MaxInt / 2, NInRow: 5}},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeInvalidConfig,
		},
		{
			name:       "board wider than request limit",
			body:       PositionRequest{Config: &engine.Config{Width: MaxRequestSide + 1, Height: 8, NInRow: 5}},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeInvalidConfig,
		},
		{
			name:       "largest request board",
			body:       PositionRequest{Config: &engine.Config{Width: MaxRequestSide, Height: MaxRequestSide, NInRow: 5}, Moves: []int{1023}},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, resp PositionResponse) {
				if resp.Status != "in_progress" || len(resp.Available) != 1023 {
					t.Errorf("Status %q with %d available, want in_progress 1023", resp.Status, len(resp.Available))
				}
			},
		},
		{
			name:       "bad start player",
			body:       PositionRequest{StartPlayer: 2},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeInvalidRequest,
		},
		{
			name:       "moves and locations",
			body:       PositionRequest{Moves: []int{1}, Locations: [][]int{{0, 0}}},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeInvalidRequest,
		},
		{
			name:       "location off board",
			body:       PositionRequest{Locations: [][]int{{8, 0}}},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeInvalidLocation,
		},
		{
			name:       "location wrong length",
			body:       PositionRequest{Locations: [][]int{{1, 2, 3}}},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeInvalidLocation,
		},
		{
			name:       "occupied cell",
			body:       PositionRequest{Moves: []int{3, 3}},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   CodeIllegalMove,
		},
		{
			name:       "cell off board",
			body:       PositionRequest{Moves: []int{64}},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   CodeIllegalMove,
		},
		{
			name:       "move after win",
			body:       PositionRequest{Moves: append(append([]int(nil), rowWinMoves...), 12)},
			wantStatus: http.StatusConflict,
			wantCode:   CodeGameOver,
		},
	}

	h := NewHandlers(engine.DefaultConfig(), "1.0.0")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, h.Position, "/api/position", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("Status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantCode != "" {
				var errResp ErrorResponse
				decodeBody(t, w, &errResp)
				if errResp.Code != tt.wantCode {
					t.Errorf("Code = %q, want %q (%s)", errResp.Code, tt.wantCode, errResp.Error)
				}
				return
			}
			var resp PositionResponse
			decodeBody(t, w, &resp)
			if tt.check != nil {
				tt.check(t, resp)
			}
		})
	}
}

func TestPositionHandlerServerBusy(t *testing.T) {
	pool := NewWorkerPool(1)
	pool.TryAcquire()
	defer pool.Release()
	h := NewHandlersWithPool(engine.DefaultConfig(), "1.0.0", pool)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/position", strings.NewReader(`{}`)).WithContext(ctx)
	w := httptest.NewRecorder()
	h.Position(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestEncodeHandler(t *testing.T) {
	h := NewHandlers(engine.DefaultConfig(), "1.0.0")

	t.Run("last move", func(t *testing.T) {
		w := postJSON(t, h.Encode, "/api/encode", EncodeRequest{
			PositionRequest: PositionRequest{Moves: []int{0}},
		})
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want 200 (body %s)", w.Code, w.Body.String())
		}
		var resp EncodeResponse
		decodeBody(t, w, &resp)

		if resp.Variant != "last_move" || resp.Shape != [3]int{4, 8, 8} {
			t.Fatalf("Variant %q Shape %v, want last_move [4 8 8]", resp.Variant, resp.Shape)
		}
		// Cell 0 is board row 0, which is the last output row.
		if resp.Planes[2][7][0] != 1 {
			t.Error("last move not marked at output row 7, col 0")
		}
		if resp.Planes[1][7][0] != 1 || resp.Planes[0][7][0] != 0 {
			t.Error("player 1 stone should be on the opponent layer once player 2 is to move")
		}
		if resp.Planes[3][0][0] != 0 {
			t.Error("colour layer should be empty after an odd number of moves")
		}
	})

	t.Run("history", func(t *testing.T) {
		w := postJSON(t, h.Encode, "/api/encode", EncodeRequest{
			PositionRequest: PositionRequest{Moves: []int{9, 10}},
			Variant:         "history",
		})
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want 200 (body %s)", w.Code, w.Body.String())
		}
		var resp EncodeResponse
		decodeBody(t, w, &resp)

		if resp.Variant != "history" || resp.Shape != [3]int{19, 8, 8} {
			t.Fatalf("Variant %q Shape %v, want history [19 8 8]", resp.Variant, resp.Shape)
		}
		if resp.Planes[18][4][4] != 1 {
			t.Error("colour layer should be full after an even number of moves")
		}
	})

	t.Run("unknown variant", func(t *testing.T) {
		w := postJSON(t, h.Encode, "/api/encode", EncodeRequest{Variant: "pixels"})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("Status = %d, want 400", w.Code)
		}
		var errResp ErrorResponse
		decodeBody(t, w, &errResp)
		if errResp.Code != CodeInvalidVariant {
			t.Errorf("Code = %q, want %q", errResp.Code, CodeInvalidVariant)
		}
	})

	t.Run("oversized board", func(t *testing.T) {
		w := postJSON(t, h.Encode, "/api/encode", EncodeRequest{
			PositionRequest: PositionRequest{Config: &engine.Config{Width: math.MaxInt / 2, Height: math.MaxInt / 2, NInRow: 5}},
		})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("Status = %d, want 400", w.Code)
		}
		var errResp ErrorResponse
		decodeBody(t, w, &errResp)
		if errResp.Code != CodeInvalidConfig {
			t.Errorf("Code = %q, want %q", errResp.Code, CodeInvalidConfig)
		}
	})

	t.Run("illegal move", func(t *testing.T) {
		w := postJSON(t, h.Encode, "/api/encode", EncodeRequest{
			PositionRequest: PositionRequest{Moves: []int{-1}},
		})
		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
		}
	})
}

func TestRouter(t *testing.T) {
	s := NewServer(engine.DefaultConfig(), DefaultConfig(), "1.0.0")
	server := httptest.NewServer(s.Router())
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("CORS header missing")
	}

	resp, err = http.Post(server.URL+"/api/position", "application/json", strings.NewReader(`{"moves":[1,2]}`))
	if err != nil {
		t.Fatalf("POST /api/position: %v", err)
	}
	var pos PositionResponse
	err = json.NewDecoder(resp.Body).Decode(&pos)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if pos.MoveCount != 2 || pos.LastMove != 2 {
		t.Errorf("MoveCount %d LastMove %d, want 2 2", pos.MoveCount, pos.LastMove)
	}

	resp, err = http.Get(server.URL + "/api/nowhere")
	if err != nil {
		t.Fatalf("GET /api/nowhere: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown route status = %d, want 404", resp.StatusCode)
	}

	if total := s.Pool().Stats().Total; total != 1 {
		t.Errorf("pool total = %d, want 1", total)
	}
}

func dialWS(t *testing.T, h *Handlers) (*websocket.Conn, func()) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(h.WebSocket))
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	ws, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		server.Close()
		t.Fatalf("WebSocket dial failed: %v", err)
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Errorf("Status = %d, want %d", resp.StatusCode, http.StatusSwitchingProtocols)
	}
	return ws, func() { ws.Close(); server.Close() }
}

func roundTrip(t *testing.T, ws *websocket.Conn, msg WSMessage) WSResponse {
	t.Helper()
	if err := ws.WriteJSON(msg); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var resp WSResponse
	if err := ws.ReadJSON(&resp); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	return resp
}

func payload(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal payload: %v", err)
	}
	return data
}

func TestWebSocketPing(t *testing.T) {
	ws, done := dialWS(t, NewHandlers(engine.DefaultConfig(), "1.0.0"))
	defer done()

	resp := roundTrip(t, ws, WSMessage{Type: "ping", ID: "test-ping-1"})
	if resp.Type != "pong" {
		t.Errorf("Response type = %q, want %q", resp.Type, "pong")
	}
	if resp.ID != "test-ping-1" {
		t.Errorf("Response ID = %q, want %q", resp.ID, "test-ping-1")
	}
}

func TestWebSocketPosition(t *testing.T) {
	ws, done := dialWS(t, NewHandlersWithPool(engine.DefaultConfig(), "1.0.0", NewWorkerPool(1)))
	defer done()

	resp := roundTrip(t, ws, WSMessage{
		Type:    "position",
		ID:      "p1",
		Payload: payload(t, PositionRequest{Moves: rowWinMoves}),
	})
	if resp.Type != "result" || resp.ID != "p1" {
		t.Fatalf("Response = %+v, want result p1", resp)
	}
	result, ok := resp.Payload.(map[string]any)
	if !ok {
		t.Fatalf("Payload type %T", resp.Payload)
	}
	if result["status"] != "winner" || result["winner"] != float64(1) {
		t.Errorf("status %v winner %v, want winner 1", result["status"], result["winner"])
	}

	resp = roundTrip(t, ws, WSMessage{
		Type:    "position",
		ID:      "p2",
		Payload: payload(t, PositionRequest{Moves: []int{7, 7}}),
	})
	if resp.Type != "error" || resp.Code != CodeIllegalMove {
		t.Errorf("Response = %+v, want %s error", resp, CodeIllegalMove)
	}
}

func TestWebSocketEncode(t *testing.T) {
	ws, done := dialWS(t, NewHandlers(engine.DefaultConfig(), "1.0.0"))
	defer done()

	resp := roundTrip(t, ws, WSMessage{
		Type: "encode",
		ID:   "e1",
		Payload: payload(t, EncodeRequest{
			PositionRequest: PositionRequest{Moves: []int{0}},
			Variant:         "19",
		}),
	})
	if resp.Type != "result" {
		t.Fatalf("Response = %+v, want result", resp)
	}
	result := resp.Payload.(map[string]any)
	shape := result["shape"].([]any)
	if len(shape) != 3 || shape[0] != float64(19) {
		t.Errorf("shape = %v, want [19 8 8]", shape)
	}
}

func TestWebSocketErrors(t *testing.T) {
	ws, done := dialWS(t, NewHandlers(engine.DefaultConfig(), "1.0.0"))
	defer done()

	resp := roundTrip(t, ws, WSMessage{Type: "resign", ID: "x"})
	if resp.Type != "error" || resp.Error != "unknown message type" {
		t.Errorf("Response = %+v, want unknown message type error", resp)
	}

	resp = roundTrip(t, ws, WSMessage{Type: "position", ID: "y", Payload: json.RawMessage(`[1,2]`)})
	if resp.Type != "error" || resp.Code != CodeInvalidJSON {
		t.Errorf("Response = %+v, want %s error", resp, CodeInvalidJSON)
	}
}

func TestWebSocketServerBusy(t *testing.T) {
	pool := NewWorkerPool(1)
	pool.TryAcquire()
	defer pool.Release()

	ws, done := dialWS(t, NewHandlersWithPool(engine.DefaultConfig(), "1.0.0", pool))
	defer done()

	resp := roundTrip(t, ws, WSMessage{
		Type:    "position",
		ID:      "busy",
		Payload: payload(t, PositionRequest{Moves: []int{1}}),
	})
	if resp.Type != "error" || resp.Code != CodeServerBusy {
		t.Errorf("Response = %+v, want %s error", resp, CodeServerBusy)
	}
	if active := pool.Stats().Active; active != 1 {
		t.Errorf("Active = %d, want 1", active)
	}
}

func TestWSClientStopsWhenWriterGone(t *testing.T) {
	c := &WSClient{
		handlers: NewHandlers(engine.DefaultConfig(), "1.0.0"),
		sendChan: make(chan WSResponse, 1),
		done:     make(chan struct{}),
	}
	c.sendChan <- WSResponse{Type: "pong"} // queue full, nobody draining
	close(c.done)

	msg := WSMessage{Type: "position", ID: "late", Payload: payload(t, PositionRequest{Moves: []int{1}})}
	result := make(chan bool, 1)
	go func() {
		result <- c.handleMessage(msg)
	}()

	select {
	case ok := <-result:
		if ok {
			t.Error("handleMessage reported success after the writer stopped")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handleMessage blocked on a full send queue")
	}
}
