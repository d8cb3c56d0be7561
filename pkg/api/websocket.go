package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins - configure properly in production
	},
}

// WSMessage is a generic WebSocket message.
type WSMessage struct {
	Type    string          `json:"type"`    // Message type: "position", "encode", "ping"
	ID      string          `json:"id"`      // Request ID for correlating responses
	Payload json.RawMessage `json:"payload"` // Type-specific payload
}

// WSResponse is a generic WebSocket response.
type WSResponse struct {
	Type    string `json:"type"`              // Response type: "result", "error", "pong"
	ID      string `json:"id,omitempty"`      // Request ID
	Payload any    `json:"payload,omitempty"` // Response data
	Error   string `json:"error,omitempty"`   // Error message if any
	Code    string `json:"code,omitempty"`    // Error code if any
}

// WSClient represents a connected WebSocket client.
type WSClient struct {
	conn     *websocket.Conn
	handlers *Handlers
	sendChan chan WSResponse
	done     chan struct{} // Closed when writePump exits
}

// WebSocket handles WebSocket connections. Messages on one connection are
// answered in order. A message that finds the worker pool full is answered
// with SERVER_BUSY instead of waiting.
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	client := &WSClient{
		conn:     conn,
		handlers: h,
		sendChan: make(chan WSResponse, 256),
		done:     make(chan struct{}),
	}
	go client.writePump()
	client.readPump()
}

func (c *WSClient) writePump() {
	defer func() { close(c.done); c.conn.Close() }()
	for msg := range c.sendChan {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (c *WSClient) readPump() {
	defer func() { close(c.sendChan); c.conn.Close() }()
	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		if !c.handleMessage(msg) {
			return
		}
	}
}

// send queues resp for writePump. Returns false once writePump has stopped.
func (c *WSClient) send(resp WSResponse) bool {
	select {
	case c.sendChan <- resp:
		return true
	case <-c.done:
		return false
	}
}

func (c *WSClient) handleMessage(msg WSMessage) bool {
	switch msg.Type {
	case "position":
		return c.handlePosition(msg)
	case "encode":
		return c.handleEncode(msg)
	case "ping":
		return c.send(WSResponse{Type: "pong", ID: msg.ID})
	default:
		return c.send(WSResponse{Type: "error", ID: msg.ID, Error: "unknown message type", Code: CodeInvalidRequest})
	}
}

func (c *WSClient) sendError(id string, e *requestError) bool {
	return c.send(WSResponse{Type: "error", ID: id, Error: e.msg, Code: e.code})
}

func (c *WSClient) acquire() bool {
	if c.handlers.pool == nil {
		return true
	}
	return c.handlers.pool.TryAcquire()
}

func (c *WSClient) release() {
	if c.handlers.pool != nil {
		c.handlers.pool.Release()
	}
}

func (c *WSClient) handlePosition(msg WSMessage) bool {
	var req PositionRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return c.send(WSResponse{Type: "error", ID: msg.ID, Error: "invalid payload", Code: CodeInvalidJSON})
	}
	if !c.acquire() {
		return c.send(WSResponse{Type: "error", ID: msg.ID, Error: "server busy", Code: CodeServerBusy})
	}
	resp, rerr := c.handlers.position(req)
	c.release()
	if rerr != nil {
		return c.sendError(msg.ID, rerr)
	}
	return c.send(WSResponse{Type: "result", ID: msg.ID, Payload: resp})
}

func (c *WSClient) handleEncode(msg WSMessage) bool {
	var req EncodeRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return c.send(WSResponse{Type: "error", ID: msg.ID, Error: "invalid payload", Code: CodeInvalidJSON})
	}
	if !c.acquire() {
		return c.send(WSResponse{Type: "error", ID: msg.ID, Error: "server busy", Code: CodeServerBusy})
	}
	resp, rerr := c.handlers.encode(req)
	c.release()
	if rerr != nil {
		return c.sendError(msg.ID, rerr)
	}
	return c.send(WSResponse{Type: "result", ID: msg.ID, Payload: resp})
}
