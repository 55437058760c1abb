package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/pdf-qa-gen/frontend/internal/models"
)

// WebSocket message types
const (
	// Client -> Server messages
	MsgTypePing = "ping"

	// Server -> Client messages
	MsgTypeState = "state"
	MsgTypePong  = "pong"
	MsgTypeError = "error"
)

const wsWriteTimeout = 10 * time.Second

// WSMessage is the envelope for every frame on the socket
type WSMessage struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// WebSocketHandler pushes controller snapshots to connected pages
type WebSocketHandler struct {
	controller Controller
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(controller Controller, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		controller: controller,
		upgrader: websocket.Upgrader{
			// the page is served from this same process
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
		},
		logger: logger,
	}
}

// HandleWebSocket upgrades the connection and sends a state message after
// every controller change until the client goes away.
func (wsh *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	ws, err := wsh.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	updates, unsubscribe := wsh.controller.Subscribe()
	defer unsubscribe()

	wsh.logger.Debug("websocket client connected", "remote", c.RealIP())

	// only this goroutine writes; the reader hands pings over
	pings := make(chan struct{}, 1)
	closed := make(chan struct{})
	go wsh.readLoop(ws, pings, closed)

	for {
		select {
		case <-closed:
			wsh.logger.Debug("websocket client disconnected", "remote", c.RealIP())
			return nil
		case <-pings:
			if err := wsh.send(ws, MsgTypePong, nil); err != nil {
				return nil
			}
		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			if err := wsh.sendState(ws, snap); err != nil {
				return nil
			}
		}
	}
}

func (wsh *WebSocketHandler) readLoop(ws *websocket.Conn, pings chan<- struct{}, closed chan<- struct{}) {
	defer close(closed)
	for {
		var msg WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsh.logger.Debug("websocket read error", "error", err)
			}
			return
		}
		if msg.Type == MsgTypePing {
			select {
			case pings <- struct{}{}:
			default:
			}
		}
	}
}

func (wsh *WebSocketHandler) sendState(ws *websocket.Conn, snap models.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return wsh.send(ws, MsgTypeError, json.RawMessage(`"failed to encode state"`))
	}
	return wsh.send(ws, MsgTypeState, payload)
}

func (wsh *WebSocketHandler) send(ws *websocket.Conn, msgType string, payload json.RawMessage) error {
	ws.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return ws.WriteJSON(WSMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	})
}
