package widget

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"assistkit/core"
	"assistkit/protocol"
)

// InboundMessage is one decoded envelope received from the widget.
type InboundMessage struct {
	Type    protocol.MessageType
	Payload json.RawMessage
}

// WebSocketService owns one widget connection: serialized writes of protocol
// envelopes out, a read loop of decoded envelopes in.
type WebSocketService struct {
	conn   *websocket.Conn
	mu     sync.Mutex // protects writes and the closed flag
	closed bool
	logger *core.Logger
}

// NewWebSocketService wraps an already-upgraded connection.
func NewWebSocketService(conn *websocket.Conn, logger *core.Logger) *WebSocketService {
	if logger == nil {
		logger = core.GetLogger()
	}
	return &WebSocketService{
		conn:   conn,
		logger: logger.With(map[string]interface{}{"component": "widget-transport"}),
	}
}

// ReadRegister blocks for the widget's first message, which must be a
// register envelope declaring locale and capture capabilities.
func (ws *WebSocketService) ReadRegister() (protocol.RegisterPayload, error) {
	_, msg, err := ws.conn.ReadMessage()
	if err != nil {
		return protocol.RegisterPayload{}, fmt.Errorf("widget: read register: %w", err)
	}
	msgType, raw, err := protocol.Unmarshal(msg)
	if err != nil {
		return protocol.RegisterPayload{}, err
	}
	if msgType != protocol.MsgRegister {
		return protocol.RegisterPayload{}, fmt.Errorf("widget: expected %q as first message, got %q", protocol.MsgRegister, msgType)
	}
	return protocol.UnmarshalPayload[protocol.RegisterPayload](raw)
}

// Send marshals and writes one envelope. Safe for concurrent use.
func (ws *WebSocketService) Send(msgType protocol.MessageType, payload interface{}) error {
	data, err := protocol.Marshal(msgType, payload)
	if err != nil {
		return err
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.closed {
		return websocket.ErrCloseSent
	}
	return ws.conn.WriteMessage(websocket.TextMessage, data)
}

// StartReceiving continuously reads envelopes from the connection and decodes
// them onto outputChan. The loop ends on the first read error, which is
// delivered to errorChan (a normal close surfaces there too, as does Close:
// closing the connection makes the pending ReadMessage fail).
func (ws *WebSocketService) StartReceiving(outputChan chan<- InboundMessage, errorChan chan<- error) {
	conn := ws.conn
	go func() {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				errorChan <- err
				return
			}

			msgType, raw, err := protocol.Unmarshal(msg)
			if err != nil {
				ws.logger.Warn("discarding undecodable widget message", "error", err)
				continue
			}
			outputChan <- InboundMessage{Type: msgType, Payload: raw}
		}
	}()
}

// Close shuts down the connection. Safe to call more than once.
func (ws *WebSocketService) Close() error {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.closed {
		return nil
	}
	ws.closed = true
	return ws.conn.Close()
}
