package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Frame is the JSON envelope of every websocket text message.
type Frame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type outbound struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// Conn is one live client connection. Writes go through a bounded buffer
// drained by a single writer goroutine.
type Conn struct {
	ID     string
	UserID string

	ws        *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	closeCode int
}

func newConn(wsConn *websocket.Conn, userID string, buffer int) *Conn {
	return &Conn{
		ID:        uuid.NewString(),
		UserID:    userID,
		ws:        wsConn,
		send:      make(chan []byte, buffer),
		done:      make(chan struct{}),
		closeCode: websocket.CloseNormalClosure,
	}
}

// Send queues an event without blocking. It returns false when the
// connection is closed or its buffer is full; the event is dropped then.
func (c *Conn) Send(event string, payload any) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	data, err := json.Marshal(outbound{Event: event, Payload: payload})
	if err != nil {
		log.Error("ws: encode event", "event", event, "err", err)
		return false
	}

	select {
	case c.send <- data:
		return true
	default:
		log.Warn("ws: send buffer full, dropping event", "user", c.UserID, "conn", c.ID, "event", event)
		return false
	}
}

// Close stops the writer, which sends a close frame and releases the socket.
func (c *Conn) Close() {
	c.closeWith(websocket.CloseNormalClosure)
}

func (c *Conn) closeWith(code int) {
	c.closeOnce.Do(func() {
		c.closeCode = code
		close(c.done)
	})
}

// readPump consumes inbound frames until the peer goes away. handle is
// called for every well-formed text frame.
func (c *Conn) readPump(handle func(Frame)) {
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Debug("ws: read", "user", c.UserID, "conn", c.ID, "err", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		var f Frame
		if err := json.Unmarshal(data, &f); err != nil || f.Event == "" {
			c.Send("error", map[string]string{"message": "invalid frame"})
			continue
		}
		handle(f)
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.closeWith(websocket.CloseAbnormalClosure)
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.closeWith(websocket.CloseAbnormalClosure)
				return
			}
		case <-c.done:
			_ = c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(c.closeCode, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}
