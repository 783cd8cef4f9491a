package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/ericogr/titan-arena/internal/constants"
	"github.com/ericogr/titan-arena/internal/logging"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 << 10
	sendBuffer     = 32
)

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once

	// set once authenticated; guarded by hub.mu
	userID   string
	username string
}

func newClient(h *Hub, conn *websocket.Conn) *client {
	return &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

// enqueue queues an encoded message. A client too slow to drain its buffer
// is disconnected rather than allowed to stall the sender.
func (c *client) enqueue(b []byte) {
	select {
	case <-c.done:
	case c.send <- b:
	default:
		logging.Info("ws: send buffer full; dropping client", logging.Fields{constants.LogFieldPlayerID: c.hub.userOf(c)})
		c.close()
	}
}

func (c *client) sendMessage(msgType string, payload interface{}) {
	b, err := encode(msgType, payload)
	if err != nil {
		logging.Error("ws: failed to encode message", err, logging.Fields{constants.LogFieldEvent: msgType})
		return
	}
	c.enqueue(b)
}

func (c *client) sendError(msg string) {
	c.sendMessage(TypeError, ErrorMessage{Message: msg})
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Info("ws: read error", logging.Fields{"error": err.Error()})
			}
			return
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			logging.Info("ws: failed to parse incoming message", logging.Fields{"error": err.Error()})
			c.sendError(constants.ErrInvalidRequest)
			continue
		}
		c.hub.dispatch(c, env)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()
	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case b := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
