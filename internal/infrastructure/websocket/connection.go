package websocket

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"setlist-sync/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 256
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendBufferFull   = errors.New("send buffer full")
)

// Connection wraps one live websocket session. Outbound messages go through a
// bounded queue drained by the write pump, so a slow client never blocks a
// broadcast; when the queue is full the message is dropped.
type Connection struct {
	id     string
	userID string
	conn   *websocket.Conn
	send   chan []byte

	done      chan struct{}
	closeOnce sync.Once

	log logger.Logger
}

func NewConnection(conn *websocket.Conn, userID string, log logger.Logger) *Connection {
	return &Connection{
		id:     uuid.NewString(),
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
		log:    log,
	}
}

func (c *Connection) ID() string {
	return c.id
}

func (c *Connection) UserID() string {
	return c.userID
}

// Send queues a message for delivery. It never blocks: a closed connection or
// a full buffer yields an error the caller treats as "recipient unreachable".
func (c *Connection) Send(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return ErrConnectionClosed
	default:
		c.log.Warn("Send buffer full, dropping message",
			"connection_id", c.id, "user_id", c.userID)
		return ErrSendBufferFull
	}
}

// Close shuts the session down. Safe to call more than once and from any
// goroutine; concurrent Sends turn into no-ops.
func (c *Connection) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
	return nil
}

// Done is closed when the connection has fully terminated.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// writePump drains the send queue onto the wire and keeps the connection
// alive with pings. It owns all writes to the underlying socket.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.log.Debug("Write failed", "connection_id", c.id, "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
