// Package transport adapts gorilla/websocket connections to the core's
// abstract room.Connection capability, and wires the HTTP entry points
// (health check, WebSocket upgrade) a standalone server needs. Grounded
// on the teacher's internal/websocket package: the same buffered-
// channel-plus-writer-goroutine split (Client.send / WritePump) and
// read-deadline/pong-handler heartbeat (ReadPump), adapted from the
// teacher's hub-broadcast model to directly call internal/dispatcher
// per connection.
package transport

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tanmaysharma2001/collabboard/internal/dispatcher"
	"github.com/tanmaysharma2001/collabboard/internal/protocol"
	"github.com/tanmaysharma2001/collabboard/pkg/logger"
)

// ErrConnClosed is returned by Send once the connection has closed.
var ErrConnClosed = errors.New("transport: connection closed")

const writeWait = 10 * time.Second

// Conn wraps one *websocket.Conn with the buffered outbound queue and
// single writer goroutine the core's ordering guarantee depends on:
// every Send enqueues onto the same channel that the writer goroutine
// drains in FIFO order, so room.Room.Broadcast's sequence order is
// preserved on the wire.
type Conn struct {
	ws   *websocket.Conn
	send chan []byte

	mu    sync.Mutex
	alive bool
	once  sync.Once

	dispatcher *dispatcher.Dispatcher
	state      *dispatcher.ConnState
}

func newConn(ws *websocket.Conn, disp *dispatcher.Dispatcher) *Conn {
	c := &Conn{
		ws:         ws,
		send:       make(chan []byte, 256),
		alive:      true,
		dispatcher: disp,
		state:      &dispatcher.ConnState{},
	}

	ws.SetReadLimit(protocol.MaxMessageSize)
	c.resetReadDeadline()
	ws.SetPongHandler(func(string) error {
		c.resetReadDeadline()
		return nil
	})

	return c
}

func (c *Conn) resetReadDeadline() {
	_ = c.ws.SetReadDeadline(time.Now().Add(time.Duration(protocol.HeartbeatTimeoutMs) * time.Millisecond))
}

// Send enqueues message for delivery by the writer goroutine. If the
// outbound queue is full the connection is treated as a slow consumer
// and closed, rather than blocking the room that is broadcasting to
// it.
func (c *Conn) Send(message []byte) error {
	c.mu.Lock()
	if !c.alive {
		c.mu.Unlock()
		return ErrConnClosed
	}
	c.mu.Unlock()

	select {
	case c.send <- message:
		return nil
	default:
		logger.Error("transport: send buffer full, dropping slow connection")
		_ = c.Close()
		return ErrConnClosed
	}
}

// IsAlive reports whether the connection is still open for sends.
func (c *Conn) IsAlive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alive
}

// Close marks the connection dead and stops its writer goroutine. Safe
// to call more than once and from multiple goroutines.
func (c *Conn) Close() error {
	c.once.Do(func() {
		c.mu.Lock()
		c.alive = false
		c.mu.Unlock()
		close(c.send)
	})
	return nil
}

func (c *Conn) run() {
	go c.writePump()
	go c.readPump()
}

func (c *Conn) readPump() {
	defer func() {
		c.dispatcher.HandleDisconnect(c.state)
		_ = c.Close()
		_ = c.ws.Close()
	}()

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("transport: read error: %v", err)
			}
			return
		}
		c.dispatcher.Dispatch(c, c.state, message)
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(time.Duration(protocol.HeartbeatIntervalMs) * time.Millisecond)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Error("transport: write error: %v", err)
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
