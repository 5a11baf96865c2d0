package websocket

import (
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024 // audio clips ride the same socket
)

// Client is one participant connection: it owns the transport and shuttles
// events between the socket and the hub.
type Client struct {
	Hub *Hub

	Conn *websocket.Conn

	// ID doubles as the advisory channel handle announced in user_join.
	ID       string
	RoomCode string
	Username string
	UserID   uuid.UUID

	router *Router

	send     chan []byte
	sendMu   sync.Mutex
	sendShut bool
}

func NewClient(hub *Hub, conn *websocket.Conn, router *Router, roomCode, username string, userID uuid.UUID) *Client {
	return &Client{
		Hub:      hub,
		Conn:     conn,
		ID:       uuid.NewString(),
		RoomCode: roomCode,
		Username: username,
		UserID:   userID,
		router:   router,
		send:     make(chan []byte, 256),
	}
}

// enqueue hands an outbound frame to the write pump without blocking.
// Returns false when the buffer is full or the client is shutting down.
func (c *Client) enqueue(data []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendShut {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// closeSend is called by the hub exactly once per Leave; after it, enqueue
// refuses new frames and the write pump drains out.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendShut {
		return
	}
	c.sendShut = true
	close(c.send)
}

// readPump processes inbound events strictly in arrival order. The deferred
// cleanup runs on every exit path: explicit close, network drop, or a
// handler-triggered error all deregister the connection.
func (c *Client) readPump(onExit func()) {
	defer func() {
		c.Hub.Leave(c)
		c.Conn.Close()
		if onExit != nil {
			onExit()
		}
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("Client", "Unexpected close", map[string]interface{}{"room": c.RoomCode, "user": c.Username, "error": err.Error()})
			}
			break
		}
		// A bad event is dropped inside Dispatch; it never ends the loop.
		c.router.Dispatch(c, data)
	}
}

// writePump pumps hub frames to the socket, batching whatever queued up
// behind the first write.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(c.send)
			for i := 0; i < n; i++ {
				queued, ok := <-c.send
				if !ok {
					break
				}
				w.Write([]byte{'\n'})
				w.Write(queued)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Serve runs the connection until the socket dies. It must be called from
// the upgrade handler's goroutine.
func (c *Client) Serve(onExit func()) {
	c.Hub.Join(c)
	go c.writePump()
	c.readPump(onExit)
}
