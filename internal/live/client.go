package live

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client adapts a websocket connection to the Subscriber interface.
// Gorilla connections support one concurrent writer, so Send serializes
// writes with a mutex.
type Client struct {
	id   string
	conn *websocket.Conn

	writeMu sync.Mutex

	closeOnce sync.Once
	closeErr  error
}

// NewClient wraps an upgraded websocket connection
func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.NewString(),
		conn: conn,
	}
}

// ID returns the connection's identifier, used for logging
func (c *Client) ID() string {
	return c.id
}

// Send pushes one event to the viewer. Events sent from the same process
// reach the peer in send order.
func (c *Client) Send(ev Event) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(ev)
}

// Close closes the underlying connection. Safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

// ReadLoop consumes and discards inbound frames until the connection dies.
// The channel is push-only from the server's perspective; reading is still
// required so control frames are processed and disconnects are noticed.
// Returns on transport error or clean close.
func (c *Client) ReadLoop() {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
