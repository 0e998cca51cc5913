package hub

import (
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/kioskworks/go-booth/internal/log"
)

const (
	// writeTimeout bounds a single frame write to a kiosk client.
	writeTimeout = 10 * time.Second

	// pongTimeout is how long a client may stay silent before it is
	// considered gone; pings go out at a fraction of it.
	pongTimeout  = 60 * time.Second
	pingInterval = (pongTimeout * 9) / 10

	// inboundLimit is tiny on purpose: booth clients are listeners, the
	// read side exists only for pongs and disconnect detection.
	inboundLimit = 1024

	// sendBuffer holds queued messages per client. At ~15 preview fps this
	// is about two seconds of slack before the hub drops the client.
	sendBuffer = 32
)

// Client is one websocket subscriber fed by a Hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan Message
}

// NewClient registers a connection with the hub and returns its client.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	client := &Client{
		hub:  hub,
		conn: conn,
		send: make(chan Message, sendBuffer),
	}
	hub.register <- client
	return client
}

// Run drives the client until the connection drops. Call it from the
// websocket handler; it blocks for the connection's lifetime.
func (c *Client) Run() {
	go c.writeLoop()
	c.readLoop()
}

// readLoop discards inbound data. Its only jobs are refreshing the read
// deadline on pongs and noticing the disconnect.
func (c *Client) readLoop() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(inboundLimit)
	c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writeLoop is the single writer on the connection. It forwards queued
// messages and keeps the peer alive with pings.
func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				// Hub dropped us; tell the peer before hanging up.
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			frame := websocket.TextMessage
			if msg.Type == BinaryMessage {
				frame = websocket.BinaryMessage
			}
			if err := c.conn.WriteMessage(frame, msg.Data); err != nil {
				log.Debug("hub client write failed", "hub", c.hub.name, "err", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
