package stream

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/junoblue/launch/pkg/log"
)

// Client is one websocket following a tenant's events.
type Client struct {
	TenantID string
	UserID   string

	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	cfg  Config
}

// NewClient wraps conn. Call Run to start pumping.
func NewClient(hub *Hub, conn *websocket.Conn, tenantID, userID string, cfg Config) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		TenantID: tenantID,
		UserID:   userID,
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, cfg.SendBuffer),
		cfg:      cfg,
	}
}

// Run registers the client and serves it until the peer goes away.
func (c *Client) Run() {
	c.hub.Register(c)
	go c.writePump()
	c.readPump()
}

// readPump only handles control frames; clients have nothing to say.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				l := log.L()
				l.Warn().Err(err).Str(log.FieldTenantID, c.TenantID).Msg("stream client error")
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
