package websocket

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"careerlens/internal/config"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 512
	sendBuffer     = 256
)

// Client is one subscriber connection bound to a workspace. The protocol
// is server-push only; inbound frames are read solely to service pongs
// and detect disconnects.
type Client struct {
	id          string
	workspace   string
	hub         *Hub
	conn        Connection
	send        chan []byte
	logger      *slog.Logger
	pongWait    time.Duration
	pingPeriod  time.Duration
	connectedAt time.Time
}

// NewClient wraps conn for workspace. Zero ping settings fall back to
// 60s pong wait with pings at nine tenths of it.
func NewClient(hub *Hub, conn Connection, workspace string, cfg config.WebSocketConfig, logger *slog.Logger) *Client {
	pongWait := cfg.PongWait
	if pongWait <= 0 {
		pongWait = 60 * time.Second
	}
	pingPeriod := cfg.PingPeriod
	if pingPeriod <= 0 || pingPeriod >= pongWait {
		pingPeriod = pongWait * 9 / 10
	}
	id := uuid.New().String()
	return &Client{
		id:          id,
		workspace:   workspace,
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		pongWait:    pongWait,
		pingPeriod:  pingPeriod,
		connectedAt: time.Now(),
		logger: logger.With(
			slog.String("component", "websocket.client"),
			slog.String("client_id", id),
			slog.String("workspace", workspace),
			slog.String("remote_addr", conn.RemoteAddr()),
		),
	}
}

// ID returns the client identifier
func (c *Client) ID() string { return c.id }

// Workspace returns the workspace the client subscribed to
func (c *Client) Workspace() string { return c.workspace }

// enqueue hands data to the write pump without blocking. Only the hub
// loop calls it.
func (c *Client) enqueue(data []byte) bool {
	if data == nil {
		return true
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Serve registers the client and runs both pumps, returning when the
// connection ends.
func (c *Client) Serve() {
	if !c.hub.Register(c) {
		_ = c.conn.Close()
		return
	}
	go c.WritePump()
	c.ReadPump()
}

// ReadPump drains inbound frames until the peer goes away.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read error", slog.String("error", err.Error()))
			}
			return
		}
	}
}

// WritePump writes queued events and keeps the connection alive with
// pings. It exits when the hub closes the send channel or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.logger.Debug("websocket write failed", slog.String("error", err.Error()))
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

// gorillaConn adapts *websocket.Conn to Connection.
type gorillaConn struct {
	*websocket.Conn
}

// WrapConn adapts a gorilla connection for NewClient.
func WrapConn(conn *websocket.Conn) Connection {
	return gorillaConn{Conn: conn}
}

func (g gorillaConn) RemoteAddr() string {
	return g.Conn.RemoteAddr().String()
}
