package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"careerlens/internal/infrastructure"
	"careerlens/pkg/contracts/events"
)

// broadcastBuffer is how many published events may queue before Publish
// starts dropping.
const broadcastBuffer = 256

type envelope struct {
	workspace string
	msgType   events.MessageType
	data      []byte
}

// Hub fans events out to the clients subscribed to a workspace. A message
// published for workspace W reaches only clients registered under W.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics

	quit    chan struct{}
	done    chan struct{}
	started bool
	stopped bool
}

// NewHub creates a hub. metrics may be nil.
func NewHub(logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan envelope, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		metrics:    metrics,
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Run is the hub's event loop. It returns after Stop.
func (h *Hub) Run() {
	h.mu.Lock()
	if h.started || h.stopped {
		h.mu.Unlock()
		return
	}
	h.started = true
	h.mu.Unlock()
	defer close(h.done)

	for {
		select {
		case <-h.quit:
			h.closeAll()
			h.logger.Info("hub stopped")
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()
			h.clientDelta(1)

			h.logger.Info("client registered",
				slog.String("client_id", c.id),
				slog.String("workspace", c.workspace),
				slog.Int("total_clients", count))
			c.enqueue(h.encode(events.MessageTypeConnect, c.workspace, "", events.ConnectEvent{
				ClientID:  c.id,
				Protocol:  events.ProtocolVersion,
				Workspace: c.workspace,
			}))

		case c := <-h.unregister:
			h.drop(c, "client unregistered")

		case env := <-h.broadcast:
			h.mu.RLock()
			targets := make([]*Client, 0, len(h.clients))
			for c := range h.clients {
				if c.workspace == env.workspace {
					targets = append(targets, c)
				}
			}
			h.mu.RUnlock()

			for _, c := range targets {
				if !c.enqueue(env.data) {
					h.drop(c, "client send buffer full, disconnecting")
				}
			}
			if h.metrics != nil {
				h.metrics.WebSocketMessages.Add(context.Background(), int64(len(targets)),
					metric.WithAttributes(attribute.String("type", string(env.msgType))))
			}
			h.logger.Debug("event broadcast",
				slog.String("type", string(env.msgType)),
				slog.String("workspace", env.workspace),
				slog.Int("recipients", len(targets)))
		}
	}
}

// drop removes c and closes its send channel; safe to call twice.
func (h *Hub) drop(c *Client, msg string) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	count := len(h.clients)
	h.mu.Unlock()
	if !ok {
		return
	}
	h.clientDelta(-1)
	h.logger.Info(msg,
		slog.String("client_id", c.id),
		slog.Int("total_clients", count),
		slog.Duration("connection_duration", time.Since(c.connectedAt)))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	n := len(h.clients)
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.mu.Unlock()
	h.clientDelta(-int64(n))
}

func (h *Hub) clientDelta(n int64) {
	if h.metrics != nil && n != 0 {
		h.metrics.WebSocketClients.Add(context.Background(), n)
	}
}

func (h *Hub) encode(t events.MessageType, workspace, traceID string, data any) []byte {
	msg := events.WebSocketMessage{
		ID:        uuid.New().String(),
		Type:      t,
		Workspace: workspace,
		Timestamp: time.Now().UTC(),
		TraceID:   traceID,
		Data:      data,
	}
	b, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal event",
			slog.String("type", string(t)),
			slog.String("error", err.Error()))
		return nil
	}
	return b
}

// Publish queues an event for every client of workspace. It never blocks:
// when the queue is full or the hub is stopped the event is dropped.
func (h *Hub) Publish(ctx context.Context, workspace string, t events.MessageType, data any) {
	b := h.encode(t, workspace, infrastructure.GetTraceID(ctx), data)
	if b == nil {
		return
	}

	select {
	case <-h.quit:
	case h.broadcast <- envelope{workspace: workspace, msgType: t, data: b}:
	default:
		h.logger.WarnContext(ctx, "event dropped, broadcast queue full",
			slog.String("type", string(t)),
			slog.String("workspace", workspace))
	}
}

// Register adds a client. It returns false once the hub is stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.quit:
		return false
	}
}

// Unregister removes a client; called by the client's read pump.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop ends Run, closing every client's send channel, and waits for the
// loop to exit when it was started.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	started := h.started
	h.mu.Unlock()

	close(h.quit)
	if started {
		<-h.done
	}
}
