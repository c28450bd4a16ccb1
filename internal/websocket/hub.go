package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"bikedash/internal/infrastructure"
	"bikedash/pkg/contracts/events"
)

// broadcastQueueSize bounds the messages waiting for the hub loop
const broadcastQueueSize = 64

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	clients map[*Client]struct{}

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	logger  *slog.Logger
	metrics *infrastructure.DashboardMetrics

	totalConnections atomic.Int64
	messagesSent     atomic.Int64
	messagesDropped  atomic.Int64

	quit    chan struct{}
	done    chan struct{}
	running bool
	stopped bool
}

// NewHub creates a new Hub. metrics may be nil.
func NewHub(logger *slog.Logger, metrics *infrastructure.DashboardMetrics) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, broadcastQueueSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		metrics:    metrics,
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start runs the hub loop in its own goroutine. Calling it twice is a no-op.
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running || h.stopped {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
}

// Run is the hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.quit:
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case message := <-h.broadcast:
			h.fanOut(message)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	h.totalConnections.Add(1)

	ctx := client.context()
	h.metrics.RecordWebSocketClient(ctx, 1)
	h.logger.InfoContext(ctx, "Client registered",
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.String("remote_addr", client.remoteAddr))

	greeting, err := encode(ctx, events.MessageTypeConnect, events.ConnectedData{
		ClientID: client.id,
		Message:  "Connected to bike rentals dashboard",
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "Error marshaling connect message", slog.String("error", err.Error()))
		return
	}

	select {
	case client.send <- greeting:
	default:
		h.logger.WarnContext(ctx, "Failed to send connect message - client buffer full",
			slog.String("client_id", client.id))
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.send)
	count := len(h.clients)
	h.mu.Unlock()

	ctx := client.context()
	h.metrics.RecordWebSocketClient(ctx, -1)
	h.logger.InfoContext(ctx, "Client unregistered",
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.Duration("connection_duration", time.Since(client.connectedAt)))
}

// fanOut delivers one message to every client. A client whose buffer is full
// is disconnected rather than allowed to stall the others.
func (h *Hub) fanOut(message []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	var failed int
	for _, client := range clients {
		select {
		case client.send <- message:
			h.messagesSent.Add(1)
		default:
			failed++
			h.logger.WarnContext(client.context(), "Client send buffer full, disconnecting",
				slog.String("client_id", client.id))
			h.removeClient(client)
		}
	}

	h.logger.Debug("Broadcast delivered",
		slog.Int("client_count", len(clients)),
		slog.Int("failed", failed),
		slog.Int("message_size", len(message)))
}

// Publish queues an event for every connected client. It never blocks: when
// the queue is full the event is dropped and logged.
func (h *Hub) Publish(ctx context.Context, msgType events.MessageType, data interface{}) {
	message, err := encode(ctx, msgType, data)
	if err != nil {
		h.logger.ErrorContext(ctx, "Error marshaling message",
			slog.String("error", err.Error()),
			slog.String("message_type", string(msgType)))
		return
	}

	select {
	case h.broadcast <- message:
	case <-h.quit:
	default:
		h.messagesDropped.Add(1)
		h.logger.WarnContext(ctx, "Broadcast queue full, dropping message",
			slog.String("message_type", string(msgType)))
	}
}

// encode wraps data in the standard message envelope
func encode(ctx context.Context, msgType events.MessageType, data interface{}) ([]byte, error) {
	return json.Marshal(events.WebSocketMessage{
		BaseMessage: events.BaseMessage{
			ID:        uuid.NewString(),
			Type:      msgType,
			Timestamp: time.Now().UTC(),
			TraceID:   infrastructure.GetTraceID(ctx),
		},
		Data: data,
	})
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
	}
}

// Unregister removes a client and closes its send channel
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Running reports whether the hub loop is active
func (h *Hub) Running() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.running
}

// Stop ends the hub loop and disconnects every client
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	wasRunning := h.running
	h.running = false
	h.stopped = true
	h.mu.Unlock()

	close(h.quit)
	if wasRunning {
		<-h.done
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

// Stats returns current hub counters
func (h *Hub) Stats() map[string]interface{} {
	return map[string]interface{}{
		"active_clients":    h.ClientCount(),
		"total_connections": h.totalConnections.Load(),
		"messages_sent":     h.messagesSent.Load(),
		"messages_dropped":  h.messagesDropped.Load(),
	}
}
