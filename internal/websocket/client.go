package websocket

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"bikedash/internal/config"
	"bikedash/internal/infrastructure"
	"bikedash/pkg/contracts/events"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 512

	// Outbound messages buffered per client
	sendBufferSize = 32
)

// ClientOptions holds the keepalive timings of a client
type ClientOptions struct {
	WriteWait  time.Duration
	PongWait   time.Duration
	PingPeriod time.Duration
}

// ClientOptionsFrom maps the websocket config section
func ClientOptionsFrom(cfg config.WebSocketConfig) ClientOptions {
	return ClientOptions{
		WriteWait:  writeWait,
		PongWait:   cfg.PongWait,
		PingPeriod: cfg.PingPeriod,
	}
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub  *Hub
	conn Connection
	send chan []byte

	id          string
	traceID     string
	remoteAddr  string
	connectedAt time.Time
	opts        ClientOptions

	logger *slog.Logger
}

// NewClient creates a client for conn. traceID ties its log lines to the
// upgrade request.
func NewClient(hub *Hub, conn Connection, traceID string, opts ClientOptions, logger *slog.Logger) *Client {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	id := uuid.NewString()
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBufferSize),
		id:          id,
		traceID:     traceID,
		remoteAddr:  conn.RemoteAddr(),
		connectedAt: time.Now(),
		opts:        opts,
		logger: logger.With(
			slog.String("component", "websocket.client"),
			slog.String("client_id", id),
		),
	}
}

// ID returns the client identifier
func (c *Client) ID() string {
	return c.id
}

func (c *Client) context() context.Context {
	ctx := context.Background()
	if c.traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, c.traceID)
	}
	return ctx
}

// ReadPump drains the connection until it fails. Clients only send
// heartbeats; anything else is ignored.
func (c *Client) ReadPump() {
	ctx := c.context()
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
		c.logger.InfoContext(ctx, "WebSocket client disconnected",
			slog.Duration("connection_duration", time.Since(c.connectedAt)))
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.ErrorContext(ctx, "Unexpected WebSocket close error",
					slog.String("error", err.Error()))
			}
			return
		}

		var msg events.BaseMessage
		if err := json.Unmarshal(bytes.TrimSpace(message), &msg); err == nil && msg.Type == events.MessageTypeHeartbeat {
			c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
			c.logger.DebugContext(ctx, "Heartbeat received")
		}
	}
}

// WritePump sends queued messages and keepalive pings until the hub closes
// the send channel or a write fails.
func (c *Client) WritePump() {
	ctx := c.context()
	ticker := time.NewTicker(c.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.ErrorContext(ctx, "Error writing message to WebSocket",
					slog.String("error", err.Error()))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.DebugContext(ctx, "Failed to send ping message",
					slog.String("error", err.Error()))
				return
			}
		}
	}
}
