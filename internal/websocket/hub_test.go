package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikedash/internal/infrastructure"
	"bikedash/pkg/contracts/events"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(hub *Hub, id string, buffer int) *Client {
	return &Client{
		id:          id,
		hub:         hub,
		send:        make(chan []byte, buffer),
		traceID:     "trace-" + id,
		connectedAt: time.Now(),
		remoteAddr:  "127.0.0.1:9000",
	}
}

// receive reads one envelope from a client's send channel
func receive(t *testing.T, c *Client) events.WebSocketMessage {
	t.Helper()
	select {
	case raw, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var msg events.WebSocketMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
	return events.WebSocketMessage{}
}

func TestNewHub(t *testing.T) {
	hub := NewHub(testLogger(), nil)

	assert.NotNil(t, hub.clients)
	assert.Equal(t, broadcastQueueSize, cap(hub.broadcast))
	assert.Equal(t, 0, hub.ClientCount())
	assert.False(t, hub.Running())
}

func TestHubStartStop(t *testing.T) {
	hub := NewHub(testLogger(), nil)

	hub.Start()
	assert.True(t, hub.Running())
	hub.Start()
	assert.True(t, hub.Running())

	hub.Stop()
	assert.False(t, hub.Running())
	hub.Stop()

	// a stopped hub cannot be restarted
	hub.Start()
	assert.False(t, hub.Running())
}

func TestHubRegisterSendsConnectMessage(t *testing.T) {
	hub := NewHub(testLogger(), nil)
	hub.Start()
	defer hub.Stop()

	client := newTestClient(hub, "c1", 8)
	hub.Register(client)

	msg := receive(t, client)
	assert.Equal(t, events.MessageTypeConnect, msg.Type)
	assert.Equal(t, "trace-c1", msg.TraceID)
	assert.NotEmpty(t, msg.ID)

	data, ok := msg.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "c1", data["client_id"])
	assert.Equal(t, 1, hub.ClientCount())
}

func TestHubPublishReachesEveryClient(t *testing.T) {
	hub := NewHub(testLogger(), nil)
	hub.Start()
	defer hub.Stop()

	a := newTestClient(hub, "a", 8)
	b := newTestClient(hub, "b", 8)
	hub.Register(a)
	hub.Register(b)
	receive(t, a)
	receive(t, b)

	ctx := infrastructure.WithTraceID(context.Background(), "req-1")
	hub.Publish(ctx, events.MessageTypeChartsUpdated, events.ChartsUpdatedData{
		DatasetID: "ds-1",
		Trigger:   events.TriggerSelection,
	})

	for _, c := range []*Client{a, b} {
		msg := receive(t, c)
		assert.Equal(t, events.MessageTypeChartsUpdated, msg.Type)
		assert.Equal(t, "req-1", msg.TraceID)
		data := msg.Data.(map[string]interface{})
		assert.Equal(t, "ds-1", data["dataset_id"])
		assert.Equal(t, events.TriggerSelection, data["trigger"])
	}

	require.Eventually(t, func() bool {
		return hub.Stats()["messages_sent"].(int64) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := NewHub(testLogger(), nil)
	hub.Start()
	defer hub.Stop()

	client := newTestClient(hub, "c1", 8)
	hub.Register(client)
	receive(t, client)

	hub.Unregister(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)

	_, ok := <-client.send
	assert.False(t, ok)

	// a second unregister is harmless
	hub.Unregister(client)
}

func TestHubDisconnectsSlowClient(t *testing.T) {
	hub := NewHub(testLogger(), nil)
	hub.Start()
	defer hub.Stop()

	// the connect message fills the buffer
	slow := newTestClient(hub, "slow", 1)
	hub.Register(slow)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Publish(context.Background(), events.MessageTypeChartsUpdated, events.ChartsUpdatedData{})

	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHubPublishDoesNotBlockWithoutLoop(t *testing.T) {
	hub := NewHub(testLogger(), nil)

	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastQueueSize+10; i++ {
			hub.Publish(context.Background(), events.MessageTypeHeartbeat, nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked")
	}
	assert.Equal(t, int64(10), hub.Stats()["messages_dropped"])
}

func TestHubStopClosesClients(t *testing.T) {
	hub := NewHub(testLogger(), nil)
	hub.Start()

	client := newTestClient(hub, "c1", 8)
	hub.Register(client)
	receive(t, client)

	hub.Stop()

	_, ok := <-client.send
	assert.False(t, ok)
	assert.Equal(t, 0, hub.ClientCount())

	// publishing after stop is a no-op
	hub.Publish(context.Background(), events.MessageTypeChartsUpdated, nil)
}

func TestEncodeEnvelope(t *testing.T) {
	ctx := infrastructure.WithTraceID(context.Background(), "t-9")
	raw, err := encode(ctx, events.MessageTypeDatasetRejected, events.DatasetRejectedData{
		Name:   "bad.csv",
		Reason: "format",
	})
	require.NoError(t, err)

	var msg events.WebSocketMessage
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, events.MessageTypeDatasetRejected, msg.Type)
	assert.Equal(t, "t-9", msg.TraceID)
	assert.WithinDuration(t, time.Now(), msg.Timestamp, time.Minute)
}
