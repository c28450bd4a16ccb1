// Package events contains the message contracts pushed to dashboard clients
// over WebSocket.
package events

import (
	"time"

	"bikedash/pkg/contracts/domain"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Dashboard state changes
	MessageTypeDatasetLoaded   MessageType = "dataset:loaded"
	MessageTypeDatasetRejected MessageType = "dataset:rejected"
	MessageTypeChartsUpdated   MessageType = "charts:updated"

	// Connection messages
	MessageTypeConnect   MessageType = "connect"
	MessageTypeHeartbeat MessageType = "heartbeat"
	MessageTypeError     MessageType = "error"
)

// Render triggers carried by charts:updated
const (
	TriggerLoad      = "load"
	TriggerSelection = "selection"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// ConnectedData greets a newly registered client
type ConnectedData struct {
	ClientID string `json:"client_id"`
	Message  string `json:"message"`
}

// DatasetLoadedData is sent when an upload replaced the active dataset
type DatasetLoadedData struct {
	Dataset   domain.DatasetInfo     `json:"dataset"`
	Options   domain.FilterOptions   `json:"options"`
	Selection domain.FilterSelection `json:"selection"`
}

// DatasetRejectedData is sent when an upload failed to load. The previous
// dataset, if any, stays active.
type DatasetRejectedData struct {
	Name    string `json:"name"`
	Reason  string `json:"reason"` // format|parse
	Message string `json:"message"`
	Row     int    `json:"row,omitempty"`
	Column  string `json:"column,omitempty"`
}

// ChartsUpdatedData carries a fresh chart set
type ChartsUpdatedData struct {
	DatasetID string              `json:"dataset_id"`
	Trigger   string              `json:"trigger"` // load|selection
	Results   domain.ChartResults `json:"results"`
}

// ErrorData represents an error pushed to clients
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
