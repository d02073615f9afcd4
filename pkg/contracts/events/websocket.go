// Package events contains the websocket event contract.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MessageTypeDatasetReplaced MessageType = "dataset:replaced"
	MessageTypeDatasetCleared  MessageType = "dataset:cleared"
	MessageTypeFiltersChanged  MessageType = "filters:changed"

	MessageTypeConnect MessageType = "connect"
)

// WebSocketMessage is the envelope of every message sent to clients.
type WebSocketMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Workspace string      `json:"workspace,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// DatasetEvent is the payload of dataset:replaced and dataset:cleared.
type DatasetEvent struct {
	View       string `json:"view"`
	DatasetID  string `json:"dataset_id,omitempty"`
	Filename   string `json:"filename,omitempty"`
	Generation uint64 `json:"generation"`
	Rows       int    `json:"rows"`
}

// FiltersEvent is the payload of filters:changed.
type FiltersEvent struct {
	View         string `json:"view"`
	DatasetID    string `json:"dataset_id"`
	FilteredRows int    `json:"filtered_rows"`
	Reset        bool   `json:"reset"`
}

// ConnectEvent greets a newly registered client.
type ConnectEvent struct {
	ClientID  string `json:"client_id"`
	Protocol  string `json:"protocol"`
	Workspace string `json:"workspace"`
}

// ErrorMessage reports a protocol problem to one client.
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ProtocolVersion identifies the event schema.
const ProtocolVersion = "careerlens-events/1"
