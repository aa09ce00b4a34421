// Package events defines the WebSocket message contract between the
// SeaFreight360 server and connected dashboard clients.
package events

import (
	"time"

	"seafreight/pkg/contracts/domain"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// MessageTypeDatasetReloaded announces that an upload replaced the active
	// snapshot. Clients refetch their current view; the event carries no rows.
	MessageTypeDatasetReloaded MessageType = "dataset_reloaded"

	// Connection lifecycle messages
	MessageTypeConnected MessageType = "connected"
	MessageTypeError     MessageType = "error"
)

// Message is the envelope every broadcast frame uses.
type Message struct {
	Type      MessageType `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// DatasetReloaded is the payload of a dataset_reloaded message: the new
// snapshot's identity and per-collection row counts.
type DatasetReloaded struct {
	SnapshotID  string               `json:"snapshot_id"`
	ContentHash string               `json:"content_hash"`
	LoadedAt    time.Time            `json:"loaded_at"`
	Rows        domain.DatasetCounts `json:"rows"`
}

// NewDatasetReloaded builds the reload payload from a snapshot descriptor.
func NewDatasetReloaded(info domain.SnapshotInfo) DatasetReloaded {
	return DatasetReloaded{
		SnapshotID:  info.ID,
		ContentHash: info.ContentHash,
		LoadedAt:    info.LoadedAt,
		Rows:        info.Rows,
	}
}

// Connected is the payload of the welcome message sent to a client right
// after registration.
type Connected struct {
	Status   string `json:"status"`
	ClientID string `json:"client_id"`
}
