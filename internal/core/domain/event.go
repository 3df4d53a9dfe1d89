package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransferEvent is a matched on-chain event, built per poll cycle and never stored.
type TransferEvent struct {
	ID           uuid.UUID      `json:"id"`
	Kind         EventKind      `json:"kind"`
	Network      NetworkName    `json:"network"`
	DisplayName  string         `json:"display_name"`
	Address      string         `json:"address"`
	TxHash       string         `json:"tx_hash,omitempty"`
	ExplorerLink string         `json:"explorer_link,omitempty"`
	BlockNumber  uint64         `json:"block_number,omitempty"`
	Value        string         `json:"value,omitempty"`
	Source       EventSource    `json:"source"`
	DetectedAt   time.Time      `json:"detected_at"`
	Raw          map[string]any `json:"raw,omitempty"`
}

type EventKind string

const (
	EventKindLog      EventKind = "log"
	EventKindTransfer EventKind = "transfer"
)

type EventSource string

const (
	EventSourceMonitor EventSource = "monitor"
	EventSourceWebhook EventSource = "webhook"
)

// NewTransferEvent stamps a fresh event with an ID and detection time.
func NewTransferEvent(kind EventKind, source EventSource) TransferEvent {
	return TransferEvent{
		ID:         uuid.New(),
		Kind:       kind,
		Source:     source,
		DetectedAt: time.Now().UTC(),
	}
}
