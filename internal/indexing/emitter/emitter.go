package emitter

import (
	"context"
	"log/slog"

	"github.com/wiyan17/Notifwallet-bot/internal/core/domain"
)

// Emitter defines the interface for publishing matched events to other systems
type Emitter interface {
	// Name identifies the emitter in logs and metrics
	Name() string

	// Emit publishes a single event
	Emit(ctx context.Context, event *domain.TransferEvent) error

	// Close releases the emitter's connection
	Close() error
}

// LogEmitter writes events to the structured log.
type LogEmitter struct {
	log *slog.Logger
}

func NewLogEmitter() *LogEmitter {
	return &LogEmitter{log: slog.Default().With("component", "emitter")}
}

func (e *LogEmitter) Name() string { return "log" }

func (e *LogEmitter) Emit(ctx context.Context, event *domain.TransferEvent) error {
	e.log.Info("Event",
		"id", event.ID,
		"network", event.Network,
		"kind", event.Kind,
		"source", event.Source,
		"address", event.Address,
		"tx", event.TxHash,
		"block", event.BlockNumber,
	)
	return nil
}

func (e *LogEmitter) Close() error { return nil }

// RoutingKey is "<network>.<kind>.<tx hash or event id>".
func RoutingKey(event *domain.TransferEvent) string {
	ref := event.TxHash
	if ref == "" {
		ref = event.ID.String()
	}
	network := event.Network
	if network == "" {
		network = "unknown"
	}
	return network + "." + string(event.Kind) + "." + ref
}
