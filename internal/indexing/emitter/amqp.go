package emitter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wiyan17/Notifwallet-bot/internal/core/domain"
)

// AMQPPublisher is the subset of the broker the emitter uses.
type AMQPPublisher interface {
	Publish(routingKey, name string, body []byte) error
	Close() error
}

// AMQPEmitter publishes events to a topic exchange keyed by RoutingKey.
type AMQPEmitter struct {
	broker AMQPPublisher
}

func NewAMQPEmitter(broker AMQPPublisher) *AMQPEmitter {
	return &AMQPEmitter{broker: broker}
}

func (e *AMQPEmitter) Name() string { return "amqp" }

func (e *AMQPEmitter) Emit(ctx context.Context, event *domain.TransferEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return e.broker.Publish(RoutingKey(event), event.Network+"."+event.ID.String(), body)
}

func (e *AMQPEmitter) Close() error {
	return e.broker.Close()
}
