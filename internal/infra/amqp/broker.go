// Package amqp publishes events to an AMQP 0-9-1 broker (RabbitMQ).
package amqp

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"
)

// DefaultExchange receives every published event.
const DefaultExchange = "notifwallet.events"

// Config holds broker connection settings.
type Config struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

// Broker holds a connection and a lazily opened publishing channel.
type Broker struct {
	conn     *amqp.Connection
	exchange string

	mu sync.Mutex
	ch *amqp.Channel
}

// Dial connects to the broker and declares the durable topic exchange.
func Dial(cfg Config) (*Broker, error) {
	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchange
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	defer channel.Close()
	if err := channel.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}

	slog.Info("Connected to AMQP broker", "exchange", cfg.Exchange)
	return &Broker{conn: conn, exchange: cfg.Exchange}, nil
}

// Exchange returns the exchange name events are published to.
func (b *Broker) Exchange() string {
	return b.exchange
}

// Publish sends a JSON body with the given routing key. A failed channel is
// dropped so the next publish opens a fresh one.
func (b *Broker) Publish(routingKey, name string, body []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ch == nil {
		ch, err := b.conn.Channel()
		if err != nil {
			return fmt.Errorf("amqp channel: %w", err)
		}
		b.ch = ch
	}

	msg := amqp.Publishing{
		Headers:      amqp.Table{"x-event-name": name},
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}
	if err := b.ch.Publish(b.exchange, routingKey, false, false, msg); err != nil {
		b.ch.Close()
		b.ch = nil
		return fmt.Errorf("amqp publish %s: %w", routingKey, err)
	}
	return nil
}

// Close closes the channel and the connection.
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ch != nil {
		if err := b.ch.Close(); err != nil {
			slog.Warn("Error closing amqp channel", "error", err)
		}
		b.ch = nil
	}
	return b.conn.Close()
}
