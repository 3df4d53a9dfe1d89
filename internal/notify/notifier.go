// Package notify fans alerts out to subscribers and structured events out to emitters.
package notify

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/wiyan17/Notifwallet-bot/internal/core/domain"
	"github.com/wiyan17/Notifwallet-bot/internal/indexing/emitter"
	"github.com/wiyan17/Notifwallet-bot/internal/indexing/metrics"
)

// DefaultConcurrency bounds parallel deliveries per broadcast.
const DefaultConcurrency = 8

// Transport delivers one text message to one recipient.
type Transport interface {
	Name() string
	Send(ctx context.Context, to domain.SubscriberID, text string) error
}

// Recipients yields the current subscribers.
type Recipients interface {
	Snapshot() []domain.SubscriberID
}

// Config holds notifier dependencies.
type Config struct {
	Transport   Transport
	Recipients  Recipients
	Emitters    []emitter.Emitter
	Concurrency int
}

// Notifier delivers alerts. It never fails its caller; per-recipient
// failures are logged and counted.
type Notifier struct {
	transport   Transport
	recipients  Recipients
	emitters    []emitter.Emitter
	concurrency int
	log         *slog.Logger
}

func New(cfg Config) *Notifier {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	return &Notifier{
		transport:   cfg.Transport,
		recipients:  cfg.Recipients,
		emitters:    cfg.Emitters,
		concurrency: cfg.Concurrency,
		log:         slog.Default().With("component", "notifier"),
	}
}

// Broadcast sends text to every subscriber in a snapshot taken now and
// returns the number of successful deliveries.
func (n *Notifier) Broadcast(ctx context.Context, text string) int {
	targets := n.recipients.Snapshot()
	if len(targets) == 0 {
		n.log.Debug("No subscribers, skipping broadcast")
		return 0
	}

	results := make([]error, len(targets))
	var g errgroup.Group
	g.SetLimit(n.concurrency)
	for i, to := range targets {
		g.Go(func() error {
			if err := n.transport.Send(ctx, to, text); err != nil {
				results[i] = &domain.DeliveryError{Recipient: to, Transport: n.transport.Name(), Err: err}
			}
			return nil
		})
	}
	_ = g.Wait()

	delivered := 0
	for _, err := range results {
		if err == nil {
			delivered++
			metrics.NotificationsTotal.WithLabelValues(n.transport.Name(), "ok").Inc()
			continue
		}
		metrics.NotificationsTotal.WithLabelValues(n.transport.Name(), "error").Inc()
		var de *domain.DeliveryError
		if errors.As(err, &de) {
			n.log.Warn("Delivery failed", "recipient", de.Recipient, "transport", de.Transport, "error", de.Err)
		}
	}
	n.log.Debug("Broadcast done", "recipients", len(targets), "delivered", delivered)
	return delivered
}

// Notify formats ev for subscribers and publishes it to every emitter.
func (n *Notifier) Notify(ctx context.Context, ev domain.TransferEvent) {
	n.Broadcast(ctx, FormatEvent(ev))
	n.Emit(ctx, ev)
}

// Emit publishes ev to the configured emitters.
func (n *Notifier) Emit(ctx context.Context, ev domain.TransferEvent) {
	for _, e := range n.emitters {
		if err := e.Emit(ctx, &ev); err != nil {
			metrics.EmitsTotal.WithLabelValues(e.Name(), "error").Inc()
			n.log.Warn("Emit failed", "emitter", e.Name(), "event", ev.ID, "error", err)
			continue
		}
		metrics.EmitsTotal.WithLabelValues(e.Name(), "ok").Inc()
	}
}

// Close closes every emitter.
func (n *Notifier) Close() error {
	var errs []error
	for _, e := range n.emitters {
		if err := e.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
