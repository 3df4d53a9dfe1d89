package health

import (
	"context"

	"github.com/wiyan17/Notifwallet-bot/internal/core/registry"
	"github.com/wiyan17/Notifwallet-bot/internal/infra/rpc/provider"
)

// RPCReporter is implemented by tasks whose client tracks provider health.
type RPCReporter interface {
	RPCHealth() (provider.HealthStatus, bool)
}

// TaskSource reports the monitor tasks.
type TaskSource interface {
	Tasks() []registry.TaskStatus
}

// AddressSource reports the watched addresses of a network.
type AddressSource interface {
	Snapshot(network string) ([]string, bool)
}

// SubscriberCounter reports the subscriber count.
type SubscriberCounter interface {
	Len() int
}

// Monitor aggregates health status from the registry, book and subscriber set.
type Monitor struct {
	tasks       TaskSource
	book        AddressSource
	subscribers SubscriberCounter
}

// NewMonitor creates a new health monitor. book and subscribers may be nil.
func NewMonitor(tasks TaskSource, book AddressSource, subscribers SubscriberCounter) *Monitor {
	return &Monitor{tasks: tasks, book: book, subscribers: subscribers}
}

// CheckHealth evaluates every network monitor.
func (m *Monitor) CheckHealth(ctx context.Context) map[string]NetworkHealth {
	report := make(map[string]NetworkHealth)
	for _, t := range m.tasks.Tasks() {
		h := NetworkHealth{
			Network:     t.Network.Name,
			DisplayName: t.Network.Label(),
			State:       t.State,
			Running:     t.Running,
			Status:      StatusHealthy,
		}
		if m.book != nil {
			addrs, _ := m.book.Snapshot(t.Network.Name)
			h.WatchedAddresses = len(addrs)
		}

		h.RPCAvailable = true
		if r, ok := t.Handle.(RPCReporter); ok {
			if rpc, ok := r.RPCHealth(); ok {
				h.RPCAvailable = rpc.Available
				h.RPCErrorRate = rpc.ErrorRate
				if rpc.Latency > 0 {
					h.RPCLatency = rpc.Latency.String()
				}
			}
		}

		// A stopped monitor never comes back until restart
		switch {
		case !t.Running || t.State == "stopped":
			h.Status = StatusCritical
		case t.State == "connecting" || !h.RPCAvailable:
			h.Status = StatusDegraded
		}
		report[t.Network.Name] = h
	}
	return report
}

// Report builds the full report including the aggregate status.
func (m *Monitor) Report(ctx context.Context) HealthReport {
	networks := m.CheckHealth(ctx)
	r := HealthReport{
		SystemStatus: Aggregate(networks),
		Networks:     networks,
	}
	if m.subscribers != nil {
		r.Subscribers = m.subscribers.Len()
	}
	return r
}
