// Package monitor runs one polling loop per registered network.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/wiyan17/Notifwallet-bot/internal/core/domain"
	"github.com/wiyan17/Notifwallet-bot/internal/indexing/metrics"
	"github.com/wiyan17/Notifwallet-bot/internal/indexing/recovery"
	"github.com/wiyan17/Notifwallet-bot/internal/infra/chain/evm"
	"github.com/wiyan17/Notifwallet-bot/internal/infra/rpc/provider"
	"github.com/wiyan17/Notifwallet-bot/internal/infra/rpc/routing"
)

// DefaultPollInterval is the wait between filter fetches and idle checks.
const DefaultPollInterval = 5 * time.Second

// Client is the chain capability a monitor needs.
type Client interface {
	Connect(ctx context.Context) error
	NewFilter(ctx context.Context, addresses []string) (string, error)
	FilterChanges(ctx context.Context, filterID string) ([]evm.Log, error)
	UninstallFilter(ctx context.Context, filterID string) error
}

// AddressSource yields the current address set of a network.
type AddressSource interface {
	Snapshot(network string) ([]string, bool)
}

// ExplorerResolver maps a network to its explorer tx prefix.
type ExplorerResolver interface {
	ResolveExplorerPrefix(name string) string
}

// Notifier receives matched events.
type Notifier interface {
	Notify(ctx context.Context, event domain.TransferEvent)
}

// Config holds everything a monitor needs.
type Config struct {
	Network      domain.Network
	Client       Client
	Book         AddressSource
	Explorer     ExplorerResolver
	Notifier     Notifier
	PollInterval time.Duration
	Retry        recovery.RetryStrategy
}

// Monitor watches one network. Filter state is owned by the Run goroutine;
// only the state field is shared.
type Monitor struct {
	cfg  Config
	log  *slog.Logger
	done chan struct{}

	filterID   string
	scope      []string
	cycleCount uint64

	mu        sync.RWMutex
	state     State
	last      Transition
	onTransit func(Transition)
}

// New creates a monitor in the Connecting state.
func New(cfg Config) *Monitor {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Retry == nil {
		cfg.Retry = recovery.NewFixedInterval(cfg.PollInterval)
	}
	m := &Monitor{
		cfg:   cfg,
		log:   slog.Default().With("component", "monitor", "network", cfg.Network.Name),
		done:  make(chan struct{}),
		state: StateConnecting,
	}
	m.publishState(StateConnecting)
	return m
}

// Done is closed when Run returns.
func (m *Monitor) Done() <-chan struct{} {
	return m.done
}

// State returns the current state name.
func (m *Monitor) State() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return string(m.state)
}

// LastTransition returns the most recent state change.
func (m *Monitor) LastTransition() Transition {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

// OnTransition registers a callback for state changes. Call before Run.
func (m *Monitor) OnTransition(fn func(Transition)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onTransit = fn
}

// Run connects and then polls until ctx is cancelled. A failed initial
// connect stops the monitor for good and is returned as a ConnectionError.
func (m *Monitor) Run(ctx context.Context) error {
	defer close(m.done)

	m.log.Info("Monitor starting", "rpc", m.cfg.Network.RPCURL)
	if err := m.cfg.Client.Connect(ctx); err != nil {
		connErr := &domain.ConnectionError{Network: m.cfg.Network.Name, Err: err}
		m.log.Error("Initial connection failed, monitor stopped", "error", connErr)
		m.transition(StateStopped, "connect failed")
		return connErr
	}
	m.transition(StateIdle, "connected")

	defer m.shutdown()
	for {
		err := m.cycle(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err == nil {
			continue
		}

		metrics.PollCycles.WithLabelValues(m.cfg.Network.Name, "error").Inc()
		if !m.cfg.Retry.ShouldRetry(err) {
			m.log.Error("Monitor stopped", "error", err)
			return err
		}
		delay := m.cfg.Retry.GetDelay(err)
		m.log.Warn("Poll cycle failed, retrying", "error", err, "delay", delay)
		m.transition(StateIdle, "poll error")
		if m.wait(ctx, delay) != nil {
			return nil
		}
	}
}

// cycle runs one Idle or Polling step, including its poll interval wait.
func (m *Monitor) cycle(ctx context.Context) error {
	m.cycleCount++
	addrs, _ := m.cfg.Book.Snapshot(m.cfg.Network.Name)

	if len(addrs) == 0 {
		m.dropFilter(ctx)
		m.transition(StateIdle, "no addresses")
		metrics.PollCycles.WithLabelValues(m.cfg.Network.Name, "idle").Inc()
		return m.wait(ctx, m.cfg.PollInterval)
	}

	m.transition(StatePolling, "addresses present")
	if err := m.ensureFilter(ctx, addrs); err != nil {
		return err
	}
	if err := m.wait(ctx, m.cfg.PollInterval); err != nil {
		return err
	}

	logs, err := m.cfg.Client.FilterChanges(ctx, m.filterID)
	if err != nil {
		if routing.ClassifyError(err) == routing.ActionResetFilter {
			m.log.Info("Filter expired on node, reinstalling next cycle", "filter", m.filterID)
			m.filterID, m.scope = "", nil
		}
		return &domain.PollError{Network: m.cfg.Network.Name, Op: "get_filter_changes", Err: err}
	}
	metrics.PollCycles.WithLabelValues(m.cfg.Network.Name, "ok").Inc()

	if len(logs) > 0 {
		m.dispatch(ctx, logs)
	}
	return nil
}

// ensureFilter installs a filter for exactly addrs, replacing a stale one.
func (m *Monitor) ensureFilter(ctx context.Context, addrs []string) error {
	if m.filterID != "" && slices.Equal(m.scope, addrs) {
		return nil
	}
	if m.filterID != "" {
		m.log.Debug("Address set changed, rebuilding filter", "old", len(m.scope), "new", len(addrs))
		m.dropFilter(ctx)
	}

	id, err := m.cfg.Client.NewFilter(ctx, addrs)
	if err != nil {
		return &domain.PollError{Network: m.cfg.Network.Name, Op: "new_filter", Err: err}
	}
	m.filterID = id
	m.scope = slices.Clone(addrs)
	m.log.Debug("Filter installed", "filter", id, "addresses", len(addrs))
	return nil
}

// dropFilter uninstalls the current filter. Failures only leak a node-side
// filter that expires on its own.
func (m *Monitor) dropFilter(ctx context.Context) {
	if m.filterID == "" {
		return
	}
	if err := m.cfg.Client.UninstallFilter(ctx, m.filterID); err != nil {
		m.log.Debug("Failed to uninstall filter", "filter", m.filterID, "error", err)
	}
	m.filterID, m.scope = "", nil
}

// dispatch forwards logs whose address is still watched after the wait.
func (m *Monitor) dispatch(ctx context.Context, logs []evm.Log) {
	current, _ := m.cfg.Book.Snapshot(m.cfg.Network.Name)
	watched := make(map[string]string, len(current))
	for _, a := range current {
		watched[domain.AddressKey(a)] = a
	}

	network := m.cfg.Network
	if m.cfg.Explorer != nil {
		network.ExplorerTxPrefix = m.cfg.Explorer.ResolveExplorerPrefix(network.Name)
	}

	for _, l := range logs {
		if l.Removed {
			continue
		}
		addr, ok := watched[domain.AddressKey(l.Address)]
		if !ok {
			m.log.Debug("Dropping log for unwatched address", "address", l.Address, "tx", l.TxHash)
			continue
		}

		ev := domain.NewTransferEvent(domain.EventKindLog, domain.EventSourceMonitor)
		ev.Network = network.Name
		ev.DisplayName = network.Label()
		ev.Address = addr
		ev.TxHash = l.TxHash
		ev.ExplorerLink = network.ExplorerLink(l.TxHash)
		ev.BlockNumber = l.BlockNumber
		ev.Raw = l.Raw
		if l.IsTransfer() {
			ev.Kind = domain.EventKindTransfer
			ev.Value = l.Value.String()
		}

		metrics.EventsMatched.WithLabelValues(network.Name, string(ev.Source)).Inc()
		m.log.Info("Event matched", "address", addr, "tx", l.TxHash, "block", l.BlockNumber)
		m.cfg.Notifier.Notify(ctx, ev)
	}
}

func (m *Monitor) shutdown() {
	if m.filterID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		m.dropFilter(ctx)
	}
	m.transition(StateStopped, "shutdown")
	m.log.Info("Monitor stopped", "cycles", m.cycleCount)
}

func (m *Monitor) wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (m *Monitor) transition(to State, reason string) {
	m.mu.Lock()
	from := m.state
	if from == to {
		m.mu.Unlock()
		return
	}
	t := NewTransition(from, to, reason)
	if !t.IsValid() {
		m.log.Warn("Unexpected state transition", "from", from, "to", to, "reason", reason)
	}
	m.state = to
	m.last = t
	fn := m.onTransit
	m.mu.Unlock()

	m.publishState(to)
	m.log.Debug("State changed", "from", from, "to", to, "reason", reason)
	if fn != nil {
		fn(t)
	}
}

func (m *Monitor) publishState(current State) {
	for _, s := range AllStates {
		v := 0.0
		if s == current {
			v = 1
		}
		metrics.MonitorState.WithLabelValues(m.cfg.Network.Name, string(s)).Set(v)
	}
}

// RPCHealth reports the client's provider health when the client tracks it.
func (m *Monitor) RPCHealth() (provider.HealthStatus, bool) {
	h, ok := m.cfg.Client.(interface{ Health() provider.HealthStatus })
	if !ok {
		return provider.HealthStatus{}, false
	}
	return h.Health(), true
}

func (m *Monitor) String() string {
	return fmt.Sprintf("monitor(%s, %s)", m.cfg.Network.Name, m.State())
}
