// Package registry holds the registered networks and owns their monitor tasks.
package registry

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/wiyan17/Notifwallet-bot/internal/core/domain"
)

// Task is a running network monitor.
type Task interface {
	// Done is closed when the monitor has exited.
	Done() <-chan struct{}

	// State reports the monitor's current state.
	State() string
}

// Launcher starts the monitor for a freshly registered network.
// Launch must not block on network I/O.
type Launcher interface {
	Launch(network domain.Network) Task
}

// Book is the part of the address book the registry needs.
type Book interface {
	CreateEntry(network domain.Network) bool
}

type entry struct {
	network domain.Network
	task    Task
}

// TaskStatus is a point-in-time view of one network's monitor.
type TaskStatus struct {
	Network domain.Network
	State   string
	Running bool
	// Handle is the launched task, nil if none was launched.
	Handle Task
}

// Registry maps normalized network names to endpoints and monitor handles.
// There is no unregister: a monitor lives until the process context ends.
type Registry struct {
	mu       sync.Mutex
	entries  map[domain.NetworkName]*entry
	book     Book
	launcher Launcher
	log      *slog.Logger
}

// New creates an empty registry.
func New(book Book, launcher Launcher) *Registry {
	return &Registry{
		entries:  make(map[domain.NetworkName]*entry),
		book:     book,
		launcher: launcher,
		log:      slog.Default().With("component", "registry"),
	}
}

// Register adds a network by name and RPC URL. Known names pick up their
// display name and explorer prefix from the built-in table.
func (r *Registry) Register(name, rpcURL string) (domain.RegisterResult, error) {
	network := domain.Network{
		Name:        domain.NormalizeNetworkName(name),
		DisplayName: strings.TrimSpace(name),
		RPCURL:      strings.TrimSpace(rpcURL),
	}
	if known, ok := domain.KnownNetwork(name); ok {
		network.DisplayName = known.DisplayName
		network.ExplorerTxPrefix = known.ExplorerTxPrefix
	}
	return r.RegisterNetwork(network)
}

// RegisterNetwork adds a fully described network. The book entry is created
// before the monitor is launched, both under the registry lock.
func (r *Registry) RegisterNetwork(network domain.Network) (domain.RegisterResult, error) {
	network.Name = domain.NormalizeNetworkName(network.Name)
	network.RPCURL = strings.TrimSpace(network.RPCURL)
	if network.Name == "" || network.RPCURL == "" {
		return domain.AlreadyExists, &domain.UsageError{Usage: "network name and rpc url are required"}
	}
	if network.DisplayName == "" {
		network.DisplayName = network.Name
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[network.Name]; ok {
		return domain.AlreadyExists, nil
	}

	r.book.CreateEntry(network)
	e := &entry{network: network}
	r.entries[network.Name] = e
	if r.launcher != nil {
		e.task = r.launcher.Launch(network)
	}

	r.log.Info("Network registered", "network", network.Name, "rpc", network.RPCURL)
	return domain.Registered, nil
}

// Get returns a registered network.
func (r *Registry) Get(name string) (domain.Network, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[domain.NormalizeNetworkName(name)]
	if !ok {
		return domain.Network{}, false
	}
	return e.network, true
}

// List returns the registered networks ordered by name.
func (r *Registry) List() []domain.Network {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Network, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.network)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ResolveExplorerPrefix returns the explorer prefix for a network, or "".
func (r *Registry) ResolveExplorerPrefix(name string) string {
	n, ok := r.Get(name)
	if !ok {
		return ""
	}
	return n.ExplorerTxPrefix
}

// Tasks reports the state of every monitor.
func (r *Registry) Tasks() []TaskStatus {
	r.mu.Lock()
	entries := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.Unlock()

	out := make([]TaskStatus, 0, len(entries))
	for _, e := range entries {
		st := TaskStatus{Network: e.network, Handle: e.task}
		if e.task != nil {
			st.State = e.task.State()
			select {
			case <-e.task.Done():
			default:
				st.Running = true
			}
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Network.Name < out[j].Network.Name })
	return out
}

// Wait blocks until every launched monitor has exited or stop is closed.
func (r *Registry) Wait(stop <-chan struct{}) {
	r.mu.Lock()
	tasks := make([]Task, 0, len(r.entries))
	for _, e := range r.entries {
		if e.task != nil {
			tasks = append(tasks, e.task)
		}
	}
	r.mu.Unlock()

	for _, t := range tasks {
		select {
		case <-t.Done():
		case <-stop:
			return
		}
	}
}
