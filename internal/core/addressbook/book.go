// Package addressbook holds, per network, the wallet addresses being watched.
package addressbook

import (
	"sort"
	"sync"

	"github.com/wiyan17/Notifwallet-bot/internal/core/domain"
	"github.com/wiyan17/Notifwallet-bot/internal/indexing/filter"
	"github.com/wiyan17/Notifwallet-bot/internal/indexing/metrics"
)

// Book maps networks to their address sets. Every mutation holds the write
// lock for its whole duration, so readers see either the old or the new state.
type Book struct {
	mu        sync.RWMutex
	entries   map[domain.NetworkName]*filter.MemoryFilter
	labels    map[domain.NetworkName]string
	universal domain.AddressPredicate
}

// New creates an empty book. A nil predicate defaults to domain.IsEVMAddress;
// pass domain.IsStrictEVMAddress to require full 20-byte addresses.
func New(universal domain.AddressPredicate) *Book {
	if universal == nil {
		universal = domain.IsEVMAddress
	}
	return &Book{
		entries:   make(map[domain.NetworkName]*filter.MemoryFilter),
		labels:    make(map[domain.NetworkName]string),
		universal: universal,
	}
}

// CreateEntry adds an empty entry for a network. It reports false if one exists.
func (b *Book) CreateEntry(network domain.Network) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.entries[network.Name]; ok {
		return false
	}
	b.entries[network.Name] = filter.NewMemoryFilter()
	b.labels[network.Name] = network.Label()
	metrics.WatchedAddresses.WithLabelValues(network.Name).Set(0)
	return true
}

// Add inserts an address into one network's set.
func (b *Book) Add(network, address string) domain.AddResult {
	name := domain.NormalizeNetworkName(network)
	address = domain.NormalizeAddress(address)

	b.mu.Lock()
	defer b.mu.Unlock()
	entry, ok := b.entries[name]
	if !ok {
		return domain.UnknownNetwork
	}
	if !entry.Add(address) {
		return domain.AlreadyPresent
	}
	metrics.WatchedAddresses.WithLabelValues(name).Set(float64(entry.Size()))
	return domain.Added
}

// AddToAll validates the address and adds it to every network known right now.
// Networks registered later are not included.
func (b *Book) AddToAll(address string) ([]domain.NetworkResult, error) {
	address = domain.NormalizeAddress(address)
	if !b.universal(address) {
		return nil, domain.ErrInvalidFormat
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	results := make([]domain.NetworkResult, 0, len(b.entries))
	for _, name := range b.sortedNames() {
		entry := b.entries[name]
		res := domain.AlreadyPresent
		if entry.Add(address) {
			res = domain.Added
			metrics.WatchedAddresses.WithLabelValues(name).Set(float64(entry.Size()))
		}
		results = append(results, domain.NetworkResult{
			Network:     name,
			DisplayName: b.labels[name],
			Result:      res,
		})
	}
	return results, nil
}

// Remove deletes an address from one network's set.
func (b *Book) Remove(network, address string) domain.RemoveResult {
	name := domain.NormalizeNetworkName(network)

	b.mu.Lock()
	defer b.mu.Unlock()
	entry, ok := b.entries[name]
	if !ok {
		return domain.RemoveUnknownNetwork
	}
	if !entry.Remove(address) {
		return domain.NotFound
	}
	metrics.WatchedAddresses.WithLabelValues(name).Set(float64(entry.Size()))
	return domain.Removed
}

// Snapshot returns a copy of one network's addresses.
func (b *Book) Snapshot(network string) ([]string, bool) {
	name := domain.NormalizeNetworkName(network)

	b.mu.RLock()
	defer b.mu.RUnlock()
	entry, ok := b.entries[name]
	if !ok {
		return nil, false
	}
	return entry.Addresses(), true
}

// List returns every network with its sorted addresses, ordered by network name.
func (b *Book) List() []domain.WalletListing {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.WalletListing, 0, len(b.entries))
	for _, name := range b.sortedNames() {
		out = append(out, domain.WalletListing{
			Network:     name,
			DisplayName: b.labels[name],
			Addresses:   b.entries[name].Addresses(),
		})
	}
	return out
}

// Watching reports whether any network watches the address.
func (b *Book) Watching(address string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, entry := range b.entries {
		if entry.Contains(address) {
			return true
		}
	}
	return false
}

// Empty reports whether no network watches anything.
func (b *Book) Empty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, entry := range b.entries {
		if entry.Size() > 0 {
			return false
		}
	}
	return true
}

// Has reports whether the network has an entry.
func (b *Book) Has(network string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.entries[domain.NormalizeNetworkName(network)]
	return ok
}

// sortedNames must be called with mu held.
func (b *Book) sortedNames() []domain.NetworkName {
	names := make([]domain.NetworkName, 0, len(b.entries))
	for name := range b.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
