package filter

import (
	"sort"
	"strings"
	"sync"
)

// MemoryFilter implements Filter using an in-memory map.
// Keys are lowercased; values keep the address as it was first added.
type MemoryFilter struct {
	addresses map[string]string
	mu        sync.RWMutex
}

// NewMemoryFilter creates a new in-memory filter.
func NewMemoryFilter() *MemoryFilter {
	return &MemoryFilter{
		addresses: make(map[string]string),
	}
}

func key(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// Contains checks if an address is tracked.
func (f *MemoryFilter) Contains(address string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, exists := f.addresses[key(address)]
	return exists
}

// Add adds an address to the filter.
func (f *MemoryFilter) Add(address string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(address)
	if _, exists := f.addresses[k]; exists {
		return false
	}
	f.addresses[k] = strings.TrimSpace(address)
	return true
}

// Remove removes an address from the filter.
func (f *MemoryFilter) Remove(address string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(address)
	if _, exists := f.addresses[k]; !exists {
		return false
	}
	delete(f.addresses, k)
	return true
}

// Size returns the number of tracked addresses.
func (f *MemoryFilter) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.addresses)
}

// Addresses returns all tracked addresses sorted case-insensitively.
func (f *MemoryFilter) Addresses() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	keys := make([]string, 0, len(f.addresses))
	for k := range f.addresses {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	result := make([]string, len(keys))
	for i, k := range keys {
		result[i] = f.addresses[k]
	}
	return result
}
