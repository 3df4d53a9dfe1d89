// Package subscriber tracks the recipients opted into alerts.
package subscriber

import (
	"sort"
	"sync"

	"github.com/wiyan17/Notifwallet-bot/internal/core/domain"
	"github.com/wiyan17/Notifwallet-bot/internal/indexing/metrics"
)

// Set is a mutex-guarded set of subscribers.
type Set struct {
	mu      sync.Mutex
	members map[domain.SubscriberID]struct{}
}

// NewSet creates an empty subscriber set.
func NewSet() *Set {
	return &Set{members: make(map[domain.SubscriberID]struct{})}
}

// Subscribe adds id. It reports whether id was new; subscribing twice is harmless.
func (s *Set) Subscribe(id domain.SubscriberID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[id]; ok {
		return false
	}
	s.members[id] = struct{}{}
	metrics.Subscribers.Set(float64(len(s.members)))
	return true
}

// Unsubscribe removes id.
func (s *Set) Unsubscribe(id domain.SubscriberID) domain.UnsubscribeResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[id]; !ok {
		return domain.NotSubscribed
	}
	delete(s.members, id)
	metrics.Subscribers.Set(float64(len(s.members)))
	return domain.Unsubscribed
}

// Contains reports membership.
func (s *Set) Contains(id domain.SubscriberID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.members[id]
	return ok
}

// Snapshot returns a sorted copy of the members.
func (s *Set) Snapshot() []domain.SubscriberID {
	s.mu.Lock()
	out := make([]domain.SubscriberID, 0, len(s.members))
	for id := range s.members {
		out = append(out, id)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of members.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.members)
}
