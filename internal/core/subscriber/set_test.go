package subscriber

import (
	"testing"

	"github.com/wiyan17/Notifwallet-bot/internal/core/domain"
)

func TestSet_SubscribeIdempotent(t *testing.T) {
	s := NewSet()

	if !s.Subscribe("42") {
		t.Error("expected first subscribe to add")
	}
	if s.Subscribe("42") {
		t.Error("expected second subscribe to be a no-op")
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 member, got %d", s.Len())
	}
}

func TestSet_UnsubscribeNonMember(t *testing.T) {
	s := NewSet()
	s.Subscribe("1")

	if got := s.Unsubscribe("2"); got != domain.NotSubscribed {
		t.Errorf("expected NotSubscribed, got %s", got)
	}
	if s.Len() != 1 || !s.Contains("1") {
		t.Error("expected set to be unchanged")
	}
	if got := s.Unsubscribe("1"); got != domain.Unsubscribed {
		t.Errorf("expected Unsubscribed, got %s", got)
	}
	if s.Contains("1") {
		t.Error("expected 1 to be removed")
	}
}

func TestSet_SnapshotIsCopy(t *testing.T) {
	s := NewSet()
	s.Subscribe("b")
	s.Subscribe("a")

	snap := s.Snapshot()
	if len(snap) != 2 || snap[0] != "a" || snap[1] != "b" {
		t.Fatalf("expected [a b], got %v", snap)
	}

	s.Unsubscribe("a")
	if len(snap) != 2 {
		t.Error("expected snapshot to be unaffected by later mutation")
	}
}
