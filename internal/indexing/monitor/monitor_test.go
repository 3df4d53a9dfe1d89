package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wiyan17/Notifwallet-bot/internal/core/addressbook"
	"github.com/wiyan17/Notifwallet-bot/internal/core/domain"
	"github.com/wiyan17/Notifwallet-bot/internal/infra/chain/evm"
	"github.com/wiyan17/Notifwallet-bot/internal/infra/rpc/provider"
)

// =============================================================================
// Mocks
// =============================================================================

type fakeClient struct {
	mu         sync.Mutex
	connectErr error
	calls      []string
	filters    map[string][]string
	nextID     int
	changes    func(n int, filterID string) ([]evm.Log, error)
	changeN    int
}

func newFakeClient() *fakeClient {
	return &fakeClient{filters: make(map[string][]string)}
}

func (c *fakeClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "connect")
	return c.connectErr
}

func (c *fakeClient) NewFilter(ctx context.Context, addresses []string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "new_filter")
	c.nextID++
	id := fmt.Sprintf("0x%x", c.nextID)
	c.filters[id] = append([]string(nil), addresses...)
	return id, nil
}

func (c *fakeClient) FilterChanges(ctx context.Context, filterID string) ([]evm.Log, error) {
	c.mu.Lock()
	c.calls = append(c.calls, "get_changes")
	c.changeN++
	n, fn := c.changeN, c.changes
	_, installed := c.filters[filterID]
	c.mu.Unlock()

	if !installed {
		return nil, &provider.RPCError{Code: -32000, Message: "filter not found"}
	}
	if fn == nil {
		return nil, nil
	}
	return fn(n, filterID)
}

func (c *fakeClient) UninstallFilter(ctx context.Context, filterID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "uninstall")
	delete(c.filters, filterID)
	return nil
}

func (c *fakeClient) count(call string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, s := range c.calls {
		if s == call {
			n++
		}
	}
	return n
}

func (c *fakeClient) installed() [][]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]string, 0, len(c.filters))
	for _, addrs := range c.filters {
		out = append(out, addrs)
	}
	return out
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.TransferEvent
	ch     chan domain.TransferEvent
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{ch: make(chan domain.TransferEvent, 16)}
}

func (n *recordingNotifier) Notify(ctx context.Context, ev domain.TransferEvent) {
	n.mu.Lock()
	n.events = append(n.events, ev)
	n.mu.Unlock()
	n.ch <- ev
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

type staticExplorer map[string]string

func (e staticExplorer) ResolveExplorerPrefix(name string) string { return e[name] }

var base = domain.Network{Name: "base", DisplayName: "Base", RPCURL: "http://base"}

func setup(t *testing.T, client *fakeClient) (*Monitor, *addressbook.Book, *recordingNotifier) {
	t.Helper()
	book := addressbook.New(nil)
	book.CreateEntry(base)
	notifier := newRecordingNotifier()
	m := New(Config{
		Network:      base,
		Client:       client,
		Book:         book,
		Explorer:     staticExplorer{"base": "https://basescan.org/tx/"},
		Notifier:     notifier,
		PollInterval: 10 * time.Millisecond,
	})
	return m, book, notifier
}

func start(t *testing.T, m *Monitor) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go m.Run(ctx)
	t.Cleanup(func() {
		cancel()
		select {
		case <-m.Done():
		case <-time.After(2 * time.Second):
			t.Error("monitor did not stop")
		}
	})
	return cancel
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %s", what)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

// =============================================================================
// Tests
// =============================================================================

func TestMonitor_EmptyBookMakesNoPollCalls(t *testing.T) {
	client := newFakeClient()
	m, _, _ := setup(t, client)
	start(t, m)

	waitFor(t, "idle", func() bool { return m.State() == string(StateIdle) })
	time.Sleep(100 * time.Millisecond)

	if n := client.count("new_filter") + client.count("get_changes"); n != 0 {
		t.Errorf("expected zero polling calls, got %d", n)
	}
	if client.count("connect") != 1 {
		t.Errorf("expected a single connect, got %d", client.count("connect"))
	}
}

func TestMonitor_DeliversMatchedEvent(t *testing.T) {
	client := newFakeClient()
	client.changes = func(n int, id string) ([]evm.Log, error) {
		if n == 1 {
			return []evm.Log{{Address: "0xdead", TxHash: "0xabc", BlockNumber: 7}}, nil
		}
		return nil, nil
	}
	m, book, notifier := setup(t, client)
	book.Add("base", "0xDEAD")
	start(t, m)

	select {
	case ev := <-notifier.ch:
		if ev.Network != "base" || ev.DisplayName != "Base" {
			t.Errorf("unexpected network on event: %+v", ev)
		}
		if ev.Address != "0xDEAD" {
			t.Errorf("expected verbatim book address 0xDEAD, got %s", ev.Address)
		}
		if ev.TxHash != "0xabc" || ev.ExplorerLink != "https://basescan.org/tx/0xabc" {
			t.Errorf("unexpected tx fields: %s %s", ev.TxHash, ev.ExplorerLink)
		}
		if ev.Source != domain.EventSourceMonitor || ev.BlockNumber != 7 {
			t.Errorf("unexpected metadata: %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}

	time.Sleep(50 * time.Millisecond)
	if notifier.count() != 1 {
		t.Errorf("expected exactly one event, got %d", notifier.count())
	}
}

func TestMonitor_IgnoresUnwatchedAndRemovedLogs(t *testing.T) {
	client := newFakeClient()
	client.changes = func(n int, id string) ([]evm.Log, error) {
		if n == 1 {
			return []evm.Log{
				{Address: "0xBEEF", TxHash: "0x1"},
				{Address: "0xDEAD", TxHash: "0x2", Removed: true},
			}, nil
		}
		return nil, nil
	}
	m, book, notifier := setup(t, client)
	book.Add("base", "0xDEAD")
	start(t, m)

	waitFor(t, "first fetch", func() bool { return client.count("get_changes") >= 2 })
	if notifier.count() != 0 {
		t.Errorf("expected no events, got %d", notifier.count())
	}
}

func TestMonitor_RebuildsFilterOnAddressChange(t *testing.T) {
	client := newFakeClient()
	m, book, _ := setup(t, client)
	book.Add("base", "0xAAA")
	start(t, m)

	waitFor(t, "first filter", func() bool { return client.count("new_filter") == 1 })

	book.Add("base", "0xBBB")
	waitFor(t, "rebuilt filter", func() bool {
		inst := client.installed()
		return len(inst) == 1 && strings.Join(inst[0], ",") == "0xAAA,0xBBB"
	})
	if client.count("uninstall") < 1 {
		t.Error("expected the stale filter to be uninstalled")
	}

	book.Remove("base", "0xAAA")
	book.Remove("base", "0xBBB")
	waitFor(t, "filter dropped", func() bool { return len(client.installed()) == 0 })
	waitFor(t, "idle", func() bool { return m.State() == string(StateIdle) })
}

func TestMonitor_ConnectFailureStopsForGood(t *testing.T) {
	client := newFakeClient()
	client.connectErr = errors.New("dial tcp: connection refused")
	m, book, _ := setup(t, client)
	book.Add("base", "0xDEAD")

	err := m.Run(context.Background())
	var connErr *domain.ConnectionError
	if !errors.As(err, &connErr) || connErr.Network != "base" {
		t.Fatalf("expected ConnectionError, got %v", err)
	}
	if m.State() != string(StateStopped) {
		t.Errorf("expected stopped, got %s", m.State())
	}
	select {
	case <-m.Done():
	default:
		t.Error("expected Done to be closed")
	}
	if client.count("connect") != 1 || client.count("new_filter") != 0 {
		t.Errorf("expected no retry and no polling, calls: %v", client.calls)
	}
}

func TestMonitor_RetriesAfterPollError(t *testing.T) {
	client := newFakeClient()
	client.changes = func(n int, id string) ([]evm.Log, error) {
		switch n {
		case 1:
			return nil, errors.New("502 bad gateway")
		case 2:
			return []evm.Log{{Address: "0xDEAD", TxHash: "0x9"}}, nil
		}
		return nil, nil
	}
	m, book, notifier := setup(t, client)
	book.Add("base", "0xDEAD")

	var mu sync.Mutex
	var sawErrorTransition bool
	m.OnTransition(func(tr Transition) {
		if tr.Reason == "poll error" {
			mu.Lock()
			sawErrorTransition = true
			mu.Unlock()
		}
	})
	start(t, m)

	select {
	case <-notifier.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("expected the monitor to recover and deliver")
	}
	mu.Lock()
	defer mu.Unlock()
	if !sawErrorTransition {
		t.Error("expected a transition back to idle after the error")
	}
}

func TestMonitor_ReinstallsExpiredFilter(t *testing.T) {
	client := newFakeClient()
	m, book, _ := setup(t, client)
	book.Add("base", "0xDEAD")
	start(t, m)

	waitFor(t, "filter", func() bool { return client.count("new_filter") == 1 })

	// Node forgets the filter
	client.mu.Lock()
	client.filters = make(map[string][]string)
	client.mu.Unlock()

	waitFor(t, "reinstall", func() bool { return client.count("new_filter") >= 2 })
}

func TestMonitor_ShutdownUninstallsFilter(t *testing.T) {
	client := newFakeClient()
	m, book, _ := setup(t, client)
	book.Add("base", "0xDEAD")

	ctx, cancel := context.WithCancel(context.Background())
	go m.Run(ctx)
	waitFor(t, "filter", func() bool { return client.count("new_filter") == 1 })

	cancel()
	select {
	case <-m.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop")
	}
	if len(client.installed()) != 0 {
		t.Error("expected filter to be uninstalled on shutdown")
	}
	if m.State() != string(StateStopped) {
		t.Errorf("expected stopped, got %s", m.State())
	}
}

type healthClient struct {
	*fakeClient
	health provider.HealthStatus
}

func (c healthClient) Health() provider.HealthStatus { return c.health }

func TestMonitor_RPCHealth(t *testing.T) {
	m := New(Config{Network: base, Client: newFakeClient()})
	if _, ok := m.RPCHealth(); ok {
		t.Error("expected no health for a client without stats")
	}

	m = New(Config{Network: base, Client: healthClient{fakeClient: newFakeClient(), health: provider.HealthStatus{ErrorRate: 0.25}}})
	h, ok := m.RPCHealth()
	if !ok || h.ErrorRate != 0.25 {
		t.Errorf("expected provider stats, got %+v %v", h, ok)
	}
}
