package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wiyan17/Notifwallet-bot/internal/core/domain"
	"github.com/wiyan17/Notifwallet-bot/internal/core/registry"
	"github.com/wiyan17/Notifwallet-bot/internal/infra/rpc/provider"
)

// =============================================================================
// Mocks
// =============================================================================

type stubTasks []registry.TaskStatus

func (s stubTasks) Tasks() []registry.TaskStatus { return s }

type stubBook map[string][]string

func (s stubBook) Snapshot(network string) ([]string, bool) {
	a, ok := s[network]
	return a, ok
}

type stubSubs int

func (s stubSubs) Len() int { return int(s) }

func task(name, state string, running bool) registry.TaskStatus {
	return registry.TaskStatus{
		Network: domain.Network{Name: name, DisplayName: strings.ToUpper(name)},
		State:   state,
		Running: running,
	}
}

// =============================================================================
// Tests
// =============================================================================

func TestMonitor_Healthy(t *testing.T) {
	monitor := NewMonitor(stubTasks{task("base", "polling", true), task("bsc", "idle", true)},
		stubBook{"base": {"0xA", "0xB"}}, nil)

	report := monitor.CheckHealth(context.Background())
	if report["base"].Status != StatusHealthy || report["bsc"].Status != StatusHealthy {
		t.Errorf("expected healthy, got %+v", report)
	}
	if report["base"].WatchedAddresses != 2 {
		t.Errorf("expected 2 addresses, got %d", report["base"].WatchedAddresses)
	}
}

func TestMonitor_Degraded(t *testing.T) {
	monitor := NewMonitor(stubTasks{task("base", "connecting", true)}, nil, nil)

	report := monitor.CheckHealth(context.Background())
	if report["base"].Status != StatusDegraded {
		t.Errorf("expected degraded, got %s", report["base"].Status)
	}
}

func TestMonitor_Critical(t *testing.T) {
	monitor := NewMonitor(stubTasks{task("base", "stopped", false), task("bsc", "idle", true)}, nil, nil)

	report := monitor.CheckHealth(context.Background())
	if report["base"].Status != StatusCritical {
		t.Errorf("expected critical, got %s", report["base"].Status)
	}
	if Aggregate(report) != StatusCritical {
		t.Error("expected critical aggregate")
	}
}

func TestServer_Endpoints(t *testing.T) {
	monitor := NewMonitor(stubTasks{task("base", "idle", true)}, stubBook{}, stubSubs(3))
	s := NewServer(monitor, 0)
	s.Handle("/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	}), http.MethodPost)

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || body["status"] != "healthy" {
		t.Errorf("unexpected /health: %d %v", resp.StatusCode, body)
	}

	resp, err = http.Get(ts.URL + "/health/detailed")
	if err != nil {
		t.Fatalf("GET /health/detailed: %v", err)
	}
	var report HealthReport
	json.NewDecoder(resp.Body).Decode(&report)
	resp.Body.Close()
	if report.Subscribers != 3 || report.Networks["base"].DisplayName != "BASE" {
		t.Errorf("unexpected report: %+v", report)
	}

	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("unexpected /metrics status %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/ping")
	if err != nil {
		t.Fatalf("GET /ping: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for wrong method, got %d", resp.StatusCode)
	}
}

func TestServer_CriticalReturns503(t *testing.T) {
	s := NewServer(NewMonitor(stubTasks{task("base", "stopped", false)}, nil, nil), 0)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

type rpcTask struct {
	health provider.HealthStatus
}

func (r rpcTask) Done() <-chan struct{} { return nil }
func (r rpcTask) State() string         { return "polling" }
func (r rpcTask) RPCHealth() (provider.HealthStatus, bool) {
	return r.health, true
}

func TestMonitor_DegradedOnUnavailableRPC(t *testing.T) {
	ts := task("base", "polling", true)
	ts.Handle = rpcTask{health: provider.HealthStatus{Available: false, ErrorRate: 0.75}}
	monitor := NewMonitor(stubTasks{ts}, nil, nil)

	h := monitor.CheckHealth(context.Background())["base"]
	if h.Status != StatusDegraded || h.RPCErrorRate != 0.75 || h.RPCAvailable {
		t.Errorf("expected degraded with rpc stats, got %+v", h)
	}
}
