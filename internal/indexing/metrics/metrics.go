package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RPCCallsTotal tracks RPC calls per network
	RPCCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifwallet_rpc_calls_total",
			Help: "Total number of RPC calls",
		},
		[]string{"network", "method"},
	)

	// RPCErrorsTotal tracks RPC errors per network
	RPCErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifwallet_rpc_errors_total",
			Help: "Total number of RPC errors",
		},
		[]string{"network", "method"},
	)

	// RPCLatency tracks RPC call latency
	RPCLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notifwallet_rpc_latency_seconds",
			Help:    "RPC call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"network", "method"},
	)

	// PollCycles counts monitor cycles by outcome (idle, ok, error)
	PollCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifwallet_poll_cycles_total",
			Help: "Total number of monitor poll cycles",
		},
		[]string{"network", "result"},
	)

	// EventsMatched counts events forwarded to the notifier
	EventsMatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifwallet_events_matched_total",
			Help: "Total number of matched events",
		},
		[]string{"network", "source"},
	)

	// WatchedAddresses is the size of each network's address set
	WatchedAddresses = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "notifwallet_watched_addresses",
			Help: "Number of watched addresses per network",
		},
		[]string{"network"},
	)

	// MonitorState is 1 for the current state of each network monitor
	MonitorState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "notifwallet_monitor_state",
			Help: "Current state of each network monitor",
		},
		[]string{"network", "state"},
	)

	// Subscribers is the current subscriber count
	Subscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notifwallet_subscribers",
			Help: "Number of subscribed recipients",
		},
	)

	// NotificationsTotal counts deliveries per transport and result
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifwallet_notifications_total",
			Help: "Total number of notification deliveries",
		},
		[]string{"transport", "result"},
	)

	// EmitsTotal counts structured event publications per emitter
	EmitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifwallet_emits_total",
			Help: "Total number of event publications",
		},
		[]string{"emitter", "result"},
	)

	// CommandsTotal counts routed commands
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifwallet_commands_total",
			Help: "Total number of handled commands",
		},
		[]string{"command"},
	)

	// WebhookRequests counts webhook calls by response status
	WebhookRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifwallet_webhook_requests_total",
			Help: "Total number of webhook requests",
		},
		[]string{"status"},
	)
)
