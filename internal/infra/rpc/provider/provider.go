// Package provider implements JSON-RPC transport to EVM nodes.
//
// This package contains:
//   - RPCProvider interface: the call surface used by chain clients
//   - HTTPProvider: JSON-RPC 2.0 over HTTP
//   - ThrottleTracker: rate limit and IP block tracking
package provider

import (
	"context"
	"time"
)

// RPCProvider defines a JSON-RPC endpoint.
type RPCProvider interface {
	// GetName returns the provider identifier (the network name)
	GetName() string

	// GetHealth returns current health metrics
	GetHealth() HealthStatus

	// Call makes a single RPC request
	Call(ctx context.Context, method string, params []any) (any, error)

	// Close cleans up resources
	Close() error
}

// HealthStatus represents the health state of a provider.
type HealthStatus struct {
	Available     bool          `json:"available"`
	Latency       time.Duration `json:"latency"`
	ErrorRate     float64       `json:"error_rate"`
	LastSuccessAt time.Time     `json:"last_success_at"`
	LastFailureAt time.Time     `json:"last_failure_at"`
}
