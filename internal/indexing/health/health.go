// Package health provides system health monitoring and status reporting.
package health

// SystemStatus represents the overall health state of the system or a component.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// NetworkHealth contains the health of one network monitor.
type NetworkHealth struct {
	Network          string       `json:"network"`
	DisplayName      string       `json:"display_name"`
	Status           SystemStatus `json:"status"`
	State            string       `json:"state"`
	Running          bool         `json:"running"`
	WatchedAddresses int          `json:"watched_addresses"`
	RPCAvailable     bool         `json:"rpc_available"`
	RPCErrorRate     float64      `json:"rpc_error_rate"`
	RPCLatency       string       `json:"rpc_latency,omitempty"`
}

// HealthReport contains the full system health report.
type HealthReport struct {
	SystemStatus SystemStatus             `json:"system_status"`
	Subscribers  int                      `json:"subscribers"`
	Networks     map[string]NetworkHealth `json:"networks"`
}

// Aggregate returns the worst status in the report.
func Aggregate(networks map[string]NetworkHealth) SystemStatus {
	status := StatusHealthy
	for _, n := range networks {
		if n.Status == StatusCritical {
			return StatusCritical
		}
		if n.Status == StatusDegraded {
			status = StatusDegraded
		}
	}
	return status
}
