package routing

import (
	"errors"
	"strings"

	"github.com/wiyan17/Notifwallet-bot/internal/infra/rpc/provider"
)

// ErrorAction determines how a monitor handles a failed RPC call.
type ErrorAction int

const (
	ActionRetry ErrorAction = iota
	ActionResetFilter
	ActionThrottle
)

func (a ErrorAction) String() string {
	switch a {
	case ActionResetFilter:
		return "reset_filter"
	case ActionThrottle:
		return "throttle"
	default:
		return "retry"
	}
}

// ClassifyError determines the action for a given error.
func ClassifyError(err error) ErrorAction {
	if err == nil {
		return ActionRetry
	}

	var te *provider.ThrottleError
	if errors.As(err, &te) {
		return ActionThrottle
	}

	sLower := strings.ToLower(err.Error())

	// Nodes drop idle filters (usually after ~5 minutes) or lose them on restart
	if strings.Contains(sLower, "filter not found") ||
		strings.Contains(sLower, "filter does not exist") ||
		strings.Contains(sLower, "unknown filter") {
		return ActionResetFilter
	}

	if strings.Contains(sLower, "429") || strings.Contains(sLower, "too many requests") ||
		strings.Contains(sLower, "403") || strings.Contains(sLower, "forbidden") ||
		strings.Contains(sLower, "quota") || strings.Contains(sLower, "rate limit") ||
		strings.Contains(sLower, "count exceeded") {
		return ActionThrottle
	}

	// Default to Retry (Network, 5xx, etc)
	return ActionRetry
}
