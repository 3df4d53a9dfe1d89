package recovery

import (
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/wiyan17/Notifwallet-bot/internal/core/domain"
	"github.com/wiyan17/Notifwallet-bot/internal/infra/rpc/provider"
	"github.com/wiyan17/Notifwallet-bot/internal/infra/rpc/routing"
)

// RetryStrategy defines how monitor failures are retried.
type RetryStrategy interface {
	// GetDelay returns how long to wait after a failed cycle.
	GetDelay(err error) time.Duration

	// ShouldRetry reports whether the failure is retried at all.
	ShouldRetry(err error) bool
}

// FixedInterval retries transient failures forever at a constant interval
// and never retries the initial connect.
type FixedInterval struct {
	backoff retry.Backoff
}

// NewFixedInterval builds the monitor retry policy.
func NewFixedInterval(interval time.Duration) *FixedInterval {
	if interval <= 0 {
		interval = time.Second
	}
	return &FixedInterval{backoff: retry.NewConstant(interval)}
}

// GetDelay returns the poll interval, stretched to honor provider throttling.
func (s *FixedInterval) GetDelay(err error) time.Duration {
	delay, _ := s.backoff.Next()
	if routing.ClassifyError(err) == routing.ActionThrottle {
		var te *provider.ThrottleError
		if errors.As(err, &te) && te.RetryAfter > delay {
			return te.RetryAfter
		}
	}
	return delay
}

// ShouldRetry is false only for connection errors.
func (s *FixedInterval) ShouldRetry(err error) bool {
	var connErr *domain.ConnectionError
	return !errors.As(err, &connErr)
}
