// Package recovery holds the retry policies used by monitors and startup wiring.
package recovery

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// Do runs fn up to attempts times, waiting interval between tries.
// It is used for optional broker connections at startup.
func Do(ctx context.Context, attempts uint64, interval time.Duration, fn func(ctx context.Context) error) error {
	b := retry.WithMaxRetries(attempts-1, retry.NewConstant(interval))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}
