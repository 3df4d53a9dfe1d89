package provider

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultRetryAfter429 = 60 * time.Second
	defaultRetryAfter403 = 10 * time.Minute
)

// ThrottleError is returned while the endpoint is rate limiting or blocking us.
type ThrottleError struct {
	StatusCode int
	RetryAfter time.Duration
}

func (e *ThrottleError) Error() string {
	switch e.StatusCode {
	case 403:
		return fmt.Sprintf("ip blocked (403), retry after %s", e.RetryAfter)
	case 429:
		return fmt.Sprintf("rate limited (429), retry after %s", e.RetryAfter)
	default:
		return fmt.Sprintf("provider throttled, retry after %s", e.RetryAfter)
	}
}

// ThrottleTracker remembers the last throttle response from an endpoint.
type ThrottleTracker struct {
	mu               sync.RWMutex
	throttlePatterns []string
	lastStatus       int
	until            time.Time
	count429         int
	count403         int
	now              func() time.Time
}

// NewThrottleTracker creates a tracker with the usual provider throttle messages.
func NewThrottleTracker() *ThrottleTracker {
	return &ThrottleTracker{
		throttlePatterns: []string{
			"rate limit exceeded",
			"too many requests",
			"daily request count exceeded",
			"project rate limit",
			"monthly quota exceeded",
		},
		now: time.Now,
	}
}

// RecordThrottle records a 429 or 403 response. retryAfter is the raw
// Retry-After header value in seconds, possibly empty.
func (t *ThrottleTracker) RecordThrottle(statusCode int, retryAfter string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	wait := defaultRetryAfter429
	if statusCode == 403 {
		wait = defaultRetryAfter403
		t.count403++
	} else {
		t.count429++
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(retryAfter)); err == nil && secs >= 0 {
		wait = time.Duration(secs) * time.Second
	}

	t.lastStatus = statusCode
	t.until = t.now().Add(wait)
	return wait
}

// DetectThrottlePattern checks if a message contains throttle patterns.
func (t *ThrottleTracker) DetectThrottlePattern(message string) bool {
	lowerMsg := strings.ToLower(message)
	for _, pattern := range t.throttlePatterns {
		if strings.Contains(lowerMsg, pattern) {
			return true
		}
	}
	return false
}

// Check returns a ThrottleError while a previous throttle is still in effect.
func (t *ThrottleTracker) Check() error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	remaining := t.until.Sub(t.now())
	if remaining <= 0 {
		return nil
	}
	return &ThrottleError{StatusCode: t.lastStatus, RetryAfter: remaining}
}

// Counts returns how many 429 and 403 responses were seen.
func (t *ThrottleTracker) Counts() (int, int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count429, t.count403
}
