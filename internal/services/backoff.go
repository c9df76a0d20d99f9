package services

import (
	"math"
	"time"
)

// DefaultBaseDelay is the unit of the failed-attempt backoff.
const DefaultBaseDelay = 500 * time.Millisecond

// BackoffPolicy computes how long a password check waits given the number
// of consecutive failures recorded for the user: (2^attempts - 1) * BaseDelay.
// A zero MaxDelay leaves the delay uncapped.
type BackoffPolicy struct {
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultBackoff returns the uncapped 500ms policy.
func DefaultBackoff() BackoffPolicy {
	return BackoffPolicy{BaseDelay: DefaultBaseDelay}
}

// Delay returns the wait before comparing a password after attempts failures.
func (p BackoffPolicy) Delay(attempts int) time.Duration {
	if attempts <= 0 || p.BaseDelay <= 0 {
		return 0
	}

	// Saturate instead of overflowing int64 nanoseconds.
	d := time.Duration(math.MaxInt64)
	if attempts < 63 {
		factor := int64(1)<<uint(attempts) - 1
		if factor <= math.MaxInt64/int64(p.BaseDelay) {
			d = time.Duration(factor) * p.BaseDelay
		}
	}

	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}
