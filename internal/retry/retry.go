// Package retry repeats shop requests that fail with a transient server
// status or a broken connection, backing off exponentially between attempts.
package retry

import (
	"context"
	"errors"
	"math"
	"net/http"
	"slices"
	"time"
)

// Config is the retry policy of a Transport
type Config struct {
	MaxAttempts          int           // attempts per request, including the first
	InitialBackoff       time.Duration // delay before the second attempt
	MaxBackoff           time.Duration // upper bound of any single delay
	Multiplier           float64       // growth factor between delays
	RetryableStatusCodes []int         // answers treated as transient
	RetryableMethods     []string      // methods safe to send again
}

// DefaultConfig is 3 attempts, 0.3s doubling backoff, on 500-503 for GET and POST.
// The shop's form endpoints are safe to repeat, so POST is included.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialBackoff: 300 * time.Millisecond,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
		RetryableStatusCodes: []int{
			http.StatusInternalServerError,
			http.StatusNotImplemented,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
		},
		RetryableMethods: []string{http.MethodGet, http.MethodPost},
	}
}

// Backoff returns the delay after the given failed attempt (1-based):
// InitialBackoff * Multiplier^(attempt-1), capped at MaxBackoff.
func (c Config) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	multiplier := c.Multiplier
	if multiplier <= 0 {
		multiplier = 1
	}

	d := float64(c.InitialBackoff) * math.Pow(multiplier, float64(attempt-1))
	if c.MaxBackoff > 0 && d > float64(c.MaxBackoff) {
		d = float64(c.MaxBackoff)
	}
	return time.Duration(d)
}

// RetriesStatus reports whether a response status is transient
func (c Config) RetriesStatus(code int) bool {
	return slices.Contains(c.RetryableStatusCodes, code)
}

// RetriesMethod reports whether requests with method may be repeated
func (c Config) RetriesMethod(method string) bool {
	return slices.Contains(c.RetryableMethods, method)
}

// RetriesError reports whether a round-trip error is worth another attempt.
// Cancellation is final; timeouts, resets and refused dials are not.
func (c Config) RetriesError(err error) bool {
	return err != nil && !errors.Is(err, context.Canceled)
}

// sleep waits d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
