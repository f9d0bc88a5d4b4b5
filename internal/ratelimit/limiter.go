// Package ratelimit throttles outgoing requests per host.
package ratelimit

import (
	"context"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter blocks until a request to the given host may proceed
type Limiter interface {
	Wait(ctx context.Context, host string) error
}

// HostLimiter keeps one token bucket per host so a crawl of the source shop
// does not starve requests to other hosts sharing the same session.
type HostLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	perHost  rate.Limit
	burst    int
}

// NewHostLimiter creates a limiter allowing requestsPerSecond per host.
// A non-positive rate disables limiting.
func NewHostLimiter(requestsPerSecond float64, burst int) *HostLimiter {
	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}

	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		perHost:  limit,
		burst:    burst,
	}
}

// Wait blocks until the host's bucket yields a token or ctx is done
func (hl *HostLimiter) Wait(ctx context.Context, host string) error {
	if host == "" || hl.perHost == rate.Inf {
		return nil
	}
	return hl.limiter(host).Wait(ctx)
}

func (hl *HostLimiter) limiter(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	l, ok := hl.limiters[host]
	if !ok {
		l = rate.NewLimiter(hl.perHost, hl.burst)
		hl.limiters[host] = l
	}
	return l
}

// Transport applies a Limiter before delegating to Base
type Transport struct {
	Base    http.RoundTripper
	Limiter Limiter
}

// RoundTrip implements http.RoundTripper
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Limiter != nil {
		if err := t.Limiter.Wait(req.Context(), req.URL.Host); err != nil {
			return nil, err
		}
	}
	return t.Base.RoundTrip(req)
}
