package retry

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/catalogsync/internal/engine"
)

// TransportError is returned once a request has used up its retries
type TransportError struct {
	Method   string
	URL      string
	Attempts int
	// Status is the last transient status seen, 0 when the last attempt failed to connect
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: giving up after %d attempts: HTTP %d", e.Method, e.URL, e.Attempts, e.Status)
	}
	return fmt.Sprintf("%s %s: giving up after %d attempts: %v", e.Method, e.URL, e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is makes every TransportError match engine.ErrTransport
func (e *TransportError) Is(target error) bool {
	return target == engine.ErrTransport
}

// Transport is an http.RoundTripper that repeats requests failing with a
// retryable status code or a connection error.
type Transport struct {
	Base   http.RoundTripper
	Config Config

	// AttemptTimeout bounds each attempt, body read included. A timed out
	// attempt is retried like a broken connection. Zero means no bound.
	AttemptTimeout time.Duration

	// OnRetry, when set, is called before every repeated attempt
	OnRetry func(req *http.Request, attempt int)
}

// NewTransport wraps base with the given retry policy
func NewTransport(base http.RoundTripper, cfg Config) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &Transport{Base: base, Config: cfg}
}

// RoundTrip implements http.RoundTripper
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !t.Config.RetriesMethod(req.Method) {
		return t.Base.RoundTrip(req)
	}

	body, err := snapshotBody(req)
	if err != nil {
		return nil, err
	}

	failure := &TransportError{Method: req.Method, URL: req.URL.String()}
	for attempt := 1; attempt <= t.Config.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := t.Config.Backoff(attempt - 1)
			log.Debug().
				Str("url", failure.URL).
				Int("attempt", attempt).
				Dur("backoff", delay).
				Msg("Retrying after backoff")
			if err := sleep(req.Context(), delay); err != nil {
				return nil, err
			}
			if t.OnRetry != nil {
				t.OnRetry(req, attempt)
			}
		}
		failure.Attempts = attempt

		attemptReq, cancel := t.attempt(req, body)
		res, err := t.Base.RoundTrip(attemptReq)
		if err != nil {
			cancel()
			if ctxErr := req.Context().Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if !t.Config.RetriesError(err) {
				return nil, err
			}
			failure.Status, failure.Err = 0, err
			continue
		}
		if !t.Config.RetriesStatus(res.StatusCode) {
			res.Body = &cancelOnClose{ReadCloser: res.Body, cancel: cancel}
			return res, nil
		}

		io.Copy(io.Discard, res.Body)
		res.Body.Close()
		cancel()
		failure.Status, failure.Err = res.StatusCode, nil
	}

	log.Warn().
		Str("url", failure.URL).
		Int("attempts", failure.Attempts).
		Int("status", failure.Status).
		Msg("Max retry attempts exceeded")
	return nil, failure
}

// attempt prepares one try of req, bounded by AttemptTimeout
func (t *Transport) attempt(req *http.Request, body []byte) (*http.Request, context.CancelFunc) {
	r := replay(req, body)
	if t.AttemptTimeout <= 0 {
		return r, func() {}
	}
	ctx, cancel := context.WithTimeout(req.Context(), t.AttemptTimeout)
	return r.WithContext(ctx), cancel
}

// cancelOnClose releases the attempt context once the caller is done with the body
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

// replay clones req with a fresh reader over the buffered body
func replay(req *http.Request, body []byte) *http.Request {
	r := req.Clone(req.Context())
	if body != nil {
		r.Body = io.NopCloser(bytes.NewReader(body))
		r.ContentLength = int64(len(body))
	}
	return r
}

func snapshotBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	defer req.Body.Close()
	data, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to buffer request body: %w", err)
	}
	return data, nil
}
