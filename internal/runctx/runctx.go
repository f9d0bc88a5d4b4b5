// Package runctx carries the identity of one catalog run through a context.
package runctx

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

type key int

const runKey key = 0

// Run identifies a single scrape or sync invocation
type Run struct {
	ID        string
	StartTime time.Time
}

// WithRun attaches a fresh Run to ctx
func WithRun(ctx context.Context) context.Context {
	return context.WithValue(ctx, runKey, &Run{
		ID:        generateID(),
		StartTime: time.Now(),
	})
}

// FromContext returns the Run attached to ctx, or a placeholder
func FromContext(ctx context.Context) *Run {
	if r, ok := ctx.Value(runKey).(*Run); ok {
		return r
	}
	return &Run{ID: "unknown", StartTime: time.Now()}
}

// Logger returns logger with the run id attached
func Logger(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	return logger.With().Str("run_id", FromContext(ctx).ID).Logger()
}

func generateID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// RunError tags an error with the run that produced it
type RunError struct {
	RunID string
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("[run %s] %v", e.RunID, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Wrap tags err with the run id from ctx; nil stays nil
func Wrap(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	return &RunError{RunID: FromContext(ctx).ID, Err: err}
}
