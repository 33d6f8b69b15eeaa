package llm

import (
	"context"
	"time"
)

// Request is a single completion request. Temperature and MaxTokens are
// always set by the caller; each pipeline step uses its own temperature.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Client is the interface implemented by all provider clients.
type Client interface {
	// Complete sends the request and returns the trimmed completion text.
	Complete(ctx context.Context, req Request) (string, error)
	// Provider returns the provider name for logging and metrics.
	Provider() string
}

const (
	// defaultTimeout bounds a single completion call when the caller's
	// context has no deadline of its own.
	defaultTimeout = 2 * time.Minute

	// maxRetries is the number of retries after the first attempt for
	// rate-limited or transient server errors.
	maxRetries = 3

	// minRequestGap throttles back-to-back calls against provider rate
	// limits during batch processing.
	minRequestGap = 100 * time.Millisecond
)

// backoff returns the sleep duration before retry attempt i (1-based).
func backoff(i int) time.Duration {
	return time.Duration(1<<uint(i-1)) * time.Second
}

// ensureDeadline applies the default timeout when ctx has none.
func ensureDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, defaultTimeout)
}
