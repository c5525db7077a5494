package hardware

import (
	"context"
	"fmt"
	"time"
)

// Default attach policy.
const (
	DefaultAttachAttempts = 3
	DefaultAttachBackoff  = 100 * time.Millisecond
)

// Opener initialises a channel's underlying resource.
type Opener func() (Channel, error)

// AttachOptions bounds initialisation retries.
type AttachOptions struct {
	Attempts int
	Backoff  time.Duration
	Logger   Logger
}

// Attach calls open until it succeeds, up to opts.Attempts times with
// opts.Backoff between attempts. When every attempt fails it returns an
// error wrapping ErrInitFailed and the last driver error.
func Attach(ctx context.Context, name string, open Opener, opts AttachOptions) (Channel, error) {
	if opts.Attempts < 1 {
		opts.Attempts = DefaultAttachAttempts
	}
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}

	var lastErr error
	for attempt := 1; attempt <= opts.Attempts; attempt++ {
		ch, err := open()
		if err == nil {
			if attempt > 1 {
				opts.Logger.Info("output attached after retry", "output", name, "attempt", attempt)
			}
			return ch, nil
		}
		lastErr = err
		opts.Logger.Warn("output attach failed", "output", name, "attempt", attempt, "error", err)

		if attempt == opts.Attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %w", ErrInitFailed, name, ctx.Err())
		case <-time.After(opts.Backoff):
		}
	}

	return nil, fmt.Errorf("%w: %s after %d attempts: %w", ErrInitFailed, name, opts.Attempts, lastErr)
}
