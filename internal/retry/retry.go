// Package retry retries platform calls with exponential backoff, honoring the
// retry-after hint of rate-limited responses.
package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aatumaykin/janitor/internal/channels"
	"github.com/aatumaykin/janitor/internal/logger"
)

const (
	defaultMaxAttempts  = 3
	defaultInitialDelay = 500 * time.Millisecond
	defaultMaxDelay     = 10 * time.Second
)

// Config represents retry configuration.
type Config struct {
	MaxAttempts    int           // Maximum number of attempts (default: 3)
	InitialBackoff time.Duration // Initial backoff duration (default: 500ms)
	MaxBackoff     time.Duration // Maximum backoff duration (default: 10s)
	Logger         *logger.Logger
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = defaultInitialDelay
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = defaultMaxDelay
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}
	return c
}

// Do calls fn until it succeeds, returns a non-retryable error, or the
// attempts run out. Context cancellation is checked between attempts.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	cfg = cfg.withDefaults()

	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return err
		}
		if attempt == cfg.MaxAttempts-1 {
			break
		}

		backoff := max(calculateBackoff(attempt, cfg.InitialBackoff, cfg.MaxBackoff), retryAfter(err))
		cfg.Logger.DebugCtx(ctx, "retrying after error",
			logger.Field{Key: "attempt", Value: attempt + 1},
			logger.Field{Key: "max_attempts", Value: cfg.MaxAttempts},
			logger.Field{Key: "backoff", Value: backoff.String()},
			logger.Field{Key: "error", Value: err})

		timer := time.NewTimer(backoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}

	return fmt.Errorf("all %d attempts failed: %w", cfg.MaxAttempts, lastErr)
}

// IsRetryable reports whether err is worth another attempt. Classified
// platform errors decide for themselves; otherwise transient network
// failures are retried and everything else is not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var details channels.ErrorDetails
	if errors.As(err, &details) {
		return details.IsRetryable()
	}

	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	errLower := strings.ToLower(err.Error())
	for _, pattern := range []string{"timeout", "connection reset", "connection refused", "broken pipe", "eof"} {
		if strings.Contains(errLower, pattern) {
			return true
		}
	}
	return false
}

func retryAfter(err error) time.Duration {
	var details channels.ErrorDetails
	if errors.As(err, &details) {
		return details.RetryAfter()
	}
	return 0
}

// calculateBackoff returns 2^attempt * initial, capped at maxBackoff.
func calculateBackoff(attempt int, initial, maxBackoff time.Duration) time.Duration {
	backoff := time.Duration(1<<uint(attempt)) * initial
	if backoff > maxBackoff {
		return maxBackoff
	}
	return backoff
}
