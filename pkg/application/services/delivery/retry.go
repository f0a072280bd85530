package delivery

import (
	"context"
	"errors"
	"time"
)

const (
	DefaultMaxAttempts  = 3
	DefaultInitialDelay = 500 * time.Millisecond
	DefaultMaxDelay     = 10 * time.Second
)

// RetryConfig controls per-recipient retries
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  DefaultMaxAttempts,
		InitialDelay: DefaultInitialDelay,
		MaxDelay:     DefaultMaxDelay,
		Multiplier:   2.0,
	}
}

// permanentError marks a failure that retrying cannot fix, such as a rejected recipient
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so the dispatcher gives up without further attempts
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// retry runs fn until it succeeds, fails permanently, the attempts run out or ctx ends.
// It returns the number of attempts made and the last error.
func retry(ctx context.Context, config RetryConfig, fn func(attempt int) error) (int, error) {
	maxAttempts := config.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	delay := config.InitialDelay

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = fn(attempt)
		if lastErr == nil {
			return attempt, nil
		}
		if IsPermanent(lastErr) || attempt == maxAttempts {
			return attempt, lastErr
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, errors.Join(lastErr, ctx.Err())
		case <-timer.C:
		}

		if config.Multiplier > 1 {
			delay = time.Duration(float64(delay) * config.Multiplier)
		}
		if config.MaxDelay > 0 && delay > config.MaxDelay {
			delay = config.MaxDelay
		}
	}
	return maxAttempts, lastErr
}
