// SPDX-License-Identifier: Apache-2.0
package resilience

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/jllopis/skillkit/pkg/errors"
)

// RetryConfig controls retry behavior with exponential backoff.
type RetryConfig struct {
	// MaxAttempts counts the first call. Values below 1 mean one attempt.
	MaxAttempts int

	// InitialDelay is the wait before the first retry.
	InitialDelay time.Duration

	// MaxDelay caps the wait between attempts.
	MaxDelay time.Duration

	// Multiplier grows the delay after each retry (default 2.0).
	Multiplier float64

	// Jitter spreads each delay by ±Jitter (0.1 means ±10%).
	Jitter float64

	// IsRecoverable decides whether an error is worth another attempt.
	// Nil uses the Recoverable flag of *errors.Error and retries anything else.
	IsRecoverable func(error) bool

	// OnRetry, when set, is called before each wait.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultRetryConfig returns the retry policy used for audit writes.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  20 * time.Millisecond,
		MaxDelay:      time.Second,
		Multiplier:    2.0,
		Jitter:        0.1,
		IsRecoverable: isRecoverableDefault,
	}
}

// WithMaxAttempts returns a new config with MaxAttempts set.
func (rc RetryConfig) WithMaxAttempts(max int) RetryConfig {
	rc.MaxAttempts = max
	return rc
}

// WithInitialDelay returns a new config with InitialDelay set.
func (rc RetryConfig) WithInitialDelay(d time.Duration) RetryConfig {
	rc.InitialDelay = d
	return rc
}

// WithMaxDelay returns a new config with MaxDelay set.
func (rc RetryConfig) WithMaxDelay(d time.Duration) RetryConfig {
	rc.MaxDelay = d
	return rc
}

// WithIsRecoverable returns a new config with IsRecoverable set.
func (rc RetryConfig) WithIsRecoverable(fn func(error) bool) RetryConfig {
	rc.IsRecoverable = fn
	return rc
}

// WithOnRetry returns a new config with OnRetry set.
func (rc RetryConfig) WithOnRetry(fn func(attempt int, err error, delay time.Duration)) RetryConfig {
	rc.OnRetry = fn
	return rc
}

// Do calls fn until it succeeds, returns a non-recoverable error, or the
// attempts run out. Exhaustion is reported as an INTERNAL_ERROR wrapping
// the last failure; a done context as TIMEOUT.
func (rc RetryConfig) Do(ctx context.Context, fn func() error) error {
	attempts := max(rc.MaxAttempts, 1)
	recoverable := rc.IsRecoverable
	if recoverable == nil {
		recoverable = isRecoverableDefault
	}

	var lastErr error
	for attempt := 1; ; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !recoverable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}

		delay := rc.backoff(attempt)
		if rc.OnRetry != nil {
			rc.OnRetry(attempt, lastErr, delay)
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.New(errors.CodeTimeout, "context done during retry", ctx.Err()).
				WithContext("attempt", attempt).
				WithContext("max_attempts", attempts).
				WithRecoverable(true)
		case <-timer.C:
		}
	}

	return errors.New(errors.CodeInternal, fmt.Sprintf("gave up after %d attempts", attempts), lastErr).
		WithContext("max_attempts", attempts)
}

// backoff returns the wait after the given failed attempt (1-based):
// InitialDelay * Multiplier^(attempt-1), capped, then jittered.
func (rc RetryConfig) backoff(attempt int) time.Duration {
	multiplier := rc.Multiplier
	if multiplier <= 0 {
		multiplier = 2.0
	}
	delay := float64(rc.InitialDelay) * math.Pow(multiplier, float64(attempt-1))
	if rc.MaxDelay > 0 {
		delay = math.Min(delay, float64(rc.MaxDelay))
	}
	if rc.Jitter > 0 {
		delay += delay * rc.Jitter * (2*rand.Float64() - 1)
	}
	return time.Duration(math.Max(delay, 0))
}

// isRecoverableDefault honours *errors.Error.Recoverable and retries
// everything else.
func isRecoverableDefault(err error) bool {
	if err == nil {
		return false
	}
	var typed *errors.Error
	if stderrors.As(err, &typed) {
		return typed.Recoverable
	}
	return true
}
