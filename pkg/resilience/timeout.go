// SPDX-License-Identifier: Apache-2.0
// Package resilience provides timeout and retry boundaries for skill
// execution and its side effects.
package resilience

import (
	"context"
	"time"

	"github.com/jllopis/skillkit/pkg/errors"
)

// WithTimeout runs fn with a deadline of d. A zero or negative d runs fn
// inline. On timeout fn keeps running in the background with a canceled
// context and an errors.CodeTimeout error is returned; fn must not panic.
func WithTimeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if d <= 0 {
		return fn(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		value T
		err   error
	}

	done := make(chan result, 1)
	go func() {
		value, err := fn(ctx)
		done <- result{value, err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, errors.New(errors.CodeTimeout, "operation exceeded timeout", ctx.Err()).
			WithContext("timeout", d.String()).
			WithRecoverable(true)
	case res := <-done:
		return res.value, res.err
	}
}
