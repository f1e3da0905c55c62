package retry

import (
	"context"
	"errors"
	"fmt"
)

// ErrExhausted is returned once every attempt has failed.
var ErrExhausted = errors.New("retry attempts exhausted")

// Error is the terminal error of Do. It matches ErrExhausted and unwraps to
// the error of the last attempt.
type Error struct {
	Attempts int
	Last     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s after %d attempts: %v", ErrExhausted, e.Attempts, e.Last)
}

func (e *Error) Unwrap() []error {
	return []error{ErrExhausted, e.Last}
}

// Do calls fn until it succeeds or maxAttempts calls have failed. Attempts
// follow each other immediately. A cancelled context stops the loop and is
// returned as is.
func Do[T any](ctx context.Context, maxAttempts int, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	maxAttempts = max(maxAttempts, 1)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}

		lastErr = err
	}

	return zero, &Error{Attempts: maxAttempts, Last: lastErr}
}
