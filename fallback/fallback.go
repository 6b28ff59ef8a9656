// Package fallback evaluates an ordered chain of attempts and returns the
// first success. Retry and degradation order becomes a data structure that
// can be tested on its own instead of nested error handling.
package fallback

import (
	"context"
	"errors"
)

// ErrNoSteps is returned when First is called with an empty chain.
var ErrNoSteps = errors.New("fallback: no steps provided")

// Step is one attempt in a chain.
type Step[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// First runs the steps in order and returns the first successful result
// together with the name of the step that produced it. If every step fails,
// the zero value, the last step's name and the last error are returned.
// Context cancellation stops the chain immediately.
func First[T any](ctx context.Context, steps []Step[T]) (T, string, error) {
	var (
		zero     T
		lastErr  error
		lastName string
	)
	if len(steps) == 0 {
		return zero, "", ErrNoSteps
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return zero, lastName, err
		}
		out, err := step.Run(ctx)
		if err == nil {
			return out, step.Name, nil
		}
		lastErr = err
		lastName = step.Name
	}
	return zero, lastName, lastErr
}
