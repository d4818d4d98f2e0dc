// Package provider tries interchangeable upstream attempts in order of
// preference.
package provider

import (
	"context"
	"errors"
	"fmt"

	appLog "inkcal/internal/log"
)

// ErrNoAttempts is returned by First when there is nothing to try.
var ErrNoAttempts = errors.New("provider: no attempts")

// Attempt is one named way of producing a T, e.g. one model of an API.
type Attempt[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// First runs attempts in order and returns the first success with the name
// of the attempt that produced it. If all fail, the error joins every
// failure. A cancelled ctx stops before the next attempt.
func First[T any](ctx context.Context, attempts []Attempt[T]) (T, string, error) {
	var zero T
	if len(attempts) == 0 {
		return zero, "", ErrNoAttempts
	}

	var errs []error
	for _, a := range attempts {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		v, err := a.Run(ctx)
		if err == nil {
			return v, a.Name, nil
		}
		appLog.Warn("provider attempt failed", "attempt", a.Name, "err", err)
		errs = append(errs, fmt.Errorf("%s: %w", a.Name, err))
	}
	return zero, "", errors.Join(errs...)
}
