// Package cascade runs an ordered sequence of data-source tiers and
// returns the first result that passes its validity predicate, tagged with
// the tier's provenance. Transport failures are absorbed, never surfaced:
// an attempt that errors, times out, or yields an invalid result simply
// advances the cascade. A tier whose Valid always holds (a synthesizer)
// makes the cascade total.
package cascade

import (
	"context"
	"errors"
	"time"

	"github.com/seenimoa/fundlens/pkg/models"
)

// ErrExhausted is returned when every tier fails. With a synthesizer tier
// configured this is unreachable by design.
var ErrExhausted = errors.New("all data source tiers exhausted")

// Tier is one (attempt, isValid) pair in the cascade order.
type Tier[T any] struct {
	// Provenance names the tier in results and logs.
	Provenance models.Provenance
	// Timeout bounds the attempt; zero means the caller's context governs.
	Timeout time.Duration
	// Attempt fetches the tier's data. Errors advance the cascade.
	Attempt func(ctx context.Context) (T, error)
	// Valid gates the result; a failing result advances the cascade.
	// Nil means any non-error result is accepted.
	Valid func(T) bool
}

// Result carries a cascade value and the tier that produced it.
type Result[T any] struct {
	Value      T
	Provenance models.Provenance
}

// Run walks the tiers strictly in order and returns the first valid
// result. There are no retries within a tier; retry and backoff belong to
// the transport layer.
func Run[T any](ctx context.Context, tiers []Tier[T]) (Result[T], error) {
	var zero Result[T]
	for _, tier := range tiers {
		if tier.Attempt == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		value, err := attempt(ctx, tier)
		if err != nil {
			continue
		}
		if tier.Valid != nil && !tier.Valid(value) {
			continue
		}
		return Result[T]{Value: value, Provenance: tier.Provenance}, nil
	}
	return zero, ErrExhausted
}

func attempt[T any](ctx context.Context, tier Tier[T]) (T, error) {
	if tier.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, tier.Timeout)
		defer cancel()
	}
	return tier.Attempt(ctx)
}
