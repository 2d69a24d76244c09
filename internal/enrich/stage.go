// Package enrich provides a small, generic pipeline abstraction that runs
// independent decoration steps in parallel within a stage while keeping the
// stages themselves sequential. The sampler uses it to label outgoing
// sample locations before they are published.
package enrich

import (
	"context"
)

// Step mutates one item in place. Steps of the same stage run concurrently
// on the same item, so they must write disjoint fields. A failing step
// returns an error; the pipeline logs it and carries on.
//
// Example:
//
//	func tag(ctx context.Context, loc *models.SampleLocation) error { loc.Territory = "de"; return nil }
type Step[T any] func(ctx context.Context, item *T) error

// Stage groups steps that are safe to run in parallel for a single item.
type Stage[T any] struct {
	steps []Step[T]
}

func NewStage[T any](steps ...Step[T]) Stage[T] {
	return Stage[T]{steps: steps}
}
