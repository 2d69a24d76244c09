package enrich

import (
	"context"
	"log"
	"sync"
)

// Pipeline coordinates the execution of a sequence of stages for items flowing
// through a channel. For each incoming item, steps within the same stage run in
// parallel, and stages themselves run sequentially. Any step errors are logged
// and do not stop processing of the current item.
//
// Pipeline is generic over the item type T.
type Pipeline[T any] struct {
	stages []Stage[T]
}

// NewPipeline constructs a Pipeline from the provided stages. Stages will be
// applied to each item in order.
func NewPipeline[T any](stages ...Stage[T]) *Pipeline[T] {
	return &Pipeline[T]{stages: stages}
}

// Apply runs every stage on a single item. All steps of a stage are started
// together and must finish before the next stage begins.
func (p *Pipeline[T]) Apply(ctx context.Context, item *T) {
	for _, stage := range p.stages {
		if len(stage.steps) == 1 {
			runStep(ctx, stage.steps[0], item)
			continue
		}
		var wg sync.WaitGroup
		for _, step := range stage.steps {
			wg.Add(1)
			go func(step Step[T]) {
				defer wg.Done()
				runStep(ctx, step, item)
			}(step)
		}
		wg.Wait()
	}
}

// Process applies the pipeline to every item read from in and emits the
// items, in order, on the returned channel. The channel is closed when in is
// closed or ctx is cancelled.
func (p *Pipeline[T]) Process(ctx context.Context, in <-chan *T) <-chan *T {
	out := make(chan *T)
	go func() {
		defer close(out)
		for item := range in {
			p.Apply(ctx, item)
			select {
			case out <- item:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func runStep[T any](ctx context.Context, step Step[T], item *T) {
	if err := step(ctx, item); err != nil {
		log.Printf("Step failed: %v", err)
	}
}
