package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Parallel combines independent step functions that touch disjoint files into one
// StepFunc. The first error is returned once every function has returned.
func Parallel(fns ...StepFunc) StepFunc {
	return func(ctx context.Context) error {
		g, gctx := errgroup.WithContext(ctx)
		for _, fn := range fns {
			fn := fn
			g.Go(func() error { return fn(gctx) })
		}
		return g.Wait()
	}
}

// Sequence combines step functions into one StepFunc that runs them in order.
func Sequence(fns ...StepFunc) StepFunc {
	return func(ctx context.Context) error {
		for _, fn := range fns {
			if err := fn(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}
