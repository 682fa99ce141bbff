package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Parallel2 runs two fetches concurrently. The first failure cancels the
// other and is returned; results are only returned when both succeed.
//
//	users, exchanges, err := Parallel2(ctx,
//	    func(ctx context.Context) ([]domain.ExchangeUser, error) { return users.List(ctx, filter) },
//	    func(ctx context.Context) ([]domain.Exchange, error) { return exchanges.List(ctx) },
//	)
func Parallel2[T1, T2 any](
	ctx context.Context,
	fn1 func(context.Context) (T1, error),
	fn2 func(context.Context) (T2, error),
) (result1 T1, result2 T2, err error) {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var fnErr error
		result1, fnErr = fn1(ctx)
		return fnErr
	})

	g.Go(func() error {
		var fnErr error
		result2, fnErr = fn2(ctx)
		return fnErr
	})

	if err = g.Wait(); err != nil {
		var (
			zero1 T1
			zero2 T2
		)

		return zero1, zero2, fmt.Errorf("parallel fetch failed: %w", err)
	}

	return result1, result2, nil
}

// Parallel3 is Parallel2 for three fetches.
func Parallel3[T1, T2, T3 any](
	ctx context.Context,
	fn1 func(context.Context) (T1, error),
	fn2 func(context.Context) (T2, error),
	fn3 func(context.Context) (T3, error),
) (result1 T1, result2 T2, result3 T3, err error) {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var fnErr error
		result1, fnErr = fn1(ctx)
		return fnErr
	})

	g.Go(func() error {
		var fnErr error
		result2, fnErr = fn2(ctx)
		return fnErr
	})

	g.Go(func() error {
		var fnErr error
		result3, fnErr = fn3(ctx)
		return fnErr
	})

	if err = g.Wait(); err != nil {
		var (
			zero1 T1
			zero2 T2
			zero3 T3
		)

		return zero1, zero2, zero3, fmt.Errorf("parallel fetch failed: %w", err)
	}

	return result1, result2, result3, nil
}
