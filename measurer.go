package appsize

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Measurer is the asynchronous measurement backend.
//
// Measure must not block: it starts the measurement of item and returns. done must be
// invoked exactly once, from any goroutine, with the reported stats and whether the
// measurement succeeded. ctx carries the batch cancellation and the per-item timeout.
type Measurer interface {
	Measure(ctx context.Context, item Item, done func(stats Stats, ok bool))
}

// MeasurerFunc adapts an ordinary function to Measurer.
type MeasurerFunc func(ctx context.Context, item Item, done func(Stats, bool))

func (f MeasurerFunc) Measure(ctx context.Context, item Item, done func(Stats, bool)) {
	f(ctx, item, done)
}

// MeasureFunc is a blocking measurement. A nil error means success.
type MeasureFunc func(ctx context.Context, item Item) (Stats, error)

// Async turns a blocking MeasureFunc into a Measurer. Each call runs fn on its own
// goroutine, converts panics into ErrMeasurementPanicked and reports failure as soon
// as ctx is done, even if fn has not returned yet. Failures are logged at debug level
// on logger (nil disables logging).
func Async(fn MeasureFunc, logger *zap.Logger) Measurer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return MeasurerFunc(func(ctx context.Context, item Item, done func(Stats, bool)) {
		go func() {
			stats, err := measure(ctx, item, fn)
			if err != nil {
				logger.Debug("measurement failed",
					zap.String("key", item.Key),
					zap.String("label", item.Label),
					zap.Error(err),
				)
				done(Stats{}, false)
				return
			}
			done(stats, true)
		}()
	})
}

// measure runs fn with panic recovery and ctx cancellation.
// Returned errors are tagged with the item identity.
func measure(ctx context.Context, item Item, fn MeasureFunc) (Stats, error) {
	type outcome struct {
		stats Stats
		err   error
	}
	res := make(chan outcome, 1)

	go func() {
		var o outcome
		defer func() {
			if p := recover(); p != nil {
				o = outcome{err: fmt.Errorf("%w: %v", ErrMeasurementPanicked, p)}
			}
			res <- o
		}()
		o.stats, o.err = fn(ctx, item)
	}()

	select {
	case <-ctx.Done():
		return Stats{}, newMeasureError(fmt.Errorf("%w: %w", ErrMeasurementCancelled, ctx.Err()), item)
	case o := <-res:
		if o.err != nil {
			return Stats{}, newMeasureError(o.err, item)
		}
		return o.stats, nil
	}
}
