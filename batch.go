package appsize

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ygrebnov/appsize/metrics"
)

// Batch measures a fixed list of items with a bounded number of outstanding
// measurements and returns the successful results in a deterministic order.
//
// A Batch runs once. Snapshot is safe to call from any goroutine at any time,
// including while Run is in progress.
type Batch struct {
	// noCopy prevents accidental copying of the batch.
	//go:nocopy
	nc noCopy

	cfg      *config
	items    []Item
	measurer Measurer
	gate     *gate
	inst     instruments

	started atomic.Bool
}

// noCopy is a vet-recognized marker to discourage copying types with this field embedded.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// New creates a Batch for items using m as the measurement backend.
func New(items []Item, m Measurer, opts ...Option) (*Batch, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: measurer is nil", ErrInvalidConfig)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &Batch{
		cfg:      &cfg,
		items:    items,
		measurer: m,
		gate:     newGate(int(cfg.Concurrency), len(items)),
		inst:     newInstruments(cfg.Metrics),
	}, nil
}

// Collect creates a Batch and runs it.
func Collect(ctx context.Context, items []Item, m Measurer, opts ...Option) ([]Entry, error) {
	b, err := New(items, m, opts...)
	if err != nil {
		return nil, err
	}
	return b.Run(ctx)
}

// Snapshot returns the current progress of the batch without blocking.
func (b *Batch) Snapshot() Progress { return b.gate.snapshot() }

// Run dispatches every eligible item in input order, waits for all outstanding
// measurements to finish and returns the collected entries sorted by the configured order.
//
// Semantics:
//   - Ineligible items are counted as completed without being measured.
//   - At most Concurrency measurements are outstanding at any time; Run blocks while all slots are busy.
//   - A failed measurement adds no entry. It is not reported as an error.
//   - If no entry was collected, Run returns ErrNoResults.
//   - If ctx is done, no further items are dispatched. Run still waits for the outstanding
//     measurements, then returns an error wrapping ErrCancelled and ctx.Err().
//   - Calling Run more than once returns ErrInvalidState.
func (b *Batch) Run(ctx context.Context) ([]Entry, error) {
	if !b.started.CompareAndSwap(false, true) {
		return nil, ErrInvalidState
	}

	log := b.cfg.Logger
	start := time.Now()
	log.Info("batch started",
		zap.Int("items", len(b.items)),
		zap.Uint("concurrency", b.cfg.Concurrency),
	)
	b.inst.items.Add(int64(len(b.items)))

	var runErr error
	for _, item := range b.items {
		if err := ctx.Err(); err != nil {
			runErr = fmt.Errorf("%w: %w", ErrCancelled, err)
			break
		}

		if !b.cfg.Eligible(item) {
			log.Debug("item skipped", zap.String("key", item.Key))
			b.inst.skipped.Add(1)
			b.gate.skip(item.Label)
			continue
		}

		if err := b.gate.acquire(ctx, item.Label); err != nil {
			runErr = fmt.Errorf("%w: %w", ErrCancelled, err)
			break
		}
		b.dispatch(ctx, item)
	}

	b.gate.drain()
	if runErr == nil {
		// Outstanding measurements may have been cut short after the last dispatch.
		if err := ctx.Err(); err != nil {
			runErr = fmt.Errorf("%w: %w", ErrCancelled, err)
		}
	}

	p := b.gate.snapshot()
	log.Info("batch finished",
		zap.Int("completed", p.Completed),
		zap.Int("items", p.Total),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(runErr),
	)
	if runErr != nil {
		return nil, runErr
	}
	return finalize(b.gate.collected(), b.cfg.Compare)
}

// dispatch starts the measurement of item. The slot for item must already be held.
// The completion callback releases the slot exactly once; later calls are ignored.
func (b *Batch) dispatch(ctx context.Context, item Item) {
	itemCtx, cancel := ctx, context.CancelFunc(func() {})
	if b.cfg.ItemTimeout > 0 {
		itemCtx, cancel = context.WithTimeout(ctx, b.cfg.ItemTimeout)
	}

	log := b.cfg.Logger
	started := time.Now()
	b.inst.inflight.Add(1)
	log.Debug("measurement dispatched", zap.String("key", item.Key))

	var once sync.Once
	done := func(stats Stats, ok bool) {
		fired := false
		once.Do(func() {
			fired = true
			cancel()
			b.inst.inflight.Add(-1)
			b.inst.duration.Record(time.Since(started).Seconds())

			var e *Entry
			if ok {
				entry := newEntry(item, stats, b.cfg.Supplementary, b.cfg.Filter, b.cfg.BlockSize)
				e = &entry
				b.inst.succeeded.Add(1)
			} else {
				b.inst.failed.Add(1)
			}
			b.gate.complete(item.Label, e)
			log.Debug("measurement completed", zap.String("key", item.Key), zap.Bool("ok", ok))
		})
		if !fired {
			log.Warn("measurement reported more than once", zap.String("key", item.Key))
		}
	}

	b.measurer.Measure(itemCtx, item, done)
}

// Metric names recorded by a Batch.
const (
	MetricItems        = "appsize_items_total"
	MetricSkipped      = "appsize_items_skipped_total"
	MetricSucceeded    = "appsize_measurements_succeeded_total"
	MetricFailed       = "appsize_measurements_failed_total"
	MetricInFlight     = "appsize_measurements_inflight"
	MetricMeasDuration = "appsize_measurement_duration_seconds"
)

type instruments struct {
	items     metrics.Counter
	skipped   metrics.Counter
	succeeded metrics.Counter
	failed    metrics.Counter
	inflight  metrics.UpDownCounter
	duration  metrics.Histogram
}

func newInstruments(p metrics.Provider) instruments {
	return instruments{
		items:     p.Counter(MetricItems, metrics.WithDescription("Items submitted to batches.")),
		skipped:   p.Counter(MetricSkipped, metrics.WithDescription("Items skipped by the eligibility predicate.")),
		succeeded: p.Counter(MetricSucceeded, metrics.WithDescription("Measurements that succeeded.")),
		failed:    p.Counter(MetricFailed, metrics.WithDescription("Measurements that failed.")),
		inflight: p.UpDownCounter(MetricInFlight,
			metrics.WithDescription("Measurements currently outstanding."),
		),
		duration: p.Histogram(MetricMeasDuration,
			metrics.WithDescription("Time from dispatch to completion of a measurement."),
			metrics.WithUnit("seconds"),
		),
	}
}
