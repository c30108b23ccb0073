package appsize

import (
	"strconv"
	"time"

	"github.com/ygrebnov/errorc"
	"go.uber.org/zap"

	"github.com/ygrebnov/appsize/metrics"
)

// DefaultBlockSize is the allocation unit used to round sizes when WithBlockSize is not given.
const DefaultBlockSize = 4096

// config holds Batch configuration.
type config struct {
	// Concurrency is the maximum number of outstanding measurements.
	// Default: DefaultConcurrency (2).
	Concurrency uint

	// Eligible decides whether an item is measured. Ineligible items are counted as
	// completed without consuming a slot.
	// Default: AllItems.
	Eligible func(Item) bool

	// Supplementary maps item keys to sizes obtained from an auxiliary source.
	// Read-only for the lifetime of the batch.
	// Default: nil (no supplementary sizes).
	Supplementary map[string]int64

	// Filter selects the size components counted in Entry.Size.
	// Default: DefaultSizeFilter().
	Filter SizeFilter

	// BlockSize is the unit sizes are rounded up to.
	// Default: DefaultBlockSize.
	BlockSize int64

	// Compare orders the final result set.
	// Default: BySizeDesc.
	Compare func(a, b Entry) int

	// ItemTimeout bounds a single measurement. Zero means no timeout.
	// Default: 0.
	ItemTimeout time.Duration

	Logger  *zap.Logger
	Metrics metrics.Provider
}

func defaultConfig() config {
	return config{
		Concurrency: DefaultConcurrency,
		Eligible:    AllItems,
		Filter:      DefaultSizeFilter(),
		BlockSize:   DefaultBlockSize,
		Compare:     BySizeDesc,
		Logger:      zap.NewNop(),
		Metrics:     metrics.NewNoopProvider(),
	}
}

// validateConfig checks invariants that individual options cannot see on their own.
func validateConfig(cfg *config) error {
	switch {
	case cfg.Concurrency == 0:
		return errorc.With(ErrInvalidConfig, errorc.String("concurrency", "must be > 0"))
	case cfg.BlockSize <= 0:
		return errorc.With(ErrInvalidConfig, errorc.String("block_size", strconv.FormatInt(cfg.BlockSize, 10)))
	case cfg.Eligible == nil:
		return errorc.With(ErrInvalidConfig, errorc.String("eligible", "predicate is nil"))
	case cfg.Compare == nil:
		return errorc.With(ErrInvalidConfig, errorc.String("compare", "comparator is nil"))
	}
	return nil
}

// Option configures a Batch.
type Option func(*config) error

// WithConcurrency sets the maximum number of outstanding measurements (must be > 0).
func WithConcurrency(n uint) Option {
	return func(cfg *config) error {
		if n == 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithConcurrency requires n > 0"))
		}
		cfg.Concurrency = n
		return nil
	}
}

// WithEligibility sets the predicate that selects which items are measured.
func WithEligibility(fn func(Item) bool) Option {
	return func(cfg *config) error {
		if fn == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithEligibility requires a non-nil predicate"))
		}
		cfg.Eligible = fn
		return nil
	}
}

// WithSupplementarySizes attaches sizes from an auxiliary source, keyed by Item.Key.
// The map must not be modified while the batch runs.
func WithSupplementarySizes(m map[string]int64) Option {
	return func(cfg *config) error { cfg.Supplementary = m; return nil }
}

// WithSizeFilter selects the size components counted in Entry.Size.
func WithSizeFilter(f SizeFilter) Option {
	return func(cfg *config) error { cfg.Filter = f; return nil }
}

// WithBlockSize sets the unit sizes are rounded up to (must be > 0).
func WithBlockSize(n int64) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithBlockSize requires n > 0"))
		}
		cfg.BlockSize = n
		return nil
	}
}

// WithOrder sets the comparator applied to the final result set.
// It must define a total order for deterministic output.
func WithOrder(cmp func(a, b Entry) int) Option {
	return func(cfg *config) error {
		if cmp == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithOrder requires a non-nil comparator"))
		}
		cfg.Compare = cmp
		return nil
	}
}

// WithItemTimeout bounds each measurement. Zero disables the timeout.
func WithItemTimeout(d time.Duration) Option {
	return func(cfg *config) error {
		if d < 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithItemTimeout requires d >= 0"))
		}
		cfg.ItemTimeout = d
		return nil
	}
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l *zap.Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			l = zap.NewNop()
		}
		cfg.Logger = l
		return nil
	}
}

// WithMetrics sets the metrics provider. A nil provider disables metrics.
func WithMetrics(p metrics.Provider) Option {
	return func(cfg *config) error {
		if p == nil {
			p = metrics.NewNoopProvider()
		}
		cfg.Metrics = p
		return nil
	}
}
