package appsize

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ygrebnov/appsize/metrics"
)

func TestValidateConfig_Defaults(t *testing.T) {
	cfg := defaultConfig()
	if err := validateConfig(&cfg); err != nil {
		t.Fatalf("validateConfig returned error for defaults: %v", err)
	}
}

func TestDefaultConfig_Values(t *testing.T) {
	cfg := defaultConfig()
	if cfg.Concurrency != 2 {
		t.Fatalf("Concurrency default = %d; want 2", cfg.Concurrency)
	}
	if cfg.BlockSize != 4096 {
		t.Fatalf("BlockSize default = %d; want 4096", cfg.BlockSize)
	}
	if cfg.Filter != DefaultSizeFilter() {
		t.Fatalf("Filter default = %+v; want all components", cfg.Filter)
	}
	if cfg.ItemTimeout != 0 {
		t.Fatalf("ItemTimeout default = %v; want 0", cfg.ItemTimeout)
	}
	if cfg.Supplementary != nil {
		t.Fatalf("Supplementary default = %v; want nil", cfg.Supplementary)
	}
	if cfg.Eligible == nil || !cfg.Eligible(Item{}) || !cfg.Eligible(Item{External: true}) {
		t.Fatalf("Eligible default must accept every item")
	}
	if cfg.Compare == nil || cfg.Logger == nil || cfg.Metrics == nil {
		t.Fatalf("Compare, Logger and Metrics must have defaults")
	}
}

func TestValidateConfig_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config)
	}{
		{"zero concurrency", func(c *config) { c.Concurrency = 0 }},
		{"zero block size", func(c *config) { c.BlockSize = 0 }},
		{"negative block size", func(c *config) { c.BlockSize = -1 }},
		{"nil eligibility", func(c *config) { c.Eligible = nil }},
		{"nil comparator", func(c *config) { c.Compare = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(&cfg)
			err := validateConfig(&cfg)
			if err == nil || !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("validateConfig = %v; want ErrInvalidConfig", err)
			}
		})
	}
}

func TestOptions_Apply(t *testing.T) {
	cfg := defaultConfig()
	supp := map[string]int64{"a": 1}
	logger := zap.NewExample()
	provider := metrics.NewBasicProvider()
	filter := SizeFilter{Data: true}

	opts := []Option{
		WithConcurrency(5),
		WithEligibility(ExternalOnly),
		WithSupplementarySizes(supp),
		WithSizeFilter(filter),
		WithBlockSize(512),
		WithOrder(byKey),
		WithItemTimeout(time.Second),
		WithLogger(logger),
		WithMetrics(provider),
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			t.Fatalf("option returned error: %v", err)
		}
	}

	if cfg.Concurrency != 5 {
		t.Fatalf("Concurrency = %d; want 5", cfg.Concurrency)
	}
	if cfg.Eligible(Item{}) {
		t.Fatalf("Eligible should reject internal items after WithEligibility(ExternalOnly)")
	}
	if cfg.Supplementary["a"] != 1 {
		t.Fatalf("Supplementary not applied")
	}
	if cfg.Filter != filter {
		t.Fatalf("Filter = %+v; want %+v", cfg.Filter, filter)
	}
	if cfg.BlockSize != 512 {
		t.Fatalf("BlockSize = %d; want 512", cfg.BlockSize)
	}
	if cfg.Compare(Entry{Item: Item{Key: "a"}}, Entry{Item: Item{Key: "b"}}) >= 0 {
		t.Fatalf("Compare not applied")
	}
	if cfg.ItemTimeout != time.Second {
		t.Fatalf("ItemTimeout = %v; want 1s", cfg.ItemTimeout)
	}
	if cfg.Logger != logger {
		t.Fatalf("Logger not applied")
	}
	if cfg.Metrics != provider {
		t.Fatalf("Metrics not applied")
	}
}

func TestOptions_RejectInvalidValues(t *testing.T) {
	for name, opt := range map[string]Option{
		"WithConcurrency(0)":   WithConcurrency(0),
		"WithBlockSize(-4096)": WithBlockSize(-4096),
		"WithEligibility(nil)": WithEligibility(nil),
		"WithOrder(nil)":       WithOrder(nil),
		"WithItemTimeout(-1)":  WithItemTimeout(-1),
	} {
		cfg := defaultConfig()
		if err := opt(&cfg); err == nil || !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%s = %v; want ErrInvalidConfig", name, err)
		}
	}
}
