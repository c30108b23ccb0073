package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ygrebnov/appsize"
	"github.com/ygrebnov/appsize/localfs"
	"github.com/ygrebnov/appsize/mounts"
)

const envPrefix = "APPSIZE"

// Config is the command configuration, read from flags, APPSIZE_* variables and an
// optional YAML file, in that order of precedence.
type Config struct {
	Concurrency      uint          `mapstructure:"concurrency"`
	BlockSize        int64         `mapstructure:"block_size"`
	ExternalOnly     bool          `mapstructure:"external_only"`
	ItemTimeout      time.Duration `mapstructure:"item_timeout"`
	InternalRoot     string        `mapstructure:"internal_root"`
	ExternalRoot     string        `mapstructure:"external_root"`
	MountsFile       string        `mapstructure:"mounts_file"`
	MountPrefix      string        `mapstructure:"mount_prefix"`
	ProgressInterval time.Duration `mapstructure:"progress_interval"`
	MetricsAddr      string        `mapstructure:"metrics_addr"`
	LogLevel         string        `mapstructure:"log_level"`
	Filter           FilterConfig  `mapstructure:"filter"`
	Apps             []localfs.App `mapstructure:"apps"`
}

// FilterConfig selects the size components that count towards the total.
type FilterConfig struct {
	Code     bool `mapstructure:"code"`
	Data     bool `mapstructure:"data"`
	Cache    bool `mapstructure:"cache"`
	External bool `mapstructure:"external"`
}

func (f FilterConfig) sizeFilter() appsize.SizeFilter {
	return appsize.SizeFilter{Code: f.Code, Data: f.Data, Cache: f.Cache, External: f.External}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("concurrency", appsize.DefaultConcurrency)
	v.SetDefault("block_size", appsize.DefaultBlockSize)
	v.SetDefault("external_only", false)
	v.SetDefault("item_timeout", time.Duration(0))
	v.SetDefault("internal_root", "")
	v.SetDefault("external_root", "")
	v.SetDefault("mounts_file", mounts.DefaultPath)
	v.SetDefault("mount_prefix", mounts.DefaultPrefix)
	v.SetDefault("progress_interval", 50*time.Millisecond)
	v.SetDefault("metrics_addr", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("filter.code", true)
	v.SetDefault("filter.data", true)
	v.SetDefault("filter.cache", true)
	v.SetDefault("filter.external", true)
	return v
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"concurrency":       "concurrency",
	"block-size":        "block_size",
	"external-only":     "external_only",
	"item-timeout":      "item_timeout",
	"internal-root":     "internal_root",
	"external-root":     "external_root",
	"mounts-file":       "mounts_file",
	"mount-prefix":      "mount_prefix",
	"progress-interval": "progress_interval",
	"metrics-addr":      "metrics_addr",
	"log-level":         "log_level",
}

// loadConfig merges the optional file at path, the environment and the flags set on fs.
func loadConfig(path string, fs *pflag.FlagSet) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
	}

	if fs != nil {
		for flag, key := range flagKeys {
			if f := fs.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("config: bind flag %s: %w", flag, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Validate checks settings the batch options do not cover.
func (c *Config) Validate() error {
	if c.InternalRoot == "" && len(c.Apps) == 0 {
		return errors.New("internal_root or apps must be set")
	}
	if c.ProgressInterval < 0 {
		return errors.New("progress_interval must be >= 0")
	}
	return nil
}

// batchOptions translates the configuration into batch options.
func (c *Config) batchOptions() []appsize.Option {
	opts := []appsize.Option{
		appsize.WithConcurrency(c.Concurrency),
		appsize.WithBlockSize(c.BlockSize),
		appsize.WithSizeFilter(c.Filter.sizeFilter()),
		appsize.WithItemTimeout(c.ItemTimeout),
	}
	if c.ExternalOnly {
		opts = append(opts, appsize.WithEligibility(appsize.ExternalOnly))
	}
	return opts
}
