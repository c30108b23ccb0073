package main

import (
	"time"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "appsize",
		Short: "Report the storage used by installed applications",
		Long: "appsize measures every application directory under the internal root and the\n" +
			"optional external root, two at a time by default, and prints them largest first.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath, cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			return runScan(cmd.Context(), cfg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "YAML config file")
	f.Uint("concurrency", 2, "maximum number of measurements in flight")
	f.Int64("block-size", 4096, "round each size component up to this many bytes")
	f.Bool("external-only", false, "measure only applications on external storage")
	f.Duration("item-timeout", 0, "per-application measurement timeout (0 disables)")
	f.String("internal-root", "", "directory holding one subdirectory per internal application")
	f.String("external-root", "", "directory holding one subdirectory per external application")
	f.String("mounts-file", "/proc/mounts", "mount table used for supplementary sizes")
	f.String("mount-prefix", "/mnt/asec/", "mount point prefix of application containers")
	f.Duration("progress-interval", 50*time.Millisecond, "progress refresh interval (0 disables)")
	f.String("metrics-addr", "", "serve Prometheus metrics on this address while scanning")
	f.String("log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}
