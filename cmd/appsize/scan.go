package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ygrebnov/appsize"
	"github.com/ygrebnov/appsize/localfs"
	"github.com/ygrebnov/appsize/metrics"
	"github.com/ygrebnov/appsize/mounts"
)

// runScan enumerates the applications, measures them and writes the report to out.
// Progress lines go to progressOut while the batch runs.
func runScan(ctx context.Context, cfg *Config, logger *zap.Logger, out, progressOut io.Writer) error {
	catalog, items, err := enumerate(cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("applications found", zap.Int("count", len(items)))

	supp := mounts.Load(cfg.MountsFile,
		mounts.WithPrefix(cfg.MountPrefix),
		mounts.WithLogger(logger),
	)

	reg := prometheus.NewRegistry()
	opts := append(cfg.batchOptions(),
		appsize.WithSupplementarySizes(supp),
		appsize.WithLogger(logger),
		appsize.WithMetrics(metrics.NewPrometheusProvider(reg)),
	)
	batch, err := appsize.New(items, appsize.Async(catalog.Measure, logger), opts...)
	if err != nil {
		return err
	}

	var (
		entries []appsize.Entry
		runErr  error
	)
	finished := make(chan struct{})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(finished)
		entries, runErr = batch.Run(gctx)
		if errors.Is(runErr, appsize.ErrNoResults) {
			return nil
		}
		return runErr
	})
	if cfg.ProgressInterval > 0 {
		g.Go(func() error {
			reportProgress(batch, cfg.ProgressInterval, finished, progressOut)
			return nil
		})
	}
	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			return serveMetrics(cfg.MetricsAddr, reg, finished, logger)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if errors.Is(runErr, appsize.ErrNoResults) {
		_, err := fmt.Fprintln(out, "no applications measured")
		return err
	}
	return writeReport(out, entries)
}

func enumerate(cfg *Config, logger *zap.Logger) (*localfs.Catalog, []appsize.Item, error) {
	if len(cfg.Apps) > 0 {
		catalog, items := localfs.FromApps(cfg.Apps, localfs.WithLogger(logger))
		return catalog, items, nil
	}
	return localfs.Scan(cfg.InternalRoot, cfg.ExternalRoot, localfs.WithLogger(logger))
}

// reportProgress prints the batch progress every interval until finished is closed,
// then prints the final state once.
func reportProgress(s appsize.Snapshotter, interval time.Duration, finished <-chan struct{}, w io.Writer) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last appsize.Progress
	for {
		select {
		case <-finished:
			_, _ = fmt.Fprintf(w, "\r%s\n", s.Snapshot())
			return
		case <-ticker.C:
			p := s.Snapshot()
			if p == last {
				continue
			}
			last = p
			_, _ = fmt.Fprintf(w, "\r%s", p)
		}
	}
}

// serveMetrics exposes reg on addr until finished is closed.
func serveMetrics(addr string, reg *prometheus.Registry, finished <-chan struct{}, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.Info("serving metrics", zap.String("addr", addr))

	select {
	case err := <-errCh:
		return fmt.Errorf("metrics server: %w", err)
	case <-finished:
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("metrics server shutdown", zap.Error(err))
	}
	return nil
}
