package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/oshokin/temp-sentinel/internal/config"
	"github.com/oshokin/temp-sentinel/internal/logger"
	"github.com/oshokin/temp-sentinel/internal/service/sink"
	"github.com/oshokin/temp-sentinel/internal/service/source"
)

// Options controls the temp-sentinel process and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// Partitions provides an optional partition count override.
	Partitions int
	// LogLevel provides an optional logging verbosity override.
	LogLevel string
	// MetricsAddress provides an optional Prometheus listen address override.
	MetricsAddress string
}

// metricsShutdownTimeout bounds how long the metrics listener may take to
// stop after the pipeline has finished.
const metricsShutdownTimeout = 5 * time.Second

// Run starts the detection pipeline with the simulated sensor fleet and the
// logging alert sink, and blocks until the context is canceled.
// Loads configuration first, then applies command line overrides.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "temp-sentinel")

	// Load settings from configuration file.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	// Command line overrides take precedence over file settings.
	if opts.Partitions > 0 {
		cfg.Partitions = opts.Partitions
	}

	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	if opts.MetricsAddress != "" {
		cfg.MetricsAddress = opts.MetricsAddress
	}

	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	group, ctx := errgroup.WithContext(ctx)

	// Serve Prometheus metrics when an address is configured.
	if cfg.MetricsAddress != "" {
		group.Go(func() error {
			return serveMetrics(ctx, cfg.MetricsAddress)
		})
	}

	group.Go(func() error {
		return New(cfg, source.NewGenerator(cfg), sink.NewLogSink()).Run(ctx)
	})

	return group.Wait()
}

// serveMetrics exposes the Prometheus endpoint until the context ends.
func serveMetrics(ctx context.Context, address string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Shut the listener down once the pipeline context ends.
	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()

		_ = server.Shutdown(shutdownCtx)
	}()

	logger.InfoKV(ctx, "Metrics listening", "metrics_addr", address)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve metrics: %w", err)
	}

	return nil
}
