package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/temp-sentinel/internal/config"
	"github.com/oshokin/temp-sentinel/internal/service/pipeline"
	"github.com/oshokin/temp-sentinel/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// partitions overrides the configured partition count when positive.
	partitions int
	// logLevel overrides the configured logging verbosity when set.
	logLevel string
	// metricsAddress overrides the configured Prometheus listen address.
	metricsAddress string

	// rootCmd represents the base command for running the detection pipeline.
	rootCmd = &cobra.Command{
		Use:   "temp-sentinel",
		Short: "Detect sudden temperature spikes and forget inactive sensors.",
		Long: `Runs the temperature spike detection pipeline over a simulated sensor fleet.

Each reading is compared against the sensor's previous value and an alert is
raised when the increase exceeds the configured ratio. A sensor that stops
reporting for the inactivity window is forgotten, so its next reading starts
from a fresh baseline. Readings are partitioned by sensor id and processed
in event-time order with watermark-driven expiry timers.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &pipeline.Options{
				ConfigPath:     configPath,
				Partitions:     partitions,
				LogLevel:       logLevel,
				MetricsAddress: metricsAddress,
			}

			return pipeline.Run(ctx, options)
		},
	}
)

// Execute runs the temp-sentinel CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().IntVarP(&partitions, "partitions", "p", 0, "number of processing partitions (overrides config)")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "logging level (overrides config)")
	rootCmd.Flags().StringVarP(&metricsAddress, "metrics-addr", "m", "", "Prometheus listen address (overrides config)")
}
