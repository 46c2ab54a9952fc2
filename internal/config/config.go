package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the tuning parameters for the spike detection pipeline.
type Config struct {
	// Threshold is the alert ratio: a reading alerts when it exceeds the
	// previous value by more than this factor. Must be greater than 1.0.
	Threshold float64 `yaml:"threshold"`
	// InactivityWindow is how long a sensor may stay silent, in event time,
	// before its state is forgotten.
	InactivityWindow time.Duration `yaml:"inactivity_window"`
	// Partitions is the number of parallel processing units readings are
	// hashed across by sensor id.
	Partitions int `yaml:"partitions"`
	// MetricsAddress is the listen address for the Prometheus endpoint.
	// Metrics are disabled when empty.
	MetricsAddress string `yaml:"metrics_addr"`
	// LogLevel selects the logging verbosity (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
	// Sensors is the size of the simulated sensor fleet.
	Sensors int `yaml:"sensors"`
	// EmitInterval is the wall-clock pause between generated readings.
	EmitInterval time.Duration `yaml:"emit_interval"`
	// WatermarkInterval is the wall-clock pause between watermark
	// heartbeats, which let expiry fire even when every sensor is silent.
	WatermarkInterval time.Duration `yaml:"watermark_interval"`
	// SpikeProbability is the chance, per generated reading, of a sudden
	// temperature jump that should trip the alert ratio.
	SpikeProbability float64 `yaml:"spike_probability"`
	// DropoutProbability is the chance, per generated reading, that the
	// sensor instead goes silent for longer than the inactivity window.
	DropoutProbability float64 `yaml:"dropout_probability"`
}

const (
	// DefaultConfigFilename is the default filename for pipeline settings.
	DefaultConfigFilename = "temp-sentinel-settings.yaml"

	// DefaultThreshold alerts on any increase above ten percent.
	DefaultThreshold = 1.1

	// DefaultInactivityWindow forgets a sensor after one silent hour.
	DefaultInactivityWindow = time.Hour

	// DefaultPartitions is the default number of parallel processing units.
	DefaultPartitions = 4

	// DefaultSensors is the default simulated fleet size.
	DefaultSensors = 16

	// DefaultEmitInterval is the default pause between generated readings.
	DefaultEmitInterval = 250 * time.Millisecond

	// DefaultWatermarkInterval is the default pause between heartbeats.
	DefaultWatermarkInterval = time.Second

	// DefaultSpikeProbability is the default chance of a generated spike.
	DefaultSpikeProbability = 0.05

	// DefaultDropoutProbability is the default chance of a generated dropout.
	DefaultDropoutProbability = 0.01

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errThresholdTooLow is returned when the alert ratio cannot raise alerts.
	errThresholdTooLow = errors.New("threshold must be greater than 1.0")
	// errWindowNotPositive is returned when the inactivity window is negative.
	errWindowNotPositive = errors.New("inactivity window must be positive")
	// errBadProbability is returned when a probability leaves [0, 1).
	errBadProbability = errors.New("probabilities must be in [0, 1)")
)

// Load reads configuration from the provided path and validates essential
// fields. A missing file is not an error: the binary then runs on defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	var cfg Config

	contents, err := os.ReadFile(filepath.Clean(path))

	switch {
	case err == nil:
		if err = yaml.Unmarshal(contents, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Keep zero values, Validate fills the defaults.
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings, filling defaults for unset fields
// and rejecting values the detector cannot work with.
//
//nolint:cyclop // The checks are a flat list; splitting would reduce clarity.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	// Set detection defaults if not specified.
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}

	// A ratio at or below 1.0 would alert on flat or falling temperatures.
	if cfg.Threshold <= 1.0 {
		return errThresholdTooLow
	}

	if cfg.InactivityWindow == 0 {
		cfg.InactivityWindow = DefaultInactivityWindow
	}

	if cfg.InactivityWindow < 0 {
		return errWindowNotPositive
	}

	if cfg.Partitions <= 0 {
		cfg.Partitions = DefaultPartitions
	}

	// Set generator defaults if not specified.
	if cfg.Sensors <= 0 {
		cfg.Sensors = DefaultSensors
	}

	if cfg.EmitInterval <= 0 {
		cfg.EmitInterval = DefaultEmitInterval
	}

	if cfg.WatermarkInterval <= 0 {
		cfg.WatermarkInterval = DefaultWatermarkInterval
	}

	if cfg.SpikeProbability == 0 {
		cfg.SpikeProbability = DefaultSpikeProbability
	}

	if cfg.DropoutProbability == 0 {
		cfg.DropoutProbability = DefaultDropoutProbability
	}

	if cfg.SpikeProbability < 0 || cfg.SpikeProbability >= 1 ||
		cfg.DropoutProbability < 0 || cfg.DropoutProbability >= 1 {
		return errBadProbability
	}

	if cfg.MetricsAddress == "" {
		return nil
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.MetricsAddress); err != nil {
		return fmt.Errorf("invalid metrics address: %w", err)
	}

	return nil
}
