package sink

import (
	"context"

	"github.com/oshokin/temp-sentinel/internal/domain/sensor"
	"github.com/oshokin/temp-sentinel/internal/logger"
)

// LogSink publishes alerts as structured log records.
type LogSink struct{}

// NewLogSink creates a sink that logs every alert at warning level.
func NewLogSink() *LogSink {
	return &LogSink{}
}

// Publish writes the alert to the log. It never fails.
func (s *LogSink) Publish(ctx context.Context, alert *sensor.Alert) error {
	logger.WarnKV(ctx, "Temperature spike",
		"sensor_id", alert.SensorID,
		"temperature", alert.Temperature,
		"previous_temperature", alert.PreviousTemperature,
		"ratio", alert.Temperature/alert.PreviousTemperature)

	return nil
}
