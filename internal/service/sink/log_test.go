package sink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/temp-sentinel/internal/domain/sensor"
)

// TestLogSink_Publish asserts publishing never fails.
func TestLogSink_Publish(t *testing.T) {
	t.Parallel()

	s := NewLogSink()

	err := s.Publish(context.Background(), &sensor.Alert{
		SensorID:            "s1",
		Temperature:         12.0,
		PreviousTemperature: 10.0,
	})
	require.NoError(t, err)
}
