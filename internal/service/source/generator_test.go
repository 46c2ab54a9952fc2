package source

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/temp-sentinel/internal/config"
	"github.com/oshokin/temp-sentinel/internal/stream"
)

// testConfig returns validated settings with fast intervals for tests.
func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{
		InactivityWindow:  100 * time.Millisecond,
		Sensors:           4,
		EmitInterval:      time.Millisecond,
		WatermarkInterval: 5 * time.Millisecond,
	}
	require.NoError(t, config.Validate(cfg))

	return cfg
}

// TestGenerator_NextReading asserts sample shape and dropout silence.
func TestGenerator_NextReading(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.DropoutProbability = 0.5

	g := newGenerator(cfg, rand.New(rand.NewPCG(1, 2)))
	ctx := context.Background()

	var (
		produced int
		silenced int
	)

	for now := int64(0); now < 1000; now++ {
		reading := g.nextReading(ctx, now)
		if reading == nil {
			silenced++
			continue
		}

		produced++
		require.Contains(t, reading.SensorID, "sensor-00")
		require.Equal(t, now, reading.EventTime)
	}

	// With a 50% dropout chance both outcomes must occur.
	require.Positive(t, produced)
	require.Positive(t, silenced)
}

// TestGenerator_DropoutSilenceExceedsWindow asserts a dropped-out sensor
// stays quiet past the inactivity window so cleanup can be observed.
func TestGenerator_DropoutSilenceExceedsWindow(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.DropoutProbability = 0.999999

	g := newGenerator(cfg, rand.New(rand.NewPCG(7, 7)))

	require.Nil(t, g.nextReading(context.Background(), 1000))

	windowMillis := cfg.InactivityWindow.Milliseconds()
	for _, quietUntil := range g.quietUntil {
		if quietUntil != 0 {
			require.Greater(t, quietUntil, 1000+windowMillis)
		}
	}
}

// TestGenerator_RunEmitsReadingsAndHeartbeats runs the loop briefly and
// checks both event kinds arrive before cancellation stops it cleanly.
func TestGenerator_RunEmitsReadingsAndHeartbeats(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	g := newGenerator(cfg, rand.New(rand.NewPCG(3, 4)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan stream.Event, 1024)
	done := make(chan error, 1)

	go func() {
		done <- g.Run(ctx, events)
	}()

	var readings, heartbeats int

	deadline := time.After(2 * time.Second)
	for readings == 0 || heartbeats == 0 {
		select {
		case event := <-events:
			if event.Reading != nil {
				readings++
			} else {
				heartbeats++
				require.Positive(t, event.Watermark)
			}
		case <-deadline:
			t.Fatalf("timed out: readings=%d heartbeats=%d", readings, heartbeats)
		}
	}

	cancel()
	require.NoError(t, <-done)
}
