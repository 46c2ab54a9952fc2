package detector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/temp-sentinel/internal/domain/sensor"
	repo "github.com/oshokin/temp-sentinel/internal/repository/state"
)

const (
	testThreshold    = 1.1
	testWindowMillis = int64(3_600_000)
)

// registration records one timer registration observed by the fake service.
type registration struct {
	// key is the sensor id passed to RegisterTimer.
	key string
	// timestamp is the requested event-time deadline.
	timestamp int64
}

// fakeTimerService records registrations and serves a settable watermark.
type fakeTimerService struct {
	// watermark is the value returned by CurrentWatermark.
	watermark int64
	// registered collects every RegisterTimer call in order.
	registered []registration
}

// RegisterTimer records the registration for later assertions.
func (f *fakeTimerService) RegisterTimer(key string, timestamp int64) {
	f.registered = append(f.registered, registration{
		key:       key,
		timestamp: timestamp,
	})
}

// CurrentWatermark returns the watermark set by the test.
func (f *fakeTimerService) CurrentWatermark() int64 {
	return f.watermark
}

// newTestDetector wires a detector to a fresh store and fake timer service.
func newTestDetector(t *testing.T) (*Detector, *repo.MemoryStore, *fakeTimerService) {
	t.Helper()

	store := repo.NewMemoryStore()
	timers := new(fakeTimerService)

	return New(store, timers, testThreshold, testWindowMillis), store, timers
}

// reading builds a sample for the given sensor.
func reading(id string, temperature float64, eventTime int64) *sensor.Reading {
	return &sensor.Reading{
		SensorID:    id,
		Temperature: temperature,
		EventTime:   eventTime,
	}
}

// TestHandleReading_FirstReadingNeverAlerts asserts the baseline-only path.
func TestHandleReading_FirstReadingNeverAlerts(t *testing.T) {
	t.Parallel()

	det, store, _ := newTestDetector(t)

	alert := det.HandleReading(context.Background(), reading("s1", 500.0, 0))
	require.Nil(t, alert)

	// The reading still established a baseline.
	record := store.Get("s1")
	require.NotNil(t, record.LastTemperature)
	require.Equal(t, 500.0, *record.LastTemperature)
}

// TestHandleReading_RatioThreshold exercises the alert condition around its
// boundary, including the non-positive baseline guards.
func TestHandleReading_RatioThreshold(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		previous    float64
		current     float64
		expectAlert bool
	}{
		"above threshold":       {previous: 10.0, current: 12.0, expectAlert: true},
		"exactly threshold":     {previous: 10.0, current: 11.0, expectAlert: false},
		"just above threshold":  {previous: 10.0, current: 11.001, expectAlert: true},
		"decrease":              {previous: 12.0, current: 11.0, expectAlert: false},
		"zero baseline":         {previous: 0.0, current: 100.0, expectAlert: false},
		"negative baseline":     {previous: -5.0, current: 100.0, expectAlert: false},
		"negative over negative": {previous: -10.0, current: -1.0, expectAlert: false},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			det, _, _ := newTestDetector(t)

			require.Nil(t, det.HandleReading(context.Background(), reading("s1", tc.previous, 0)))

			alert := det.HandleReading(context.Background(), reading("s1", tc.current, 1000))
			if !tc.expectAlert {
				require.Nil(t, alert)
				return
			}

			require.NotNil(t, alert)
			require.Equal(t, "s1", alert.SensorID)
			require.Equal(t, tc.current, alert.Temperature)
			require.Equal(t, tc.previous, alert.PreviousTemperature)
		})
	}
}

// TestHandleReading_SchedulesAtWatermarkPlusWindow asserts the deadline
// arithmetic and that each reading reschedules.
func TestHandleReading_SchedulesAtWatermarkPlusWindow(t *testing.T) {
	t.Parallel()

	det, store, timers := newTestDetector(t)

	timers.watermark = 0
	det.HandleReading(context.Background(), reading("s1", 10.0, 0))

	timers.watermark = 1000
	det.HandleReading(context.Background(), reading("s1", 10.5, 1000))

	require.Equal(t, []registration{
		{key: "s1", timestamp: testWindowMillis},
		{key: "s1", timestamp: 1000 + testWindowMillis},
	}, timers.registered)

	// The state tracks the latest registration, superseding the first.
	record := store.Get("s1")
	require.NotNil(t, record.LastScheduledExpiry)
	require.Equal(t, 1000+testWindowMillis, *record.LastScheduledExpiry)
}

// TestHandleTimer_ClearsOnlyLatest covers the stale-timer no-op and the
// validated cleanup.
func TestHandleTimer_ClearsOnlyLatest(t *testing.T) {
	t.Parallel()

	det, store, timers := newTestDetector(t)

	// Two readings schedule two deadlines; only the second may clean up.
	timers.watermark = 0
	det.HandleReading(context.Background(), reading("s1", 10.0, 0))

	timers.watermark = 1000
	det.HandleReading(context.Background(), reading("s1", 10.5, 1000))

	staleDeadline := testWindowMillis
	latestDeadline := 1000 + testWindowMillis

	// The superseded timer fires first and must change nothing.
	require.False(t, det.HandleTimer(context.Background(), "s1", staleDeadline))
	require.False(t, store.Get("s1").IsZero())

	// A timer for an unknown sensor is equally a no-op.
	require.False(t, det.HandleTimer(context.Background(), "s9", latestDeadline))

	// The latest deadline clears both fields.
	require.True(t, det.HandleTimer(context.Background(), "s1", latestDeadline))
	require.True(t, store.Get("s1").IsZero())

	// Firing it again after cleanup stays a no-op.
	require.False(t, det.HandleTimer(context.Background(), "s1", latestDeadline))
}

// TestHandleTimer_CleanupResetsBaseline asserts a sensor behaves like a brand
// new one after cleanup: no alert even for a large apparent increase.
func TestHandleTimer_CleanupResetsBaseline(t *testing.T) {
	t.Parallel()

	det, store, timers := newTestDetector(t)

	timers.watermark = 0
	require.Nil(t, det.HandleReading(context.Background(), reading("s2", 1.0, 0)))

	require.True(t, det.HandleTimer(context.Background(), "s2", testWindowMillis))
	require.True(t, store.Get("s2").IsZero())

	// 50x the forgotten value, still no alert: the baseline is gone.
	timers.watermark = testWindowMillis + 100_000
	require.Nil(t, det.HandleReading(context.Background(), reading("s2", 50.0, timers.watermark)))

	record := store.Get("s2")
	require.Equal(t, 50.0, *record.LastTemperature)
}

// TestScenario_SpikeSequence walks the documented three-reading sequence:
// 10.0 then 12.0 (alert) then 11.0 (no alert).
func TestScenario_SpikeSequence(t *testing.T) {
	t.Parallel()

	det, store, timers := newTestDetector(t)
	ctx := context.Background()

	timers.watermark = 0
	require.Nil(t, det.HandleReading(ctx, reading("s1", 10.0, 0)))
	require.Equal(t, 10.0, *store.Get("s1").LastTemperature)

	timers.watermark = 1000

	alert := det.HandleReading(ctx, reading("s1", 12.0, 1000))
	require.NotNil(t, alert)
	require.Equal(t, &sensor.Alert{
		SensorID:            "s1",
		Temperature:         12.0,
		PreviousTemperature: 10.0,
	}, alert)

	timers.watermark = 2000
	require.Nil(t, det.HandleReading(ctx, reading("s1", 11.0, 2000)))
	require.Equal(t, 11.0, *store.Get("s1").LastTemperature)
}

// TestScenario_InactivityCleanup walks the documented one-reading-then-silence
// sequence: the deadline fires at exactly watermark + window and the next
// reading starts fresh.
func TestScenario_InactivityCleanup(t *testing.T) {
	t.Parallel()

	det, store, timers := newTestDetector(t)
	ctx := context.Background()

	timers.watermark = 0
	require.Nil(t, det.HandleReading(ctx, reading("s2", 20.0, 0)))
	require.Equal(t, []registration{{key: "s2", timestamp: 3_600_000}}, timers.registered)

	// Watermark passes the deadline, the timer fires, state is cleared.
	timers.watermark = 3_600_001
	require.True(t, det.HandleTimer(ctx, "s2", 3_600_000))
	require.True(t, store.Get("s2").IsZero())

	// Fresh baseline afterwards: 5.0 against a forgotten 20.0 is silent.
	timers.watermark = 3_700_000
	require.Nil(t, det.HandleReading(ctx, reading("s2", 5.0, 3_700_000)))
	require.Equal(t, 5.0, *store.Get("s2").LastTemperature)
}
