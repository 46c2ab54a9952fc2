package detector

import (
	"context"

	"github.com/oshokin/temp-sentinel/internal/domain/sensor"
	"github.com/oshokin/temp-sentinel/internal/logger"
	repo "github.com/oshokin/temp-sentinel/internal/repository/state"
)

// TimerService is the event-time scheduling contract the detector consumes
// from its partition. Registration must be idempotent per (key, timestamp)
// pair, and a registered timer must only fire once the watermark has reached
// its timestamp and all readings at or before it have been delivered.
type TimerService interface {
	RegisterTimer(key string, timestamp int64)
	CurrentWatermark() int64
}

// Detector holds the configuration and collaborators for one partition's
// spike detection. All methods must be called from that partition's single
// processing goroutine; the detector performs no locking of its own.
type Detector struct {
	// store keeps per-sensor state between readings.
	store repo.Store
	// timers schedules inactivity deadlines against the partition watermark.
	timers TimerService
	// threshold is the ratio a reading must exceed over the previous value
	// to raise an alert.
	threshold float64
	// windowMillis is the inactivity window added to the watermark when
	// scheduling an expiry deadline.
	windowMillis int64
}

// New creates a detector with injected storage, timer service and tuning.
// Configuration is validated by the config package before it reaches here.
func New(store repo.Store, timers TimerService, threshold float64, windowMillis int64) *Detector {
	return &Detector{
		store:        store,
		timers:       timers,
		threshold:    threshold,
		windowMillis: windowMillis,
	}
}

// HandleReading processes one reading for a sensor and returns the resulting
// alert, or nil when the reading does not qualify.
//
// The expiry deadline is rescheduled first so LastScheduledExpiry always
// names the latest registration, then the previous temperature is read
// before the new one overwrites it. The very first reading of a sensor (or
// the first after cleanup) only establishes the baseline.
func (d *Detector) HandleReading(ctx context.Context, reading *sensor.Reading) *sensor.Alert {
	// Reschedule the inactivity deadline off the current watermark.
	expireAt := d.timers.CurrentWatermark() + d.windowMillis
	d.timers.RegisterTimer(reading.SensorID, expireAt)

	record := d.store.Get(reading.SensorID)
	record.LastScheduledExpiry = &expireAt

	var alert *sensor.Alert

	// Compare against the baseline before replacing it. A missing or
	// non-positive baseline never alerts: zero is treated as unset on
	// purpose, and the semantics are a ratio test, not a difference.
	if previous := record.LastTemperature; previous != nil && *previous > 0.0 &&
		reading.Temperature / *previous > d.threshold {
		alert = &sensor.Alert{
			SensorID:            reading.SensorID,
			Temperature:         reading.Temperature,
			PreviousTemperature: *previous,
		}

		logger.DebugKV(ctx, "Temperature spike detected",
			"sensor_id", reading.SensorID,
			"temperature", reading.Temperature,
			"previous_temperature", *previous)
	}

	temperature := reading.Temperature
	record.LastTemperature = &temperature
	d.store.Set(reading.SensorID, record)

	return alert
}

// HandleTimer processes one fired expiry timer and reports whether it
// cleared the sensor's state.
//
// There is no timer cancellation: a reading that reschedules the deadline
// leaves the old timer queued, so every firing is validated against
// LastScheduledExpiry and anything else is a stale leftover to ignore.
func (d *Detector) HandleTimer(ctx context.Context, key string, firedTimestamp int64) bool {
	record := d.store.Get(key)
	if record.LastScheduledExpiry == nil || *record.LastScheduledExpiry != firedTimestamp {
		return false
	}

	// Latest deadline elapsed with no newer reading: forget the sensor.
	d.store.Clear(key)

	logger.DebugKV(ctx, "Inactive sensor forgotten",
		"sensor_id", key,
		"expired_at", firedTimestamp)

	return true
}
