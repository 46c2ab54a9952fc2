// Package stream defines the event envelope and the source/sink contracts
// between the pipeline and its collaborators.
package stream

import (
	"context"

	"github.com/oshokin/temp-sentinel/internal/domain/sensor"
)

// Event is one unit delivered to the pipeline: either a reading or a
// watermark-only heartbeat.
type Event struct {
	// Reading is the temperature sample, or nil for a heartbeat.
	Reading *sensor.Reading
	// Watermark is the event-time lower bound asserted by a heartbeat in
	// Unix milliseconds. Ignored when Reading is set; readings advance the
	// watermark through their own event time.
	Watermark int64
}

// Source produces events until the context is canceled or the stream ends.
// Implementations must not close the channel; the pipeline owns it.
type Source interface {
	Run(ctx context.Context, out chan<- Event) error
}

// Sink receives alerts in the order the pipeline emits them per sensor.
type Sink interface {
	Publish(ctx context.Context, alert *sensor.Alert) error
}
