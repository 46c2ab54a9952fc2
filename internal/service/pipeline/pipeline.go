package pipeline

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/oshokin/temp-sentinel/internal/config"
	"github.com/oshokin/temp-sentinel/internal/logger"
	"github.com/oshokin/temp-sentinel/internal/metrics"
	repo "github.com/oshokin/temp-sentinel/internal/repository/state"
	"github.com/oshokin/temp-sentinel/internal/service/detector"
	"github.com/oshokin/temp-sentinel/internal/service/timer"
	"github.com/oshokin/temp-sentinel/internal/stream"
)

const (
	// sourceBufferSize bounds the channel between source and router.
	sourceBufferSize = 1024
	// partitionBufferSize bounds each partition's inbox.
	partitionBufferSize = 256
)

// Pipeline wires a source, a set of partitioned detectors and a sink.
type Pipeline struct {
	// cfg carries the validated tuning parameters.
	cfg *config.Config
	// source produces readings and watermark heartbeats.
	source stream.Source
	// sink receives every emitted alert.
	sink stream.Sink
}

// New creates a pipeline from a validated configuration and collaborators.
func New(cfg *config.Config, source stream.Source, sink stream.Sink) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		source: source,
		sink:   sink,
	}
}

// Run processes the stream until the source finishes or the context is
// canceled, then drains the partitions and returns.
func (p *Pipeline) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	events := make(chan stream.Event, sourceBufferSize)

	inboxes := make([]chan stream.Event, p.cfg.Partitions)
	for i := range inboxes {
		inboxes[i] = make(chan stream.Event, partitionBufferSize)
	}

	// Source goroutine owns the events channel and closes it on exit so the
	// router can drain and shut the partitions down in order.
	group.Go(func() error {
		defer close(events)

		if err := p.source.Run(ctx, events); err != nil {
			return fmt.Errorf("run source: %w", err)
		}

		return nil
	})

	// Router goroutine assigns readings to partitions and broadcasts
	// watermark heartbeats to all of them.
	group.Go(func() error {
		defer func() {
			for _, inbox := range inboxes {
				close(inbox)
			}
		}()

		for event := range events {
			if event.Reading != nil {
				index := partitionFor(event.Reading.SensorID, len(inboxes))
				if err := dispatch(ctx, inboxes[index], event); err != nil {
					return nil //nolint:nilerr // Cancellation is a clean stop.
				}

				continue
			}

			for _, inbox := range inboxes {
				if err := dispatch(ctx, inbox, event); err != nil {
					return nil //nolint:nilerr // Cancellation is a clean stop.
				}
			}
		}

		return nil
	})

	// One worker per partition, each owning its state, timers and detector.
	for i := range inboxes {
		group.Go(func() error {
			return p.runPartition(ctx, i, inboxes[i])
		})
	}

	logger.InfoKV(ctx, "Pipeline started",
		"partitions", p.cfg.Partitions,
		"threshold", p.cfg.Threshold,
		"inactivity_window", p.cfg.InactivityWindow.String())

	if err := group.Wait(); err != nil {
		return err
	}

	logger.Info(ctx, "Pipeline stopped")

	return nil
}

// runPartition is the single processing unit for one partition's keys.
// Events arrive sequentially, so the detector needs no synchronization.
func (p *Pipeline) runPartition(ctx context.Context, index int, inbox <-chan stream.Event) error {
	ctx = logger.WithKV(ctx, "partition", index)

	var (
		store  = repo.NewMemoryStore()
		timers = timer.NewService()
		det    = detector.New(store, timers, p.cfg.Threshold, p.cfg.InactivityWindow.Milliseconds())
		label  = strconv.Itoa(index)
	)

	for event := range inbox {
		if event.Reading != nil {
			// The reading's own event time is the punctuated watermark.
			timers.AdvanceWatermark(event.Reading.EventTime)
			metrics.ReadingsProcessed.WithLabelValues(label).Inc()

			if alert := det.HandleReading(ctx, event.Reading); alert != nil {
				metrics.AlertsEmitted.WithLabelValues(label).Inc()

				if err := p.sink.Publish(ctx, alert); err != nil {
					return fmt.Errorf("publish alert: %w", err)
				}
			}
		} else {
			timers.AdvanceWatermark(event.Watermark)
		}

		// Timers fire only after the reading that advanced the watermark
		// past them has been fully processed.
		for _, due := range timers.PopDue() {
			if det.HandleTimer(ctx, due.Key, due.Timestamp) {
				metrics.TimersFired.WithLabelValues(label).Inc()
			} else {
				metrics.StaleTimersSkipped.WithLabelValues(label).Inc()
			}
		}

		metrics.ActiveSensors.WithLabelValues(label).Set(float64(store.Len()))
	}

	return nil
}

// dispatch forwards an event to an inbox unless the context ends first.
func dispatch(ctx context.Context, inbox chan<- stream.Event, event stream.Event) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case inbox <- event:
		return nil
	}
}

// partitionFor maps a sensor id onto a partition index with FNV-1a.
func partitionFor(key string, partitions int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))

	return int(h.Sum32() % uint32(partitions)) //nolint:gosec // Partition counts are tiny.
}
