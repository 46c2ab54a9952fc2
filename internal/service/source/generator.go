package source

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/oshokin/temp-sentinel/internal/config"
	"github.com/oshokin/temp-sentinel/internal/domain/sensor"
	"github.com/oshokin/temp-sentinel/internal/logger"
	"github.com/oshokin/temp-sentinel/internal/stream"
)

const (
	// baseTemperature centers the fleet's starting values.
	baseTemperature = 20.0
	// walkStep bounds the per-reading random drift in degrees.
	walkStep = 0.5
	// minSpikeFactor and maxSpikeFactor bound a generated sudden increase.
	minSpikeFactor = 1.2
	maxSpikeFactor = 1.6
)

// Generator emits simulated temperature readings for a fixed sensor fleet.
type Generator struct {
	// emitInterval is the wall-clock pause between readings.
	emitInterval time.Duration
	// watermarkInterval is the wall-clock pause between heartbeats.
	watermarkInterval time.Duration
	// dropoutSilence is how long a dropped-out sensor stays quiet; it
	// exceeds the inactivity window so cleanup is observable.
	dropoutSilence time.Duration
	// spikeProbability is the per-reading chance of a sudden increase.
	spikeProbability float64
	// dropoutProbability is the per-reading chance of going silent.
	dropoutProbability float64
	// rng drives the random walk, spikes and dropouts.
	rng *rand.Rand
	// temperatures holds the current value per sensor.
	temperatures []float64
	// quietUntil holds, per sensor, the Unix millisecond until which it
	// stays silent; zero means reporting normally.
	quietUntil []int64
}

// NewGenerator builds a generator for the fleet described by the config.
func NewGenerator(cfg *config.Config) *Generator {
	return newGenerator(cfg, rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)))
}

// newGenerator is the seedable constructor used by tests.
func newGenerator(cfg *config.Config, rng *rand.Rand) *Generator {
	g := &Generator{
		emitInterval:       cfg.EmitInterval,
		watermarkInterval:  cfg.WatermarkInterval,
		dropoutSilence:     cfg.InactivityWindow + 2*cfg.WatermarkInterval,
		spikeProbability:   cfg.SpikeProbability,
		dropoutProbability: cfg.DropoutProbability,
		rng:                rng,
		temperatures:       make([]float64, cfg.Sensors),
		quietUntil:         make([]int64, cfg.Sensors),
	}

	for i := range g.temperatures {
		g.temperatures[i] = baseTemperature + g.rng.Float64()*10.0 - 5.0
	}

	return g
}

// Run emits readings and watermark heartbeats until the context is canceled.
func (g *Generator) Run(ctx context.Context, out chan<- stream.Event) error {
	logger.InfoKV(ctx, "Generator started",
		"sensors", len(g.temperatures),
		"emit_interval", g.emitInterval.String(),
		"watermark_interval", g.watermarkInterval.String())

	emit := time.NewTicker(g.emitInterval)
	defer emit.Stop()

	heartbeat := time.NewTicker(g.watermarkInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Generator stopped")
			return nil
		case <-heartbeat.C:
			if err := g.send(ctx, out, stream.Event{Watermark: time.Now().UnixMilli()}); err != nil {
				return nil //nolint:nilerr // Cancellation is a clean stop.
			}
		case <-emit.C:
			reading := g.nextReading(ctx, time.Now().UnixMilli())
			if reading == nil {
				continue
			}

			if err := g.send(ctx, out, stream.Event{Reading: reading}); err != nil {
				return nil //nolint:nilerr // Cancellation is a clean stop.
			}
		}
	}
}

// nextReading picks a sensor and produces its next sample, or nil when the
// chosen sensor is inside a dropout.
func (g *Generator) nextReading(ctx context.Context, nowMillis int64) *sensor.Reading {
	index := g.rng.IntN(len(g.temperatures))
	if g.quietUntil[index] > nowMillis {
		return nil
	}

	g.quietUntil[index] = 0

	switch roll := g.rng.Float64(); {
	case roll < g.dropoutProbability:
		// The sensor goes silent long enough to be forgotten.
		g.quietUntil[index] = nowMillis + g.dropoutSilence.Milliseconds()

		logger.DebugKV(ctx, "Sensor dropping out",
			"sensor_id", g.sensorID(index),
			"quiet_until", g.quietUntil[index])

		return nil
	case roll < g.dropoutProbability+g.spikeProbability:
		factor := minSpikeFactor + g.rng.Float64()*(maxSpikeFactor-minSpikeFactor)
		g.temperatures[index] *= factor
	default:
		g.temperatures[index] += g.rng.Float64()*2*walkStep - walkStep
	}

	return &sensor.Reading{
		SensorID:    g.sensorID(index),
		Temperature: g.temperatures[index],
		EventTime:   nowMillis,
	}
}

// send delivers an event unless the context is canceled first.
func (g *Generator) send(ctx context.Context, out chan<- stream.Event, event stream.Event) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case out <- event:
		return nil
	}
}

// sensorID names the fleet members deterministically.
func (g *Generator) sensorID(index int) string {
	return fmt.Sprintf("sensor-%03d", index)
}
