// Package metrics defines the Prometheus instruments exported by the
// pipeline, all labeled by partition.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LabelPartition tags every metric with the partition index that produced it.
const LabelPartition = "partition"

var (
	// ReadingsProcessed counts temperature readings delivered to detectors.
	ReadingsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "pipeline",
		Name:      "readings_processed_total",
		Help:      "Total number of temperature readings processed",
	}, []string{LabelPartition})

	// AlertsEmitted counts spike alerts published to the sink.
	AlertsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "pipeline",
		Name:      "alerts_emitted_total",
		Help:      "Total number of temperature spike alerts emitted",
	}, []string{LabelPartition})

	// TimersFired counts expiry timers that actually cleared sensor state.
	TimersFired = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "pipeline",
		Name:      "expiry_timers_fired_total",
		Help:      "Total number of expiry timers that cleared an inactive sensor",
	}, []string{LabelPartition})

	// StaleTimersSkipped counts superseded timers ignored on firing.
	StaleTimersSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "pipeline",
		Name:      "stale_timers_skipped_total",
		Help:      "Total number of superseded expiry timers ignored on firing",
	}, []string{LabelPartition})

	// ActiveSensors tracks how many sensors currently hold state.
	ActiveSensors = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Subsystem: "pipeline",
		Name:      "active_sensors",
		Help:      "Number of sensors currently holding state",
	}, []string{LabelPartition})
)
