// Package pipeline is the host runtime for the spike detector.
//
// It fans readings out to partitions by a hash of the sensor id, runs one
// detector per partition with exclusively owned state and timers, advances a
// per-partition event-time watermark, and fires due expiry timers. All events
// for a sensor flow through exactly one partition goroutine, so the detector
// and its store never need locking.
package pipeline
