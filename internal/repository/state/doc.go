// Package state implements per-sensor storage for the spike detector.
//
// The MemoryStore keeps sensor.State records in a plain map and exposes the
// Store interface the detector depends on. It performs no locking: every
// store instance is owned by exactly one pipeline partition, which delivers
// all events for its keys sequentially.
package state
