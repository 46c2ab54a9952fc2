// Package sensor contains core domain types for spike detection.
//
// It defines Reading (one temperature sample), Alert (a detected sudden
// increase) and State (the per-sensor bookkeeping record) with Clone helpers
// to avoid leaking internal references.
package sensor
