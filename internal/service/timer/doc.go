// Package timer provides the event-time timer service used by the spike
// detector.
//
// Each pipeline partition owns one Service. Timers are keyed by
// (sensor id, timestamp), registrations are idempotent per pair, and a timer
// becomes due once the partition watermark reaches its timestamp. There is no
// cancellation: superseded timers still fire and are invalidated downstream
// by the detector's latest-wins check.
package timer
