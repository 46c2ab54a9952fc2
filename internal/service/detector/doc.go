// Package detector implements the per-sensor spike detection and inactivity
// cleanup logic.
//
// The Detector compares each reading against the sensor's previous value and
// emits an alert when the increase exceeds a configured ratio. Alongside the
// comparison it keeps exactly one effective expiry timer per sensor: every
// reading reschedules the deadline to watermark + inactivity window, and only
// the most recently scheduled deadline is allowed to clear state when it
// fires. A sensor that stops reporting is forgotten after one inactivity
// window and its next reading starts from a fresh baseline.
package detector
