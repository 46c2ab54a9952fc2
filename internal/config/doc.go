// Package config defines the tuning settings for the spike detection
// pipeline and provides helpers to load, validate and save them in YAML
// format.
//
// The Config type covers the detection parameters (alert threshold and
// inactivity window), the pipeline shape (partitions, metrics address) and
// the knobs of the simulated sensor fleet.
package config
