// Package source generates the simulated sensor fleet that feeds the
// pipeline.
//
// Each sensor follows a slow random walk with occasional sudden spikes (which
// should trip the alert ratio) and occasional dropouts (silence long enough
// for the inactivity cleanup to forget the sensor). The generator also emits
// periodic watermark heartbeats so expiry deadlines fire even while every
// sensor is quiet.
package source
