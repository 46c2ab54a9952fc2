// Package sink delivers spike alerts to downstream consumers.
//
// The LogSink writes alerts through the structured logger; it stands in for
// whatever alerting channel a deployment forwards to.
package sink
