package sensor

// State is the per-sensor bookkeeping record.
//
// Both fields use nil as an explicit "unset" marker: a zero temperature is a
// valid sample and must never be mistaken for a missing one.
type State struct {
	// LastTemperature is the most recently observed value, or nil when the
	// sensor has not been seen since its state was last cleared.
	LastTemperature *float64
	// LastScheduledExpiry is the event-time timestamp (Unix milliseconds) of
	// the most recently registered expiry timer, or nil when no timer is
	// outstanding. Only the timer matching this value may clear state.
	LastScheduledExpiry *int64
}

// IsZero reports whether the state carries no information at all.
func (s State) IsZero() bool {
	return s.LastTemperature == nil && s.LastScheduledExpiry == nil
}

// Clone returns a deep copy of the state so callers cannot alias the
// pointed-to values held by a store.
func (s State) Clone() State {
	var cloned State

	if s.LastTemperature != nil {
		temperature := *s.LastTemperature
		cloned.LastTemperature = &temperature
	}

	if s.LastScheduledExpiry != nil {
		expiry := *s.LastScheduledExpiry
		cloned.LastScheduledExpiry = &expiry
	}

	return cloned
}
