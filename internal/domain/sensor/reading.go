package sensor

// Reading is a single temperature sample delivered by the ingestion layer.
type Reading struct {
	// SensorID is the partitioning key that scopes all state and timers.
	SensorID string
	// Temperature is the sampled value in degrees.
	Temperature float64
	// EventTime is the production timestamp of the sample in Unix milliseconds.
	EventTime int64
}

// Alert reports a sudden temperature increase for one sensor.
type Alert struct {
	// SensorID identifies the sensor that produced the spike.
	SensorID string
	// Temperature is the value of the reading that triggered the alert.
	Temperature float64
	// PreviousTemperature is the baseline the reading was compared against.
	PreviousTemperature float64
}
