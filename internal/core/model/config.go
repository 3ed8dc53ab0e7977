package model

import "time"

// SessionConfig contains runtime settings for the focus session state machine.
type SessionConfig struct {
	TotalDuration time.Duration
	GracePeriod   time.Duration
}

// SamplerConfig contains runtime settings for the presence sampler.
type SamplerConfig struct {
	Interval  time.Duration
	Threshold float64
}
