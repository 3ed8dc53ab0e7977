package setup

import (
	"time"

	"deepwork/internal/core/model"
)

// Session duration bounds, in minutes.
const (
	MinDurationMinutes = 1
	MaxDurationMinutes = 999
)

// Settings defines editable user preferences.
type Settings struct {
	TotalDuration     time.Duration
	SamplingInterval  time.Duration
	GracePeriod       time.Duration
	PresenceThreshold float64
	CameraDevice      int
	CascadeFile       string

	OverlayOpacity float64
	ChimeEnabled   bool
}

// DefaultSettings returns default settings for DeepWork.
func DefaultSettings() Settings {
	return Settings{
		TotalDuration:     25 * time.Minute,
		SamplingInterval:  5 * time.Second,
		GracePeriod:       5 * time.Second,
		PresenceThreshold: 30,
		CameraDevice:      0,
		OverlayOpacity:    0.9,
		ChimeEnabled:      true,
	}
}

// SessionConfig converts settings to the session state machine config.
func (settings Settings) SessionConfig() model.SessionConfig {
	return model.SessionConfig{
		TotalDuration: settings.TotalDuration,
		GracePeriod:   settings.GracePeriod,
	}
}

// SamplerConfig converts settings to the presence sampler config.
func (settings Settings) SamplerConfig() model.SamplerConfig {
	return model.SamplerConfig{
		Interval:  settings.SamplingInterval,
		Threshold: settings.PresenceThreshold,
	}
}
