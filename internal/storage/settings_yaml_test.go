package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepwork/internal/ui/setup"
)

func TestSettingsRoundTrip(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "DeepWork", "settings.yaml")
	saved := setup.Settings{
		TotalDuration:     90 * time.Minute,
		SamplingInterval:  3 * time.Second,
		GracePeriod:       8 * time.Second,
		PresenceThreshold: 42.5,
		CameraDevice:      1,
		CascadeFile:       "/opt/cascades/frontalface.xml",
		OverlayOpacity:    0.8,
		ChimeEnabled:      true,
	}

	require.NoError(t, saveSettingsFile(configPath, saved))

	loaded, err := loadSettingsFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestLoadSettingsMissingFileReturnsDefaults(t *testing.T) {
	loaded, err := loadSettingsFile(filepath.Join(t.TempDir(), "settings.yaml"))
	require.NoError(t, err)
	assert.Equal(t, setup.DefaultSettings(), loaded)
}

func TestLoadSettingsMalformedYAMLReturnsDefaultsAndError(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("{not yaml::"), 0o644))

	loaded, err := loadSettingsFile(configPath)
	assert.Error(t, err)
	assert.Equal(t, setup.DefaultSettings(), loaded)
}

func TestLoadSettingsIgnoresOutOfRangeValues(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "settings.yaml")
	raw := `total_duration_minutes: 1500
sampling_interval_seconds: -5
grace_period_seconds: 12
presence_threshold: 180
camera_device: -3
overlay_opacity: 0.2
chime_enabled: true
`
	require.NoError(t, os.WriteFile(configPath, []byte(raw), 0o644))

	loaded, err := loadSettingsFile(configPath)
	require.NoError(t, err)

	defaults := setup.DefaultSettings()
	assert.Equal(t, defaults.TotalDuration, loaded.TotalDuration, "1500 minutes is over the cap")
	assert.Equal(t, defaults.SamplingInterval, loaded.SamplingInterval)
	assert.Equal(t, defaults.PresenceThreshold, loaded.PresenceThreshold)
	assert.Equal(t, defaults.CameraDevice, loaded.CameraDevice)
	assert.Equal(t, defaults.OverlayOpacity, loaded.OverlayOpacity)

	assert.Equal(t, 12*time.Second, loaded.GracePeriod, "in-range fields still apply")
	assert.True(t, loaded.ChimeEnabled)
}

func TestLoadSettingsAcceptsDurationBounds(t *testing.T) {
	tests := []struct {
		name    string
		minutes int
		want    time.Duration
	}{
		{name: "lower bound", minutes: 1, want: time.Minute},
		{name: "upper bound", minutes: 999, want: 999 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "settings.yaml")
			require.NoError(t, saveSettingsFile(configPath, setup.Settings{
				TotalDuration: time.Duration(tt.minutes) * time.Minute,
			}))

			loaded, err := loadSettingsFile(configPath)
			require.NoError(t, err)
			assert.Equal(t, tt.want, loaded.TotalDuration)
		})
	}
}
