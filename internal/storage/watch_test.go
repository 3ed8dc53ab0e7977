package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepwork/internal/ui/setup"
)

func TestSettingsWatcherFiresOnRewrite(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "settings.yaml")
	initial := setup.DefaultSettings()
	require.NoError(t, saveSettingsFile(configPath, initial))

	changed := make(chan setup.Settings, 4)
	watcher, err := WatchSettings(configPath, zerolog.Nop(), func(settings setup.Settings) {
		changed <- settings
	})
	require.NoError(t, err)
	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	updated := initial
	updated.PresenceThreshold = 45
	updated.GracePeriod = 9 * time.Second
	require.NoError(t, saveSettingsFile(configPath, updated))

	select {
	case settings := <-changed:
		assert.Equal(t, float64(45), settings.PresenceThreshold)
		assert.Equal(t, 9*time.Second, settings.GracePeriod)
	case <-time.After(3 * time.Second):
		t.Fatal("watcher never reported the settings change")
	}
}

func TestSettingsWatcherStopIsIdempotent(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "settings.yaml")
	watcher, err := WatchSettings(configPath, zerolog.Nop(), nil)
	require.NoError(t, err)

	require.NoError(t, watcher.Start())
	require.NoError(t, watcher.Stop())
	assert.NoError(t, watcher.Stop())
}
