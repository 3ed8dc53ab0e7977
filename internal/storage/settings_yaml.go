package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"deepwork/internal/ui/setup"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	TotalDurationMinutes    int     `yaml:"total_duration_minutes"`
	SamplingIntervalSeconds int     `yaml:"sampling_interval_seconds"`
	GracePeriodSeconds      int     `yaml:"grace_period_seconds"`
	PresenceThreshold       float64 `yaml:"presence_threshold"`
	CameraDevice            int     `yaml:"camera_device"`
	CascadeFile             string  `yaml:"cascade_file"`
	OverlayOpacity          float64 `yaml:"overlay_opacity"`
	ChimeEnabled            bool    `yaml:"chime_enabled"`
}

// SettingsPath returns the location of the application's settings file.
func SettingsPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

// LoadSettings reads user preferences from YAML.
// If the config file does not exist, default settings are returned.
func LoadSettings(appName string) (setup.Settings, error) {
	configPath, err := SettingsPath(appName)
	if err != nil {
		return setup.DefaultSettings(), err
	}
	return loadSettingsFile(configPath)
}

// SaveSettings writes user preferences to YAML.
func SaveSettings(appName string, settings setup.Settings) error {
	configPath, err := SettingsPath(appName)
	if err != nil {
		return err
	}
	return saveSettingsFile(configPath, settings)
}

func loadSettingsFile(configPath string) (setup.Settings, error) {
	settings := setup.DefaultSettings()

	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

func saveSettingsFile(configPath string, settings setup.Settings) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlSettings{
		TotalDurationMinutes:    int(settings.TotalDuration / time.Minute),
		SamplingIntervalSeconds: int(settings.SamplingInterval / time.Second),
		GracePeriodSeconds:      int(settings.GracePeriod / time.Second),
		PresenceThreshold:       settings.PresenceThreshold,
		CameraDevice:            settings.CameraDevice,
		CascadeFile:             settings.CascadeFile,
		OverlayOpacity:          settings.OverlayOpacity,
		ChimeEnabled:            settings.ChimeEnabled,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(configPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func applyYamlSettings(settings *setup.Settings, fileData yamlSettings) {
	if fileData.TotalDurationMinutes >= setup.MinDurationMinutes && fileData.TotalDurationMinutes <= setup.MaxDurationMinutes {
		settings.TotalDuration = time.Duration(fileData.TotalDurationMinutes) * time.Minute
	}
	if fileData.SamplingIntervalSeconds > 0 {
		settings.SamplingInterval = time.Duration(fileData.SamplingIntervalSeconds) * time.Second
	}
	if fileData.GracePeriodSeconds > 0 {
		settings.GracePeriod = time.Duration(fileData.GracePeriodSeconds) * time.Second
	}
	if fileData.PresenceThreshold > 0 && fileData.PresenceThreshold <= 100 {
		settings.PresenceThreshold = fileData.PresenceThreshold
	}
	if fileData.CameraDevice >= 0 {
		settings.CameraDevice = fileData.CameraDevice
	}
	if fileData.CascadeFile != "" {
		settings.CascadeFile = fileData.CascadeFile
	}

	if fileData.OverlayOpacity >= 0.7 && fileData.OverlayOpacity <= 0.95 {
		settings.OverlayOpacity = fileData.OverlayOpacity
	}

	settings.ChimeEnabled = fileData.ChimeEnabled
}
