package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"deepwork/internal/ui/setup"
)

// SettingsWatcher reloads settings whenever the YAML file changes on disk,
// so threshold and grace period edits apply to a session already in flight.
// It watches the parent directory since editors replace files on save and
// fsnotify drops watches on replaced files.
type SettingsWatcher struct {
	targetPath string
	parentPath string
	onChange   func(setup.Settings)
	logger     zerolog.Logger
	watcher    *fsnotify.Watcher
	ctx        context.Context
	cancel     context.CancelFunc
	mu         sync.Mutex
	running    bool
	debounce   time.Duration
}

// WatchSettings creates a watcher for the settings file at targetPath.
// The onChange callback receives the freshly loaded settings.
func WatchSettings(targetPath string, logger zerolog.Logger, onChange func(setup.Settings)) (*SettingsWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &SettingsWatcher{
		targetPath: filepath.Clean(targetPath),
		parentPath: filepath.Dir(targetPath),
		onChange:   onChange,
		logger:     logger,
		watcher:    fsw,
		ctx:        ctx,
		cancel:     cancel,
		debounce:   100 * time.Millisecond,
	}, nil
}

// Start begins watching for settings file changes.
func (w *SettingsWatcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.addWatch(); err != nil {
		w.logger.Warn().Err(err).Str("path", w.parentPath).Msg("settings watch not established")
	}

	go w.watchLoop()
	return nil
}

// Stop stops the watcher.
func (w *SettingsWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false
	w.cancel()
	return w.watcher.Close()
}

func (w *SettingsWatcher) addWatch() error {
	if _, err := os.Stat(w.parentPath); err != nil {
		return err
	}
	return w.watcher.Add(w.parentPath)
}

func (w *SettingsWatcher) watchLoop() {
	var debounceTimer *time.Timer

	for {
		select {
		case <-w.ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.targetPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			// Editors fire several events per save; collapse them.
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("settings watcher error")
		}
	}
}

func (w *SettingsWatcher) reload() {
	settings, err := loadSettingsFile(w.targetPath)
	if err != nil {
		w.logger.Warn().Err(err).Str("path", w.targetPath).Msg("settings reload failed")
		return
	}

	w.logger.Info().
		Float64("presence_threshold", settings.PresenceThreshold).
		Dur("grace_period", settings.GracePeriod).
		Msg("settings file changed")

	if w.onChange != nil {
		w.onChange(settings)
	}
}
