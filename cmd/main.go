package main

import (
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"deepwork/internal/core/presence"
	"deepwork/internal/core/session"
	"deepwork/internal/platform"
	"deepwork/internal/storage"
	"deepwork/internal/ui/chime"
	"deepwork/internal/ui/notify"
	"deepwork/internal/ui/overlay"
	"deepwork/internal/ui/setup"
	"deepwork/internal/ui/tray"
	"deepwork/internal/vision"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const appName = "DeepWork"

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logger := newLogger(*debug)

	lock, err := platform.AcquireSessionLock(appName)
	if err != nil {
		logger.Error().Err(err).Msg("refusing to start a second instance")
		return
	}
	defer func() {
		_ = lock.Release()
	}()

	settings, err := storage.LoadSettings(appName)
	if err != nil {
		logger.Warn().Err(err).Msg("settings unreadable, using defaults")
	}

	fyneApp := app.NewWithID("com.deepwork.app")
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		logger.Error().Msg("system tray unsupported on this platform")
		return
	}

	trayWindow := fyneApp.NewWindow(appName)
	trayWindow.SetContent(widget.NewLabel("DeepWork is running in the system tray."))
	trayWindow.SetCloseIntercept(func() {
		trayWindow.Hide()
	})
	trayWindow.Hide()
	desktopApp.SetSystemTrayWindow(trayWindow)

	chimePlayer, err := chime.NewPlayer(settings.ChimeEnabled)
	if err != nil {
		logger.Warn().Err(err).Msg("audio unavailable, chimes disabled")
	}

	overlayWindow := overlay.New(fyneApp, overlay.Config{
		Opacity: opacityToAlpha(settings.OverlayOpacity),
	})

	pipe := &pipeline{}

	var setupWindow *setup.Window
	var trayManager *tray.Manager

	setupWindow = setup.NewWindow(fyneApp, settings, func(chosen setup.Settings) {
		// Opening a webcam can take a few seconds, keep it off the UI goroutine.
		go beginSession(fyneApp, setupWindow, overlayWindow, trayManager, chimePlayer, pipe, chosen, logger)
	})

	trayManager = tray.New(desktopApp, tray.Callbacks{
		OnShowTimer: func() {
			if snapshot, ok := pipe.sessionSnapshot(); ok {
				overlayWindow.Show(snapshot.Remaining)
			} else {
				setupWindow.Show()
			}
		},
		OnQuit: func() {
			pipe.shutdown()
			fyneApp.Quit()
		},
	})
	defer pipe.shutdown()

	setupWindow.Show()
	fyneApp.Run()
}

// beginSession opens the capture pipeline and starts the countdown. Any
// startup failure is reported on the setup window so the user can retry.
func beginSession(fyneApp fyne.App, setupWindow *setup.Window, overlayWindow *overlay.Window, trayManager *tray.Manager, chimePlayer *chime.Player, pipe *pipeline, settings setup.Settings, logger zerolog.Logger) {
	if err := storage.SaveSettings(appName, settings); err != nil {
		logger.Warn().Err(err).Msg("settings not saved")
	}

	cascadePath, err := vision.ResolveCascadePath(settings.CascadeFile)
	if err != nil {
		logger.Error().Err(err).Msg("face cascade not found")
		setupWindow.ShowError("Could not find the face detection model.\nInstall the OpenCV haarcascade files or set DEEPWORK_CASCADE.")
		return
	}

	faces, err := vision.LoadFaceClassifier(cascadePath)
	if err != nil {
		logger.Error().Err(err).Str("cascade", cascadePath).Msg("face classifier failed to load")
		setupWindow.ShowError("Could not load the face detection model.")
		return
	}

	camera, err := vision.OpenWebcam(settings.CameraDevice)
	if err != nil {
		_ = faces.Close()
		logger.Error().Err(err).Int("device", settings.CameraDevice).Msg("webcam unavailable")
		setupWindow.ShowError("Could not access webcam.\nClose other apps using the camera and try again.")
		return
	}

	sessionLogger := logger.With().Str("session_id", uuid.NewString()).Logger()

	focusSession := session.New(settings.SessionConfig(), session.Config{TickInterval: time.Second})
	sampler := presence.NewSampler(camera, faces, settings.SamplerConfig(), focusSession.Observe, sessionLogger)

	pipe.mu.Lock()
	pipe.camera = camera
	pipe.faces = faces
	pipe.sampler = sampler
	pipe.focus = focusSession
	pipe.mu.Unlock()

	events := focusSession.Subscribe(5)
	go func() {
		previous := session.StatusRunning
		for event := range events {
			switch event.Type {
			case session.EventStateChange:
				handleStateChange(event, previous, fyneApp, overlayWindow, trayManager, chimePlayer, pipe, sessionLogger)
				previous = event.Status
			case session.EventProgress:
				handleProgress(event, overlayWindow, trayManager)
			}
		}
	}()

	sessionLogger.Info().
		Dur("duration", settings.TotalDuration).
		Dur("grace", settings.GracePeriod).
		Float64("threshold", settings.PresenceThreshold).
		Msg("focus session starting")

	setupWindow.Hide()
	overlayWindow.Show(settings.TotalDuration)
	trayManager.SetStatus("focusing")

	focusSession.Start()
	sampler.Start()

	watchSettingsFile(pipe, overlayWindow, chimePlayer, sessionLogger)
}

// watchSettingsFile applies settings edits to the running session without a
// restart. Threshold, grace period, chime and opacity take effect live.
func watchSettingsFile(pipe *pipeline, overlayWindow *overlay.Window, chimePlayer *chime.Player, logger zerolog.Logger) {
	configPath, err := storage.SettingsPath(appName)
	if err != nil {
		logger.Warn().Err(err).Msg("settings watcher unavailable")
		return
	}

	watcher, err := storage.WatchSettings(configPath, logger, func(updated setup.Settings) {
		pipe.mu.Lock()
		sampler := pipe.sampler
		focusSession := pipe.focus
		pipe.mu.Unlock()

		if sampler != nil {
			sampler.SetThreshold(updated.PresenceThreshold)
		}
		if focusSession != nil {
			focusSession.SetGracePeriod(updated.GracePeriod)
		}
		chimePlayer.SetEnabled(updated.ChimeEnabled)
		overlayWindow.UpdateConfig(overlay.Config{Opacity: opacityToAlpha(updated.OverlayOpacity)})
	})
	if err != nil {
		logger.Warn().Err(err).Msg("settings watcher unavailable")
		return
	}
	if err := watcher.Start(); err != nil {
		logger.Warn().Err(err).Msg("settings watcher failed to start")
		return
	}

	pipe.mu.Lock()
	pipe.watcher = watcher
	pipe.mu.Unlock()
}

func handleStateChange(event session.Event, previous session.Status, fyneApp fyne.App, overlayWindow *overlay.Window, trayManager *tray.Manager, chimePlayer *chime.Player, pipe *pipeline, logger zerolog.Logger) {
	switch event.Status {
	case session.StatusPaused:
		overlayWindow.SetPaused(true)
		trayManager.SetStatus("paused, waiting for you")
		notify.Show(fyneApp, "Timer Paused", "Face not detected")
		chimePlayer.Paused()
		logger.Info().Dur("remaining", event.Remaining).Msg("paused, nobody at the desk")
	case session.StatusRunning:
		overlayWindow.SetPaused(false)
		overlayWindow.SetRemaining(event.Remaining)
		if previous == session.StatusPaused {
			trayManager.SetStatus("focusing")
			notify.Show(fyneApp, "Timer Resumed", "Welcome back!")
			chimePlayer.Resumed()
			logger.Info().Dur("remaining", event.Remaining).Msg("resumed")
		}
	case session.StatusCompleted:
		overlayWindow.SetCompleted()
		trayManager.SetStatus("session complete")
		notify.Show(fyneApp, "Deep Work Complete!", "Great focus session!")
		chimePlayer.Completed()
		logger.Info().Msg("session completed, releasing the camera")
		pipe.stopCapture()
	}
}

func handleProgress(event session.Event, overlayWindow *overlay.Window, trayManager *tray.Manager) {
	if event.Status != session.StatusRunning {
		return
	}
	overlayWindow.SetRemaining(event.Remaining)
	trayManager.SetStatus("focusing, " + formatRemaining(event.Remaining) + " left")
}

// pipeline owns everything started for one focus session so the completion
// and quit paths can tear it down from any goroutine.
type pipeline struct {
	mu      sync.Mutex
	camera  *vision.Webcam
	faces   *vision.FaceClassifier
	sampler *presence.Sampler
	focus   *session.Session
	watcher *storage.SettingsWatcher
}

func (pipe *pipeline) sessionSnapshot() (session.Snapshot, bool) {
	pipe.mu.Lock()
	focusSession := pipe.focus
	pipe.mu.Unlock()

	if focusSession == nil {
		return session.Snapshot{}, false
	}
	return focusSession.Snapshot(), true
}

// stopCapture halts presence sampling and releases the webcam. The session
// keeps its final state so the overlay can keep showing it.
func (pipe *pipeline) stopCapture() {
	pipe.mu.Lock()
	sampler, camera, faces := pipe.sampler, pipe.camera, pipe.faces
	pipe.sampler, pipe.camera, pipe.faces = nil, nil, nil
	pipe.mu.Unlock()

	if sampler != nil {
		sampler.Stop()
	}
	if camera != nil {
		_ = camera.Close()
	}
	if faces != nil {
		_ = faces.Close()
	}
}

// shutdown tears down the whole pipeline, watcher and session included.
func (pipe *pipeline) shutdown() {
	pipe.stopCapture()

	pipe.mu.Lock()
	focusSession, watcher := pipe.focus, pipe.watcher
	pipe.focus, pipe.watcher = nil, nil
	pipe.mu.Unlock()

	if watcher != nil {
		_ = watcher.Stop()
	}
	if focusSession != nil {
		focusSession.Stop()
	}
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

func formatRemaining(remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}
	seconds := int(remaining.Seconds())
	minutes := seconds / 60
	seconds = seconds % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

func opacityToAlpha(opacity float64) uint8 {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	return uint8(opacity * 255)
}
