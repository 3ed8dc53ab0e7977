package setup

import (
	"errors"
	"image/color"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// Window handles the session setup UI.
type Window struct {
	window   fyne.Window
	settings Settings
	onStart  func(Settings)
	duration *widget.Entry
	startBtn *widget.Button
}

// NewWindow creates the setup window. The onStart callback receives the
// settings with the entered duration applied.
func NewWindow(app fyne.App, settings Settings, onStart func(Settings)) *Window {
	window := app.NewWindow("Deep Work Timer")

	title := canvas.NewText("DEEP WORK TIMER", color.NRGBA{R: 0, G: 255, B: 136, A: 255})
	title.Alignment = fyne.TextAlignCenter
	title.TextStyle = fyne.TextStyle{Bold: true}
	title.TextSize = 20

	duration := widget.NewEntry()
	duration.SetText(strconv.Itoa(int(settings.TotalDuration.Minutes())))

	startBtn := widget.NewButton("START", nil)
	startBtn.Importance = widget.HighImportance

	form := container.NewVBox(
		title,
		widget.NewLabel("Enter duration in minutes:"),
		duration,
		startBtn,
	)

	window.SetContent(container.NewPadded(form))
	window.Resize(fyne.NewSize(360, 220))
	window.CenterOnScreen()

	setupWindow := &Window{
		window:   window,
		settings: settings,
		onStart:  onStart,
		duration: duration,
		startBtn: startBtn,
	}

	startBtn.OnTapped = setupWindow.handleStart
	duration.OnSubmitted = func(string) {
		setupWindow.handleStart()
	}

	return setupWindow
}

// Show displays the setup window.
func (setupWindow *Window) Show() {
	setupWindow.window.Show()
	setupWindow.window.RequestFocus()
	setupWindow.window.Canvas().Focus(setupWindow.duration)
}

// Hide hides the setup window.
func (setupWindow *Window) Hide() {
	fyne.Do(func() {
		setupWindow.window.Hide()
	})
}

// ShowError surfaces a startup failure, such as an unavailable camera, and
// re-enables the start button so the user can try again.
func (setupWindow *Window) ShowError(message string) {
	fyne.Do(func() {
		setupWindow.startBtn.Enable()
		dialog.ShowError(errors.New(message), setupWindow.window)
	})
}

func (setupWindow *Window) handleStart() {
	minutes, err := parseDurationMinutes(setupWindow.duration.Text)
	if err != nil {
		dialog.ShowError(err, setupWindow.window)
		return
	}

	// Disabled until the camera checks finish; ShowError re-enables it.
	setupWindow.startBtn.Disable()

	setupWindow.settings.TotalDuration = time.Duration(minutes) * time.Minute
	if setupWindow.onStart != nil {
		setupWindow.onStart(setupWindow.settings)
	}
}

func parseDurationMinutes(value string) (int, error) {
	minutes, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, errors.New("Please enter a valid number")
	}
	if minutes < MinDurationMinutes || minutes > MaxDurationMinutes {
		return 0, errors.New("Please enter a value between 1 and 999 minutes")
	}
	return minutes, nil
}
