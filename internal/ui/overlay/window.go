package overlay

import (
	"fmt"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
)

// Config defines overlay visuals.
type Config struct {
	Opacity uint8
}

const (
	overlayWidth  = float32(240)
	overlayHeight = float32(120)
)

var (
	colorBackground = color.NRGBA{R: 26, G: 26, B: 26, A: 255}
	colorTitle      = color.NRGBA{R: 136, G: 136, B: 136, A: 255}
	colorFocusing   = color.NRGBA{R: 0, G: 255, B: 136, A: 255}
	colorPaused     = color.NRGBA{R: 255, G: 170, B: 0, A: 255}
	colorState      = color.NRGBA{R: 170, G: 170, B: 170, A: 255}
)

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// Window manages the countdown overlay card.
type Window struct {
	app        fyne.App
	window     fyne.Window
	config     Config
	background *canvas.Rectangle
	titleLabel *canvas.Text
	timerLabel *canvas.Text
	stateLabel *canvas.Text
	completed  bool
}

// New creates the overlay window.
func New(app fyne.App, config Config) *Window {
	window := app.NewWindow("DeepWork")
	if driver, ok := app.Driver().(splashWindowDriver); ok {
		// Splash window is undecorated (no native frame/buttons) and stays
		// above normal windows.
		window = driver.CreateSplashWindow()
	}
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	window.SetPadded(false)

	background := canvas.NewRectangle(applyAlpha(colorBackground, config.Opacity))

	titleLabel := canvas.NewText("DEEP WORK", colorTitle)
	titleLabel.Alignment = fyne.TextAlignCenter
	titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	titleLabel.TextSize = 12

	timerLabel := canvas.NewText(formatDuration(0), colorFocusing)
	timerLabel.Alignment = fyne.TextAlignCenter
	timerLabel.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	timerLabel.TextSize = 30

	stateLabel := canvas.NewText("focusing", colorState)
	stateLabel.Alignment = fyne.TextAlignCenter
	stateLabel.TextSize = 11

	content := container.New(&cardLayout{}, titleLabel, timerLabel, stateLabel)
	root := container.NewMax(background, content)
	window.SetContent(root)

	overlay := &Window{
		app:        app,
		window:     window,
		config:     config,
		background: background,
		titleLabel: titleLabel,
		timerLabel: timerLabel,
		stateLabel: stateLabel,
	}

	window.Resize(fyne.NewSize(overlayWidth, overlayHeight))
	window.CenterOnScreen()

	return overlay
}

// Show displays the overlay card.
func (overlay *Window) Show(remaining time.Duration) {
	fyne.Do(func() {
		if !overlay.completed {
			overlay.timerLabel.Text = formatDuration(remaining)
			overlay.timerLabel.Refresh()
		}
		overlay.window.Show()
		overlay.applyNativeOpacity(overlay.config.Opacity)
	})
}

// Hide hides the overlay card.
func (overlay *Window) Hide() {
	fyne.Do(func() {
		overlay.window.Hide()
	})
}

// SetRemaining updates the countdown label.
func (overlay *Window) SetRemaining(remaining time.Duration) {
	fyne.Do(func() {
		if overlay.completed {
			return
		}
		overlay.timerLabel.Text = formatDuration(remaining)
		overlay.timerLabel.Refresh()
	})
}

// SetPaused switches the card between its focusing and paused looks.
func (overlay *Window) SetPaused(paused bool) {
	fyne.Do(func() {
		if overlay.completed {
			return
		}
		if paused {
			overlay.timerLabel.Color = colorPaused
			overlay.stateLabel.Text = "paused: no face detected"
		} else {
			overlay.timerLabel.Color = colorFocusing
			overlay.stateLabel.Text = "focusing"
		}
		overlay.timerLabel.Refresh()
		overlay.stateLabel.Refresh()
	})
}

// SetCompleted locks the card into its completion look. Later remaining or
// pause updates are ignored.
func (overlay *Window) SetCompleted() {
	fyne.Do(func() {
		overlay.completed = true
		overlay.timerLabel.Text = formatDuration(0)
		overlay.timerLabel.Color = colorFocusing
		overlay.stateLabel.Text = "Deep Work Complete!"
		overlay.timerLabel.Refresh()
		overlay.stateLabel.Refresh()
	})
}

// UpdateConfig updates overlay visuals.
func (overlay *Window) UpdateConfig(config Config) {
	fyne.Do(func() {
		overlay.config = config
		overlay.background.FillColor = applyAlpha(colorBackground, config.Opacity)
		canvas.Refresh(overlay.background)
		overlay.applyNativeOpacity(config.Opacity)
	})
}

func applyAlpha(base color.NRGBA, alpha uint8) color.NRGBA {
	base.A = alpha
	return base
}

func formatDuration(value time.Duration) string {
	if value < 0 {
		value = 0
	}
	totalSeconds := int(value.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

type cardLayout struct{}

func (layout *cardLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) < 3 {
		return
	}
	title := objects[0]
	timer := objects[1]
	state := objects[2]

	pad := size.Height * 0.08

	titleSize := title.MinSize()
	title.Move(fyne.NewPos(0, pad))
	title.Resize(fyne.NewSize(size.Width, titleSize.Height))

	timerSize := timer.MinSize()
	timerY := (size.Height - timerSize.Height) / 2
	if timerY < 0 {
		timerY = 0
	}
	timer.Move(fyne.NewPos(0, timerY))
	timer.Resize(fyne.NewSize(size.Width, timerSize.Height))

	stateSize := state.MinSize()
	stateY := size.Height - pad - stateSize.Height
	if stateY < 0 {
		stateY = 0
	}
	state.Move(fyne.NewPos(0, stateY))
	state.Resize(fyne.NewSize(size.Width, stateSize.Height))
}

func (layout *cardLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	width := float32(0)
	height := float32(0)
	for _, object := range objects {
		minSize := object.MinSize()
		if minSize.Width > width {
			width = minSize.Width
		}
		height += minSize.Height
	}
	return fyne.NewSize(width+20, height+30)
}
