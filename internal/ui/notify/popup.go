package notify

import (
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
)

// displayDuration is how long a popup stays on screen.
const displayDuration = 3 * time.Second

var (
	colorBackground = color.NRGBA{R: 26, G: 26, B: 26, A: 242}
	colorTitle      = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	colorBody       = color.NRGBA{R: 170, G: 170, B: 170, A: 255}
)

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// Show displays a transient two-line notice that dismisses itself.
// Safe to call from any goroutine.
func Show(app fyne.App, title, body string) {
	fyne.Do(func() {
		window := app.NewWindow(title)
		if driver, ok := app.Driver().(splashWindowDriver); ok {
			window = driver.CreateSplashWindow()
		}
		window.SetPadded(false)

		background := canvas.NewRectangle(colorBackground)

		titleLabel := canvas.NewText(title, colorTitle)
		titleLabel.Alignment = fyne.TextAlignCenter
		titleLabel.TextStyle = fyne.TextStyle{Bold: true}
		titleLabel.TextSize = 14

		bodyLabel := canvas.NewText(body, colorBody)
		bodyLabel.Alignment = fyne.TextAlignCenter
		bodyLabel.TextSize = 12

		text := container.NewVBox(titleLabel, bodyLabel)
		window.SetContent(container.NewMax(background, container.NewCenter(text)))
		window.Resize(fyne.NewSize(280, 90))
		window.CenterOnScreen()
		window.Show()

		time.AfterFunc(displayDuration, func() {
			fyne.Do(window.Close)
		})
	})
}
