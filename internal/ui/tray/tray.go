package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShowTimer func()
	OnQuit      func()
}

// Manager handles system tray state. The session pauses and resumes on
// webcam presence alone, so the menu carries no manual pause control.
type Manager struct {
	app        desktop.App
	statusItem *fyne.MenuItem
	callbacks  Callbacks
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
	}

	manager.statusItem = fyne.NewMenuItem("Status: waiting to start", nil)
	manager.statusItem.Disabled = true

	app.SetSystemTrayMenu(manager.buildMenu())
	return manager
}

// SetStatus updates the status line shown in the tray menu.
// Safe to call from any goroutine.
func (manager *Manager) SetStatus(status string) {
	fyne.Do(func() {
		manager.statusItem.Label = fmt.Sprintf("Status: %s", status)
		manager.refreshMenu()
	})
}

func (manager *Manager) buildMenu() *fyne.Menu {
	return fyne.NewMenu("DeepWork",
		manager.statusItem,
		fyne.NewMenuItem("Show timer", func() {
			if manager.callbacks.OnShowTimer != nil {
				manager.callbacks.OnShowTimer()
			}
		}),
		fyne.NewMenuItem("Quit", func() {
			if manager.callbacks.OnQuit != nil {
				manager.callbacks.OnQuit()
			}
		}),
	)
}

func (manager *Manager) refreshMenu() {
	if manager.app != nil {
		manager.app.SetSystemTrayMenu(manager.buildMenu())
	}
}
