// Package tray provides a system tray menu for the AirFrame studio.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/airframe/internal/gesture"
	"github.com/ayusman/airframe/internal/studio"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle   func(enabled bool)
	onAction   func(action gesture.Action)
	onSettings func()
	onQuit     func()
	enabled    bool
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuToggle     *systray.MenuItem
	menuLastAction *systray.MenuItem
	menuFilter     *systray.MenuItem
}

// New creates a new Tray instance with enabled state set to true by default.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnAction sets the callback for the quick action menu items.
func (t *Tray) OnAction(fn func(action gesture.Action)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onAction = fn
}

// OnSettings sets the callback function to be called when the studio menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit stops the tray loop started by Run.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("AirFrame")
	systray.SetTooltip("AirFrame gesture photo studio")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle gesture control")
	systray.AddSeparator()

	t.menuLastAction = systray.AddMenuItem(lastActionTitle(""), "Last action")
	t.menuLastAction.Disable()
	t.menuFilter = systray.AddMenuItem(filterTitle(""), "Active filter")
	t.menuFilter.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuCapture := systray.AddMenuItem("Take Photo", "Capture the current frame")
	menuFilter := systray.AddMenuItem("Next Filter", "Cycle to the next filter")
	menuBooth := systray.AddMenuItem("Photo Booth", "Take four photos for a collage")
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Studio...", "Open the studio in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit AirFrame")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuCapture.ClickedCh:
				t.handleAction(gesture.ActionCapture)
			case <-menuFilter.ClickedCh:
				t.handleAction(gesture.ActionNextFilter)
			case <-menuBooth.ClickedCh:
				t.handleAction(gesture.ActionPhotoBooth)
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleAction(action gesture.Action) {
	t.mu.RLock()
	callback := t.onAction
	t.mu.RUnlock()

	if callback != nil {
		callback(action)
	}
}

// handleSettings handles the studio menu item click.
func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// ShowFeedback updates the last action line. It is meant to be subscribed to the
// action dispatcher.
func (t *Tray) ShowFeedback(fb studio.Feedback) {
	title := fb.Message
	if fb.Error != "" {
		title = string(fb.Action) + " failed"
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLastAction != nil {
		t.menuLastAction.SetTitle(lastActionTitle(title))
	}
}

// SetFilter updates the active filter line.
func (t *Tray) SetFilter(name string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuFilter != nil {
		t.menuFilter.SetTitle(filterTitle(name))
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Gestures On"
	}
	return "○ Gestures Off"
}

func lastActionTitle(msg string) string {
	if msg == "" {
		return "Last: none"
	}
	return "Last: " + msg
}

func filterTitle(name string) string {
	if name == "" {
		name = "none"
	}
	return "Filter: " + name
}
