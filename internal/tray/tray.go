// Package tray provides the system tray interface for the desktop vision
// test rig: one toggle per vision processor plus a last-detection line.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/XBOT-FTC/2939-TRC-Lib/internal/vision"
)

// Tray represents the system tray application bound to a vision facade.
type Tray struct {
	vision *vision.Vision
	onQuit func()
	mu     sync.RWMutex

	// Menu items stored for later updates
	menuAprilTag *systray.MenuItem
	menuRedBlob  *systray.MenuItem
	menuBlueBlob *systray.MenuItem
	menuObjDet   *systray.MenuItem
	menuLastSeen *systray.MenuItem
}

// New creates a new Tray bound to the given vision facade.
func New(v *vision.Vision) *Tray {
	return &Tray{vision: v}
}

// OnQuit sets the callback function to be called when the quit menu item
// is clicked.
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

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("RoboVision")
	systray.SetTooltip("Robot Vision Test Rig")

	t.menuAprilTag = systray.AddMenuItem(toggleTitle("AprilTag", false), "Toggle AprilTag vision")
	t.menuRedBlob = systray.AddMenuItem(toggleTitle("RedBlob", false), "Toggle red blob vision")
	t.menuBlueBlob = systray.AddMenuItem(toggleTitle("BlueBlob", false), "Toggle blue blob vision")
	t.menuObjDet = systray.AddMenuItem(toggleTitle("ObjectDetector", false), "Toggle neural detection")
	systray.AddSeparator()

	t.menuLastSeen = systray.AddMenuItem("Last: none", "Last detection")
	t.menuLastSeen.Disable()
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit the vision rig")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuAprilTag.ClickedCh:
				t.vision.SetAprilTagEnabled(!t.vision.IsAprilTagEnabled())
				t.menuAprilTag.SetTitle(toggleTitle("AprilTag", t.vision.IsAprilTagEnabled()))
			case <-t.menuRedBlob.ClickedCh:
				t.vision.SetRedBlobEnabled(!t.vision.IsRedBlobEnabled())
				t.menuRedBlob.SetTitle(toggleTitle("RedBlob", t.vision.IsRedBlobEnabled()))
			case <-t.menuBlueBlob.ClickedCh:
				t.vision.SetBlueBlobEnabled(!t.vision.IsBlueBlobEnabled())
				t.menuBlueBlob.SetTitle(toggleTitle("BlueBlob", t.vision.IsBlueBlobEnabled()))
			case <-t.menuObjDet.ClickedCh:
				t.vision.SetObjectDetectionEnabled(!t.vision.IsObjectDetectionEnabled())
				t.menuObjDet.SetTitle(toggleTitle("ObjectDetector", t.vision.IsObjectDetectionEnabled()))
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {
	// Cleanup resources if needed
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

// SetLastDetection updates the last detection display in the menu.
func (t *Tray) SetLastDetection(label string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLastSeen != nil {
		if label == "" {
			t.menuLastSeen.SetTitle("Last: none")
		} else {
			t.menuLastSeen.SetTitle("Last: " + label)
		}
	}
}

func toggleTitle(name string, enabled bool) string {
	if enabled {
		return "● " + name
	}
	return "○ " + name
}
