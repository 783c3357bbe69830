package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
)

// isMobileDevice checks if the app is running on a phone or tablet
func isMobileDevice() bool {
	return fyne.CurrentDevice().IsMobile()
}

// newPaneSplit places the two document panes side by side on desktop and
// stacks them on mobile devices held in portrait.
func newPaneSplit(pending, done fyne.CanvasObject) *container.Split {
	if isMobileDevice() && !fyne.IsHorizontal(fyne.CurrentDevice().Orientation()) {
		split := container.NewVSplit(pending, done)
		split.Offset = 0.5
		return split
	}
	split := container.NewHSplit(pending, done)
	split.Offset = PendingPaneWeight
	return split
}
