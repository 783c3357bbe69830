package ui

import (
	"log"

	"fyne.io/fyne/v2"
)

const (
	AppIcon = "eo-downloader.png"
)

// LoadAppIcon loads the window icon from the working directory.
// It returns nil when the file is not shipped next to the binary.
func LoadAppIcon() fyne.Resource {
	res, err := fyne.LoadResourceFromPath(AppIcon)
	if err != nil {
		log.Printf("App icon %s not loaded: %v", AppIcon, err)
		return nil
	}
	return res
}
