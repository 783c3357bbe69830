package main

import (
	"fmt"

	"fyne.io/fyne/v2/app"

	"github.com/ytget/eo-downloader/internal/config"
	"github.com/ytget/eo-downloader/internal/federalregister"
	"github.com/ytget/eo-downloader/internal/session"
	"github.com/ytget/eo-downloader/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.ytget.eo-downloader"
	AppName = "Executive Order Downloader"
)

func main() {
	// Log version information
	fmt.Printf("%s v%s starting...\n", AppName, version)

	myApp := app.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewAppTheme())

	myWindow := myApp.NewWindow(AppName)
	if icon := ui.LoadAppIcon(); icon != nil {
		myWindow.SetIcon(icon)
	}

	// Nothing touches the document directory until the bootstrap has one
	settings := config.NewSettings(myApp.Preferences())
	client := federalregister.NewClient(federalregister.Config{})
	holder := session.NewHolder(session.NewFactory(client))

	rootUI := ui.NewRootUI(myWindow, settings, holder, version)

	// The settings prompt needs a running driver to attach to
	myApp.Lifecycle().SetOnStarted(rootUI.Start)

	myWindow.SetMaster()
	myWindow.ShowAndRun()
}
