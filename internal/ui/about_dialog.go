package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// ShowAboutDialog shows the application name, version and a short description
func ShowAboutDialog(window fyne.Window, loc *Localization, version string) {
	title := widget.NewLabelWithStyle(loc.GetText(KeyAppTitle), fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	ver := widget.NewLabelWithStyle("v"+version, fyne.TextAlignCenter, fyne.TextStyle{Italic: true})
	body := widget.NewLabel(loc.GetText(KeyAboutText))
	body.Alignment = fyne.TextAlignCenter

	dialog.ShowCustom(loc.GetText(KeyAbout), "OK", container.NewVBox(title, ver, body), window)
}

// ShowNotImplementedDialog tells the user a menu entry has no behavior yet
func ShowNotImplementedDialog(window fyne.Window, loc *Localization) {
	dialog.ShowInformation(loc.GetText(KeyNotImplementedTitle), loc.GetText(KeyNotImplemented), window)
}
