package ui

import (
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// DropdownItem is one entry of a toolbar dropdown
type DropdownItem struct {
	Label   string
	Handler func()
}

// ToolbarAction describes one toolbar slot. An action with Dropdown items
// opens a menu instead of calling Handler.
type ToolbarAction struct {
	ID       string
	Label    string
	Icon     fyne.Resource
	Handler  func()
	Dropdown []DropdownItem
}

// IsDropdown reports whether the action opens a menu
func (a ToolbarAction) IsDropdown() bool {
	return len(a.Dropdown) > 0
}

// BuildToolbar turns an action table into a toolbar. Actions without a
// handler or dropdown items are skipped.
func BuildToolbar(actions []ToolbarAction) *widget.Toolbar {
	toolbar := widget.NewToolbar()
	for _, action := range actions {
		switch {
		case action.IsDropdown():
			toolbar.Append(newDropdownToolbarItem(action))
		case action.Handler != nil:
			toolbar.Append(widget.NewToolbarAction(action.Icon, action.Handler))
		default:
			log.Printf("Toolbar action %q has no handler, skipping", action.ID)
		}
	}
	return toolbar
}

// dropdownToolbarItem is a toolbar button that pops up a menu below itself
type dropdownToolbarItem struct {
	action ToolbarAction
	button *widget.Button
}

func newDropdownToolbarItem(action ToolbarAction) *dropdownToolbarItem {
	item := &dropdownToolbarItem{action: action}
	item.button = widget.NewButtonWithIcon("", action.Icon, item.showMenu)
	item.button.Importance = widget.LowImportance
	return item
}

// ToolbarObject implements widget.ToolbarItem
func (d *dropdownToolbarItem) ToolbarObject() fyne.CanvasObject {
	return d.button
}

// menu builds the dropdown menu from the action table
func (d *dropdownToolbarItem) menu() *fyne.Menu {
	items := make([]*fyne.MenuItem, 0, len(d.action.Dropdown))
	for _, entry := range d.action.Dropdown {
		items = append(items, fyne.NewMenuItem(entry.Label, entry.Handler))
	}
	return fyne.NewMenu(d.action.Label, items...)
}

func (d *dropdownToolbarItem) showMenu() {
	app := fyne.CurrentApp()
	if app == nil {
		return
	}
	c := app.Driver().CanvasForObject(d.button)
	if c == nil {
		return
	}
	widget.ShowPopUpMenuAtRelativePosition(d.menu(), c, fyne.NewPos(0, d.button.Size().Height), d.button)
}
