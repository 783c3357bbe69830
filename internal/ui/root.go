package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/eo-downloader/internal/config"
	"github.com/ytget/eo-downloader/internal/model"
	"github.com/ytget/eo-downloader/internal/session"
)

// RootUI represents the main window
type RootUI struct {
	window   fyne.Window
	settings *config.Settings
	holder   *session.Holder
	loc      *Localization
	ctrl     *Controller
	version  string

	ctx    context.Context
	cancel context.CancelFunc

	bootstrap      *Bootstrap
	settingsDialog *SettingsDialog

	// Year range
	yearsLabel      *widget.Label
	beginLabel      *widget.Label
	endLabel        *widget.Label
	beginSelect     *widget.Select
	endSelect       *widget.Select
	downloadListBtn *widget.Button

	// Filter
	keywordLabel *widget.Label
	keywordEntry *widget.Entry

	// Lists
	pendingLabel   *widget.Label
	doneLabel      *widget.Label
	pendingList    *widget.List
	doneList       *widget.List
	pendingEntries []model.ListEntry
	doneEntries    []model.ListEntry
	selectedBtn    *widget.Button
	allBtn         *widget.Button
	clearBtn       *widget.Button

	toolbarHolder *fyne.Container
	toolbar       *widget.Toolbar

	// Status line
	statusLabel *widget.Label
	statusMu    sync.Mutex
	statusSeq   uint64
}

// NewRootUI creates and initializes the main window contents
func NewRootUI(window fyne.Window, settings *config.Settings, holder *session.Holder, version string) *RootUI {
	localization := NewLocalization()
	localization.SetLanguage(settings.GetLanguage())

	ctx, cancel := context.WithCancel(context.Background())

	ui := &RootUI{
		window:   window,
		settings: settings,
		holder:   holder,
		loc:      localization,
		ctrl:     NewController(localization),
		version:  version,
		ctx:      ctx,
		cancel:   cancel,
	}

	window.SetTitle(localization.GetText(KeyAppTitle))
	window.SetOnClosed(func() {
		log.Printf("Main window closed, cancelling running operations")
		ui.cancel()
	})

	ui.ctrl.SetStatusSink(ui.showStatus)
	holder.OnChange(ui.onSessionChanged)

	ui.settingsDialog = NewSettingsDialog(settings, localization, window)
	ui.bootstrap = NewBootstrap(settings.Config, ui.promptSettings, func(cfg config.Config) error {
		_, err := holder.Reconfigure(cfg)
		return err
	})
	ui.bootstrap.OnReady(func() {
		fyne.Do(func() { ui.setControlsEnabled(true) })
	})

	ui.setupUI()
	return ui
}

// Controller returns the window state
func (ui *RootUI) Controller() *Controller {
	return ui.ctrl
}

// Start shows the welcome message and runs the settings bootstrap.
// Call it after the window is shown so the settings prompt has a parent.
func (ui *RootUI) Start() {
	ui.showStatus(ui.loc.GetText(KeyWelcome))
	ui.bootstrap.Start()
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	minYear, maxYear := ui.ctrl.YearBounds()
	years := make([]string, 0, maxYear-minYear+1)
	for y := minYear; y <= maxYear; y++ {
		years = append(years, strconv.Itoa(y))
	}

	ui.yearsLabel = widget.NewLabel(ui.loc.GetText(KeyYearsHeader))
	ui.beginLabel = widget.NewLabel(ui.loc.GetText(KeyBeginYear))
	ui.endLabel = widget.NewLabel(ui.loc.GetText(KeyEndYear))

	ui.beginSelect = widget.NewSelect(years, nil)
	ui.endSelect = widget.NewSelect(years, nil)
	current := ui.ctrl.Years()
	ui.beginSelect.SetSelected(strconv.Itoa(current.Begin))
	ui.endSelect.SetSelected(strconv.Itoa(current.End))
	ui.beginSelect.OnChanged = ui.onBeginYearChanged
	ui.endSelect.OnChanged = ui.onEndYearChanged

	ui.downloadListBtn = widget.NewButtonWithIcon(ui.loc.GetText(KeyDownloadList), theme.DownloadIcon(), ui.onDownloadList)

	ui.keywordLabel = widget.NewLabel(ui.loc.GetText(KeyKeyword))
	ui.keywordEntry = widget.NewEntry()
	ui.keywordEntry.SetPlaceHolder(ui.loc.GetText(KeyKeywordPlaceholder))
	ui.keywordEntry.OnSubmitted = ui.onKeywordSubmitted

	ui.pendingLabel = widget.NewLabelWithStyle(ui.loc.GetText(KeyNotDownloaded), fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	ui.doneLabel = widget.NewLabelWithStyle(ui.loc.GetText(KeyDownloaded), fyne.TextAlignLeading, fyne.TextStyle{Bold: true})

	ui.pendingList = widget.NewList(
		func() int {
			return len(ui.pendingEntries)
		},
		func() fyne.CanvasObject {
			return widget.NewCheck("", nil)
		},
		ui.updatePendingItem,
	)

	ui.doneList = widget.NewList(
		func() int {
			return len(ui.doneEntries)
		},
		func() fyne.CanvasObject {
			return newDocumentRow()
		},
		ui.updateDoneItem,
	)

	ui.selectedBtn = widget.NewButtonWithIcon(ui.loc.GetText(KeySelected), theme.DownloadIcon(), ui.onDownloadSelected)
	ui.allBtn = widget.NewButtonWithIcon(ui.loc.GetText(KeyAll), theme.ListIcon(), ui.onDownloadAll)
	ui.clearBtn = widget.NewButtonWithIcon(ui.loc.GetText(KeyClearSelection), theme.ContentClearIcon(), ui.onClearSelection)

	ui.toolbar = BuildToolbar(ui.toolbarActions())
	ui.toolbarHolder = container.NewStack(ui.toolbar)

	ui.statusLabel = widget.NewLabel("")
	ui.statusLabel.Truncation = fyne.TextTruncateEllipsis

	yearPickers := container.NewHBox(
		container.NewVBox(ui.beginLabel, container.NewGridWrap(fyne.NewSize(YearSelectWidth, ui.beginSelect.MinSize().Height), ui.beginSelect)),
		container.NewVBox(ui.endLabel, container.NewGridWrap(fyne.NewSize(YearSelectWidth, ui.endSelect.MinSize().Height), ui.endSelect)),
		container.NewVBox(layout.NewSpacer(), ui.downloadListBtn),
	)
	yearsBox := container.NewVBox(ui.yearsLabel, yearPickers)
	filterBox := container.NewVBox(layout.NewSpacer(), container.NewBorder(nil, nil, ui.keywordLabel, nil, ui.keywordEntry))
	top := container.NewVBox(
		ui.toolbarHolder,
		container.NewBorder(nil, nil, yearsBox, nil, filterBox),
		widget.NewSeparator(),
	)

	pendingButtons := container.NewCenter(container.NewHBox(ui.selectedBtn, ui.allBtn, ui.clearBtn))
	pendingPane := container.NewBorder(ui.pendingLabel, pendingButtons, nil, nil, ui.pendingList)
	donePane := container.NewBorder(ui.doneLabel, nil, nil, nil, ui.doneList)

	split := newPaneSplit(pendingPane, donePane)

	ui.window.SetContent(container.NewBorder(top, ui.statusLabel, nil, nil, split))
	ui.window.Resize(fyne.NewSize(WindowMinWidth, WindowMinHeight))

	ui.setControlsEnabled(false)
	log.Printf("UI setup completed successfully")
}

// toolbarActions is the toolbar table: filter, settings, help dropdown, close
func (ui *RootUI) toolbarActions() []ToolbarAction {
	return []ToolbarAction{
		{
			ID:      ActionFilter,
			Label:   ui.loc.GetText(KeyFilter),
			Icon:    theme.SearchIcon(),
			Handler: ui.onToggleFilter,
		},
		{
			ID:      ActionSettings,
			Label:   ui.loc.GetText(KeySettings),
			Icon:    theme.SettingsIcon(),
			Handler: ui.onShowSettings,
		},
		{
			ID:    ActionHelp,
			Label: ui.loc.GetText(KeyHelp),
			Icon:  theme.HelpIcon(),
			Dropdown: []DropdownItem{
				{Label: ui.loc.GetText(KeyHelp), Handler: func() { ShowNotImplementedDialog(ui.window, ui.loc) }},
				{Label: ui.loc.GetText(KeyAbout), Handler: func() { ShowAboutDialog(ui.window, ui.loc, ui.version) }},
			},
		},
		{
			ID:      ActionClose,
			Label:   ui.loc.GetText(KeyClose),
			Icon:    theme.LogoutIcon(),
			Handler: ui.window.Close,
		},
	}
}

// updatePendingItem renders a check row of the not downloaded pane
func (ui *RootUI) updatePendingItem(id widget.ListItemID, item fyne.CanvasObject) {
	if id < 0 || id >= len(ui.pendingEntries) {
		return
	}
	entry := ui.pendingEntries[id]
	check := item.(*widget.Check)

	check.OnChanged = nil
	check.Text = entry.Title
	check.SetChecked(ui.ctrl.IsSelected(entry.ID))
	check.Refresh()
	check.OnChanged = func(checked bool) {
		ui.ctrl.SetSelected(entry.ID, checked)
	}
}

// updateDoneItem renders a row of the downloaded pane
func (ui *RootUI) updateDoneItem(id widget.ListItemID, item fyne.CanvasObject) {
	if id < 0 || id >= len(ui.doneEntries) {
		return
	}
	entry := ui.doneEntries[id]
	row := item.(*documentRow)

	row.Bind(entry.ID, entry.Title)
	row.onTap = func() { ui.doneList.Select(id) }
	row.onDoubleTap = ui.onOpenDocument
	row.onSecondary = ui.showDocumentMenu
}

// refreshLists copies the controller state into the list widgets. UI thread only.
func (ui *RootUI) refreshLists() {
	ui.pendingEntries = ui.ctrl.NotDownloadedEntries()
	ui.doneEntries = ui.ctrl.DownloadedEntries()

	ui.pendingLabel.SetText(fmt.Sprintf("%s (%d)", ui.loc.GetText(KeyNotDownloaded), len(ui.pendingEntries)))
	ui.doneLabel.SetText(fmt.Sprintf("%s (%d)", ui.loc.GetText(KeyDownloaded), len(ui.doneEntries)))

	ui.doneList.UnselectAll()
	ui.pendingList.Refresh()
	ui.doneList.Refresh()
}

// refreshUITexts updates all UI texts with current language
func (ui *RootUI) refreshUITexts() {
	ui.window.SetTitle(ui.loc.GetText(KeyAppTitle))

	ui.yearsLabel.SetText(ui.loc.GetText(KeyYearsHeader))
	ui.beginLabel.SetText(ui.loc.GetText(KeyBeginYear))
	ui.endLabel.SetText(ui.loc.GetText(KeyEndYear))
	ui.downloadListBtn.SetText(ui.loc.GetText(KeyDownloadList))
	ui.keywordLabel.SetText(ui.loc.GetText(KeyKeyword))
	ui.keywordEntry.SetPlaceHolder(ui.loc.GetText(KeyKeywordPlaceholder))
	ui.selectedBtn.SetText(ui.loc.GetText(KeySelected))
	ui.allBtn.SetText(ui.loc.GetText(KeyAll))
	ui.clearBtn.SetText(ui.loc.GetText(KeyClearSelection))

	ui.toolbar = BuildToolbar(ui.toolbarActions())
	ui.toolbarHolder.Objects = []fyne.CanvasObject{ui.toolbar}
	ui.toolbarHolder.Refresh()

	ui.settingsDialog = NewSettingsDialog(ui.settings, ui.loc, ui.window)
	ui.refreshLists()
}

// setControlsEnabled toggles everything that needs a configured session
func (ui *RootUI) setControlsEnabled(enabled bool) {
	buttons := []*widget.Button{ui.downloadListBtn, ui.selectedBtn, ui.allBtn, ui.clearBtn}
	for _, b := range buttons {
		if enabled {
			b.Enable()
		} else {
			b.Disable()
		}
	}
}

// onSessionChanged rebinds the window after a (re)configuration
func (ui *RootUI) onSessionChanged(s *session.Session) {
	if s == nil {
		return
	}
	s.Downloader.SetUpdateCallback(ui.onProgress)
	ui.ctrl.Bind(WorkspaceFromSession(s))
	fyne.Do(ui.refreshLists)
}

// onProgress reports finished documents while a batch runs
func (ui *RootUI) onProgress(p model.DownloadProgress) {
	switch p.State {
	case model.DownloadCompleted, model.DownloadSkipped, model.DownloadFailed:
		ui.showStatus(ui.loc.Textf(KeyDownloadProgress, p.Done, p.Total, p.Title))
		ui.ctrl.Refresh()
		fyne.Do(ui.refreshLists)
	case model.DownloadRetrying:
		log.Printf("Retrying %s (attempt %d): %v", p.DocumentID, p.Attempt, p.Err)
	}
}

func (ui *RootUI) onBeginYearChanged(value string) {
	year, err := strconv.Atoi(value)
	if err != nil {
		return
	}
	ui.syncYearSelects(ui.ctrl.SetBeginYear(year))
}

func (ui *RootUI) onEndYearChanged(value string) {
	year, err := strconv.Atoi(value)
	if err != nil {
		return
	}
	ui.syncYearSelects(ui.ctrl.SetEndYear(year))
}

// syncYearSelects shows the clamped range in both pickers
func (ui *RootUI) syncYearSelects(yr model.YearRange) {
	if begin := strconv.Itoa(yr.Begin); ui.beginSelect.Selected != begin {
		ui.beginSelect.SetSelected(begin)
	}
	if end := strconv.Itoa(yr.End); ui.endSelect.Selected != end {
		ui.endSelect.SetSelected(end)
	}
}

// runAsync runs a long operation off the UI thread and refreshes the lists afterwards
func (ui *RootUI) runAsync(name string, op func(ctx context.Context) error) {
	ui.setControlsEnabled(false)
	go func() {
		err := op(ui.ctx)
		switch {
		case errors.Is(err, ErrBusy):
			ui.showStatus(ui.loc.GetText(KeyBusy))
		case err != nil:
			log.Printf("%s failed: %v", name, err)
		}
		fyne.Do(func() {
			ui.refreshLists()
			ui.setControlsEnabled(ui.ctrl.Workspace() != nil)
		})
	}()
}

func (ui *RootUI) onDownloadList() {
	ui.runAsync("Download list", func(ctx context.Context) error {
		_, err := ui.ctrl.FetchLibrary(ctx)
		return err
	})
}

func (ui *RootUI) onDownloadSelected() {
	ui.runAsync("Download selected", func(ctx context.Context) error {
		_, err := ui.ctrl.DownloadSelected(ctx)
		return err
	})
}

func (ui *RootUI) onDownloadAll() {
	ui.runAsync("Download all", func(ctx context.Context) error {
		_, err := ui.ctrl.DownloadAll(ctx)
		return err
	})
}

func (ui *RootUI) onClearSelection() {
	ui.ctrl.ClearSelection()
	ui.pendingList.Refresh()
}

func (ui *RootUI) onToggleFilter() {
	ui.ctrl.ToggleFilter(ui.keywordEntry.Text)
	ui.refreshLists()
}

func (ui *RootUI) onKeywordSubmitted(keyword string) {
	ui.ctrl.ApplyFilter(keyword)
	ui.refreshLists()
}

// onOpenDocument opens a downloaded document; failures are only logged
func (ui *RootUI) onOpenDocument(id string) {
	go func() {
		_ = ui.ctrl.OpenDocument(id)
	}()
}

// showDocumentMenu shows the context menu of a downloaded row
func (ui *RootUI) showDocumentMenu(id string, pos fyne.Position) {
	menu := fyne.NewMenu("",
		fyne.NewMenuItem(ui.loc.GetText(KeyOpen), func() { ui.onOpenDocument(id) }),
		fyne.NewMenuItem(ui.loc.GetText(KeyShowInFolder), func() {
			go func() {
				_ = ui.ctrl.RevealDocument(id)
			}()
		}),
	)
	widget.ShowPopUpMenuAtPosition(menu, ui.window.Canvas(), pos)
}

// promptSettings shows the settings dialog for the bootstrap. A configure
// error is shown first and the settings dialog opens once it is dismissed.
func (ui *RootUI) promptSettings(err error, done func(saved bool)) {
	ui.settingsDialog.SetAfterSave(nil)
	ui.settingsDialog.SetOnClosed(done)
	if err == nil {
		ui.settingsDialog.Show()
		return
	}

	errDialog := dialog.NewError(fmt.Errorf("%s\n%w", ui.loc.GetText(KeyOpenDirectoryFailed), err), ui.window)
	errDialog.SetOnClosed(ui.settingsDialog.Show)
	errDialog.Show()
}

// onShowSettings shows the settings dialog from the toolbar
func (ui *RootUI) onShowSettings() {
	if ui.bootstrap.State() != BootConfigured {
		return
	}

	ui.settingsDialog.SetAfterSave(func(cfg config.Config) error {
		if ui.ctrl.Busy() {
			return ErrBusy
		}
		_, err := ui.holder.Reconfigure(cfg)
		return err
	})
	ui.settingsDialog.SetOnClosed(func(saved bool) {
		if !saved {
			return
		}
		ui.loc.SetLanguage(ui.settings.GetLanguage())
		ui.refreshUITexts()
		ui.showStatus(ui.loc.GetText(KeySettingsSaved))
	})
	ui.settingsDialog.Show()
}

// showStatus displays a message in the status line for StatusDuration.
// Safe to call from any goroutine.
func (ui *RootUI) showStatus(message string) {
	ui.statusMu.Lock()
	ui.statusSeq++
	seq := ui.statusSeq
	ui.statusMu.Unlock()

	fyne.Do(func() {
		ui.statusLabel.SetText(message)
	})

	time.AfterFunc(StatusDuration, func() {
		ui.statusMu.Lock()
		current := ui.statusSeq == seq
		ui.statusMu.Unlock()
		if current {
			fyne.Do(func() {
				ui.statusLabel.SetText("")
			})
		}
	})
}
