package ui

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/eo-downloader/internal/config"
	"github.com/ytget/eo-downloader/internal/platform"
)

// SettingsDialog represents the settings configuration dialog
type SettingsDialog struct {
	settings *config.Settings
	loc      *Localization
	window   fyne.Window
	dialog   *dialog.ConfirmDialog

	// UI components
	documentDirEntry *widget.Entry
	maxParallelEntry *widget.Entry
	languageSelect   *widget.Select
	languageCodes    map[string]string // display name -> code

	onClosed  func(saved bool)
	afterSave func(cfg config.Config) error
}

// NewSettingsDialog creates a new settings dialog
func NewSettingsDialog(settings *config.Settings, loc *Localization, window fyne.Window) *SettingsDialog {
	sd := &SettingsDialog{
		settings: settings,
		loc:      loc,
		window:   window,
	}

	sd.createUI()
	return sd
}

// SetOnClosed sets the callback run after the dialog closes. saved is false
// for Cancel and for a failed save.
func (sd *SettingsDialog) SetOnClosed(fn func(saved bool)) {
	sd.onClosed = fn
}

// SetAfterSave sets a hook run with the new configuration after it is stored.
// A hook error rolls the settings back and counts as a failed save.
func (sd *SettingsDialog) SetAfterSave(fn func(cfg config.Config) error) {
	sd.afterSave = fn
}

// Show displays the settings dialog
func (sd *SettingsDialog) Show() {
	sd.loadCurrentSettings()
	sd.dialog.Show()
}

// createUI creates the settings dialog UI
func (sd *SettingsDialog) createUI() {
	// Document directory selection
	sd.documentDirEntry = widget.NewEntry()
	sd.documentDirEntry.SetPlaceHolder(sd.loc.GetText(KeyDirectoryRequired))

	browseDirBtn := widget.NewButton(sd.loc.GetText(KeyBrowse), sd.onBrowseDirectory)
	documentDirRow := container.NewBorder(nil, nil, nil, browseDirBtn, sd.documentDirEntry)

	// Max parallel downloads
	sd.maxParallelEntry = widget.NewEntry()
	sd.maxParallelEntry.SetPlaceHolder(ParallelPlaceholder)

	// Language selection
	sd.languageCodes = make(map[string]string)
	options := sd.settings.GetLanguageOptions()
	codes := make([]string, 0, len(options))
	for code := range options {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	labels := make([]string, 0, len(codes))
	for _, code := range codes {
		sd.languageCodes[options[code]] = code
		labels = append(labels, options[code])
	}
	sd.languageSelect = widget.NewSelect(labels, nil)

	form := container.NewVBox(
		widget.NewLabelWithStyle(sd.loc.GetText(KeyRequiredFields), fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel(sd.loc.GetText(KeyDocumentDirectory)),
		documentDirRow,

		widget.NewSeparator(),

		widget.NewLabel(sd.loc.GetText(KeyMaxParallel)),
		sd.maxParallelEntry,
		widget.NewLabel(sd.loc.GetText(KeyLanguage)),
		sd.languageSelect,
	)

	sd.dialog = dialog.NewCustomConfirm(
		sd.loc.GetText(KeySettings),
		sd.loc.GetText(KeySave),
		sd.loc.GetText(KeyCancel),
		form,
		sd.onConfirm,
		sd.window,
	)

	sd.dialog.Resize(fyne.NewSize(SettingsDialogWidth, SettingsDialogHeight))
}

// loadCurrentSettings loads current settings into the UI
func (sd *SettingsDialog) loadCurrentSettings() {
	dir := sd.settings.GetDocumentDirectory()
	if dir == "" {
		if suggested, err := platform.GetHomeDocumentsDir(); err == nil {
			dir = suggested
		}
	}
	sd.documentDirEntry.SetText(dir)
	sd.maxParallelEntry.SetText(strconv.Itoa(sd.settings.GetMaxParallelDownloads()))

	lang := sd.settings.GetLanguage()
	for label, code := range sd.languageCodes {
		if code == lang {
			sd.languageSelect.SetSelected(label)
		}
	}
}

// onBrowseDirectory handles directory browsing
func (sd *SettingsDialog) onBrowseDirectory() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		sd.documentDirEntry.SetText(uri.Path())
	}, sd.window)
}

// onConfirm handles Save and Cancel
func (sd *SettingsDialog) onConfirm(confirmed bool) {
	if !confirmed {
		sd.closed(false)
		return
	}

	lang := sd.languageCodes[sd.languageSelect.Selected]
	if err := sd.Apply(sd.documentDirEntry.Text, sd.maxParallelEntry.Text, lang); err != nil {
		log.Printf("Failed to save settings: %v", err)
		dialog.ShowError(fmt.Errorf("%s\n%w", sd.loc.GetText(KeySaveSettingsFailed), err), sd.window)
		sd.closed(false)
		return
	}

	log.Printf("Settings saved: %+v", sd.settings.Config())
	sd.closed(true)
}

// Apply validates and stores the dialog values
func (sd *SettingsDialog) Apply(dir, maxParallel, lang string) error {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return errors.New(sd.loc.GetText(KeyDirectoryRequired))
	}

	parallel := sd.settings.GetMaxParallelDownloads()
	if text := strings.TrimSpace(maxParallel); text != "" {
		n, err := strconv.Atoi(text)
		if err != nil {
			return fmt.Errorf("invalid max parallel downloads %q: %w", text, err)
		}
		parallel = n
	}

	if err := platform.CreateDirectoryIfNotExists(dir); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	previous := sd.settings.Config()

	if err := sd.settings.SetDocumentDirectory(dir); err != nil {
		return err
	}
	sd.settings.SetMaxParallelDownloads(parallel)
	if lang != "" {
		sd.settings.SetLanguage(lang)
	}

	if sd.afterSave == nil {
		return nil
	}
	if err := sd.afterSave(sd.settings.Config()); err != nil {
		sd.restore(previous)
		return err
	}
	return nil
}

// restore writes a previous snapshot back
func (sd *SettingsDialog) restore(previous config.Config) {
	if previous.HasDocumentDir() {
		if err := sd.settings.SetDocumentDirectory(previous.DocumentDir); err != nil {
			log.Printf("Failed to restore document directory: %v", err)
		}
	}
	sd.settings.SetMaxParallelDownloads(previous.MaxParallel)
	sd.settings.SetLanguage(previous.Language)
}

func (sd *SettingsDialog) closed(saved bool) {
	if sd.onClosed != nil {
		sd.onClosed(saved)
	}
}
