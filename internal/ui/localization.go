package ui

import (
	"fmt"
	"os"
	"strings"
)

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle = "app_title"

	// Main window
	KeyYearsHeader        = "years_header"
	KeyBeginYear          = "begin_year"
	KeyEndYear            = "end_year"
	KeyDownloadList       = "download_list"
	KeyKeyword            = "keyword"
	KeyKeywordPlaceholder = "keyword_placeholder"
	KeyNotDownloaded      = "not_downloaded"
	KeyDownloaded         = "downloaded"
	KeySelected           = "selected"
	KeyAll                = "all"
	KeyClearSelection     = "clear_selection"
	KeyOpen               = "open"
	KeyShowInFolder       = "show_in_folder"

	// Toolbar
	KeyFilter   = "filter"
	KeySettings = "settings"
	KeyHelp     = "help"
	KeyAbout    = "about"
	KeyClose    = "close"

	// Status line
	KeyWelcome           = "welcome"
	KeyNoItemsSelected   = "no_items_selected"
	KeyDownloadingFiles  = "downloading_files"
	KeyDownloadProgress  = "download_progress"
	KeyDownloadFailed    = "download_failed"
	KeyFetchingList      = "fetching_list"
	KeyFetchedList       = "fetched_list"
	KeyFetchFailed       = "fetch_failed"
	KeySaveLibraryFailed = "save_library_failed"
	KeyFilterResults     = "filter_results"
	KeyFilterCleared     = "filter_cleared"
	KeyBusy              = "busy"

	// Dialogs
	KeyNotImplementedTitle = "not_implemented_title"
	KeyNotImplemented      = "not_implemented"
	KeyRequiredFields      = "required_fields"
	KeyDocumentDirectory   = "document_directory"
	KeyMaxParallel         = "max_parallel"
	KeyLanguage            = "language"
	KeySave                = "save"
	KeyCancel              = "cancel"
	KeyBrowse              = "browse"
	KeySettingsSaved       = "settings_saved"
	KeySaveSettingsFailed  = "save_settings_failed"
	KeyDirectoryRequired   = "directory_required"
	KeyOpenDirectoryFailed = "open_directory_failed"
	KeyAboutText           = "about_text"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "en",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" || lang == "" {
		lang = systemLanguage()
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// systemLanguage derives a language code from the POSIX locale variables
func systemLanguage() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if value := os.Getenv(key); value != "" {
			if len(value) >= 2 {
				return strings.ToLower(value[:2])
			}
		}
	}
	return "en"
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if texts, exists := l.texts["en"]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Final fallback - return key itself
	return key
}

// Textf formats the localized text for key with args
func (l *Localization) Textf(key string, args ...any) string {
	return fmt.Sprintf(l.GetText(key), args...)
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"ru": "Русский",
	}
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	// English texts
	l.texts["en"] = map[string]string{
		KeyAppTitle: "ChatRecall Executive Order Downloader",

		KeyYearsHeader:        "Years to download (1937 to current):",
		KeyBeginYear:          "Beg year:",
		KeyEndYear:            "End year:",
		KeyDownloadList:       "Download List",
		KeyKeyword:            "Keyword",
		KeyKeywordPlaceholder: "Filter titles, press Enter or the filter button",
		KeyNotDownloaded:      "Not Downloaded",
		KeyDownloaded:         "Downloaded",
		KeySelected:           "Selected",
		KeyAll:                "All",
		KeyClearSelection:     "Clear Selection",
		KeyOpen:               "Open",
		KeyShowInFolder:       "Show in Folder",

		KeyFilter:   "Toggle Filter",
		KeySettings: "Settings",
		KeyHelp:     "Help",
		KeyAbout:    "About",
		KeyClose:    "Close Program",

		KeyWelcome:           "Welcome to ChatRecall Executive Orders",
		KeyNoItemsSelected:   "No items selected for download.",
		KeyDownloadingFiles:  "Downloading %d files...",
		KeyDownloadProgress:  "%d of %d done: %s",
		KeyDownloadFailed:    "Download failed: %v",
		KeyFetchingList:      "Downloading list for %s...",
		KeyFetchedList:       "Fetched %d executive orders for %s (%d new)",
		KeyFetchFailed:       "Failed to download list: %v",
		KeySaveLibraryFailed: "Failed to save library: %v",
		KeyFilterResults:     "%d titles match %q",
		KeyFilterCleared:     "Filter cleared",
		KeyBusy:              "Please wait for the current operation to finish.",

		KeyNotImplementedTitle: "Not Implemented",
		KeyNotImplemented:      "This feature is not yet implemented.",
		KeyRequiredFields:      "Required fields",
		KeyDocumentDirectory:   "Executive Order Directory",
		KeyMaxParallel:         "Max Parallel Downloads",
		KeyLanguage:            "Language",
		KeySave:                "Save",
		KeyCancel:              "Cancel",
		KeyBrowse:              "Browse",
		KeySettingsSaved:       "Settings saved successfully!",
		KeySaveSettingsFailed:  "Failed to save settings.",
		KeyDirectoryRequired:   "Choose a directory to store executive orders",
		KeyOpenDirectoryFailed: "Could not use this directory. Choose another one or fix the library file.",
		KeyAboutText:           "Browse, filter and download U.S. Executive Orders\npublished in the Federal Register.",
	}

	// Russian texts
	l.texts["ru"] = map[string]string{
		KeyAppTitle: "ChatRecall: загрузчик указов",

		KeyYearsHeader:        "Годы для загрузки (с 1937 по текущий):",
		KeyBeginYear:          "Начальный год:",
		KeyEndYear:            "Конечный год:",
		KeyDownloadList:       "Загрузить список",
		KeyKeyword:            "Ключевое слово",
		KeyKeywordPlaceholder: "Фильтр по названию, Enter или кнопка фильтра",
		KeyNotDownloaded:      "Не загружены",
		KeyDownloaded:         "Загружены",
		KeySelected:           "Выбранные",
		KeyAll:                "Все",
		KeyClearSelection:     "Снять выделение",
		KeyOpen:               "Открыть",
		KeyShowInFolder:       "Показать в папке",

		KeyFilter:   "Фильтр",
		KeySettings: "Настройки",
		KeyHelp:     "Справка",
		KeyAbout:    "О программе",
		KeyClose:    "Закрыть программу",

		KeyWelcome:           "Добро пожаловать в ChatRecall Executive Orders",
		KeyNoItemsSelected:   "Не выбрано ни одного документа для загрузки.",
		KeyDownloadingFiles:  "Загрузка файлов: %d...",
		KeyDownloadProgress:  "Готово %d из %d: %s",
		KeyDownloadFailed:    "Ошибка загрузки: %v",
		KeyFetchingList:      "Загрузка списка за %s...",
		KeyFetchedList:       "Получено указов: %d за %s (новых: %d)",
		KeyFetchFailed:       "Не удалось загрузить список: %v",
		KeySaveLibraryFailed: "Не удалось сохранить библиотеку: %v",
		KeyFilterResults:     "Найдено названий: %d по запросу %q",
		KeyFilterCleared:     "Фильтр сброшен",
		KeyBusy:              "Дождитесь завершения текущей операции.",

		KeyNotImplementedTitle: "Не реализовано",
		KeyNotImplemented:      "Эта функция пока не реализована.",
		KeyRequiredFields:      "Обязательные поля",
		KeyDocumentDirectory:   "Папка для указов",
		KeyMaxParallel:         "Макс. параллельных загрузок",
		KeyLanguage:            "Язык",
		KeySave:                "Сохранить",
		KeyCancel:              "Отмена",
		KeyBrowse:              "Обзор",
		KeySettingsSaved:       "Настройки успешно сохранены!",
		KeySaveSettingsFailed:  "Не удалось сохранить настройки.",
		KeyDirectoryRequired:   "Выберите папку для хранения указов",
		KeyOpenDirectoryFailed: "Не удалось использовать эту папку. Выберите другую или исправьте файл библиотеки.",
		KeyAboutText:           "Просмотр, фильтрация и загрузка указов президента США,\nопубликованных в Federal Register.",
	}
}
