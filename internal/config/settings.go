package config

import (
	"fmt"
	"strings"
	"sync"
)

// Store is the key/value backend for settings.
// fyne.Preferences satisfies it for the desktop app, FileStore for the CLI.
type Store interface {
	String(key string) string
	SetString(key string, value string)
	Int(key string) int
	SetInt(key string, value int)
}

// Section groups every key this application owns
const Section = "exec_orders"

// Settings keys, qualified with Section
const (
	KeyDocumentDir = Section + ".document_directory"
	KeyMaxParallel = Section + ".max_parallel_downloads"
	KeyLanguage    = Section + ".app_language"
)

// Default values
const (
	DefaultMaxParallel = 2
	DefaultLanguage    = "system"
	MinMaxParallel     = 1
	MaxMaxParallel     = 10
)

// Config is an immutable snapshot of the settings. Version increases on every
// change made through Settings, so consumers can tell whether a rebuild is due.
type Config struct {
	Version     int
	DocumentDir string
	MaxParallel int
	Language    string
}

// HasDocumentDir reports whether a storage directory is configured
func (c Config) HasDocumentDir() bool {
	return strings.TrimSpace(c.DocumentDir) != ""
}

// SameSession reports whether c and other build the same session: equal
// document directory and parallelism. Version and Language are ignored.
func (c Config) SameSession(other Config) bool {
	return strings.TrimSpace(c.DocumentDir) == strings.TrimSpace(other.DocumentDir) &&
		c.MaxParallel == other.MaxParallel
}

// Settings manages application configuration
type Settings struct {
	store   Store
	mu      sync.Mutex
	version int
}

// NewSettings creates a new settings manager
func NewSettings(store Store) *Settings {
	return &Settings{store: store, version: 1}
}

// Config returns the current snapshot
func (s *Settings) Config() Config {
	s.mu.Lock()
	version := s.version
	s.mu.Unlock()

	return Config{
		Version:     version,
		DocumentDir: s.GetDocumentDirectory(),
		MaxParallel: s.GetMaxParallelDownloads(),
		Language:    s.GetLanguage(),
	}
}

// GetDocumentDirectory returns the configured document directory, empty if unset
func (s *Settings) GetDocumentDirectory() string {
	return strings.TrimSpace(s.store.String(KeyDocumentDir))
}

// SetDocumentDirectory sets the document directory
func (s *Settings) SetDocumentDirectory(dir string) error {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return fmt.Errorf("document directory must not be empty")
	}
	s.store.SetString(KeyDocumentDir, dir)
	s.bump()
	return nil
}

// GetMaxParallelDownloads returns the maximum number of parallel downloads
func (s *Settings) GetMaxParallelDownloads() int {
	value := s.store.Int(KeyMaxParallel)
	if value <= 0 {
		return DefaultMaxParallel
	}
	return clampParallel(value)
}

// SetMaxParallelDownloads sets the maximum number of parallel downloads
func (s *Settings) SetMaxParallelDownloads(count int) {
	s.store.SetInt(KeyMaxParallel, clampParallel(count))
	s.bump()
}

// GetLanguage returns the configured language
func (s *Settings) GetLanguage() string {
	lang := s.store.String(KeyLanguage)
	if lang == "" {
		return DefaultLanguage
	}
	return lang
}

// SetLanguage sets the application language
func (s *Settings) SetLanguage(lang string) {
	s.store.SetString(KeyLanguage, lang)
	s.bump()
}

// GetLanguageOptions returns available language options
func (s *Settings) GetLanguageOptions() map[string]string {
	return map[string]string{
		"system": "System Default",
		"en":     "English",
		"ru":     "Русский",
	}
}

func (s *Settings) bump() {
	s.mu.Lock()
	s.version++
	s.mu.Unlock()
}

func clampParallel(count int) int {
	if count < MinMaxParallel {
		return MinMaxParallel
	}
	if count > MaxMaxParallel {
		return MaxMaxParallel
	}
	return count
}
