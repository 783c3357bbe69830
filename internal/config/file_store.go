package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the settings file name used by the CLI
const DefaultFileName = "eo-downloader.yaml"

// defaultSection holds keys that carry no "section." prefix
const defaultSection = "general"

// FileStore is a Store persisted as a sectioned YAML document:
//
//	exec_orders:
//	  document_directory: /home/user/ExecutiveOrders
//
// Changes stay in memory until Save is called.
type FileStore struct {
	path     string
	mu       sync.RWMutex
	sections map[string]map[string]string
}

// DefaultFilePath returns the settings file location under the user config dir
func DefaultFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(dir, "eo-downloader", DefaultFileName), nil
}

// OpenFileStore loads the YAML file at path. A missing file yields an empty store.
func OpenFileStore(path string) (*FileStore, error) {
	fs := &FileStore{
		path:     path,
		sections: make(map[string]map[string]string),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fs, nil
		}
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &fs.sections); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	if fs.sections == nil {
		fs.sections = make(map[string]map[string]string)
	}
	return fs, nil
}

// Path returns the backing file path
func (fs *FileStore) Path() string {
	return fs.path
}

// String returns the value stored under "section.key", empty if missing
func (fs *FileStore) String(key string) string {
	section, name := splitKey(key)

	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.sections[section][name]
}

// SetString stores value under "section.key"
func (fs *FileStore) SetString(key string, value string) {
	section, name := splitKey(key)

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.sections[section] == nil {
		fs.sections[section] = make(map[string]string)
	}
	fs.sections[section][name] = value
}

// Int returns the integer stored under key, 0 if missing or malformed
func (fs *FileStore) Int(key string) int {
	value, err := strconv.Atoi(strings.TrimSpace(fs.String(key)))
	if err != nil {
		return 0
	}
	return value
}

// SetInt stores an integer under key
func (fs *FileStore) SetInt(key string, value int) {
	fs.SetString(key, strconv.Itoa(value))
}

// Save writes the store to disk, creating the parent directory if needed
func (fs *FileStore) Save() error {
	fs.mu.RLock()
	data, err := yaml.Marshal(fs.sections)
	fs.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(fs.path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace settings file: %w", err)
	}
	return nil
}

func splitKey(key string) (string, string) {
	if i := strings.Index(key, "."); i > 0 {
		return key[:i], key[i+1:]
	}
	return defaultSection, key
}
