// Package config manages the application's persisted settings.
//
// Settings sit on top of a small key/value Store. The desktop app hands in
// fyne's Preferences, the CLI a YAML-backed FileStore. Keys are grouped under
// one section (Section) and Config returns a versioned snapshot that callers
// pass into constructors instead of reading settings ad hoc.
package config
