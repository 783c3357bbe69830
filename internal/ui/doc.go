package ui

// Package ui contains the Fyne desktop window for browsing and downloading
// executive orders. Controller holds the window state and is driven by
// RootUI; Bootstrap keeps the window disabled until a document directory
// is configured. All UI strings are localized via Localization.
