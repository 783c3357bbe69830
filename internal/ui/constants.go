package ui

import "time"

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Toolbar action ids
const (
	ActionFilter   = "filter"
	ActionSettings = "settings"
	ActionHelp     = "help"
	ActionClose    = "close"
)

// Status line behavior
const (
	StatusDuration = 5 * time.Second
)

// Layout sizing
const (
	WindowMinWidth  float32 = 800
	WindowMinHeight float32 = 560

	YearSelectWidth   float32 = 110
	PendingPaneWeight         = 0.34 // share of the split given to the not downloaded pane

	SettingsDialogWidth  float32 = 520
	SettingsDialogHeight float32 = 300
)

// Text fragments
const (
	ParallelPlaceholder = "1-10"
)
