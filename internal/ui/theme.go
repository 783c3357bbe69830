package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// AppTheme is the default fyne theme with a navy accent and tighter list spacing
type AppTheme struct {
	base fyne.Theme
}

// NewAppTheme creates the application theme
func NewAppTheme() fyne.Theme {
	return &AppTheme{base: theme.DefaultTheme()}
}

// Color returns theme colors
func (t *AppTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		if variant == theme.VariantDark {
			return color.NRGBA{R: 100, G: 149, B: 237, A: 255}
		}
		return color.NRGBA{R: 0, G: 40, B: 104, A: 255}
	case theme.ColorNameSelection:
		if variant == theme.VariantDark {
			return color.NRGBA{R: 100, G: 149, B: 237, A: 64}
		}
		return color.NRGBA{R: 0, G: 40, B: 104, A: 40}
	case theme.ColorNameError:
		return color.NRGBA{R: 191, G: 10, B: 48, A: 255}
	}
	return t.base.Color(name, variant)
}

// Font returns theme fonts
func (t *AppTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

// Icon returns theme icons
func (t *AppTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

// Size returns theme sizes; list rows and padding are slightly smaller than default
func (t *AppTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 3
	case theme.SizeNameInnerPadding:
		return 6
	case theme.SizeNameText:
		return 13
	case theme.SizeNameSeparatorThickness:
		return 1
	}
	return t.base.Size(name)
}
