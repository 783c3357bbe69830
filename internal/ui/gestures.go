package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// documentRow is a list row for the downloaded pane. It forwards taps to
// the list selection and reports double and secondary taps with its id.
type documentRow struct {
	widget.BaseWidget
	label *widget.Label

	id          string
	onTap       func()
	onDoubleTap func(id string)
	onSecondary func(id string, pos fyne.Position)
}

func newDocumentRow() *documentRow {
	row := &documentRow{label: widget.NewLabel("")}
	row.label.Truncation = fyne.TextTruncateEllipsis
	row.ExtendBaseWidget(row)
	return row
}

// Bind points the row at a document
func (r *documentRow) Bind(id, title string) {
	r.id = id
	r.label.SetText(title)
}

// CreateRenderer implements fyne.Widget
func (r *documentRow) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(r.label)
}

// Tapped implements fyne.Tappable
func (r *documentRow) Tapped(*fyne.PointEvent) {
	if r.onTap != nil {
		r.onTap()
	}
}

// DoubleTapped implements fyne.DoubleTappable
func (r *documentRow) DoubleTapped(*fyne.PointEvent) {
	if r.onDoubleTap != nil {
		r.onDoubleTap(r.id)
	}
}

// TappedSecondary implements fyne.SecondaryTappable
func (r *documentRow) TappedSecondary(ev *fyne.PointEvent) {
	if r.onSecondary != nil {
		r.onSecondary(r.id, ev.AbsolutePosition)
	}
}
