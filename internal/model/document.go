package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// UnknownFileName is returned for records that have no downloaded file
const UnknownFileName = "Unknown"

// PDFExtension is appended to generated file names
const PDFExtension = ".pdf"

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Document represents a single executive order record in the catalog
type Document struct {
	ID                   string         `json:"document_number"`
	ExecutiveOrderNumber int            `json:"executive_order_number,omitempty"`
	Title                string         `json:"title"`
	President            string         `json:"president,omitempty"`
	SigningDate          string         `json:"signing_date,omitempty"`    // YYYY-MM-DD
	PublicationDate      string         `json:"publication_date,omitempty"` // YYYY-MM-DD
	Citation             string         `json:"citation,omitempty"`
	PDFURL               string         `json:"pdf_url,omitempty"`
	HTMLURL              string         `json:"html_url,omitempty"`
	Status               DocumentStatus `json:"status"`
	FileName             string         `json:"file_name,omitempty"` // relative to the document directory
	DownloadedAt         *time.Time     `json:"downloaded_at,omitempty"`
}

// IsDownloaded returns true if the record points at a local file
func (d *Document) IsDownloaded() bool {
	return d.Status.IsDownloaded() && d.FileName != ""
}

// GetDisplayTitle returns the title shown in the list panes.
// Numbered orders are prefixed with "EO <number>", the signing date is appended when known.
func (d *Document) GetDisplayTitle() string {
	title := strings.Join(strings.Fields(d.Title), " ")
	if title == "" {
		title = d.ID
	}

	var b strings.Builder
	if d.ExecutiveOrderNumber > 0 {
		b.WriteString(fmt.Sprintf("EO %d - ", d.ExecutiveOrderNumber))
	}
	b.WriteString(title)
	if d.SigningDate != "" {
		b.WriteString(fmt.Sprintf(" (%s)", d.SigningDate))
	}
	return b.String()
}

// GetFileName returns the stored file name, or UnknownFileName if the document was never downloaded
func (d *Document) GetFileName() string {
	if !d.IsDownloaded() {
		return UnknownFileName
	}
	return d.FileName
}

// DefaultFileName builds the file name a download of this record is saved under
func (d *Document) DefaultFileName() string {
	id := unsafeFileChars.ReplaceAllString(strings.TrimSpace(d.ID), "_")
	if id == "" {
		id = "document"
	}
	if d.ExecutiveOrderNumber > 0 {
		return fmt.Sprintf("EO_%d_%s%s", d.ExecutiveOrderNumber, id, PDFExtension)
	}
	return id + PDFExtension
}

// SigningYear returns the year part of the signing date, 0 if unknown
func (d *Document) SigningYear() int {
	date := d.SigningDate
	if date == "" {
		date = d.PublicationDate
	}
	if len(date) < 4 {
		return 0
	}
	var year int
	if _, err := fmt.Sscanf(date[:4], "%d", &year); err != nil {
		return 0
	}
	return year
}
