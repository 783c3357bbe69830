package federalregister

import (
	"strings"

	"github.com/ytget/eo-downloader/internal/model"
)

// documentsPage is one page of /api/v1/documents.json
type documentsPage struct {
	Count       int           `json:"count"`
	Description string        `json:"description"`
	TotalPages  int           `json:"total_pages"`
	NextPageURL string        `json:"next_page_url"`
	Results     []documentDTO `json:"results"`
}

type presidentDTO struct {
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
}

// documentDTO mirrors the fields requested via fields[]
type documentDTO struct {
	DocumentNumber       string        `json:"document_number"`
	ExecutiveOrderNumber *int          `json:"executive_order_number"`
	Title                string        `json:"title"`
	SigningDate          string        `json:"signing_date"`
	PublicationDate      string        `json:"publication_date"`
	Citation             string        `json:"citation"`
	PDFURL               string        `json:"pdf_url"`
	HTMLURL              string        `json:"html_url"`
	President            *presidentDTO `json:"president"`
}

// requestedFields lists the fields[] parameters sent with every catalog query
var requestedFields = []string{
	"document_number",
	"executive_order_number",
	"title",
	"signing_date",
	"publication_date",
	"citation",
	"pdf_url",
	"html_url",
	"president",
}

// toDocument converts the wire record into a catalog record
func (d documentDTO) toDocument() model.Document {
	doc := model.Document{
		ID:              strings.TrimSpace(d.DocumentNumber),
		Title:           strings.TrimSpace(d.Title),
		SigningDate:     d.SigningDate,
		PublicationDate: d.PublicationDate,
		Citation:        d.Citation,
		PDFURL:          d.PDFURL,
		HTMLURL:         d.HTMLURL,
		Status:          model.StatusNotDownloaded,
	}
	if d.ExecutiveOrderNumber != nil {
		doc.ExecutiveOrderNumber = *d.ExecutiveOrderNumber
	}
	if d.President != nil {
		doc.President = d.President.Name
	}
	return doc
}
