package federalregister

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// pdfLinkSelectors are tried in order on a document's HTML page
var pdfLinkSelectors = []string{
	"a.pdf",
	"a[href*='/pdf/']",
	"a[href$='.pdf']",
}

// ResolvePDFURL scrapes the document page at pageURL for its PDF link.
// Used for records whose catalog entry carries no pdf_url.
func (c *Client) ResolvePDFURL(ctx context.Context, pageURL string) (string, error) {
	if pageURL == "" {
		return "", fmt.Errorf("document has no page URL")
	}

	body, err := c.Get(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("fetch document page: %w", err)
	}

	return findPDFLink(body, pageURL)
}

// findPDFLink returns the first PDF link in html, resolved against base
func findPDFLink(html []byte, base string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse document page: %w", err)
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid page URL %q: %w", base, err)
	}

	for _, selector := range pdfLinkSelectors {
		var found string
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			href, ok := s.Attr("href")
			href = strings.TrimSpace(href)
			if !ok || href == "" || strings.HasPrefix(href, "#") {
				return true
			}
			ref, err := url.Parse(href)
			if err != nil {
				return true
			}
			found = baseURL.ResolveReference(ref).String()
			return false
		})
		if found != "" {
			return found, nil
		}
	}

	return "", fmt.Errorf("no PDF link found on %s", base)
}
