// Package federalregister is a small client for the Federal Register API
// (https://www.federalregister.gov/developers/documentation/api/v1).
//
// It lists executive orders signed in a year range, following pagination,
// streams document PDFs to disk and, when a catalog record lacks a PDF link,
// scrapes the document's HTML page for one. Every request goes through a
// shared rate limiter.
//
//	client := federalregister.NewClient(federalregister.Config{})
//	docs, err := client.FetchExecutiveOrders(ctx, model.NewYearRange(2020, 2024))
package federalregister
