package federalregister

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/ytget/eo-downloader/internal/model"
)

// Defaults for Config
const (
	DefaultBaseURL   = "https://www.federalregister.gov/api/v1"
	DefaultTimeout   = 60 * time.Second
	DefaultRateLimit = 2 // requests per second
	DefaultPerPage   = 1000
	DefaultMaxPages  = 50
	DefaultUserAgent = "eo-downloader"
)

// Query values for executive orders
const (
	documentTypePresidential = "PRESDOCU"
	presidentialTypeEO       = "executive_order"
	orderOldestFirst         = "oldest"
)

// HTTPError is returned for non-200 responses
type HTTPError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s (%s)", e.StatusCode, e.Status, e.URL)
}

// IsRetryable reports whether a request that failed with err is worth repeating.
// Client errors (4xx other than 408/429) and cancellation are final.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// Local file errors (permissions, disk full) do not go away on retry
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode == http.StatusRequestTimeout, httpErr.StatusCode == http.StatusTooManyRequests:
			return true
		case httpErr.StatusCode >= 400 && httpErr.StatusCode < 500:
			return false
		}
	}
	return true
}

// Config configures a Client. Zero values fall back to the defaults above.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second
	PerPage   int
	MaxPages  int
	UserAgent string
}

// Client talks to the Federal Register API and downloads document files.
// All requests share one rate limiter.
type Client struct {
	config     Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client, filling in defaults for unset fields
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.RateLimit == 0 {
		config.RateLimit = DefaultRateLimit
	}
	if config.PerPage <= 0 || config.PerPage > DefaultPerPage {
		config.PerPage = DefaultPerPage
	}
	if config.MaxPages <= 0 {
		config.MaxPages = DefaultMaxPages
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
	}
}

// FetchExecutiveOrders lists every executive order signed within yr, following pagination
func (c *Client) FetchExecutiveOrders(ctx context.Context, yr model.YearRange) ([]model.Document, error) {
	pageURL := c.documentsURL(yr)

	var docs []model.Document
	for page := 1; pageURL != ""; page++ {
		if page > c.config.MaxPages {
			log.Printf("Stopping catalog fetch for %s after %d pages", yr, c.config.MaxPages)
			break
		}

		body, err := c.Get(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("fetch executive orders %s page %d: %w", yr, page, err)
		}

		var result documentsPage
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("decode executive orders %s page %d: %w", yr, page, err)
		}

		for _, dto := range result.Results {
			doc := dto.toDocument()
			if doc.ID == "" {
				continue
			}
			docs = append(docs, doc)
		}

		log.Printf("Fetched page %d/%d of executive orders for %s (%d records)", page, result.TotalPages, yr, len(result.Results))
		pageURL = result.NextPageURL
	}

	return docs, nil
}

// documentsURL builds the first catalog page URL for yr
func (c *Client) documentsURL(yr model.YearRange) string {
	q := url.Values{}
	q.Add("conditions[type][]", documentTypePresidential)
	q.Add("conditions[presidential_document_type][]", presidentialTypeEO)
	q.Set("conditions[signing_date][gte]", fmt.Sprintf("%04d-01-01", yr.Begin))
	q.Set("conditions[signing_date][lte]", fmt.Sprintf("%04d-12-31", yr.End))
	for _, field := range requestedFields {
		q.Add("fields[]", field)
	}
	q.Set("per_page", strconv.Itoa(c.config.PerPage))
	q.Set("order", orderOldestFirst)

	return c.config.BaseURL + "/documents.json?" + q.Encode()
}

// newRequest waits for the rate limiter and builds a request with the configured User-Agent
func (c *Client) newRequest(ctx context.Context, method, rawURL string) (*http.Request, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	return req, nil
}

// Get performs a GET request and returns the response body
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, rawURL)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{URL: rawURL, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	return io.ReadAll(resp.Body)
}

// ProgressWriter wraps a writer to track download progress
type ProgressWriter struct {
	Writer   io.Writer
	Total    int64
	Written  int64
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// DownloadFile streams rawURL into destPath. The file is created or truncated;
// on failure the partial file is removed.
func (c *Client) DownloadFile(ctx context.Context, rawURL, destPath string, onProgress func(written, total int64)) error {
	req, err := c.newRequest(ctx, http.MethodGet, rawURL)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &HTTPError{URL: rawURL, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	file, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}

	var writer io.Writer = file
	if onProgress != nil {
		writer = &ProgressWriter{
			Writer:   file,
			Total:    resp.ContentLength,
			OnUpdate: onProgress,
		}
	}

	_, copyErr := io.Copy(writer, resp.Body)
	closeErr := file.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(destPath)
		if copyErr != nil {
			return copyErr
		}
		return closeErr
	}
	return nil
}
