package download

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ytget/eo-downloader/internal/federalregister"
	"github.com/ytget/eo-downloader/internal/model"
)

// Retry defaults
const (
	DefaultMaxRetries    = 3
	DefaultRetryCooldown = 500 * time.Millisecond
	DefaultRetryExponent = 2.0
)

// partialSuffix marks files that are still being written
const partialSuffix = ".part"

// ErrNotInCatalog is reported for ids the catalog does not know
var ErrNotInCatalog = errors.New("document not in catalog")

// Service handles download operations
type Service struct {
	catalog     Catalog
	fetcher     Fetcher
	docDir      string
	maxParallel int

	maxRetries    int
	retryCooldown time.Duration
	retryExponent float64

	onUpdate func(model.DownloadProgress) // callback for UI updates
	mu       sync.RWMutex
}

// NewService creates a new download service writing into docDir
func NewService(docDir string, maxParallel int, catalog Catalog, fetcher Fetcher) *Service {
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &Service{
		catalog:       catalog,
		fetcher:       fetcher,
		docDir:        docDir,
		maxParallel:   maxParallel,
		maxRetries:    DefaultMaxRetries,
		retryCooldown: DefaultRetryCooldown,
		retryExponent: DefaultRetryExponent,
	}
}

// SetUpdateCallback sets the callback function for progress updates
func (s *Service) SetUpdateCallback(callback func(model.DownloadProgress)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = callback
}

// SetMaxParallelDownloads sets the maximum number of parallel downloads
func (s *Service) SetMaxParallelDownloads(max int) {
	if max < 1 {
		max = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxParallel = max
}

// SetRetryPolicy configures how often and how patiently failed downloads are repeated
func (s *Service) SetRetryPolicy(maxRetries int, cooldown time.Duration, exponent float64) {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if exponent < 1 {
		exponent = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxRetries = maxRetries
	s.retryCooldown = cooldown
	s.retryExponent = exponent
}

// DocumentDirectory returns where files are written
func (s *Service) DocumentDirectory() string {
	return s.docDir
}

// DownloadFromList downloads every id, then saves the library file at libraryPath.
// Individual failures are collected in the result and do not stop the batch.
// The returned error covers saving and cancellation only.
func (s *Service) DownloadFromList(ctx context.Context, ids []string, libraryPath string) (*model.BatchResult, error) {
	ids = cleanIDs(ids)
	result := model.NewBatchResult(generateBatchID(), ids)
	if len(ids) == 0 {
		result.FinishedAt = time.Now()
		return result, nil
	}

	if err := os.MkdirAll(s.docDir, 0755); err != nil {
		return result, fmt.Errorf("create document directory: %w", err)
	}

	s.mu.RLock()
	limit := s.maxParallel
	s.mu.RUnlock()

	log.Printf("Batch %s: downloading %d documents into %s (parallel=%d)", result.ID, len(ids), s.docDir, limit)

	var (
		resultMu sync.Mutex
		done     int
	)
	finish := func(id string, state model.DownloadState, err error) model.DownloadProgress {
		resultMu.Lock()
		defer resultMu.Unlock()
		switch state {
		case model.DownloadCompleted:
			result.Downloaded = append(result.Downloaded, id)
		case model.DownloadSkipped:
			result.Skipped = append(result.Skipped, id)
		default:
			result.Failed[id] = err
		}
		done++
		return model.DownloadProgress{BatchID: result.ID, DocumentID: id, State: state, Done: done, Total: len(ids), Err: err}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, id := range ids {
		id := id // capture
		g.Go(func() error {
			title, state, err := s.downloadOne(gctx, result.ID, id, len(ids))
			if err != nil {
				log.Printf("Batch %s: %s failed: %v", result.ID, id, err)
			}
			progress := finish(id, state, err)
			progress.Title = title
			s.notifyUpdate(progress)
			return nil // continue with other documents
		})
	}
	g.Wait()

	result.FinishedAt = time.Now()
	log.Printf("Batch %s: %s in %s", result.ID, result.Summary(), result.Duration().Round(time.Millisecond))

	if libraryPath != "" {
		if err := s.catalog.SaveToFile(libraryPath); err != nil {
			return result, fmt.Errorf("save library after batch %s: %w", result.ID, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// DownloadSingle downloads one document and saves the library file
func (s *Service) DownloadSingle(ctx context.Context, id string, libraryPath string) error {
	result, err := s.DownloadFromList(ctx, []string{id}, libraryPath)
	if err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if failure, ok := result.Failed[id]; ok {
		return fmt.Errorf("download %s: %w", id, failure)
	}
	if len(result.Downloaded)+len(result.Skipped) == 0 {
		return fmt.Errorf("download %q: nothing to download", id)
	}
	return nil
}

// downloadOne fetches a single document into the document directory and marks it downloaded
func (s *Service) downloadOne(ctx context.Context, batchID, id string, total int) (string, model.DownloadState, error) {
	doc, ok := s.catalog.Document(id)
	if !ok {
		return "", model.DownloadFailed, fmt.Errorf("%s: %w", id, ErrNotInCatalog)
	}
	title := doc.GetDisplayTitle()

	if doc.IsDownloaded() {
		if _, err := os.Stat(filepath.Join(s.docDir, doc.FileName)); err == nil {
			return title, model.DownloadSkipped, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return title, model.DownloadFailed, err
	}

	s.notifyUpdate(model.DownloadProgress{BatchID: batchID, DocumentID: id, Title: title, State: model.DownloadStarted, Attempt: 1, Total: total})

	pdfURL := doc.PDFURL
	if pdfURL == "" {
		resolved, err := s.fetcher.ResolvePDFURL(ctx, doc.HTMLURL)
		if err != nil {
			return title, model.DownloadFailed, fmt.Errorf("resolve PDF link: %w", err)
		}
		pdfURL = resolved
	}

	fileName := doc.DefaultFileName()
	destPath := filepath.Join(s.docDir, fileName)
	tmpPath := destPath + partialSuffix

	if err := s.downloadWithRetry(ctx, batchID, id, title, total, pdfURL, tmpPath); err != nil {
		os.Remove(tmpPath)
		return title, model.DownloadFailed, err
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return title, model.DownloadFailed, fmt.Errorf("move downloaded file: %w", err)
	}

	if err := s.catalog.MarkDownloaded(id, fileName); err != nil {
		return title, model.DownloadFailed, err
	}
	return title, model.DownloadCompleted, nil
}

// downloadWithRetry attempts download with retry logic
func (s *Service) downloadWithRetry(ctx context.Context, batchID, id, title string, total int, url, destPath string) error {
	s.mu.RLock()
	maxRetries, cooldown, exponent := s.maxRetries, s.retryCooldown, s.retryExponent
	s.mu.RUnlock()

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(float64(cooldown) * math.Pow(exponent, float64(attempt-1)))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}

			log.Printf("Batch %s: retrying %s, attempt %d", batchID, id, attempt+1)
			s.notifyUpdate(model.DownloadProgress{BatchID: batchID, DocumentID: id, Title: title, State: model.DownloadRetrying, Attempt: attempt + 1, Total: total, Err: lastErr})
		}

		err := s.fetcher.DownloadFile(ctx, url, destPath, nil)
		if err == nil {
			return nil
		}
		lastErr = err

		if !federalregister.IsRetryable(err) {
			return err
		}
	}

	return fmt.Errorf("giving up after %d attempts: %w", maxRetries+1, lastErr)
}

// notifyUpdate calls the update callback if set
func (s *Service) notifyUpdate(progress model.DownloadProgress) {
	s.mu.RLock()
	callback := s.onUpdate
	s.mu.RUnlock()

	if callback != nil {
		callback(progress)
	}
}

// cleanIDs trims ids and drops blanks and duplicates, keeping order
func cleanIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	cleaned := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		cleaned = append(cleaned, id)
	}
	return cleaned
}

// generateBatchID generates a unique batch ID
func generateBatchID() string {
	return "batch-" + uuid.NewString()
}
