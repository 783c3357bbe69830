package download

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ytget/eo-downloader/internal/federalregister"
	"github.com/ytget/eo-downloader/internal/library"
	"github.com/ytget/eo-downloader/internal/model"
)

// newTestServer serves /pdf/<id>.pdf for every id, /html/<id> pages linking
// to the PDF, and 404 for anything containing "missing"
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "missing"):
			http.NotFound(w, r)
		case strings.HasPrefix(r.URL.Path, "/pdf/"):
			fmt.Fprintf(w, "%%PDF-1.7 %s", strings.TrimPrefix(r.URL.Path, "/pdf/"))
		case strings.HasPrefix(r.URL.Path, "/html/"):
			id := strings.TrimPrefix(r.URL.Path, "/html/")
			fmt.Fprintf(w, `<html><body><a class="pdf" href="/pdf/%s.pdf">PDF</a></body></html>`, id)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestService(t *testing.T, serverURL string, docs ...model.Document) (*Service, *library.Manager, string) {
	t.Helper()
	dir := t.TempDir()
	manager := library.NewManager(nil)
	manager.Add(docs...)
	client := federalregister.NewClient(federalregister.Config{BaseURL: serverURL, RateLimit: 1000})
	service := NewService(dir, 2, manager, client)
	service.SetRetryPolicy(1, time.Millisecond, 1)
	return service, manager, dir
}

func TestNewService(t *testing.T) {
	service := NewService("/tmp/eo", 0, nil, nil)

	if service.DocumentDirectory() != "/tmp/eo" {
		t.Errorf("Expected document directory to be '/tmp/eo', got '%s'", service.DocumentDirectory())
	}

	if service.maxParallel != 1 {
		t.Errorf("Expected maxParallel to be clamped to 1, got %d", service.maxParallel)
	}

	if service.maxRetries != DefaultMaxRetries {
		t.Errorf("Expected maxRetries to be %d, got %d", DefaultMaxRetries, service.maxRetries)
	}
}

func TestSetMaxParallelDownloads(t *testing.T) {
	service := NewService("/tmp", 1, nil, nil)

	service.SetMaxParallelDownloads(3)
	if service.maxParallel != 3 {
		t.Errorf("Expected maxParallel to be 3, got %d", service.maxParallel)
	}

	service.SetMaxParallelDownloads(-1)
	if service.maxParallel != 1 {
		t.Errorf("Expected maxParallel to be clamped to 1, got %d", service.maxParallel)
	}
}

func TestDownloadFromList(t *testing.T) {
	server := newTestServer(t)
	service, manager, dir := newTestService(t, server.URL,
		model.Document{ID: "2021-01753", ExecutiveOrderNumber: 13985, Title: "Advancing Racial Equity", PDFURL: server.URL + "/pdf/2021-01753.pdf"},
		model.Document{ID: "2021-02000", Title: "No direct link", HTMLURL: server.URL + "/html/2021-02000"},
	)

	var mu sync.Mutex
	states := map[model.DownloadState]int{}
	service.SetUpdateCallback(func(p model.DownloadProgress) {
		mu.Lock()
		states[p.State]++
		mu.Unlock()
	})

	libraryPath := library.LibraryPath(dir)
	result, err := service.DownloadFromList(context.Background(), []string{"2021-01753", " 2021-02000 ", "", "2021-01753"}, libraryPath)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(result.Requested) != 2 {
		t.Errorf("Expected 2 requested ids after cleanup, got %v", result.Requested)
	}
	if len(result.Downloaded) != 2 {
		t.Fatalf("Expected 2 downloads, got %d (failed: %v)", len(result.Downloaded), result.Failed)
	}
	if !strings.HasPrefix(result.ID, "batch-") {
		t.Errorf("Expected batch id prefix, got '%s'", result.ID)
	}

	data, err := os.ReadFile(filepath.Join(dir, "EO_13985_2021-01753.pdf"))
	if err != nil {
		t.Fatalf("Expected downloaded file, got %v", err)
	}
	if string(data) != "%PDF-1.7 2021-01753.pdf" {
		t.Errorf("Unexpected file content %q", data)
	}
	if _, err := os.Stat(filepath.Join(dir, "2021-02000.pdf")); err != nil {
		t.Errorf("Expected file resolved from the HTML page, got %v", err)
	}

	if got := manager.FileName("2021-01753"); got != "EO_13985_2021-01753.pdf" {
		t.Errorf("Expected catalog file name to be recorded, got '%s'", got)
	}
	if n := len(manager.NotDownloadedDocuments()); n != 0 {
		t.Errorf("Expected no pending documents, got %d", n)
	}

	// The library file reflects the new state
	reloaded := library.NewManager(nil)
	if err := reloaded.LoadFromFile(libraryPath); err != nil {
		t.Fatalf("Expected library file to load, got %v", err)
	}
	if n := len(reloaded.DownloadedDocuments()); n != 2 {
		t.Errorf("Expected 2 downloaded documents in the library file, got %d", n)
	}

	mu.Lock()
	defer mu.Unlock()
	if states[model.DownloadStarted] != 2 || states[model.DownloadCompleted] != 2 {
		t.Errorf("Unexpected progress states %v", states)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "*"+partialSuffix))
	if len(matches) != 0 {
		t.Errorf("Expected no partial files, got %v", matches)
	}
}

func TestDownloadFromList_FailuresDoNotStopBatch(t *testing.T) {
	server := newTestServer(t)
	service, manager, dir := newTestService(t, server.URL,
		model.Document{ID: "1", Title: "Good", PDFURL: server.URL + "/pdf/1.pdf"},
		model.Document{ID: "2", Title: "Gone", PDFURL: server.URL + "/pdf/missing.pdf"},
	)

	result, err := service.DownloadFromList(context.Background(), []string{"1", "2", "unknown"}, library.LibraryPath(dir))
	if err != nil {
		t.Fatalf("Expected no batch error, got %v", err)
	}

	if len(result.Downloaded) != 1 || result.Downloaded[0] != "1" {
		t.Errorf("Expected only '1' to download, got %v", result.Downloaded)
	}
	if len(result.Failed) != 2 {
		t.Fatalf("Expected 2 failures, got %v", result.Failed)
	}
	if !errors.Is(result.Failed["unknown"], ErrNotInCatalog) {
		t.Errorf("Expected ErrNotInCatalog for unknown id, got %v", result.Failed["unknown"])
	}

	var httpErr *federalregister.HTTPError
	if !errors.As(result.Failed["2"], &httpErr) || httpErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for missing document, got %v", result.Failed["2"])
	}

	doc, _ := manager.Document("2")
	if doc.IsDownloaded() {
		t.Error("Expected failed document to stay not downloaded")
	}

	if summary := result.Summary(); !strings.Contains(summary, "2 failed") {
		t.Errorf("Expected summary to mention failures, got '%s'", summary)
	}
}

func TestDownloadFromList_SkipsExistingFiles(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		fmt.Fprint(w, "%PDF")
	}))
	defer server.Close()

	service, _, dir := newTestService(t, server.URL,
		model.Document{ID: "7", Title: "Present", PDFURL: server.URL + "/7.pdf", Status: model.StatusDownloaded, FileName: "7.pdf"},
	)
	if err := os.WriteFile(filepath.Join(dir, "7.pdf"), []byte("%PDF"), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := service.DownloadFromList(context.Background(), []string{"7"}, "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result.Skipped) != 1 {
		t.Errorf("Expected the document to be skipped, got %+v", result)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Errorf("Expected no HTTP requests, got %d", hits)
	}
}

func TestDownloadFromList_RetriesServerErrors(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, "%PDF")
	}))
	defer server.Close()

	service, _, _ := newTestService(t, server.URL,
		model.Document{ID: "9", Title: "Flaky", PDFURL: server.URL + "/9.pdf"},
	)

	var retried int32
	service.SetUpdateCallback(func(p model.DownloadProgress) {
		if p.State == model.DownloadRetrying {
			atomic.AddInt32(&retried, 1)
		}
	})

	if err := service.DownloadSingle(context.Background(), "9", ""); err != nil {
		t.Fatalf("Expected retry to succeed, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 2 {
		t.Errorf("Expected 2 requests, got %d", hits)
	}
	if atomic.LoadInt32(&retried) != 1 {
		t.Errorf("Expected 1 retry notification, got %d", retried)
	}
}

func TestDownloadSingle_LocalFileErrorNotRetried(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		fmt.Fprint(w, "%PDF")
	}))
	defer server.Close()

	service, manager, dir := newTestService(t, server.URL,
		model.Document{ID: "7", Title: "Blocked", PDFURL: server.URL + "/7.pdf"},
	)
	service.SetRetryPolicy(3, time.Millisecond, 1)

	// A directory in place of the partial file makes the create fail
	if err := os.Mkdir(filepath.Join(dir, "7.pdf"+partialSuffix), 0755); err != nil {
		t.Fatal(err)
	}

	var retried int32
	service.SetUpdateCallback(func(p model.DownloadProgress) {
		if p.State == model.DownloadRetrying {
			atomic.AddInt32(&retried, 1)
		}
	})

	err := service.DownloadSingle(context.Background(), "7", "")
	if err == nil {
		t.Fatal("Expected a local file error")
	}
	var pathErr *fs.PathError
	if !errors.As(err, &pathErr) {
		t.Errorf("Expected *fs.PathError, got %T: %v", err, err)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("Expected 1 request, got %d", hits)
	}
	if atomic.LoadInt32(&retried) != 0 {
		t.Errorf("Expected no retry notifications, got %d", retried)
	}
	if ids := manager.DownloadedDocuments(); len(ids) != 0 {
		t.Errorf("Expected nothing marked downloaded, got %v", ids)
	}
}

func TestDownloadFromList_Empty(t *testing.T) {
	service := NewService(t.TempDir(), 1, library.NewManager(nil), nil)

	result, err := service.DownloadFromList(context.Background(), []string{" ", ""}, "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result.Requested) != 0 || len(result.Downloaded) != 0 {
		t.Errorf("Expected empty result, got %+v", result)
	}
}

func TestDownloadSingle_Unknown(t *testing.T) {
	service := NewService(t.TempDir(), 1, library.NewManager(nil), nil)

	err := service.DownloadSingle(context.Background(), "nope", "")
	if !errors.Is(err, ErrNotInCatalog) {
		t.Errorf("Expected ErrNotInCatalog, got %v", err)
	}
}

func TestDownloadFromList_Cancelled(t *testing.T) {
	server := newTestServer(t)
	service, _, _ := newTestService(t, server.URL,
		model.Document{ID: "1", Title: "One", PDFURL: server.URL + "/pdf/1.pdf"},
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := service.DownloadFromList(ctx, []string{"1"}, "")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if len(result.Downloaded) != 0 {
		t.Errorf("Expected nothing downloaded, got %v", result.Downloaded)
	}
}

func TestCleanIDs(t *testing.T) {
	got := cleanIDs([]string{" a", "b", "", "a", "c "})
	want := []string{"a", "b", "c"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Expected %v, got %v", want, got)
	}
}
