package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/eo-downloader/internal/config"
	"github.com/ytget/eo-downloader/internal/library"
	"github.com/ytget/eo-downloader/internal/model"
)

type fakeBackend struct {
	docs []model.Document
}

func (f *fakeBackend) FetchExecutiveOrders(ctx context.Context, yr model.YearRange) ([]model.Document, error) {
	return f.docs, nil
}

func (f *fakeBackend) DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error {
	return os.WriteFile(destPath, []byte("%PDF"), 0644)
}

func (f *fakeBackend) ResolvePDFURL(ctx context.Context, pageURL string) (string, error) {
	return pageURL + ".pdf", nil
}

func TestNew_RequiresDirectory(t *testing.T) {
	_, err := New(config.Config{Version: 1, MaxParallel: 2}, &fakeBackend{})
	assert.ErrorIs(t, err, ErrNoDirectory)

	_, err = New(config.Config{Version: 1, DocumentDir: "   "}, &fakeBackend{})
	assert.ErrorIs(t, err, ErrNoDirectory)
}

func TestNew_CreatesDirectoryAndLoadsLibrary(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "orders")

	// Seed a library file with one present and one vanished download
	seed := library.NewManager(nil)
	seed.Add(
		model.Document{ID: "1", Title: "Present", Status: model.StatusDownloaded, FileName: "1.pdf"},
		model.Document{ID: "2", Title: "Vanished", Status: model.StatusDownloaded, FileName: "2.pdf"},
		model.Document{ID: "3", Title: "Pending"},
	)
	require.NoError(t, seed.SaveToFile(library.LibraryPath(dir)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1.pdf"), []byte("%PDF"), 0644))

	s, err := New(config.Config{Version: 3, DocumentDir: dir, MaxParallel: 4}, &fakeBackend{})
	require.NoError(t, err)

	assert.Equal(t, dir, s.Directory())
	assert.Equal(t, library.LibraryPath(dir), s.LibraryPath)
	assert.Equal(t, dir, s.Downloader.DocumentDirectory())
	assert.Equal(t, 3, s.Manager.Len())
	assert.Equal(t, []string{"1"}, s.Manager.DownloadedDocuments())
	assert.Equal(t, []string{"2", "3"}, s.Manager.NotDownloadedDocuments())
}

func TestNew_WiresDownloaderToManager(t *testing.T) {
	dir := t.TempDir()
	s, err := New(config.Config{Version: 1, DocumentDir: dir, MaxParallel: 1}, &fakeBackend{
		docs: []model.Document{{ID: "2024-00001", Title: "Fetched", PDFURL: "https://example.test/a.pdf"}},
	})
	require.NoError(t, err)

	_, err = s.Manager.FetchExecutiveOrders(context.Background(), model.SingleYear(2024))
	require.NoError(t, err)

	require.NoError(t, s.Downloader.DownloadSingle(context.Background(), "2024-00001", s.LibraryPath))
	assert.Equal(t, []string{"2024-00001"}, s.Manager.DownloadedDocuments())

	_, err = os.Stat(s.LibraryPath)
	assert.NoError(t, err)
}

func TestHolder_Reconfigure(t *testing.T) {
	builds := 0
	var failNext bool
	h := NewHolder(func(cfg config.Config) (*Session, error) {
		builds++
		if failNext {
			return nil, errors.New("disk full")
		}
		return New(cfg, &fakeBackend{})
	})
	assert.Nil(t, h.Current())

	var notified []*Session
	h.OnChange(func(s *Session) { notified = append(notified, s) })

	first := config.Config{Version: 1, DocumentDir: t.TempDir(), MaxParallel: 2}
	s1, err := h.Reconfigure(first)
	require.NoError(t, err)
	assert.Same(t, s1, h.Current())

	// Same config is a no-op
	again, err := h.Reconfigure(first)
	require.NoError(t, err)
	assert.Same(t, s1, again)
	assert.Equal(t, 1, builds)

	// A language-only save bumps Version but keeps the session
	langOnly := first
	langOnly.Version = 7
	langOnly.Language = "ru"
	again, err = h.Reconfigure(langOnly)
	require.NoError(t, err)
	assert.Same(t, s1, again)
	assert.Equal(t, 1, builds)

	// A failed build keeps the previous session
	failNext = true
	kept, err := h.Reconfigure(config.Config{Version: 2, DocumentDir: t.TempDir(), MaxParallel: 2})
	require.Error(t, err)
	assert.Same(t, s1, kept)
	assert.Same(t, s1, h.Current())

	// A successful build swaps everything at once
	failNext = false
	second := config.Config{Version: 3, DocumentDir: t.TempDir(), MaxParallel: 5}
	s2, err := h.Reconfigure(second)
	require.NoError(t, err)
	assert.Same(t, s2, h.Current())
	assert.Equal(t, second.DocumentDir, s2.Downloader.DocumentDirectory())
	assert.Equal(t, library.LibraryPath(second.DocumentDir), s2.LibraryPath)

	assert.Equal(t, []*Session{s1, s2}, notified)
}

func TestHolder_ReconfigureWithoutDirectory(t *testing.T) {
	h := NewHolder(NewFactory(&fakeBackend{}))

	s, err := h.Reconfigure(config.Config{Version: 1})
	assert.ErrorIs(t, err, ErrNoDirectory)
	assert.Nil(t, s)
	assert.Nil(t, h.Current())
}
