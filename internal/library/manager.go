package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/ytget/eo-downloader/internal/model"
)

// FileName is the library file name inside the document directory
const FileName = "Executive_Order_library"

// fileFormatVersion is written into every library file
const fileFormatVersion = 1

// ErrUnknownDocument is returned for ids that are not in the catalog
var ErrUnknownDocument = errors.New("unknown document")

// Source lists executive orders for a year range
type Source interface {
	FetchExecutiveOrders(ctx context.Context, yr model.YearRange) ([]model.Document, error)
}

// FetchResult reports what a fetch changed in the catalog
type FetchResult struct {
	Range   model.YearRange
	Fetched int
	Added   int
	Updated int
}

// libraryFile is the on-disk layout of the library file
type libraryFile struct {
	Version   int              `json:"version"`
	SavedAt   time.Time        `json:"saved_at"`
	Documents []model.Document `json:"documents"`
}

// Manager owns the document catalog: which executive orders are known,
// which of them are downloaded, and the library file they persist to.
type Manager struct {
	source Source
	docs   map[string]*model.Document
	mu     sync.RWMutex
}

// NewManager creates an empty catalog fed by source
func NewManager(source Source) *Manager {
	return &Manager{
		source: source,
		docs:   make(map[string]*model.Document),
	}
}

// LibraryPath returns the library file location inside dir
func LibraryPath(dir string) string {
	return filepath.Join(dir, FileName)
}

// FetchExecutiveOrders pulls the catalog for yr from the source and merges it.
// New ids are added as not downloaded; known ids keep their download state
// and get refreshed metadata.
func (m *Manager) FetchExecutiveOrders(ctx context.Context, yr model.YearRange) (FetchResult, error) {
	result := FetchResult{Range: yr}
	if m.source == nil {
		return result, fmt.Errorf("no document source configured")
	}

	docs, err := m.source.FetchExecutiveOrders(ctx, yr)
	if err != nil {
		return result, err
	}
	result.Fetched = len(docs)

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, doc := range docs {
		existing, ok := m.docs[doc.ID]
		if !ok {
			d := doc
			d.Status = model.StatusNotDownloaded
			d.FileName = ""
			m.docs[d.ID] = &d
			result.Added++
			continue
		}

		status, fileName, downloadedAt := existing.Status, existing.FileName, existing.DownloadedAt
		*existing = doc
		existing.Status, existing.FileName, existing.DownloadedAt = status, fileName, downloadedAt
		result.Updated++
	}

	log.Printf("Merged %d executive orders for %s: %d new, %d refreshed", result.Fetched, yr, result.Added, result.Updated)
	return result, nil
}

// Add inserts or replaces records as they are
func (m *Manager) Add(docs ...model.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range docs {
		d := doc
		if !d.Status.IsValid() {
			d.Status = model.StatusNotDownloaded
		}
		m.docs[d.ID] = &d
	}
}

// Len returns the number of known documents
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

// Document returns a copy of the record for id
func (m *Manager) Document(id string) (model.Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	if !ok {
		return model.Document{}, false
	}
	return *doc, true
}

// NotDownloadedDocuments returns the ids without a local file, ascending
func (m *Manager) NotDownloadedDocuments() []string {
	return m.idsWhere(func(d *model.Document) bool { return !d.IsDownloaded() })
}

// DownloadedDocuments returns the ids with a local file, ascending
func (m *Manager) DownloadedDocuments() []string {
	return m.idsWhere(func(d *model.Document) bool { return d.IsDownloaded() })
}

func (m *Manager) idsWhere(keep func(*model.Document) bool) []string {
	m.mu.RLock()
	ids := make([]string, 0, len(m.docs))
	for id, doc := range m.docs {
		if keep(doc) {
			ids = append(ids, id)
		}
	}
	m.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return model.CompareIDs(ids[i], ids[j]) < 0 })
	return ids
}

// DisplayTitles maps ids to display titles. Unknown ids are skipped and no
// ids yields an empty map.
func (m *Manager) DisplayTitles(ids []string) map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	titles := make(map[string]string, len(ids))
	for _, id := range ids {
		if doc, ok := m.docs[id]; ok {
			titles[id] = doc.GetDisplayTitle()
		}
	}
	return titles
}

// AllDisplayTitles maps every known document to its display title
func (m *Manager) AllDisplayTitles() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	titles := make(map[string]string, len(m.docs))
	for id, doc := range m.docs {
		titles[id] = doc.GetDisplayTitle()
	}
	return titles
}

// FileName returns the downloaded file name for id, model.UnknownFileName otherwise
func (m *Manager) FileName(id string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	if !ok {
		return model.UnknownFileName
	}
	return doc.GetFileName()
}

// MarkDownloaded flips id to downloaded and records its file name
func (m *Manager) MarkDownloaded(id, fileName string) error {
	if fileName == "" {
		return fmt.Errorf("mark %s downloaded: empty file name", id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return fmt.Errorf("mark %s downloaded: %w", id, ErrUnknownDocument)
	}
	doc.Status = model.StatusDownloaded
	doc.FileName = fileName
	now := time.Now()
	doc.DownloadedAt = &now
	return nil
}

// MarkNotDownloaded resets id, used when its file disappeared from disk
func (m *Manager) MarkNotDownloaded(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return fmt.Errorf("mark %s not downloaded: %w", id, ErrUnknownDocument)
	}
	doc.Status = model.StatusNotDownloaded
	doc.FileName = ""
	doc.DownloadedAt = nil
	return nil
}

// LoadFromFile replaces the catalog with the library file at path.
// A missing file leaves an empty catalog.
func (m *Manager) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("Library file %s does not exist yet, starting with an empty catalog", path)
			m.mu.Lock()
			m.docs = make(map[string]*model.Document)
			m.mu.Unlock()
			return nil
		}
		return fmt.Errorf("read library file: %w", err)
	}

	var lf libraryFile
	if err := json.Unmarshal(data, &lf); err != nil {
		return fmt.Errorf("decode library file %s: %w", path, err)
	}
	if lf.Version > fileFormatVersion {
		return fmt.Errorf("library file %s has unsupported version %d", path, lf.Version)
	}

	docs := make(map[string]*model.Document, len(lf.Documents))
	for i := range lf.Documents {
		doc := lf.Documents[i]
		if doc.ID == "" {
			continue
		}
		if !doc.Status.IsValid() {
			doc.Status = model.StatusNotDownloaded
		}
		docs[doc.ID] = &doc
	}

	m.mu.Lock()
	m.docs = docs
	m.mu.Unlock()

	log.Printf("Loaded %d documents from %s", len(docs), path)
	return nil
}

// SaveToFile writes the catalog to path atomically
func (m *Manager) SaveToFile(path string) error {
	m.mu.RLock()
	lf := libraryFile{
		Version:   fileFormatVersion,
		SavedAt:   time.Now().UTC(),
		Documents: make([]model.Document, 0, len(m.docs)),
	}
	for _, doc := range m.docs {
		lf.Documents = append(lf.Documents, *doc)
	}
	m.mu.RUnlock()

	sort.Slice(lf.Documents, func(i, j int) bool {
		return model.CompareIDs(lf.Documents[i].ID, lf.Documents[j].ID) < 0
	})

	data, err := json.MarshalIndent(lf, "", "  ")
	if err != nil {
		return fmt.Errorf("encode library file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create library directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp library file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write library file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close library file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace library file: %w", err)
	}

	log.Printf("Saved %d documents to %s", len(lf.Documents), path)
	return nil
}

// Reconcile marks downloaded records whose file is missing under dir as not
// downloaded. Returns the affected ids.
func (m *Manager) Reconcile(dir string) []string {
	var missing []string
	for _, id := range m.DownloadedDocuments() {
		name := m.FileName(id)
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			if err := m.MarkNotDownloaded(id); err == nil {
				missing = append(missing, id)
			}
		}
	}
	if len(missing) > 0 {
		log.Printf("Reset %d documents whose files are missing from %s", len(missing), dir)
	}
	return missing
}
