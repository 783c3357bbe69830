package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/ytget/eo-downloader/internal/config"
	"github.com/ytget/eo-downloader/internal/download"
	"github.com/ytget/eo-downloader/internal/library"
	"github.com/ytget/eo-downloader/internal/model"
	"github.com/ytget/eo-downloader/internal/platform"
)

// ErrNoDirectory is returned when a session is requested before a document directory is configured
var ErrNoDirectory = errors.New("no document directory configured")

// Backend is what a session needs from the remote side: catalog listing and file transfer
type Backend interface {
	FetchExecutiveOrders(ctx context.Context, yr model.YearRange) ([]model.Document, error)
	download.Fetcher
}

// Session is the set of collaborators built from one Config
type Session struct {
	Config      config.Config
	Manager     *library.Manager
	Downloader  *download.Service
	LibraryPath string
}

// Directory returns the document directory of the session
func (s *Session) Directory() string {
	return s.Config.DocumentDir
}

// New builds a session for cfg. The document directory is created if needed
// and the library file inside it is loaded.
func New(cfg config.Config, backend Backend) (*Session, error) {
	if !cfg.HasDocumentDir() {
		return nil, ErrNoDirectory
	}

	if err := platform.CreateDirectoryIfNotExists(cfg.DocumentDir); err != nil {
		return nil, fmt.Errorf("create document directory %s: %w", cfg.DocumentDir, err)
	}

	manager := library.NewManager(backend)
	libraryPath := library.LibraryPath(cfg.DocumentDir)
	if err := manager.LoadFromFile(libraryPath); err != nil {
		return nil, err
	}
	if missing := manager.Reconcile(cfg.DocumentDir); len(missing) > 0 {
		if err := manager.SaveToFile(libraryPath); err != nil {
			log.Printf("Failed to save reconciled library: %v", err)
		}
	}

	downloader := download.NewService(cfg.DocumentDir, cfg.MaxParallel, manager, backend)

	log.Printf("Session v%d ready: directory=%s, documents=%d, parallel=%d", cfg.Version, cfg.DocumentDir, manager.Len(), cfg.MaxParallel)
	return &Session{
		Config:      cfg,
		Manager:     manager,
		Downloader:  downloader,
		LibraryPath: libraryPath,
	}, nil
}

// Factory builds a session for a configuration
type Factory func(cfg config.Config) (*Session, error)

// NewFactory returns a Factory that builds sessions over backend
func NewFactory(backend Backend) Factory {
	return func(cfg config.Config) (*Session, error) {
		return New(cfg, backend)
	}
}

// Holder keeps the current session and replaces it atomically
type Holder struct {
	mu        sync.RWMutex
	current   *Session
	build     Factory
	listeners []func(*Session)
}

// NewHolder creates a holder without a session
func NewHolder(build Factory) *Holder {
	return &Holder{build: build}
}

// Current returns the active session, nil before the first successful Reconfigure
func (h *Holder) Current() *Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// OnChange registers fn to be called after every swap
func (h *Holder) OnChange(fn func(*Session)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, fn)
}

// Reconfigure builds a new session for cfg and makes it current.
// On failure the previous session stays active. A cfg that differs from the
// current session's only in Version or Language keeps the current session.
func (h *Holder) Reconfigure(cfg config.Config) (*Session, error) {
	h.mu.RLock()
	current := h.current
	h.mu.RUnlock()

	if current != nil && current.Config.SameSession(cfg) {
		return current, nil
	}

	next, err := h.build(cfg)
	if err != nil {
		return current, fmt.Errorf("reconfigure to v%d: %w", cfg.Version, err)
	}

	h.mu.Lock()
	h.current = next
	listeners := append([]func(*Session){}, h.listeners...)
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
	return next, nil
}
