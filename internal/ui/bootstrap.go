package ui

import (
	"fmt"
	"log"
	"sync"

	"github.com/ytget/eo-downloader/internal/config"
)

// BootState is the stage of first-run configuration
type BootState int

const (
	BootNoDirectory BootState = iota
	BootAwaitingInput
	BootConfigured
)

func (s BootState) String() string {
	switch s {
	case BootNoDirectory:
		return "NO_DIRECTORY"
	case BootAwaitingInput:
		return "AWAITING_USER_INPUT"
	case BootConfigured:
		return "CONFIGURED"
	default:
		return "UNKNOWN"
	}
}

// Bootstrap drives the window from startup to a configured session.
// Nothing is built until a document directory exists; the settings prompt
// is shown again after every cancel or failed configuration.
type Bootstrap struct {
	mu        sync.Mutex
	state     BootState
	snapshot  func() config.Config
	prompt    func(err error, done func(saved bool))
	configure func(cfg config.Config) error
	onReady   func()
}

// NewBootstrap creates a bootstrap.
// snapshot reads the current settings, prompt shows the settings dialog and
// calls done when it closes, configure builds the session for a config.
// prompt receives the configure error that sent the user back, nil when no
// directory is set.
func NewBootstrap(snapshot func() config.Config, prompt func(err error, done func(saved bool)), configure func(cfg config.Config) error) *Bootstrap {
	return &Bootstrap{
		state:     BootNoDirectory,
		snapshot:  snapshot,
		prompt:    prompt,
		configure: configure,
	}
}

// OnReady sets the callback run once the state reaches BootConfigured
func (b *Bootstrap) OnReady(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onReady = fn
}

// State returns the current state
func (b *Bootstrap) State() BootState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Start configures from the stored settings or asks the user for a directory
func (b *Bootstrap) Start() {
	b.tryConfigure(b.snapshot())
}

func (b *Bootstrap) tryConfigure(cfg config.Config) {
	if !cfg.HasDocumentDir() {
		log.Printf("No document directory configured, asking the user")
		b.awaitInput(nil)
		return
	}

	if err := b.configure(cfg); err != nil {
		log.Printf("Failed to configure document directory %s: %v", cfg.DocumentDir, err)
		b.awaitInput(fmt.Errorf("document directory %s: %w", cfg.DocumentDir, err))
		return
	}

	b.mu.Lock()
	b.state = BootConfigured
	ready := b.onReady
	b.mu.Unlock()

	log.Printf("Configured with document directory %s", cfg.DocumentDir)
	if ready != nil {
		ready()
	}
}

func (b *Bootstrap) awaitInput(err error) {
	b.setState(BootAwaitingInput)
	b.prompt(err, b.onPromptClosed)
}

// onPromptClosed re-reads the settings whether or not the dialog was saved
func (b *Bootstrap) onPromptClosed(saved bool) {
	if !saved {
		log.Printf("Settings dialog closed without saving")
	}
	b.setState(BootNoDirectory)
	b.tryConfigure(b.snapshot())
}

func (b *Bootstrap) setState(state BootState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = state
}
