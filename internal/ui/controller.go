package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/ytget/eo-downloader/internal/download"
	"github.com/ytget/eo-downloader/internal/library"
	"github.com/ytget/eo-downloader/internal/model"
	"github.com/ytget/eo-downloader/internal/platform"
	"github.com/ytget/eo-downloader/internal/session"
)

// Controller errors
var (
	ErrBusy         = errors.New("another operation is in progress")
	ErrNoWorkspace  = errors.New("no document directory configured")
	ErrNoDocument   = errors.New("no document number in the selected item")
	ErrNotAvailable = errors.New("document has no downloaded file")
)

// Catalog is the part of the document manager the window works with
type Catalog interface {
	FetchExecutiveOrders(ctx context.Context, yr model.YearRange) (library.FetchResult, error)
	NotDownloadedDocuments() []string
	DownloadedDocuments() []string
	DisplayTitles(ids []string) map[string]string
	AllDisplayTitles() map[string]string
	FileName(id string) string
	SaveToFile(path string) error
}

// Workspace is what the window operates on: one catalog, one downloader and
// the directory both of them use
type Workspace struct {
	Catalog     Catalog
	Downloader  download.Downloader
	Directory   string
	LibraryPath string
}

// WorkspaceFromSession adapts a session for the window
func WorkspaceFromSession(s *session.Session) *Workspace {
	if s == nil {
		return nil
	}
	return &Workspace{
		Catalog:     s.Manager,
		Downloader:  s.Downloader,
		Directory:   s.Directory(),
		LibraryPath: s.LibraryPath,
	}
}

// Controller holds the main window state and runs its actions.
// It has no fyne dependencies; RootUI renders what it exposes.
type Controller struct {
	mu            sync.Mutex
	ws            *Workspace
	years         *model.YearSelector
	selected      map[string]bool
	notDownloaded []model.ListEntry
	downloaded    []model.ListEntry
	filterActive  bool
	keyword       string
	busy          bool

	loc    *Localization
	status func(string)
	open   func(path string) error
	reveal func(path string) error
}

// NewController creates a controller with year pickers over [MinYear, current year]
func NewController(loc *Localization) *Controller {
	if loc == nil {
		loc = NewLocalization()
	}
	return &Controller{
		years:    model.NewYearSelector(model.MinYear, model.CurrentYear()),
		selected: make(map[string]bool),
		loc:      loc,
		open:     platform.OpenFileWithDefaultApp,
		reveal:   platform.OpenFileInManager,
	}
}

// SetStatusSink sets where status messages go
func (c *Controller) SetStatusSink(fn func(string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = fn
}

// SetOpeners replaces the OS launchers used for documents
func (c *Controller) SetOpeners(open, reveal func(path string) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if open != nil {
		c.open = open
	}
	if reveal != nil {
		c.reveal = reveal
	}
}

// Bind switches the controller to ws and reloads both lists
func (c *Controller) Bind(ws *Workspace) {
	c.mu.Lock()
	c.ws = ws
	c.selected = make(map[string]bool)
	c.mu.Unlock()

	if ws != nil {
		log.Printf("Window bound to %s", ws.Directory)
	}
	c.Refresh()
}

// Workspace returns the bound workspace, nil before configuration
func (c *Controller) Workspace() *Workspace {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws
}

// YearBounds returns the selectable year range
func (c *Controller) YearBounds() (int, int) {
	return c.years.Bounds()
}

// Years returns the currently selected range
func (c *Controller) Years() model.YearRange {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.years.Range()
}

// SetBeginYear changes the first year, raising the last one if needed
func (c *Controller) SetBeginYear(year int) model.YearRange {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.years.SetBegin(year)
}

// SetEndYear changes the last year, lowering the first one if needed
func (c *Controller) SetEndYear(year int) model.YearRange {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.years.SetEnd(year)
}

// Refresh reloads both list panes from the catalog
func (c *Controller) Refresh() {
	c.mu.Lock()
	ws, filterActive, keyword := c.ws, c.filterActive, c.keyword
	c.mu.Unlock()

	var pending, done []model.ListEntry
	if ws != nil {
		pending = model.EntriesFromTitles(ws.Catalog.DisplayTitles(ws.Catalog.NotDownloadedDocuments()), model.SortAscending)
		if filterActive {
			done = model.FilterTitles(ws.Catalog.AllDisplayTitles(), keyword)
		} else {
			done = model.EntriesFromTitles(ws.Catalog.DisplayTitles(ws.Catalog.DownloadedDocuments()), model.SortDescending)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.notDownloaded = pending
	c.downloaded = done

	// Drop selections that left the pending pane
	visible := make(map[string]bool, len(pending))
	for _, e := range pending {
		visible[e.ID] = true
	}
	for id := range c.selected {
		if !visible[id] {
			delete(c.selected, id)
		}
	}
}

// NotDownloadedEntries returns the pending pane, ascending by id
func (c *Controller) NotDownloadedEntries() []model.ListEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.ListEntry(nil), c.notDownloaded...)
}

// DownloadedEntries returns the downloaded pane, descending by id
func (c *Controller) DownloadedEntries() []model.ListEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.ListEntry(nil), c.downloaded...)
}

// SetSelected marks a pending entry for download
func (c *Controller) SetSelected(id string, selected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if selected {
		c.selected[id] = true
	} else {
		delete(c.selected, id)
	}
}

// IsSelected reports whether id is marked for download
func (c *Controller) IsSelected(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected[id]
}

// SelectAll marks every pending entry
func (c *Controller) SelectAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.notDownloaded {
		c.selected[e.ID] = true
	}
}

// ClearSelection unmarks every pending entry
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = make(map[string]bool)
}

// SelectedIDs returns the marked ids, ascending
func (c *Controller) SelectedIDs() []string {
	c.mu.Lock()
	ids := make([]string, 0, len(c.selected))
	for id := range c.selected {
		ids = append(ids, id)
	}
	c.mu.Unlock()

	sort.Slice(ids, func(i, j int) bool { return model.CompareIDs(ids[i], ids[j]) < 0 })
	return ids
}

// FilterActive reports whether the downloaded pane shows filter results
func (c *Controller) FilterActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filterActive
}

// ApplyFilter shows titles containing keyword in the downloaded pane.
// An empty keyword restores the plain downloaded listing.
func (c *Controller) ApplyFilter(keyword string) int {
	keyword = strings.TrimSpace(keyword)

	c.mu.Lock()
	c.filterActive = keyword != ""
	c.keyword = keyword
	c.mu.Unlock()

	c.Refresh()
	entries := c.DownloadedEntries()
	if keyword == "" {
		c.setStatus(c.loc.GetText(KeyFilterCleared))
	} else {
		log.Printf("Filter %q matched %d titles", keyword, len(entries))
		c.setStatus(c.loc.Textf(KeyFilterResults, len(entries), keyword))
	}
	return len(entries)
}

// ToggleFilter applies keyword, or clears the filter when the same keyword is already applied
func (c *Controller) ToggleFilter(keyword string) bool {
	keyword = strings.TrimSpace(keyword)

	c.mu.Lock()
	same := c.filterActive && strings.EqualFold(c.keyword, keyword)
	c.mu.Unlock()

	if same {
		keyword = ""
	}
	c.ApplyFilter(keyword)
	return c.FilterActive()
}

// FetchLibrary downloads the catalog for the selected years, saves the
// library file and reloads the lists
func (c *Controller) FetchLibrary(ctx context.Context) (library.FetchResult, error) {
	ws, err := c.begin()
	if err != nil {
		return library.FetchResult{}, err
	}
	defer c.end()

	yr := c.Years()
	c.setStatus(c.loc.Textf(KeyFetchingList, yr))
	log.Printf("Start downloading library entries for %s", yr)

	result, err := ws.Catalog.FetchExecutiveOrders(ctx, yr)
	if err != nil {
		log.Printf("Failed to download library entries for %s: %v", yr, err)
		c.setStatus(c.loc.Textf(KeyFetchFailed, err))
		return result, err
	}

	if err := ws.Catalog.SaveToFile(ws.LibraryPath); err != nil {
		log.Printf("Failed to save library after fetch: %v", err)
		c.setStatus(c.loc.Textf(KeySaveLibraryFailed, err))
		c.Refresh()
		return result, err
	}

	c.Refresh()
	c.setStatus(c.loc.Textf(KeyFetchedList, result.Fetched, yr, result.Added))
	log.Printf("Done downloading library entries for %s", yr)
	return result, nil
}

// DownloadSelected downloads the marked documents. With nothing marked the
// downloader is not called.
func (c *Controller) DownloadSelected(ctx context.Context) (*model.BatchResult, error) {
	ids := c.SelectedIDs()
	if len(ids) == 0 {
		c.setStatus(c.loc.GetText(KeyNoItemsSelected))
		return nil, nil
	}

	ws, err := c.begin()
	if err != nil {
		return nil, err
	}
	defer c.end()

	c.setStatus(c.loc.Textf(KeyDownloadingFiles, len(ids)))

	result, err := ws.Downloader.DownloadFromList(ctx, ids, ws.LibraryPath)
	c.Refresh()
	if saveErr := ws.Catalog.SaveToFile(ws.LibraryPath); saveErr != nil {
		log.Printf("Failed to save library after download: %v", saveErr)
		err = errors.Join(err, saveErr)
	}

	if err != nil {
		c.setStatus(c.loc.Textf(KeyDownloadFailed, err))
		return result, err
	}
	if result != nil {
		c.setStatus(result.Summary())
	}
	return result, nil
}

// DownloadAll marks every pending document and downloads the selection
func (c *Controller) DownloadAll(ctx context.Context) (*model.BatchResult, error) {
	c.SelectAll()
	return c.DownloadSelected(ctx)
}

// OpenDocument opens the downloaded file of id with the system viewer.
// Failures are logged and returned; the window does not surface them.
func (c *Controller) OpenDocument(id string) error {
	path, err := c.documentPath(id)
	if err != nil {
		return err
	}

	c.mu.Lock()
	open := c.open
	c.mu.Unlock()

	log.Printf("Opening file: %s", path)
	if err := open(path); err != nil {
		log.Printf("Error opening PDF %s: %v", path, err)
		return err
	}
	return nil
}

// RevealDocument shows the downloaded file of id in the file manager
func (c *Controller) RevealDocument(id string) error {
	path, err := c.documentPath(id)
	if err != nil {
		return err
	}

	c.mu.Lock()
	reveal := c.reveal
	c.mu.Unlock()

	if err := reveal(path); err != nil {
		log.Printf("Error revealing file %s: %v", path, err)
		return err
	}
	return nil
}

// documentPath resolves id to an existing file under the workspace directory
func (c *Controller) documentPath(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || id == "0" {
		log.Printf("Error: no document number found in the selected item (id=%q)", id)
		return "", ErrNoDocument
	}

	ws := c.Workspace()
	if ws == nil {
		log.Printf("Error: no document directory configured, cannot open %s", id)
		return "", ErrNoWorkspace
	}

	fileName := ws.Catalog.FileName(id)
	if fileName == model.UnknownFileName {
		log.Printf("Error: no file name found for document %s", id)
		return "", fmt.Errorf("%s: %w", id, ErrNotAvailable)
	}

	path, err := platform.ResolveDocumentPath(ws.Directory, fileName)
	if err != nil {
		log.Printf("Error: file not found for document %s: %v", id, err)
		return "", err
	}
	return path, nil
}

// begin claims the controller for a long operation
func (c *Controller) begin() (*Workspace, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ws == nil {
		return nil, ErrNoWorkspace
	}
	if c.busy {
		return nil, ErrBusy
	}
	c.busy = true
	return c.ws, nil
}

func (c *Controller) end() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

// Busy reports whether a fetch or download is running
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

func (c *Controller) setStatus(msg string) {
	c.mu.Lock()
	sink := c.status
	c.mu.Unlock()
	if sink != nil {
		sink(msg)
	}
}
