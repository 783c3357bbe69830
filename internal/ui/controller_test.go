package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/eo-downloader/internal/library"
	"github.com/ytget/eo-downloader/internal/model"
)

type fakeCatalog struct {
	mu        sync.Mutex
	docs      map[string]*model.Document
	fetched   []model.YearRange
	fetchErr  error
	saves     int
	onFetched []model.Document
}

func newFakeCatalog(docs ...model.Document) *fakeCatalog {
	c := &fakeCatalog{docs: make(map[string]*model.Document)}
	for i := range docs {
		d := docs[i]
		c.docs[d.ID] = &d
	}
	return c
}

func (c *fakeCatalog) FetchExecutiveOrders(ctx context.Context, yr model.YearRange) (library.FetchResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetched = append(c.fetched, yr)
	if c.fetchErr != nil {
		return library.FetchResult{Range: yr}, c.fetchErr
	}
	for i := range c.onFetched {
		d := c.onFetched[i]
		c.docs[d.ID] = &d
	}
	return library.FetchResult{Range: yr, Fetched: len(c.onFetched), Added: len(c.onFetched)}, nil
}

func (c *fakeCatalog) ids(downloaded bool) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var ids []string
	for id, d := range c.docs {
		if d.IsDownloaded() == downloaded {
			ids = append(ids, id)
		}
	}
	return ids
}

func (c *fakeCatalog) NotDownloadedDocuments() []string { return c.ids(false) }
func (c *fakeCatalog) DownloadedDocuments() []string { return c.ids(true) }

func (c *fakeCatalog) DisplayTitles(ids []string) map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	titles := make(map[string]string)
	for _, id := range ids {
		if d, ok := c.docs[id]; ok {
			titles[id] = d.Title
		}
	}
	return titles
}

func (c *fakeCatalog) AllDisplayTitles() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	titles := make(map[string]string)
	for id, d := range c.docs {
		titles[id] = d.Title
	}
	return titles
}

func (c *fakeCatalog) FileName(id string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d, ok := c.docs[id]; ok {
		return d.GetFileName()
	}
	return model.UnknownFileName
}

func (c *fakeCatalog) SaveToFile(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saves++
	return nil
}

func (c *fakeCatalog) markDownloaded(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[id].Status = model.StatusDownloaded
	c.docs[id].FileName = id + ".pdf"
}

type fakeDownloader struct {
	catalog *fakeCatalog
	calls   [][]string
	err     error
}

func (d *fakeDownloader) SetUpdateCallback(func(model.DownloadProgress)) {}
func (d *fakeDownloader) SetMaxParallelDownloads(int) {}
func (d *fakeDownloader) DocumentDirectory() string { return "" }

func (d *fakeDownloader) DownloadFromList(ctx context.Context, ids []string, libraryPath string) (*model.BatchResult, error) {
	d.calls = append(d.calls, ids)
	result := model.NewBatchResult("batch-test", ids)
	if d.err != nil {
		return result, d.err
	}
	for _, id := range ids {
		d.catalog.markDownloaded(id)
		result.Downloaded = append(result.Downloaded, id)
	}
	return result, nil
}

func (d *fakeDownloader) DownloadSingle(ctx context.Context, id string, libraryPath string) error {
	_, err := d.DownloadFromList(ctx, []string{id}, libraryPath)
	return err
}

func newTestController(t *testing.T, docs ...model.Document) (*Controller, *fakeCatalog, *fakeDownloader, *[]string) {
	t.Helper()
	catalog := newFakeCatalog(docs...)
	downloader := &fakeDownloader{catalog: catalog}

	var statuses []string
	c := NewController(NewLocalization())
	c.SetStatusSink(func(msg string) { statuses = append(statuses, msg) })
	c.Bind(&Workspace{Catalog: catalog, Downloader: downloader, Directory: t.TempDir(), LibraryPath: "library"})
	return c, catalog, downloader, &statuses
}

func entryIDs(entries []model.ListEntry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return ids
}

func TestController_YearsAlwaysOrdered(t *testing.T) {
	c := NewController(nil)
	min, max := c.YearBounds()
	assert.Equal(t, model.MinYear, min)
	assert.Equal(t, model.CurrentYear(), max)
	assert.Equal(t, model.SingleYear(max), c.Years())

	for _, begin := range []int{1937, 1950, 2000, max} {
		for _, end := range []int{1937, 1980, 2010, max} {
			c.SetBeginYear(begin)
			r := c.SetEndYear(end)
			assert.LessOrEqual(t, r.Begin, r.End, "begin=%d end=%d", begin, end)

			c.SetEndYear(end)
			r = c.SetBeginYear(begin)
			assert.LessOrEqual(t, r.Begin, r.End, "end=%d begin=%d", end, begin)
		}
	}

	c.SetEndYear(1990)
	assert.Equal(t, model.NewYearRange(2000, 2000), c.SetBeginYear(2000), "begin above end raises end")
	assert.Equal(t, model.NewYearRange(1950, 1950), c.SetEndYear(1950), "end below begin lowers begin")
}

func TestController_ListsAreOrdered(t *testing.T) {
	c, _, _, _ := newTestController(t,
		model.Document{ID: "10", Title: "Ten"},
		model.Document{ID: "9", Title: "Nine"},
		model.Document{ID: "2", Title: "Two", Status: model.StatusDownloaded, FileName: "2.pdf"},
		model.Document{ID: "11", Title: "Eleven", Status: model.StatusDownloaded, FileName: "11.pdf"},
	)

	assert.Equal(t, []string{"9", "10"}, entryIDs(c.NotDownloadedEntries()))
	assert.Equal(t, []string{"11", "2"}, entryIDs(c.DownloadedEntries()))
}

func TestController_EmptyPanes(t *testing.T) {
	t.Run("nothing downloaded", func(t *testing.T) {
		c, _, _, _ := newTestController(t,
			model.Document{ID: "1", Title: "One"},
			model.Document{ID: "2", Title: "Two"},
		)
		assert.Equal(t, []string{"1", "2"}, entryIDs(c.NotDownloadedEntries()))
		assert.Empty(t, c.DownloadedEntries())
	})

	t.Run("everything downloaded", func(t *testing.T) {
		c, _, downloader, statuses := newTestController(t,
			model.Document{ID: "1", Title: "One", Status: model.StatusDownloaded, FileName: "1.pdf"},
			model.Document{ID: "2", Title: "Two", Status: model.StatusDownloaded, FileName: "2.pdf"},
		)
		assert.Empty(t, c.NotDownloadedEntries())
		assert.Equal(t, []string{"2", "1"}, entryIDs(c.DownloadedEntries()))

		result, err := c.DownloadAll(context.Background())
		require.NoError(t, err)
		assert.Nil(t, result)
		assert.Empty(t, downloader.calls, "nothing to download")
		assert.Equal(t, "No items selected for download.", (*statuses)[len(*statuses)-1])
	})
}

func TestController_EmptyPanesWithLibrary(t *testing.T) {
	m := library.NewManager(nil)
	m.Add(
		model.Document{ID: "2025-00001", Title: "First"},
		model.Document{ID: "2025-00002", Title: "Second"},
	)

	c := NewController(NewLocalization())
	c.Bind(&Workspace{Catalog: m, Downloader: &fakeDownloader{catalog: newFakeCatalog()}, Directory: t.TempDir()})

	assert.Equal(t, []string{"2025-00001", "2025-00002"}, entryIDs(c.NotDownloadedEntries()))
	assert.Empty(t, c.DownloadedEntries())

	require.NoError(t, m.MarkDownloaded("2025-00001", "a.pdf"))
	require.NoError(t, m.MarkDownloaded("2025-00002", "b.pdf"))
	c.Refresh()

	assert.Empty(t, c.NotDownloadedEntries())
	assert.Equal(t, []string{"2025-00002", "2025-00001"}, entryIDs(c.DownloadedEntries()))
}

func TestController_DownloadSelectedWithNothingSelected(t *testing.T) {
	c, _, downloader, statuses := newTestController(t, model.Document{ID: "1", Title: "One"})

	result, err := c.DownloadSelected(context.Background())
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Empty(t, downloader.calls, "downloader must not be called")
	assert.Equal(t, []string{"No items selected for download."}, *statuses)
}

func TestController_DownloadSelected(t *testing.T) {
	c, catalog, downloader, statuses := newTestController(t,
		model.Document{ID: "1", Title: "One"},
		model.Document{ID: "2", Title: "Two"},
		model.Document{ID: "3", Title: "Three"},
	)

	c.SetSelected("3", true)
	c.SetSelected("1", true)
	c.SetSelected("2", true)
	c.SetSelected("2", false)

	result, err := c.DownloadSelected(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)

	require.Len(t, downloader.calls, 1)
	assert.Equal(t, []string{"1", "3"}, downloader.calls[0])
	assert.Equal(t, "Downloading 2 files...", (*statuses)[0])
	assert.Equal(t, result.Summary(), (*statuses)[len(*statuses)-1])

	assert.Equal(t, []string{"2"}, entryIDs(c.NotDownloadedEntries()))
	assert.Equal(t, []string{"3", "1"}, entryIDs(c.DownloadedEntries()))
	assert.Empty(t, c.SelectedIDs(), "downloaded ids leave the selection")
	assert.Equal(t, 1, catalog.saves)
}

func TestController_DownloadAll(t *testing.T) {
	c, _, downloader, _ := newTestController(t,
		model.Document{ID: "1", Title: "One"},
		model.Document{ID: "2", Title: "Two"},
	)

	_, err := c.DownloadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, downloader.calls, 1)
	assert.Equal(t, []string{"1", "2"}, downloader.calls[0])
	assert.Empty(t, c.NotDownloadedEntries())
}

func TestController_DownloadFailure(t *testing.T) {
	c, _, downloader, statuses := newTestController(t, model.Document{ID: "1", Title: "One"})
	downloader.err = errors.New("network down")

	c.SelectAll()
	_, err := c.DownloadSelected(context.Background())
	require.Error(t, err)
	assert.True(t, strings.HasPrefix((*statuses)[len(*statuses)-1], "Download failed"))
	assert.False(t, c.Busy())
}

func TestController_SelectionHelpers(t *testing.T) {
	c, _, _, _ := newTestController(t,
		model.Document{ID: "1", Title: "One"},
		model.Document{ID: "2", Title: "Two"},
	)

	c.SelectAll()
	assert.Equal(t, []string{"1", "2"}, c.SelectedIDs())
	assert.True(t, c.IsSelected("2"))

	c.ClearSelection()
	assert.Empty(t, c.SelectedIDs())
	assert.False(t, c.IsSelected("2"))
}

func TestController_FetchLibrary(t *testing.T) {
	c, catalog, _, statuses := newTestController(t)
	catalog.onFetched = []model.Document{{ID: "2020-1", Title: "New order"}}

	c.SetEndYear(2021)
	c.SetBeginYear(2020)
	result, err := c.FetchLibrary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Added)

	assert.Equal(t, []model.YearRange{model.NewYearRange(2020, 2021)}, catalog.fetched)
	assert.Equal(t, 1, catalog.saves)
	assert.Equal(t, []string{"2020-1"}, entryIDs(c.NotDownloadedEntries()))
	assert.Contains(t, (*statuses)[len(*statuses)-1], "2020-2021")

	// Same begin and end fetches a single year
	c.SetEndYear(2020)
	_, err = c.FetchLibrary(context.Background())
	require.NoError(t, err)
	assert.True(t, catalog.fetched[1].IsSingleYear())
}

func TestController_FetchLibraryFailure(t *testing.T) {
	c, catalog, _, _ := newTestController(t)
	catalog.fetchErr = errors.New("HTTP 503")

	_, err := c.FetchLibrary(context.Background())
	require.Error(t, err)
	assert.Zero(t, catalog.saves, "nothing is saved after a failed fetch")
}

func TestController_Busy(t *testing.T) {
	c, _, _, _ := newTestController(t, model.Document{ID: "1", Title: "One"})

	_, err := c.begin()
	require.NoError(t, err)

	_, err = c.FetchLibrary(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	c.SelectAll()
	_, err = c.DownloadSelected(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	c.end()
	assert.False(t, c.Busy())
}

func TestController_NoWorkspace(t *testing.T) {
	c := NewController(nil)

	_, err := c.FetchLibrary(context.Background())
	assert.ErrorIs(t, err, ErrNoWorkspace)
	assert.ErrorIs(t, c.OpenDocument("1"), ErrNoWorkspace)
	assert.Empty(t, c.NotDownloadedEntries())
}

func TestController_Filter(t *testing.T) {
	c, _, _, _ := newTestController(t,
		model.Document{ID: "1", Title: "Protecting Public Health"},
		model.Document{ID: "3", Title: "PUBLIC lands", Status: model.StatusDownloaded, FileName: "3.pdf"},
		model.Document{ID: "2", Title: "Trade policy", Status: model.StatusDownloaded, FileName: "2.pdf"},
		model.Document{ID: "12", Title: "republican form", Status: model.StatusDownloaded, FileName: "12.pdf"},
	)

	n := c.ApplyFilter("public")
	assert.Equal(t, 3, n)
	assert.True(t, c.FilterActive())
	// Every title containing the keyword, case-insensitive, descending by id
	assert.Equal(t, []string{"12", "3", "1"}, entryIDs(c.DownloadedEntries()))

	// Toggling the same keyword restores the plain downloaded listing
	assert.False(t, c.ToggleFilter("PUBLIC"))
	assert.Equal(t, []string{"12", "3", "2"}, entryIDs(c.DownloadedEntries()))

	assert.True(t, c.ToggleFilter("trade"))
	assert.Equal(t, []string{"2"}, entryIDs(c.DownloadedEntries()))

	c.ApplyFilter("  ")
	assert.False(t, c.FilterActive())
}

func TestController_OpenDocument(t *testing.T) {
	c, _, _, _ := newTestController(t,
		model.Document{ID: "1", Title: "On disk", Status: model.StatusDownloaded, FileName: "1.pdf"},
		model.Document{ID: "2", Title: "Gone", Status: model.StatusDownloaded, FileName: "2.pdf"},
		model.Document{ID: "3", Title: "Pending"},
	)
	dir := c.Workspace().Directory
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1.pdf"), []byte("%PDF"), 0644))

	var opened []string
	c.SetOpeners(func(path string) error {
		opened = append(opened, path)
		return nil
	}, nil)

	require.NoError(t, c.OpenDocument("1"))
	require.Len(t, opened, 1)
	assert.Equal(t, "1.pdf", filepath.Base(opened[0]))

	assert.ErrorIs(t, c.OpenDocument(""), ErrNoDocument)
	assert.ErrorIs(t, c.OpenDocument("0"), ErrNoDocument)
	assert.ErrorIs(t, c.OpenDocument("3"), ErrNotAvailable, "Unknown file name")
	assert.ErrorIs(t, c.OpenDocument("missing"), ErrNotAvailable)
	assert.Error(t, c.OpenDocument("2"), "file not on disk")

	assert.Len(t, opened, 1, "failures never reach the viewer")
}

func TestController_OpenDocumentViewerFailure(t *testing.T) {
	c, _, _, _ := newTestController(t,
		model.Document{ID: "1", Title: "On disk", Status: model.StatusDownloaded, FileName: "1.pdf"},
	)
	require.NoError(t, os.WriteFile(filepath.Join(c.Workspace().Directory, "1.pdf"), []byte("%PDF"), 0644))

	c.SetOpeners(func(string) error { return errors.New("exit status 3") }, func(string) error { return nil })

	assert.Error(t, c.OpenDocument("1"))
	assert.NoError(t, c.RevealDocument("1"))
}

func TestController_BindResetsSelection(t *testing.T) {
	c, _, _, _ := newTestController(t, model.Document{ID: "1", Title: "One"})
	c.SelectAll()

	other := newFakeCatalog(model.Document{ID: "5", Title: "Five"})
	c.Bind(&Workspace{Catalog: other, Downloader: &fakeDownloader{catalog: other}, Directory: t.TempDir()})

	assert.Empty(t, c.SelectedIDs())
	assert.Equal(t, []string{"5"}, entryIDs(c.NotDownloadedEntries()))
}
