package download

import (
	"context"

	"github.com/ytget/eo-downloader/internal/model"
)

// Downloader defines the interface for the download service.
type Downloader interface {
	SetUpdateCallback(func(model.DownloadProgress))

	// DownloadFromList downloads every id and saves the library file at libraryPath
	DownloadFromList(ctx context.Context, ids []string, libraryPath string) (*model.BatchResult, error)

	// DownloadSingle downloads one id and saves the library file at libraryPath
	DownloadSingle(ctx context.Context, id string, libraryPath string) error

	// SetMaxParallelDownloads sets the maximum number of parallel downloads
	SetMaxParallelDownloads(max int)

	// DocumentDirectory returns where files are written
	DocumentDirectory() string
}

// Catalog is the part of the library manager the service updates
type Catalog interface {
	Document(id string) (model.Document, bool)
	MarkDownloaded(id, fileName string) error
	SaveToFile(path string) error
}

// Fetcher retrieves document content
type Fetcher interface {
	DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error
	ResolvePDFURL(ctx context.Context, pageURL string) (string, error)
}
