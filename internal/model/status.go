package model

// DocumentStatus represents the download state of a catalog record
type DocumentStatus string

const (
	// StatusNotDownloaded means the record is known but no file exists yet
	StatusNotDownloaded DocumentStatus = "not_downloaded"

	// StatusDownloaded means the PDF was fetched into the document directory
	StatusDownloaded DocumentStatus = "downloaded"
)

// String returns the string representation of DocumentStatus
func (ds DocumentStatus) String() string {
	return string(ds)
}

// IsDownloaded returns true if the document has a local file
func (ds DocumentStatus) IsDownloaded() bool {
	return ds == StatusDownloaded
}

// IsValid reports whether the status is one of the known values
func (ds DocumentStatus) IsValid() bool {
	return ds == StatusNotDownloaded || ds == StatusDownloaded
}
