package download

// Package download fetches executive order PDFs for catalog records. It runs a
// bounded number of downloads in parallel, retries transient failures with an
// exponential cooldown, marks finished records as downloaded in the catalog,
// saves the library file and reports per-document progress to a callback.
