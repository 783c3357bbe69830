package model

import (
	"fmt"
	"time"
)

// DownloadState describes where a single document is in a download batch
type DownloadState string

const (
	DownloadStarted   DownloadState = "Started"
	DownloadRetrying  DownloadState = "Retrying"
	DownloadCompleted DownloadState = "Completed"
	DownloadSkipped   DownloadState = "Skipped"
	DownloadFailed    DownloadState = "Failed"
)

// DownloadProgress is reported to listeners while a batch runs
type DownloadProgress struct {
	BatchID    string
	DocumentID string
	Title      string
	State      DownloadState
	Attempt    int
	Done       int // documents finished so far, including this one when finished
	Total      int
	Err        error
}

// BatchResult summarizes one DownloadFromList call
type BatchResult struct {
	ID         string
	Requested  []string
	Downloaded []string
	Skipped    []string
	Failed     map[string]error
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewBatchResult creates an empty result for the given ids
func NewBatchResult(id string, requested []string) *BatchResult {
	return &BatchResult{
		ID:        id,
		Requested: requested,
		Failed:    make(map[string]error),
		StartedAt: time.Now(),
	}
}

// Summary returns a one-line status message for the batch
func (br *BatchResult) Summary() string {
	msg := fmt.Sprintf("Downloaded %d of %d files", len(br.Downloaded), len(br.Requested))
	if len(br.Skipped) > 0 {
		msg += fmt.Sprintf(", %d already present", len(br.Skipped))
	}
	if len(br.Failed) > 0 {
		msg += fmt.Sprintf(", %d failed", len(br.Failed))
	}
	return msg
}

// Duration returns how long the batch took, zero while it is still running
func (br *BatchResult) Duration() time.Duration {
	if br.FinishedAt.IsZero() {
		return 0
	}
	return br.FinishedAt.Sub(br.StartedAt)
}
