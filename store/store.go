// Package store tracks download jobs started through the pull tools so that
// progress checks can resolve a job identifier to its latest known state.
package store

import (
	"github.com/effective-security/ollama-mcp/ollamamodel"
)

// ProgressStore records download progress by job identifier.
type ProgressStore interface {
	// Save upserts the progress of one job.
	Save(p *ollamamodel.DownloadProgress) error
	// Get returns the progress of the named job, or nil when unknown.
	Get(jobID string) *ollamamodel.DownloadProgress
	// List returns the progress of every known job, most recently started
	// first.
	List() []*ollamamodel.DownloadProgress
	// Cancel marks an active job as cancelled. It returns false when the
	// job is unknown or already terminal.
	Cancel(jobID string) bool
}
