package core

import (
	"context"
	"time"
)

// Row is one (locale, key, value) translation triple read from a spreadsheet.
type Row struct {
	Locale string
	Key    string
	Value  string
}

// Dictionary is the flat key -> translated string mapping of one locale.
type Dictionary map[string]string

// RowSource reads translation rows from a backing store.
// Implementations live in internal/source.
type RowSource interface {
	// Rows fetches and normalizes every row. Any error is fatal to the run.
	Rows(ctx context.Context) ([]Row, error)

	// Describe names the backing store for progress output.
	Describe() string
}

// AssetHost stores locale payloads and serves them from stable public URLs.
// Implementations live in internal/cdn.
type AssetHost interface {
	// Upload stores data under resourceID, overwriting any previous version
	// and invalidating cached copies.
	Upload(ctx context.Context, resourceID string, data []byte) error

	// Delete removes the resource stored under resourceID.
	Delete(ctx context.Context, resourceID string) error

	// URL returns the public URL of resourceID. It is derived from the host
	// configuration alone, so it is known before and independent of any upload.
	URL(resourceID string) string
}

// PublishResult is what the publisher hands back to its caller.
// On failure URLs holds the locales that completed before the error.
type PublishResult struct {
	Success  bool
	URLs     map[string]string
	IndexURL string // set when the index is published
}

// RunRecord summarizes one pipeline run for history storage.
type RunRecord struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Success    bool
	Locales    []string
	URLs       map[string]string
	Error      string
}

// Duration returns how long the run took.
func (r RunRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunRecorder persists run records. Recording is best effort: the pipeline
// logs recorder failures and never fails a run because of them.
type RunRecorder interface {
	RecordRun(ctx context.Context, rec RunRecord) error
}
