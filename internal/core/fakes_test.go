package core

import (
	"context"
	"errors"
	"sync"
)

type fakeSource struct {
	rows []Row
	err  error
}

func (s *fakeSource) Rows(context.Context) ([]Row, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func (s *fakeSource) Describe() string { return "fake source" }

var errUploadRejected = errors.New("upload rejected")

// fakeHost records uploads in memory. Uploading failOn fails.
type fakeHost struct {
	mu      sync.Mutex
	uploads []string
	data    map[string][]byte
	deleted []string
	failOn  string
}

func newFakeHost() *fakeHost {
	return &fakeHost{data: make(map[string][]byte)}
}

func (h *fakeHost) Upload(_ context.Context, resourceID string, data []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if resourceID == h.failOn {
		return errUploadRejected
	}
	h.uploads = append(h.uploads, resourceID)
	h.data[resourceID] = append([]byte(nil), data...)
	return nil
}

func (h *fakeHost) Delete(_ context.Context, resourceID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if resourceID == h.failOn {
		return errUploadRejected
	}
	h.deleted = append(h.deleted, resourceID)
	delete(h.data, resourceID)
	return nil
}

func (h *fakeHost) URL(resourceID string) string {
	return "https://cdn.test/" + resourceID + ".json"
}

type fakeRecorder struct {
	records []RunRecord
	err     error
}

func (r *fakeRecorder) RecordRun(_ context.Context, rec RunRecord) error {
	r.records = append(r.records, rec)
	return r.err
}

// progressLog collects notifications.
type progressLog struct {
	events []Progress
}

func (l *progressLog) Notify(p Progress) { l.events = append(l.events, p) }

func (l *progressLog) phases() []Phase {
	out := make([]Phase, len(l.events))
	for i, e := range l.events {
		out[i] = e.Phase
	}
	return out
}
