package web

// gate.go serializes pipeline runs started over HTTP.
//
// Two syncs publishing at once would interleave uploads and race on the
// manifest, so the server holds a single run slot. A request that finds the
// slot taken fails fast with ErrSyncRunning instead of queueing.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSyncRunning is returned when a sync is requested while one is active.
var ErrSyncRunning = errors.New("sync already running")

type runGate struct {
	slot chan struct{}

	mu      sync.RWMutex
	started time.Time
	runID   string
}

func newRunGate() *runGate {
	return &runGate{slot: make(chan struct{}, 1)}
}

// TryAcquire takes the run slot without blocking.
func (g *runGate) TryAcquire(runID string) bool {
	select {
	case g.slot <- struct{}{}:
		g.mu.Lock()
		g.started = time.Now()
		g.runID = runID
		g.mu.Unlock()
		return true
	default:
		return false
	}
}

// Release frees the slot. Must be called exactly once per successful TryAcquire.
func (g *runGate) Release() {
	g.mu.Lock()
	g.runID = ""
	g.started = time.Time{}
	g.mu.Unlock()
	<-g.slot
}

// gateStatus is a snapshot of the run slot.
type gateStatus struct {
	Running bool      `json:"running"`
	RunID   string    `json:"run_id,omitempty"`
	Since   time.Time `json:"since,omitempty"`
}

func (g *runGate) Status() gateStatus {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return gateStatus{Running: g.runID != "", RunID: g.runID, Since: g.started}
}

// WaitForDrain blocks until no run is active or ctx is done.
func (g *runGate) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if len(g.slot) == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
