package web

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/google/uuid"

	"github.com/JonMunkholm/langtool/internal/core"
	"github.com/JonMunkholm/langtool/internal/logging"
)

var (
	errHistoryDisabled = errors.New("missing configuration for history: DATABASE_URL")
	errSyncRateLimited = errors.New("sync rate limit exceeded")
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"sync":   s.gate.Status(),
	})
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	m, err := core.ReadManifest(s.manifestPath)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, fs.ErrNotExist) {
			status = http.StatusNotFound
		}
		respondError(w, r, err, status)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

// syncResponse is returned by a successful POST /api/sync.
type syncResponse struct {
	RunID   string            `json:"run_id"`
	Locales []string          `json:"locales"`
	URLs    map[string]string `json:"urls"`
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	runID := uuid.NewString()
	if !s.gate.TryAcquire(runID) {
		respondError(w, r, ErrSyncRunning, http.StatusConflict)
		return
	}
	defer s.gate.Release()

	if !s.syncLimiter.Allow() {
		respondError(w, r, errSyncRateLimited, http.StatusTooManyRequests)
		return
	}

	// The run outlives a disconnected client; only RUN_TIMEOUT bounds it.
	ctx := logging.ContextWithRunID(context.WithoutCancel(r.Context()), runID)
	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}

	logging.FromContext(ctx).Info("sync requested")
	locales, err := s.runner.Run(ctx)
	if err != nil {
		respondError(w, r, err, runErrorStatus(err))
		return
	}

	resp := syncResponse{RunID: runID, Locales: locales.Codes(), URLs: map[string]string{}}
	if m, err := core.ReadManifest(s.manifestPath); err == nil {
		resp.URLs = m.URLs
	} else {
		logging.FromContext(ctx).Warn("manifest unreadable after sync", "error", err)
	}
	respondJSON(w, http.StatusOK, resp)
}

func runErrorStatus(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, core.ErrSourceRead), errors.Is(err, core.ErrPublish):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		respondError(w, r, errHistoryDisabled, http.StatusNotFound)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, r, errors.New("invalid limit parameter"), http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := s.runs.ListRuns(r.Context(), limit)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, toRunViews(runs))
}

// runView is the JSON form of a recorded run.
type runView struct {
	ID         string            `json:"id"`
	StartedAt  string            `json:"started_at"`
	DurationMS int64             `json:"duration_ms"`
	Success    bool              `json:"success"`
	Locales    []string          `json:"locales"`
	URLs       map[string]string `json:"urls"`
	Error      string            `json:"error,omitempty"`
}

func toRunViews(runs []core.RunRecord) []runView {
	views := make([]runView, 0, len(runs))
	for _, run := range runs {
		views = append(views, runView{
			ID:         run.ID,
			StartedAt:  run.StartedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			DurationMS: run.Duration().Milliseconds(),
			Success:    run.Success,
			Locales:    run.Locales,
			URLs:       run.URLs,
			Error:      run.Error,
		})
	}
	return views
}

func (s *Server) handleStatusPage(w http.ResponseWriter, r *http.Request) {
	data := statusData{Sync: s.gate.Status()}

	m, err := core.ReadManifest(s.manifestPath)
	switch {
	case err == nil:
		data.Manifest = &m
	case !errors.Is(err, fs.ErrNotExist):
		logging.FromContext(r.Context()).Warn("manifest unreadable", "error", err)
	}

	if s.runs != nil {
		runs, err := s.runs.ListRuns(r.Context(), 10)
		if err != nil {
			logging.FromContext(r.Context()).Warn("run history unavailable", "error", err)
		}
		data.Runs = runs
	}

	templ.Handler(statusPage(data)).ServeHTTP(w, r)
}
