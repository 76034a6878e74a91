package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/langtool/internal/logging"
)

// Phase indicates the stage a progress notification belongs to.
type Phase string

const (
	PhaseFetching        Phase = "fetching"
	PhaseFetched         Phase = "fetched"
	PhaseAggregated      Phase = "aggregated"
	PhasePublishing      Phase = "publishing"
	PhaseLocaleWritten   Phase = "locale_written"
	PhaseLocalePublished Phase = "locale_published"
	PhaseIndexPublished  Phase = "index_published"
	PhasePublished       Phase = "published"
	PhaseFailed          Phase = "failed"
)

// Progress is a single notification emitted while a pipeline runs.
// Only the fields relevant to Phase are set.
type Progress struct {
	RunID   string
	Phase   Phase
	Source  string   // PhaseFetching
	Rows    int      // PhaseFetched
	Locales []string // PhaseAggregated, PhasePublishing
	Locale  string   // PhaseLocaleWritten, PhaseLocalePublished
	Path    string   // PhaseLocaleWritten, PhasePublished (manifest)
	URL     string   // PhaseLocalePublished, PhaseIndexPublished
	Err     error    // PhaseFailed
}

// Message renders the notification as a single human-readable line.
func (p Progress) Message() string {
	switch p.Phase {
	case PhaseFetching:
		return fmt.Sprintf("Fetching rows from %s...", p.Source)
	case PhaseFetched:
		return fmt.Sprintf("Fetched %d rows", p.Rows)
	case PhaseAggregated:
		return fmt.Sprintf("Found %d locales: %s", len(p.Locales), strings.Join(p.Locales, ", "))
	case PhasePublishing:
		return fmt.Sprintf("Publishing %d locales...", len(p.Locales))
	case PhaseLocaleWritten:
		return fmt.Sprintf("Wrote %s.json to %s", p.Locale, p.Path)
	case PhaseLocalePublished:
		return fmt.Sprintf("Uploaded %s.json: %s", p.Locale, p.URL)
	case PhaseIndexPublished:
		return fmt.Sprintf("Uploaded %s.json: %s", IndexName, p.URL)
	case PhasePublished:
		return fmt.Sprintf("Done! All locales uploaded, URLs saved to %s", p.Path)
	case PhaseFailed:
		return fmt.Sprintf("Failed: %v", p.Err)
	}
	return string(p.Phase)
}

// Notifier receives progress notifications in the order they happen.
type Notifier interface {
	Notify(Progress)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Progress)

func (f NotifierFunc) Notify(p Progress) { f(p) }

// Notifiers fans a notification out to several notifiers in order.
type Notifiers []Notifier

func (ns Notifiers) Notify(p Progress) {
	for _, n := range ns {
		if n != nil {
			n.Notify(p)
		}
	}
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	ctx context.Context
}

// NewLogNotifier logs through logging.FromContext(ctx).
func NewLogNotifier(ctx context.Context) LogNotifier {
	return LogNotifier{ctx: ctx}
}

func (n LogNotifier) Notify(p Progress) {
	logger := logging.FromContext(n.ctx).With("phase", string(p.Phase))
	if p.RunID != "" {
		logger = logger.With("run_id", p.RunID)
	}
	if p.Phase == PhaseFailed {
		logger.Error(p.Message(), "error", p.Err)
		return
	}
	if p.Locale != "" {
		logger = logger.With("locale", p.Locale)
	}
	logger.Info(p.Message())
}

type nopNotifier struct{}

func (nopNotifier) Notify(Progress) {}
