package core

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/langtool/internal/logging"
)

// Defaults used when no option overrides them.
const (
	DefaultOutputDir    = "public/locales"
	DefaultManifestPath = "cdn-urls.json"
	DefaultFolder       = "i18n"
)

// Pipeline sequences fetch, aggregate and publish. Stages run strictly one
// after another; a failing stage stops the run and nothing downstream runs.
type Pipeline struct {
	source RowSource
	host   AssetHost

	outputDir    string
	manifestPath string
	folder       string
	publishIndex bool

	notifier Notifier
	recorder RunRecorder
	now      func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithOutputDir sets the directory receiving <locale>.json files.
func WithOutputDir(dir string) Option {
	return func(p *Pipeline) { p.outputDir = dir }
}

// WithManifestPath sets where the URL manifest is written.
func WithManifestPath(path string) Option {
	return func(p *Pipeline) { p.manifestPath = path }
}

// WithFolder sets the asset host namespace locales are stored under.
func WithFolder(folder string) Option {
	return func(p *Pipeline) { p.folder = strings.Trim(folder, "/") }
}

// WithIndex also publishes index.json listing every locale URL.
func WithIndex(enabled bool) Option {
	return func(p *Pipeline) { p.publishIndex = enabled }
}

// WithNotifier sets the receiver of progress notifications.
func WithNotifier(n Notifier) Option {
	return func(p *Pipeline) { p.notifier = n }
}

// WithRecorder enables run history.
func WithRecorder(r RunRecorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithClock overrides the time source used for manifests and run records.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// NewPipeline creates a pipeline reading from src and publishing to host.
// host may be nil for pipelines that only Build.
func NewPipeline(src RowSource, host AssetHost, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:       src,
		host:         host,
		outputDir:    DefaultOutputDir,
		manifestPath: DefaultManifestPath,
		folder:       DefaultFolder,
		notifier:     nopNotifier{},
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// InDir returns a copy of p writing locale files to dir.
func (p *Pipeline) InDir(dir string) *Pipeline {
	cp := *p
	cp.outputDir = dir
	return &cp
}

// OutputDir returns the directory locale files are written to.
func (p *Pipeline) OutputDir() string { return p.outputDir }

// ManifestPath returns where the manifest is written.
func (p *Pipeline) ManifestPath() string { return p.manifestPath }

// ResourceID returns the asset host identifier of locale, e.g. "i18n/en".
func (p *Pipeline) ResourceID(locale string) string {
	return path.Join(p.folder, locale)
}

// Fetch reads all rows from the source.
func (p *Pipeline) Fetch(ctx context.Context) ([]Row, error) {
	p.emit(ctx, Progress{Phase: PhaseFetching, Source: p.source.Describe()})

	rows, err := p.source.Rows(ctx)
	if err != nil {
		return nil, sourceError(err)
	}

	p.emit(ctx, Progress{Phase: PhaseFetched, Rows: len(rows)})
	return rows, nil
}

// Aggregate folds rows into locales and reports the codes it found.
func (p *Pipeline) Aggregate(ctx context.Context, rows []Row) *Locales {
	locales := Aggregate(rows)
	p.emit(ctx, Progress{Phase: PhaseAggregated, Locales: locales.Codes()})
	return locales
}

// Build fetches and aggregates, then writes the locale files locally.
// Nothing is uploaded and the manifest is not touched.
func (p *Pipeline) Build(ctx context.Context) (*Locales, error) {
	ctx = p.startRun(ctx)

	rows, err := p.Fetch(ctx)
	if err != nil {
		p.fail(ctx, err)
		return nil, err
	}
	locales := p.Aggregate(ctx, rows)
	if err := p.WriteLocales(ctx, locales); err != nil {
		p.fail(ctx, err)
		return nil, err
	}
	return locales, nil
}

// Run executes fetch, aggregate and publish and returns the locales that
// were published.
func (p *Pipeline) Run(ctx context.Context) (*Locales, error) {
	ctx = p.startRun(ctx)
	rec := RunRecord{ID: logging.RunIDFromContext(ctx), StartedAt: p.now()}

	locales, result, err := p.run(ctx)

	rec.FinishedAt = p.now()
	rec.Success = err == nil
	rec.URLs = result.URLs
	if locales != nil {
		rec.Locales = locales.Codes()
	}
	if err != nil {
		rec.Error = err.Error()
		p.fail(ctx, err)
	}
	p.record(ctx, rec)

	if err != nil {
		return nil, err
	}
	return locales, nil
}

// RunWithOutputDir is Run with the locale files written to dir.
func (p *Pipeline) RunWithOutputDir(ctx context.Context, dir string) (*Locales, error) {
	return p.InDir(dir).Run(ctx)
}

func (p *Pipeline) run(ctx context.Context) (*Locales, PublishResult, error) {
	rows, err := p.Fetch(ctx)
	if err != nil {
		return nil, PublishResult{}, err
	}

	locales := p.Aggregate(ctx, rows)

	result, err := p.Publish(ctx, locales)
	if err != nil {
		return locales, result, err
	}
	return locales, result, nil
}

// startRun assigns a run id unless ctx already carries one.
func (p *Pipeline) startRun(ctx context.Context) context.Context {
	if logging.RunIDFromContext(ctx) != "" {
		return ctx
	}
	return logging.ContextWithRunID(ctx, uuid.New().String())
}

func (p *Pipeline) fail(ctx context.Context, err error) {
	p.emit(ctx, Progress{Phase: PhaseFailed, Err: err})
}

func (p *Pipeline) record(ctx context.Context, rec RunRecord) {
	if p.recorder == nil {
		return
	}
	// Recording happens after the run; a cancelled run context must not
	// prevent its failure from being stored.
	if err := p.recorder.RecordRun(context.WithoutCancel(ctx), rec); err != nil {
		logging.FromContext(ctx).Warn("failed to record run", "error", err)
	}
}

func (p *Pipeline) emit(ctx context.Context, pr Progress) {
	pr.RunID = logging.RunIDFromContext(ctx)
	p.notifier.Notify(pr)
}
