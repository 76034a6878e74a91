package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/langtool/internal/cdn"
	"github.com/JonMunkholm/langtool/internal/config"
	"github.com/JonMunkholm/langtool/internal/core"
	"github.com/JonMunkholm/langtool/internal/history"
	"github.com/JonMunkholm/langtool/internal/source"
)

func newSource(ctx context.Context, cfg *config.Config) (core.RowSource, error) {
	switch cfg.Source.Mode {
	case config.SourceSheets:
		return source.NewSheets(ctx, cfg.Sheets.APIKey, cfg.Sheets.SpreadsheetID, cfg.Sheets.Range)
	case config.SourceFile:
		return source.NewFile(cfg.Source.File), nil
	}
	return nil, fmt.Errorf("unknown source mode %q", cfg.Source.Mode)
}

func pipelineOptions(cfg *config.Config, n core.Notifier) []core.Option {
	return []core.Option{
		core.WithOutputDir(cfg.Output.Dir),
		core.WithManifestPath(cfg.Output.ManifestPath),
		core.WithFolder(cfg.CDN.Folder),
		core.WithIndex(cfg.CDN.PublishIndex),
		core.WithNotifier(n),
	}
}

// openHistory connects the run history store when DATABASE_URL is set.
// It returns nil, nil when history is disabled.
func openHistory(ctx context.Context, cfg *config.Config) (*history.Store, error) {
	if !cfg.HistoryEnabled() {
		return nil, nil
	}
	store, err := history.Open(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// publishingPipeline wires source, host and (when available) history.
// A history store that cannot be reached is logged and skipped; the
// returned cleanup closes it otherwise.
func publishingPipeline(ctx context.Context, cfg *config.Config, n core.Notifier) (*core.Pipeline, *history.Store, func(), error) {
	if err := cfg.RequirePipeline(); err != nil {
		return nil, nil, nil, err
	}

	src, err := newSource(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	host, err := cdn.FromConfig(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	opts := pipelineOptions(cfg, n)
	cleanup := func() {}

	store, err := openHistory(ctx, cfg)
	if err != nil {
		slog.Warn("run history disabled", "error", err)
		store = nil
	}
	if store != nil {
		opts = append(opts, core.WithRecorder(store))
		cleanup = store.Close
	}

	return core.NewPipeline(src, host, opts...), store, cleanup, nil
}
