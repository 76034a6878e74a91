package main

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/JonMunkholm/langtool/internal/cdn"
	"github.com/JonMunkholm/langtool/internal/config"
	"github.com/JonMunkholm/langtool/internal/core"
	"github.com/JonMunkholm/langtool/internal/history"
	"github.com/JonMunkholm/langtool/internal/source"
)

const sampleRows = 5

var statusCmd = &cli.Command{
	Name:  "status",
	Usage: "Show the published manifest and check every URL is reachable",
	Flags: []cli.Flag{
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "per-request timeout when fetching published files",
			Value: 10 * time.Second,
		},
	},
	Action: func(cctx *cli.Context) error {
		cfg, err := setup(cctx)
		if err != nil {
			return err
		}
		w := cctx.App.Writer

		m, err := core.ReadManifest(cfg.Output.ManifestPath)
		if errors.Is(err, fs.ErrNotExist) {
			warnColor.Fprintf(w, "No manifest at %s, run sync first\n", cfg.Output.ManifestPath)
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "Manifest %s, last updated %s\n", cfg.Output.ManifestPath, m.LastUpdated.Local().Format(time.RFC1123))

		client := &http.Client{Timeout: cctx.Duration("timeout")}
		failed := 0
		for _, st := range core.CheckManifest(cctx.Context, client, m) {
			if st.OK() {
				successColor.Fprintf(w, "  %-8s ok    %d keys  %s\n", st.Locale, st.Keys, st.URL)
				continue
			}
			failed++
			errorColor.Fprintf(w, "  %-8s FAIL  %v\n", st.Locale, st.Err)
		}
		if failed > 0 {
			warnColor.Fprintf(w, "%d of %d locales unreachable\n", failed, len(m.URLs))
		}
		return nil
	},
}

var checkCmd = &cli.Command{
	Name:  "check",
	Usage: "Verify credentials and connectivity",
	Subcommands: []*cli.Command{
		{
			Name:    "sheets",
			Aliases: []string{"source"},
			Usage:   "Read the configured source and print sample rows",
			Action:  checkSource,
		},
		{
			Name:   "cdn",
			Usage:  "Upload and delete a probe file on the configured asset host",
			Action: checkHost,
		},
	},
}

func checkSource(cctx *cli.Context) error {
	cfg, err := setup(cctx)
	if err != nil {
		return err
	}
	if err := cfg.RequireSource(); err != nil {
		return err
	}
	ctx, cancel := runContext(cctx.Context, cfg)
	defer cancel()
	w := cctx.App.Writer

	src, err := newSource(ctx, cfg)
	if err != nil {
		return err
	}

	if sh, ok := src.(*source.Sheets); ok {
		info, err := sh.Check(ctx)
		if err != nil {
			return err
		}
		successColor.Fprintf(w, "Spreadsheet %q is reachable\n", info.Title)
		fmt.Fprintf(w, "  sheets: %v\n", info.Sheets)
	}

	rows, err := src.Rows(ctx)
	if err != nil {
		return err
	}
	locales := core.Aggregate(rows)
	infoColor.Fprintf(w, "%s: %d rows, %d locales %v\n", src.Describe(), len(rows), locales.Len(), locales.Codes())

	for i, r := range rows {
		if i == sampleRows {
			fmt.Fprintf(w, "  ... %d more\n", len(rows)-sampleRows)
			break
		}
		fmt.Fprintf(w, "  %-6s %-30s %s\n", r.Locale, r.Key, r.Value)
	}
	return nil
}

func checkHost(cctx *cli.Context) error {
	cfg, err := setup(cctx)
	if err != nil {
		return err
	}
	if err := cfg.RequireHost(); err != nil {
		return err
	}
	ctx, cancel := runContext(cctx.Context, cfg)
	defer cancel()
	w := cctx.App.Writer

	host, err := cdn.FromConfig(cfg)
	if err != nil {
		return err
	}
	if err := host.Check(ctx); err != nil {
		return err
	}
	successColor.Fprintf(w, "%s credentials accepted\n", host.Name())

	id := path.Join(cfg.CDN.Folder, "_probe-"+uuid.NewString()[:8])
	if err := host.Upload(ctx, id, []byte(`{"probe":"langtool"}`)); err != nil {
		return fmt.Errorf("probe upload: %w", err)
	}
	fmt.Fprintf(w, "  uploaded probe %s\n", host.URL(id))

	if err := host.Delete(ctx, id); err != nil {
		warnColor.Fprintf(w, "  probe %s was not removed: %v\n", id, err)
		return nil
	}
	fmt.Fprintln(w, "  probe removed")
	return nil
}

var historyCmd = &cli.Command{
	Name:  "history",
	Usage: "List recorded sync runs (requires DATABASE_URL)",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "limit",
			Usage: "number of runs to show",
			Value: history.DefaultLimit,
		},
	},
	Action: func(cctx *cli.Context) error {
		cfg, err := setup(cctx)
		if err != nil {
			return err
		}
		if !cfg.HistoryEnabled() {
			return &config.MissingError{Groups: []string{"history"}, Names: []string{"DATABASE_URL"}}
		}

		store, err := openHistory(cctx.Context, cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.ListRuns(cctx.Context, cctx.Int("limit"))
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cctx.App.Writer, "No runs recorded yet.")
			return nil
		}

		tw := tabwriter.NewWriter(cctx.App.Writer, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "STARTED\tRESULT\tLOCALES\tDURATION\tRUN")
		for _, run := range runs {
			result := "ok"
			if !run.Success {
				result = "failed: " + run.Error
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
				run.StartedAt.Local().Format("2006-01-02 15:04:05"), result, len(run.Locales),
				run.Duration().Round(time.Millisecond), run.ID)
		}
		return tw.Flush()
	},
}
