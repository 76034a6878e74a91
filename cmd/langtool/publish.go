package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/JonMunkholm/langtool/internal/core"
)

var outputFlag = &cli.StringFlag{
	Name:    "output",
	Aliases: []string{"o"},
	Usage:   "directory receiving <locale>.json files (overrides OUTPUT_DIR)",
}

var buildCmd = &cli.Command{
	Name:  "build",
	Usage: "Fetch translations and write locale files without uploading",
	Flags: []cli.Flag{outputFlag},
	Action: func(cctx *cli.Context) error {
		cfg, err := setup(cctx)
		if err != nil {
			return err
		}
		if err := cfg.RequireSource(); err != nil {
			return err
		}

		ctx, cancel := runContext(cctx.Context, cfg)
		defer cancel()

		src, err := newSource(ctx, cfg)
		if err != nil {
			return err
		}

		p := core.NewPipeline(src, nil, pipelineOptions(cfg, consoleNotifier{w: cctx.App.Writer})...)
		if dir := cctx.String("output"); dir != "" {
			p = p.InDir(dir)
		}

		locales, err := p.Build(ctx)
		if err != nil {
			return err
		}
		successColor.Fprintf(cctx.App.Writer, "Built %d locales in %s\n", locales.Len(), p.OutputDir())
		return nil
	},
}

var syncCmd = &cli.Command{
	Name:    "sync",
	Aliases: []string{"upload"},
	Usage:   "Fetch translations, upload every locale and write the URL manifest",
	Flags:   []cli.Flag{outputFlag},
	Action: func(cctx *cli.Context) error {
		cfg, err := setup(cctx)
		if err != nil {
			return err
		}

		ctx, cancel := runContext(cctx.Context, cfg)
		defer cancel()

		p, _, cleanup, err := publishingPipeline(ctx, cfg, consoleNotifier{w: cctx.App.Writer})
		if err != nil {
			return err
		}
		defer cleanup()

		if dir := cctx.String("output"); dir != "" {
			_, err = p.RunWithOutputDir(ctx, dir)
		} else {
			_, err = p.Run(ctx)
		}
		if err != nil {
			return fmt.Errorf("sync: %w", err)
		}
		return nil
	},
}
