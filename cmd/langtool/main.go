package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/JonMunkholm/langtool/internal/config"
	"github.com/JonMunkholm/langtool/internal/core"
	"github.com/JonMunkholm/langtool/internal/logging"
)

func main() {
	// first ctrl+c cancels the run, the second one exits
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-sigCh
		cancel()
		fmt.Fprintln(os.Stderr, "Received interrupt, stopping... Press CTRL+C again to force exit")
		<-sigCh
		os.Exit(1)
	}()

	app := newApp()
	if err := app.RunContext(ctx, os.Args); err != nil {
		printError(app.ErrWriter, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:                 "langtool",
		Usage:                "Publish spreadsheet translations as per-locale JSON files",
		EnableBashCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "dotenv file loaded before reading configuration",
				Value: ".env",
			},
		},
		Commands: []*cli.Command{
			initCmd,
			buildCmd,
			syncCmd,
			statusCmd,
			checkCmd,
			historyCmd,
			serveCmd,
		},
	}
}

// setup loads the dotenv file, reads configuration and configures logging.
// Every command except init starts here.
func setup(cctx *cli.Context) (*config.Config, error) {
	envFile := cctx.String("env-file")
	envErr := godotenv.Overload(envFile)

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if envErr != nil {
		slog.Debug("no dotenv file loaded, using environment variables", "path", envFile)
	} else {
		slog.Debug("loaded dotenv file", "path", envFile)
	}
	return cfg, nil
}

// runContext applies RUN_TIMEOUT to ctx.
func runContext(ctx context.Context, cfg *config.Config) (context.Context, context.CancelFunc) {
	if cfg.Run.Timeout > 0 {
		return context.WithTimeout(ctx, cfg.Run.Timeout)
	}
	return context.WithCancel(ctx)
}

func printError(w io.Writer, err error) {
	if w == nil {
		w = os.Stderr
	}
	slog.Debug("command failed", "error", err)
	color.New(color.FgRed).Fprintln(w, core.FormatUserError(err))
	fmt.Fprintf(w, "  %v\n", err)
}
