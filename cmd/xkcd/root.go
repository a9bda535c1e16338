package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/glabrego/xkcd-cli/internal/app"
	"github.com/glabrego/xkcd-cli/internal/config"
	"github.com/glabrego/xkcd-cli/internal/explain"
	"github.com/glabrego/xkcd-cli/internal/search"
	"github.com/glabrego/xkcd-cli/internal/storage"
	"github.com/glabrego/xkcd-cli/internal/transport"
	"github.com/glabrego/xkcd-cli/internal/xkcd"
)

const userAgent = "xkcd-cli (+https://github.com/glabrego/xkcd-cli)"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "xkcd",
	Short: "Browse the xkcd archive from the terminal",
	Long: `xkcd browses the comic archive, searches it and shows community
explanations. Without a subcommand it starts the interactive browser.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBrowse(cmd.Context(), 0)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "path to the TOML config file")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env is everything a command needs, built from the loaded config.
type env struct {
	cfg      config.Config
	log      *slog.Logger
	http     *transport.Client
	comics   *xkcd.Client
	explain  *explain.Resolver
	searcher *search.Resolver
	repo     *storage.Repository
	closers  []io.Closer
}

// setup loads the config and builds the clients. When logTo is nil the
// logger writes to LogFile, or nowhere if none is configured, which keeps
// the alt-screen clean.
func setup(ctx context.Context, logTo io.Writer) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg}

	if logTo == nil {
		logTo = io.Discard
		if cfg.LogFile != "" {
			f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
			if err != nil {
				return nil, fmt.Errorf("open log file: %w", err)
			}
			e.closers = append(e.closers, f)
			logTo = f
		}
	}
	e.log = mustMakeLogger(cfg.LogLevel, logTo)

	e.http = transport.New(e.log, transport.Options{
		Timeout:           cfg.HTTPTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.FetchConcurrency,
		UserAgent:         userAgent,
	})
	e.comics = xkcd.NewClient(cfg.ComicBaseURL, e.http)
	e.explain = explain.NewResolver(explain.Config{WikiBaseURL: cfg.WikiBaseURL}, e.http)
	e.searcher = search.NewResolver(search.Config{Endpoint: cfg.SearchURL, APIKey: cfg.SearchAPIKey}, e.http)

	repo, err := storage.NewRepository(cfg.DBPath)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.closers = append(e.closers, repo)
	e.repo = repo

	initCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := repo.Init(initCtx); err != nil {
		e.Close()
		return nil, fmt.Errorf("storage schema error: %w", err)
	}
	return e, nil
}

func (e *env) controller() *app.Controller {
	ctrl := app.NewController(e.log, e.comics, e.searcher, e.explain)
	ctrl.SetLatestRecorder(e.repo)
	ctrl.SetFetchConcurrency(e.cfg.FetchConcurrency)
	return ctrl
}

func (e *env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		errs = append(errs, e.closers[i].Close())
	}
	return errors.Join(errs...)
}
