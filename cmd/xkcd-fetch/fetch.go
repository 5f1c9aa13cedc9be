package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"xkcdfetch/pkg/config"
	"xkcdfetch/pkg/logger"
	"xkcdfetch/pkg/metrics"
	"xkcdfetch/pkg/ratelimit"
	"xkcdfetch/pkg/scraper"
	"xkcdfetch/pkg/storage"
	"xkcdfetch/pkg/ui"
	"xkcdfetch/pkg/xkcd"
)

func runFetch(cmd *cobra.Command, opts *rootOptions, args []string) error {
	numbers := make([]int, 0, len(args))
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid comic number %q", arg)
		}
		numbers = append(numbers, n)
	}

	cfg, err := config.Load(opts.configFile, changedFlags(cmd, opts))
	if err != nil {
		return err
	}

	if err := logger.Initialize(&cfg.Logging, opts.stderr); err != nil {
		return err
	}
	log := logger.GetLogger()

	store, err := storage.NewStore(cfg.Cache.Dir(), cfg.Cache.DataFile, log)
	if err != nil {
		return err
	}
	logger.LogComponentStart(log, "xkcd-fetch", map[string]interface{}{
		"version":   version,
		"cache_dir": store.Dir(),
		"data_file": store.DataPath(),
		"base_url":  cfg.Network.BaseURL,
		"sleep":     cfg.Network.SleepTime.String(),
	})

	m := metrics.New()
	if cfg.Metrics.Addr != "" {
		stop := serveMetrics(cfg.Metrics.Addr, m, log)
		defer stop()
	}

	client := xkcd.NewClient(xkcd.Options{
		Endpoints: xkcd.Endpoints{
			Base:  cfg.Network.BaseURL,
			Image: cfg.Network.ImageBaseURL,
		},
		UserAgent:  cfg.Network.UserAgent,
		Timeout:    cfg.Network.Timeout,
		MaxRetries: cfg.Network.MaxRetries,
		RetryDelay: cfg.Network.RetryDelay,
		Metrics:    m,
		Logger:     log,
	})

	reporter := ui.NewReporter(opts.stderr, opts.quiet)
	s, err := scraper.New(scraper.Options{
		Client:            client,
		Extractor:         xkcd.PageLayout{},
		Images:            store,
		Limiter:           ratelimit.NewDelayLimiter(cfg.Network.SleepTime),
		Progress:          reporter,
		Metrics:           m,
		Logger:            log,
		NotFoundCacheSize: cfg.Cache.NotFoundCacheSize,
	})
	if err != nil {
		return err
	}

	ctx, stopWatching := watchInterrupts(cmd.Context(), reporter)
	defer stopWatching()

	req := scraper.Request{CacheAll: opts.cacheAll, Numbers: numbers}
	err = s.Run(ctx, store, req, opts.stdout)

	stats := reporter.Stats()
	fields := map[string]interface{}{
		"archive_fetches": stats.ArchiveFetches,
		"comic_fetches":   stats.ComicFetches,
		"elapsed":         stats.Elapsed.String(),
		"interrupted":     stats.Interrupted,
	}
	switch {
	case err == nil:
		log.InfoWithFields("Run completed", fields)
		return nil
	case errors.Is(err, context.Canceled):
		log.InfoWithFields("Run interrupted", fields)
		return nil
	default:
		log.WithError(err).ErrorWithFields("Run failed", fields)
		return err
	}
}

// changedFlags collects the flags set on the command line for
// config.MergeCommandLineFlags.
func changedFlags(cmd *cobra.Command, opts *rootOptions) map[string]interface{} {
	flags := make(map[string]interface{})
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if changed("sleep-time") {
		flags["sleep-time"] = opts.sleepTime
	}
	if changed("timeout") {
		flags["timeout"] = opts.timeout
	}
	if changed("max-retries") {
		flags["max-retries"] = opts.maxRetries
	}
	if changed("log-level") {
		flags["log-level"] = opts.logLevel
	}
	if changed("metrics-addr") {
		flags["metrics-addr"] = opts.metricsAddr
	}
	if opts.quiet {
		flags["quiet"] = true
	}
	return flags
}
