package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"articlecrawl/internal/config"
	"articlecrawl/internal/crawler"
	"articlecrawl/internal/identity"
	"articlecrawl/internal/logger"
	"articlecrawl/internal/sink"
)

func run(ctx context.Context, cli CLI, stdout, stderr io.Writer) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	applyOverrides(cfg, cli)
	if err := cfg.Validate(); err != nil {
		return err
	}

	profiles, err := cfg.SelectSites(cli.Site)
	if err != nil {
		return err
	}
	if cli.ListSites {
		printSites(stdout, profiles)
		return nil
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	out, closeSinks, err := buildSinks(ctx, cfg.Output, stdout)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeSinks(); cerr != nil {
			log.Error("close outputs", logger.Error(cerr))
		}
	}()

	crawlCfg := cfg.CrawlerConfig()
	fetcher := crawler.NewFetcher(crawlCfg.Timeout, crawlCfg.MaxBodyBytes,
		crawler.WithIdentities(identity.NewGenerator()),
		crawler.WithFetcherLogger(log.With(logger.String("component", "fetcher"))),
	)
	engine := crawler.NewEngine(crawlCfg, fetcher, out, log)
	report := engine.Run(ctx, profiles)

	if !cli.NoSummary {
		printSummary(stderr, report)
	}
	return nil
}

func applyOverrides(cfg *config.Config, cli CLI) {
	if cli.Workers > 0 {
		cfg.Crawl.Workers = cli.Workers
	}
	if cli.Parallel > 0 {
		cfg.Crawl.Sites = cli.Parallel
	}
	if cli.Timeout > 0 {
		cfg.Crawl.Timeout = cli.Timeout
	}
	if cli.RPM > 0 {
		cfg.Crawl.RequestsPerMinute = cli.RPM
	}
	if cli.MaxLinks > 0 {
		cfg.Crawl.MaxLinks = cli.MaxLinks
	}
	if cli.JSONL != "" {
		cfg.Output.JSONLines = cli.JSONL
	}
	if cli.MarkdownDir != "" {
		cfg.Output.MarkdownDir = cli.MarkdownDir
	}
	if cli.SQLite != "" {
		cfg.Output.SQLite = cli.SQLite
	}
	if cli.Quiet {
		off := false
		cfg.Output.Console = &off
	}
	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}
}

// buildSinks opens every configured output. The returned func closes them.
func buildSinks(ctx context.Context, out config.OutputConfig, stdout io.Writer) (crawler.Sink, func() error, error) {
	var (
		sinks   sink.Multi
		closers []sink.Closer
	)
	closeAll := func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c.Close())
		}
		return errors.Join(errs...)
	}

	if out.ConsoleEnabled() {
		sinks = append(sinks, sink.NewConsole(stdout))
	}
	if out.JSONLines != "" {
		j, err := sink.OpenJSONLines(out.JSONLines)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, j)
		closers = append(closers, j)
	}
	if out.MarkdownDir != "" {
		sinks = append(sinks, sink.NewMarkdown(out.MarkdownDir))
	}
	if out.SQLite != "" {
		db, err := sink.OpenSQLite(ctx, out.SQLite)
		if err != nil {
			_ = closeAll()
			return nil, nil, fmt.Errorf("open sqlite output: %w", err)
		}
		sinks = append(sinks, db)
		closers = append(closers, db)
	}
	return sinks, closeAll, nil
}
