package crawler

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"articlecrawl/internal/logger"
)

// Engine runs one Session per SiteProfile.
type Engine struct {
	cfg     Config
	fetcher PageFetcher
	sink    Sink
	log     logger.Logger
	newID   func() string
}

// NewEngine builds an engine. The sink must be safe for concurrent use when
// cfg.Sites is greater than one.
func NewEngine(cfg Config, fetcher PageFetcher, sink Sink, log logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNop()
	}
	return &Engine{
		cfg:     cfg.withDefaults(),
		fetcher: fetcher,
		sink:    sink,
		log:     log,
		newID:   uuid.NewString,
	}
}

// Run crawls every profile and returns one report per profile, in input
// order. No site's failure stops the others.
func (e *Engine) Run(ctx context.Context, profiles []SiteProfile) *Report {
	report := &Report{
		Sessions:  make([]SessionReport, len(profiles)),
		StartedAt: time.Now(),
	}

	var g errgroup.Group
	g.SetLimit(e.cfg.Sites)
	for i, profile := range profiles {
		g.Go(func() error {
			report.Sessions[i] = e.runSession(ctx, profile)
			return nil
		})
	}
	_ = g.Wait()

	report.FinishedAt = time.Now()
	e.log.Info("crawl finished",
		logger.Int("sites", len(profiles)),
		logger.Int("failed_sites", len(report.Failed())),
		logger.Int("records", report.Totals().RecordsEmitted),
		logger.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report
}

func (e *Engine) runSession(ctx context.Context, profile SiteProfile) SessionReport {
	id := e.newID()
	log := e.log.With(logger.String("site", profile.Name), logger.String("session_id", id))

	if ctx.Err() != nil {
		return SessionReport{ID: id, Site: profile.Name, SeedURL: profile.SeedURL, State: StateIdle, Err: ctx.Err()}
	}

	session, err := NewSession(id, profile, e.cfg, e.fetcher, e.sink, log)
	if err != nil {
		log.Error("invalid site profile", logger.Error(err))
		return SessionReport{ID: id, Site: profile.Name, SeedURL: profile.SeedURL, State: StateIdle, Err: err}
	}

	log.Info("crawl started", logger.String("seed", profile.SeedURL))
	sr := session.Run(ctx)
	switch {
	case errors.Is(sr.Err, ErrSeedUnavailable):
		log.Warn("site skipped, seed unavailable", logger.Error(sr.Err))
	case sr.Err != nil:
		log.Warn("crawl interrupted", logger.Error(sr.Err), logger.Int("records", sr.Stats.RecordsEmitted))
	default:
		log.Info("crawl done",
			logger.Int("links", sr.Stats.LinksDiscovered),
			logger.Int("duplicates", sr.Stats.DuplicatesSkipped),
			logger.Int("records", sr.Stats.RecordsEmitted),
			logger.Int("fetch_failed", sr.Stats.FetchFailed),
			logger.Duration("duration", sr.Stats.Duration),
		)
	}
	return sr
}
