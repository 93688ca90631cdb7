package crawler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"articlecrawl/internal/logger"
)

// PageFetcher fetches and parses one page.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (*Page, error)
}

// Session crawls one site: seed fetch, link discovery, then per-link
// fetch and extraction with records streamed to the sink in discovery order.
type Session struct {
	id      string
	profile *compiledProfile
	cfg     Config
	fetcher PageFetcher
	sink    Sink
	log     logger.Logger
	visited *VisitedSet
	now     func() time.Time

	mu    sync.Mutex
	state SessionState
	stats Stats
}

// NewSession validates profile and prepares a session around it.
func NewSession(id string, profile SiteProfile, cfg Config, fetcher PageFetcher, sink Sink, log logger.Logger) (*Session, error) {
	compiled, err := compileProfile(profile)
	if err != nil {
		return nil, err
	}
	if fetcher == nil {
		return nil, fmt.Errorf("site %q: fetcher is required", profile.Name)
	}
	if sink == nil {
		sink = SinkFunc(func(Record) error { return nil })
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Session{
		id:      id,
		profile: compiled,
		cfg:     cfg.withDefaults(),
		fetcher: fetcher,
		sink:    sink,
		log:     log,
		visited: NewVisitedSet(),
		now:     time.Now,
		state:   StateIdle,
	}, nil
}

// Visited exposes the session's dedupe set.
func (s *Session) Visited() *VisitedSet {
	return s.visited
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(state SessionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	s.log.Debug("session state", logger.String("state", string(state)))
}

// Run crawls the site to completion. Failures are reported in the returned
// SessionReport, never raised.
func (s *Session) Run(ctx context.Context) SessionReport {
	started := s.now()
	report := SessionReport{
		ID:        s.id,
		Site:      s.profile.Name,
		SeedURL:   s.profile.SeedURL,
		StartedAt: started,
	}

	s.setState(StateSeedFetching)
	s.emitProgress(s.profile.SeedURL)
	seed, err := s.fetcher.Fetch(ctx, s.profile.SeedURL)
	if err != nil {
		s.setState(StateSeedFailed)
		report.Err = fmt.Errorf("%w: %w", ErrSeedUnavailable, err)
		return s.finish(report, started)
	}

	s.setState(StateDiscovering)
	s.crawlLinks(ctx, seed)
	if ctx.Err() != nil {
		report.Err = ctx.Err()
	}
	s.setState(StateDone)
	return s.finish(report, started)
}

func (s *Session) finish(report SessionReport, started time.Time) SessionReport {
	finished := s.now()
	report.State = s.State()
	report.FinishedAt = finished
	report.Stats = s.collectStats(finished.Sub(started))
	return report
}

type linkJob struct {
	index int
	url   string
}

type linkResult struct {
	index   int
	record  Record
	skipped bool
}

// crawlLinks dispatches unique discovered links to the worker pool and waits
// until every dispatched link has been emitted or skipped.
func (s *Session) crawlLinks(ctx context.Context, seed *Page) {
	workers := s.cfg.Workers
	limiter := newLinkLimiter(s.cfg.RequestsPerMinute, workers)

	jobs := make(chan linkJob, workers*2)
	results := make(chan linkResult, workers*2)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go s.linkWorker(ctx, limiter, jobs, results, &wg)
	}

	collected := make(chan struct{})
	go func() {
		defer close(collected)
		s.collect(results)
	}()

	s.dispatch(ctx, seed, jobs)
	close(jobs)
	wg.Wait()
	close(results)
	<-collected
}

func (s *Session) dispatch(ctx context.Context, seed *Page, jobs chan<- linkJob) {
	index := 0
	for link := range s.profile.discover(seed) {
		s.recordDiscovered()
		if s.cfg.MaxLinks > 0 && index >= s.cfg.MaxLinks {
			if s.visited.Has(link) {
				s.recordDuplicate()
			} else {
				s.recordSkippedLimit()
			}
			continue
		}
		if !s.visited.Reserve(link) {
			s.recordDuplicate()
			continue
		}
		if index == 0 {
			s.setState(StatePerLink)
		}
		select {
		case <-ctx.Done():
			return
		case jobs <- linkJob{index: index, url: link}:
			index++
		}
	}
}

// collect emits results strictly by dispatch index.
func (s *Session) collect(results <-chan linkResult) {
	pending := map[int]linkResult{}
	next := 0
	for res := range results {
		pending[res.index] = res
		for {
			ready, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			if !ready.skipped {
				s.emit(ready.record)
			}
		}
	}
}

func (s *Session) emit(rec Record) {
	if !s.visited.Store(rec) {
		return
	}
	s.recordEmitted(rec.Status)
	if err := s.sink.Accept(rec); err != nil {
		s.recordSinkError()
		s.log.Error("sink rejected record", logger.String("url", rec.URL), logger.Error(err))
	}
}

func (s *Session) emitProgress(u string) {
	if s.cfg.Progress == nil {
		return
	}
	s.cfg.Progress(u)
}
