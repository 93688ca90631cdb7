package crawler

import (
	"context"

	"articlecrawl/internal/logger"
)

// processLink fetches one article URL and turns the outcome into a record.
// A fetch failure becomes a FetchFailed record; the error is returned only so
// the caller can tell cancellation apart from an ordinary failure.
func (s *Session) processLink(ctx context.Context, pageURL string) (Record, error) {
	s.emitProgress(pageURL)
	page, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		s.log.Warn("article fetch failed", logger.String("url", pageURL), logger.Error(err))
		return FailedRecord(s.profile.Name, pageURL, err, s.now()), err
	}
	rec := ExtractAt(pageURL, page, s.profile.SiteProfile, s.now())
	if rec.Status == StatusParseEmpty {
		s.log.Debug("no selector matched", logger.String("url", pageURL))
	}
	return rec, nil
}
