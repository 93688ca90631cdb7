package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"articlecrawl/internal/logger"
)

func TestSessionCollapsesDuplicateLinks(t *testing.T) {
	t.Parallel()

	rt := newSiteTransport(map[string]fakePage{
		"/":        {body: listingHTML("/news/a1", "/news/a1", "/news/a2")},
		"/news/a1": {body: articleHTML("First", "Ann", "Monday", "A")},
		"/news/a2": {body: articleHTML("Second", "Bob", "Tuesday", "B")},
	})
	sink := &recordingSink{}
	s, report := runSession(t, newsProfile(), Config{Workers: 2}, rt, sink)

	require.NoError(t, report.Err)
	assert.Equal(t, StateDone, report.State)
	assert.Equal(t, []string{"https://x.test/news/a1", "https://x.test/news/a2"}, sink.urls())
	assert.Equal(t, 1, rt.hitCount("/news/a1"))
	assert.Equal(t, 3, report.Stats.LinksDiscovered)
	assert.Equal(t, 1, report.Stats.DuplicatesSkipped)
	assert.Equal(t, 2, report.Stats.RecordsEmitted)
	assert.Equal(t, s.Visited().Len(), len(sink.urls()))
	assert.Equal(t, []string{"https://x.test/news/a1", "https://x.test/news/a2"}, s.Visited().Keys())

	stored, ok := s.Visited().Get("https://x.test/news/a2")
	require.True(t, ok)
	assert.Equal(t, "Second", stored.Title)
}

func TestSessionRelativeLinksStartWithOrigin(t *testing.T) {
	t.Parallel()

	rt := newSiteTransport(map[string]fakePage{
		"/":        {body: listingHTML("/news/a1", "/news/b2", "/news/c3")},
		"/news/a1": {body: articleHTML("a", "", "", "x")},
		"/news/b2": {body: articleHTML("b", "", "", "x")},
		"/news/c3": {body: articleHTML("c", "", "", "x")},
	})
	sink := &recordingSink{}
	runSession(t, newsProfile(), Config{}, rt, sink)

	require.Len(t, sink.all(), 3)
	for _, rec := range sink.all() {
		assert.True(t, strings.HasPrefix(rec.URL, "https://x.test/news/"), rec.URL)
	}
}

func TestSessionPerLink404BecomesFailedRecord(t *testing.T) {
	t.Parallel()

	rt := newSiteTransport(map[string]fakePage{
		"/":        {body: listingHTML("/news/gone", "/news/ok")},
		"/news/ok": {body: articleHTML("Fine", "", "", "body")},
	})
	sink := &recordingSink{}
	_, report := runSession(t, newsProfile(), Config{Workers: 1}, rt, sink)

	records := sink.all()
	require.Len(t, records, 2)
	gone := records[0]
	assert.Equal(t, "https://x.test/news/gone", gone.URL)
	assert.Equal(t, StatusFetchFailed, gone.Status)
	assert.Equal(t, TitleNotFound, gone.Title)
	assert.Equal(t, "", gone.Body)
	assert.Equal(t, "status 404", gone.FetchError)
	assert.Equal(t, StatusOK, records[1].Status)
	assert.Equal(t, 1, report.Stats.FetchFailed)
	assert.NoError(t, report.Err)
}

func TestSessionSeedFailureEmitsNothing(t *testing.T) {
	t.Parallel()

	rt := newSiteTransport(map[string]fakePage{
		"/": {status: http.StatusServiceUnavailable},
	})
	sink := &recordingSink{}
	s, report := runSession(t, newsProfile(), Config{}, rt, sink)

	assert.Empty(t, sink.all())
	assert.Equal(t, StateSeedFailed, report.State)
	assert.ErrorIs(t, report.Err, ErrSeedUnavailable)
	assert.ErrorIs(t, report.Err, ErrHTTPStatus)
	assert.Equal(t, 0, s.Visited().Len())
}

func TestSessionEmitsInDiscoveryOrderUnderConcurrency(t *testing.T) {
	t.Parallel()

	const n = 12
	pages := map[string]fakePage{}
	hrefs := make([]string, 0, n)
	for i := 0; i < n; i++ {
		path := fmt.Sprintf("/news/%02d", i)
		hrefs = append(hrefs, path)
		pages[path] = fakePage{
			body:  articleHTML(fmt.Sprintf("T%02d", i), "", "", "p"),
			delay: time.Duration(n-i) * 5 * time.Millisecond,
		}
	}
	pages["/"] = fakePage{body: listingHTML(hrefs...)}
	rt := newSiteTransport(pages)

	sink := &recordingSink{}
	_, report := runSession(t, newsProfile(), Config{Workers: 4}, rt, sink)

	require.Equal(t, n, report.Stats.RecordsEmitted)
	for i, rec := range sink.all() {
		assert.Equal(t, fmt.Sprintf("T%02d", i), rec.Title)
	}
	assert.LessOrEqual(t, rt.maxParallel(), 4)
	assert.Greater(t, rt.maxParallel(), 1)
}

func TestSessionMaxLinks(t *testing.T) {
	t.Parallel()

	rt := newSiteTransport(map[string]fakePage{
		"/":       {body: listingHTML("/news/1", "/news/2", "/news/1", "/news/3")},
		"/news/1": {body: articleHTML("1", "", "", "x")},
		"/news/2": {body: articleHTML("2", "", "", "x")},
		"/news/3": {body: articleHTML("3", "", "", "x")},
	})
	sink := &recordingSink{}
	_, report := runSession(t, newsProfile(), Config{MaxLinks: 2}, rt, sink)

	assert.Equal(t, []string{"https://x.test/news/1", "https://x.test/news/2"}, sink.urls())
	assert.Equal(t, 1, report.Stats.DuplicatesSkipped)
	assert.Equal(t, 1, report.Stats.SkippedByLimit)
	assert.Equal(t, 0, rt.hitCount("/news/3"))
}

func TestSessionSinkErrorsDoNotStopCrawl(t *testing.T) {
	t.Parallel()

	rt := newSiteTransport(map[string]fakePage{
		"/":       {body: listingHTML("/news/1", "/news/2")},
		"/news/1": {body: articleHTML("1", "", "", "x")},
		"/news/2": {body: articleHTML("2", "", "", "x")},
	})
	sink := &recordingSink{fail: map[string]error{"https://x.test/news/1": errors.New("disk full")}}
	_, report := runSession(t, newsProfile(), Config{}, rt, sink)

	assert.Len(t, sink.all(), 2)
	assert.Equal(t, 1, report.Stats.SinkErrors)
	assert.NoError(t, report.Err)
}

func TestSessionCancellationStopsNewFetches(t *testing.T) {
	t.Parallel()

	const n = 30
	pages := map[string]fakePage{}
	hrefs := make([]string, 0, n)
	for i := 0; i < n; i++ {
		path := fmt.Sprintf("/news/%d", i)
		hrefs = append(hrefs, path)
		pages[path] = fakePage{body: articleHTML("t", "", "", "p"), delay: 20 * time.Millisecond}
	}
	pages["/"] = fakePage{body: listingHTML(hrefs...)}
	rt := newSiteTransport(pages)

	ctx, cancel := context.WithCancel(context.Background())
	var emitted atomic.Int32
	sink := SinkFunc(func(Record) error {
		if emitted.Add(1) == 3 {
			cancel()
		}
		return nil
	})
	s, err := NewSession("cancel", newsProfile(), Config{Workers: 1}, testFetcher(rt, time.Second), sink, logger.NewNop())
	require.NoError(t, err)

	done := make(chan SessionReport, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case report := <-done:
		assert.ErrorIs(t, report.Err, context.Canceled)
		assert.Less(t, int(emitted.Load()), n)
		assert.Equal(t, int(emitted.Load()), s.Visited().Len())
	case <-time.After(5 * time.Second):
		t.Fatal("session did not stop after cancellation")
	}
}

func TestSessionRateLimitPacesRequests(t *testing.T) {
	t.Parallel()

	rt := newSiteTransport(map[string]fakePage{
		"/":       {body: listingHTML("/news/1", "/news/2", "/news/3")},
		"/news/1": {body: articleHTML("1", "", "", "x")},
		"/news/2": {body: articleHTML("2", "", "", "x")},
		"/news/3": {body: articleHTML("3", "", "", "x")},
	})
	start := time.Now()
	_, report := runSession(t, newsProfile(), Config{Workers: 1, RequestsPerMinute: 600}, rt, &recordingSink{})

	assert.Equal(t, 3, report.Stats.RecordsEmitted)
	// one token up front, then one per 100ms
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestNewSessionRejectsInvalidProfile(t *testing.T) {
	t.Parallel()

	p := newsProfile()
	p.LinkPattern = "("
	_, err := NewSession("bad", p, Config{}, testFetcher(newSiteTransport(nil), time.Second), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid link pattern")
}

func TestSessionProgressCallback(t *testing.T) {
	t.Parallel()

	rt := newSiteTransport(map[string]fakePage{
		"/":       {body: listingHTML("/news/1")},
		"/news/1": {body: articleHTML("1", "", "", "x")},
	})
	var seen []string
	cfg := Config{Workers: 1, Progress: func(u string) { seen = append(seen, u) }}
	runSession(t, newsProfile(), cfg, rt, &recordingSink{})

	assert.Equal(t, []string{"https://x.test", "https://x.test/news/1"}, seen)
}
