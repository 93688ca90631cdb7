package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"articlecrawl/internal/identity"
	"articlecrawl/internal/logger"
)

const testHost = "x.test"

type fakePage struct {
	status int
	body   string
	delay  time.Duration
	err    error
}

// siteTransport serves fixed pages for one host and records every request.
type siteTransport struct {
	mu       sync.Mutex
	pages    map[string]fakePage
	hits     map[string]int
	headers  []http.Header
	inFlight int
	maxPar   int
}

func newSiteTransport(pages map[string]fakePage) *siteTransport {
	return &siteTransport{pages: pages, hits: map[string]int{}}
}

func (st *siteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Host != testHost {
		return nil, fmt.Errorf("unexpected host: %s", req.URL.Host)
	}
	path := req.URL.Path
	if path == "" {
		path = "/"
	}
	st.mu.Lock()
	st.hits[path]++
	st.headers = append(st.headers, req.Header.Clone())
	st.inFlight++
	if st.inFlight > st.maxPar {
		st.maxPar = st.inFlight
	}
	page, ok := st.pages[path]
	st.mu.Unlock()

	defer func() {
		st.mu.Lock()
		st.inFlight--
		st.mu.Unlock()
	}()

	if !ok {
		return newStringResponse(req, http.StatusNotFound, "not found"), nil
	}
	if page.delay > 0 {
		select {
		case <-time.After(page.delay):
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
	}
	if page.err != nil {
		return nil, page.err
	}
	status := page.status
	if status == 0 {
		status = http.StatusOK
	}
	return newStringResponse(req, status, page.body), nil
}

func (st *siteTransport) hitCount(path string) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.hits[path]
}

func (st *siteTransport) maxParallel() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.maxPar
}

func newStringResponse(req *http.Request, status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
		Request:    req,
	}
}

func testFetcher(rt http.RoundTripper, timeout time.Duration) *Fetcher {
	gen := identity.NewGenerator(identity.WithUserAgentSource(func() string { return "test-agent/1.0" }))
	return NewFetcher(timeout, 0, WithTransport(rt), WithIdentities(gen), WithFetcherLogger(logger.NewNop()))
}

// recordingSink collects records in arrival order.
type recordingSink struct {
	mu      sync.Mutex
	records []Record
	fail    map[string]error
}

func (r *recordingSink) Accept(rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	if err, ok := r.fail[rec.URL]; ok {
		return err
	}
	return nil
}

func (r *recordingSink) urls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.URL
	}
	return out
}

func (r *recordingSink) all() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Record(nil), r.records...)
}

func newsProfile() SiteProfile {
	return SiteProfile{
		Name:           "X",
		SeedURL:        "https://" + testHost,
		LinkPattern:    `^/news/`,
		IsAbsoluteLink: false,
		TitleSelector:  "h1",
		BodySelector:   "div.article p",
		AuthorSelector: "span.byline",
		DateSelector:   "time",
	}
}

func articleHTML(title, author, date string, paragraphs ...string) string {
	var sb strings.Builder
	sb.WriteString("<!doctype html><html><body>")
	fmt.Fprintf(&sb, "<h1>%s</h1>", title)
	if author != "" {
		fmt.Fprintf(&sb, `<span class="byline">%s</span>`, author)
	}
	if date != "" {
		fmt.Fprintf(&sb, "<time>%s</time>", date)
	}
	sb.WriteString(`<div class="article">`)
	for _, p := range paragraphs {
		fmt.Fprintf(&sb, "<p>%s</p>", p)
	}
	sb.WriteString("</div></body></html>")
	return sb.String()
}

func listingHTML(hrefs ...string) string {
	var sb strings.Builder
	sb.WriteString("<!doctype html><html><body><nav><a href=\"/about\">About</a></nav><ul>")
	for _, h := range hrefs {
		fmt.Fprintf(&sb, `<li><a href="%s">%s</a></li>`, h, h)
	}
	sb.WriteString("</ul></body></html>")
	return sb.String()
}

func mustParse(t *testing.T, html string) *Page {
	t.Helper()
	page, err := ParsePageString("https://"+testHost+"/", html)
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	return page
}

func runSession(t *testing.T, profile SiteProfile, cfg Config, rt http.RoundTripper, sink Sink) (*Session, SessionReport) {
	t.Helper()
	s, err := NewSession("test-session", profile, cfg, testFetcher(rt, time.Second), sink, logger.NewNop())
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s, s.Run(context.Background())
}
