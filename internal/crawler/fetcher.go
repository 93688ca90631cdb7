package crawler

import (
	"bufio"
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"articlecrawl/internal/identity"
	"articlecrawl/internal/logger"
)

// IdentitySource hands out a request identity per call.
type IdentitySource interface {
	Next() identity.Identity
}

// Fetcher performs single GET requests with a fresh identity each time.
type Fetcher struct {
	client     *resty.Client
	identities IdentitySource
	maxBody    int64
	log        logger.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithTransport replaces the HTTP transport, mostly for tests.
func WithTransport(rt http.RoundTripper) FetcherOption {
	return func(f *Fetcher) {
		f.client.SetTransport(rt)
	}
}

// WithIdentities replaces the identity source.
func WithIdentities(src IdentitySource) FetcherOption {
	return func(f *Fetcher) {
		f.identities = src
	}
}

// WithFetcherLogger sets the logger used for request diagnostics.
func WithFetcherLogger(l logger.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.log = l
		f.client.SetLogger(restyLogger{l})
	}
}

// NewFetcher builds a Fetcher with the given timeout and body cap.
// Non-positive values fall back to defaults.
func NewFetcher(timeout time.Duration, maxBody int64, opts ...FetcherOption) *Fetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRetryCount(0)

	f := &Fetcher{
		client:     client,
		identities: identity.NewGenerator(),
		maxBody:    maxBody,
		log:        logger.NewNop(),
	}
	client.SetLogger(restyLogger{f.log})
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch issues one GET for pageURL. It returns a parsed page only for a 200
// response; every other outcome is a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	start := time.Now()
	id := f.identities.Next()

	res, err := f.client.R().
		SetContext(ctx).
		SetHeaders(id.Headers()).
		SetDoNotParseResponse(true).
		Get(pageURL)
	if err != nil {
		f.log.Debug("fetch failed", logger.String("url", pageURL), logger.Error(err))
		return nil, transportError(pageURL, err)
	}
	raw := res.RawBody()
	if raw == nil {
		return nil, transportError(pageURL, fmt.Errorf("empty response body"))
	}
	defer raw.Close()

	if res.StatusCode() != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(raw, f.maxBody))
		f.log.Debug("unexpected status",
			logger.String("url", pageURL),
			logger.Int("status", res.StatusCode()),
		)
		return nil, statusError(pageURL, res.StatusCode())
	}

	body, err := f.readBody(pageURL, res.Header().Get("Content-Encoding"), raw)
	if err != nil {
		return nil, transportError(pageURL, err)
	}
	page, err := ParsePage(pageURL, bytes.NewReader(body))
	if err != nil {
		return nil, transportError(pageURL, err)
	}
	f.log.Debug("fetched",
		logger.String("url", pageURL),
		logger.Duration("duration", time.Since(start)),
	)
	return page, nil
}

// readBody decodes raw and returns at most maxBody bytes of the decoded
// page. A longer page is cut at the cap.
func (f *Fetcher) readBody(pageURL, encoding string, raw io.Reader) ([]byte, error) {
	decoded, err := decodeBody(encoding, raw)
	if err != nil {
		return nil, err
	}
	defer decoded.Close()

	body, err := io.ReadAll(io.LimitReader(decoded, f.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBody {
		f.log.Warn("response body truncated",
			logger.String("url", pageURL),
			logger.Int("max_body_bytes", int(f.maxBody)),
		)
		body = body[:f.maxBody]
	}
	return body, nil
}

// decodeBody undoes the content codings advertised by the identity headers.
// Setting Accept-Encoding by hand turns off net/http's transparent gzip.
func decodeBody(encoding string, body io.Reader) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("gzip body: %w", err)
		}
		return zr, nil
	case "deflate":
		br := bufio.NewReader(body)
		if header, err := br.Peek(2); err == nil && isZlibHeader(header) {
			zr, err := zlib.NewReader(br)
			if err != nil {
				return nil, fmt.Errorf("deflate body: %w", err)
			}
			return zr, nil
		}
		return flate.NewReader(br), nil
	default:
		return io.NopCloser(body), nil
	}
}

func isZlibHeader(b []byte) bool {
	return b[0]&0x0f == 8 && (uint16(b[0])<<8|uint16(b[1]))%31 == 0
}

type restyLogger struct {
	log logger.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.log.Error(fmt.Sprintf(format, v...))
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.log.Warn(fmt.Sprintf(format, v...))
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.log.Debug(fmt.Sprintf(format, v...))
}
