// Package identity produces randomized browser request identities so that
// consecutive requests do not share one trivially correlatable fingerprint.
package identity

import (
	"math/rand/v2"
	"net/http"

	browser "github.com/EDDYCJY/fake-useragent"
)

// Identity is the set of headers a single request presents to a server.
type Identity struct {
	UserAgent      string
	Accept         string
	AcceptLanguage string
	AcceptEncoding string
}

// Apply writes the identity onto h, including a keep-alive Connection header.
func (id Identity) Apply(h http.Header) {
	h.Set("User-Agent", id.UserAgent)
	h.Set("Accept", id.Accept)
	h.Set("Accept-Language", id.AcceptLanguage)
	h.Set("Accept-Encoding", id.AcceptEncoding)
	h.Set("Connection", "keep-alive")
}

// Headers returns the identity as a plain header map.
func (id Identity) Headers() map[string]string {
	h := http.Header{}
	id.Apply(h)
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}

var (
	acceptValues = []string{
		"text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8",
		"text/html,*/*;q=0.9",
		"*/*",
	}
	languageValues = []string{
		"en-US,en;q=0.9",
		"en-GB,en;q=0.8",
		"en",
		"en-CA,en;q=0.9,fr-CA;q=0.7",
		"de-DE,de;q=0.9,en;q=0.6",
		"fr-FR,fr;q=0.9,en;q=0.5",
		"es-ES,es;q=0.9,en;q=0.4",
	}
	// Only codings the fetcher knows how to decode.
	encodingValues = []string{
		"gzip, deflate",
		"gzip",
		"deflate",
		"identity",
	}
)

// Generator builds a fresh Identity on every call. It is safe for concurrent use.
type Generator struct {
	userAgent func() string
	pick      func(n int) int
}

// Option configures a Generator.
type Option func(*Generator)

// WithUserAgentSource overrides where user agent strings come from.
func WithUserAgentSource(fn func() string) Option {
	return func(g *Generator) {
		g.userAgent = fn
	}
}

// WithRand makes header selection deterministic, mainly for tests.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) {
		g.pick = r.IntN
	}
}

// NewGenerator returns a Generator backed by the fake-useragent browser pool.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		userAgent: browser.Random,
		pick:      rand.IntN,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Next returns a newly generated identity.
func (g *Generator) Next() Identity {
	return Identity{
		UserAgent:      g.userAgent(),
		Accept:         acceptValues[g.pick(len(acceptValues))],
		AcceptLanguage: languageValues[g.pick(len(languageValues))],
		AcceptEncoding: encodingValues[g.pick(len(encodingValues))],
	}
}
