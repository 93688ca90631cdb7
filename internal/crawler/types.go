package crawler

import (
	"time"
)

const (
	defaultWorkers      = 4
	defaultTimeout      = 15 * time.Second
	defaultMaxBodyBytes = 5 * 1024 * 1024

	// TitleNotFound is the title of a record whose page could not be fetched.
	TitleNotFound = "Title not found"
	// DateNotFound is the date of a record whose date selector matched nothing.
	DateNotFound = "Date not found"
)

// SiteProfile is the declarative extraction configuration for one site.
type SiteProfile struct {
	Name           string `yaml:"name"`
	SeedURL        string `yaml:"url"`
	LinkPattern    string `yaml:"target_pattern"`
	IsAbsoluteLink bool   `yaml:"absolute_url"`
	TitleSelector  string `yaml:"title_tag"`
	BodySelector   string `yaml:"body_tag"`
	AuthorSelector string `yaml:"author_tag"`
	DateSelector   string `yaml:"date_tag"`
}

// Status classifies the outcome of one extraction attempt.
type Status string

const (
	// StatusOK means the page was fetched and at least one selector matched.
	StatusOK Status = "ok"
	// StatusFetchFailed means the page could not be fetched.
	StatusFetchFailed Status = "fetch_failed"
	// StatusParseEmpty means the page was fetched but no selector matched.
	StatusParseEmpty Status = "parse_empty"
)

// Record is the normalized result of one article URL.
type Record struct {
	Site       string    `json:"site"`
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Author     string    `json:"author"`
	Date       string    `json:"date"`
	Status     Status    `json:"status"`
	BodyHTML   string    `json:"-"`
	FetchError string    `json:"fetch_error,omitempty"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// Sink receives completed records. Accept is called once per unique URL per
// session, in discovery order.
type Sink interface {
	Accept(rec Record) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(rec Record) error

// Accept calls f(rec).
func (f SinkFunc) Accept(rec Record) error {
	return f(rec)
}

// Config defines the tunables shared by every session of a run.
type Config struct {
	// Workers bounds concurrent per-link fetches within one session.
	Workers int
	// Sites bounds how many sessions run at once. 1 crawls sites in order.
	Sites int
	// Timeout applies to every single fetch.
	Timeout time.Duration
	// RequestsPerMinute paces per-link fetches of a session. 0 disables pacing.
	RequestsPerMinute int
	// MaxBodyBytes caps how much of a response body is parsed.
	MaxBodyBytes int64
	// MaxLinks caps unique links processed per session. 0 means no cap.
	MaxLinks int
	// Progress, if set, is called with every URL as it is fetched.
	Progress func(string)
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	if c.Sites <= 0 {
		c.Sites = 1
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.RequestsPerMinute < 0 {
		c.RequestsPerMinute = 0
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = defaultMaxBodyBytes
	}
	if c.MaxLinks < 0 {
		c.MaxLinks = 0
	}
	return c
}

// SessionState is the lifecycle position of a crawl session.
type SessionState string

const (
	StateIdle         SessionState = "idle"
	StateSeedFetching SessionState = "seed_fetching"
	StateSeedFailed   SessionState = "seed_failed"
	StateDiscovering  SessionState = "discovering"
	StatePerLink      SessionState = "per_link"
	StateDone         SessionState = "done"
)

// Stats aggregates session level counters.
type Stats struct {
	LinksDiscovered   int
	UniqueLinks       int
	DuplicatesSkipped int
	SkippedByLimit    int
	RecordsEmitted    int
	FetchFailed       int
	ParseEmpty        int
	SinkErrors        int
	Duration          time.Duration
}

// SessionReport captures the outcome of one site's crawl.
type SessionReport struct {
	ID         string
	Site       string
	SeedURL    string
	State      SessionState
	Err        error
	Stats      Stats
	StartedAt  time.Time
	FinishedAt time.Time
}

// Report captures the outcome of an engine run.
type Report struct {
	Sessions   []SessionReport
	StartedAt  time.Time
	FinishedAt time.Time
}
