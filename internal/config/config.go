// Package config loads crawler settings and site profiles from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"articlecrawl/internal/crawler"
	"articlecrawl/internal/logger"
)

// Config is the root of the YAML configuration file.
type Config struct {
	Logging logger.Config         `yaml:"logging"`
	Crawl   CrawlConfig           `yaml:"crawl"`
	Output  OutputConfig          `yaml:"output"`
	Sites   []crawler.SiteProfile `yaml:"sites"`
}

// CrawlConfig holds engine tunables.
type CrawlConfig struct {
	Workers           int           `yaml:"workers"`
	Sites             int           `yaml:"sites"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes"`
	MaxLinks          int           `yaml:"max_links"`
}

// OutputConfig selects record sinks. Console output is on unless disabled.
type OutputConfig struct {
	Console     *bool  `yaml:"console"`
	JSONLines   string `yaml:"jsonl"`
	MarkdownDir string `yaml:"markdown_dir"`
	SQLite      string `yaml:"sqlite"`
}

// Default values.
const (
	DefaultWorkers = 4
	DefaultSites   = 1
	DefaultTimeout = 15 * time.Second
)

// ConsoleEnabled reports whether records are printed to stdout.
func (o OutputConfig) ConsoleEnabled() bool {
	return o.Console == nil || *o.Console
}

// Default returns a configuration with the built-in site profiles.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// Load reads path. An empty path yields Default().
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetDefaults fills unset values.
func (c *Config) SetDefaults() {
	c.Logging.SetDefaults()
	if c.Crawl.Workers <= 0 {
		c.Crawl.Workers = DefaultWorkers
	}
	if c.Crawl.Sites <= 0 {
		c.Crawl.Sites = DefaultSites
	}
	if c.Crawl.Timeout <= 0 {
		c.Crawl.Timeout = DefaultTimeout
	}
	if len(c.Sites) == 0 {
		c.Sites = BuiltinSites()
	}
}

// Validate checks tunables and every site profile.
func (c *Config) Validate() error {
	var errs []error
	if c.Crawl.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("crawl.requests_per_minute must not be negative"))
	}
	if c.Crawl.MaxLinks < 0 {
		errs = append(errs, errors.New("crawl.max_links must not be negative"))
	}
	if c.Crawl.MaxBodyBytes < 0 {
		errs = append(errs, errors.New("crawl.max_body_bytes must not be negative"))
	}
	names := map[string]struct{}{}
	for _, site := range c.Sites {
		if err := site.Validate(); err != nil {
			errs = append(errs, err)
		}
		if _, dup := names[site.Name]; dup && site.Name != "" {
			errs = append(errs, fmt.Errorf("site %q defined more than once", site.Name))
		}
		names[site.Name] = struct{}{}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// CrawlerConfig converts the crawl section into engine settings.
func (c *Config) CrawlerConfig() crawler.Config {
	return crawler.Config{
		Workers:           c.Crawl.Workers,
		Sites:             c.Crawl.Sites,
		Timeout:           c.Crawl.Timeout,
		RequestsPerMinute: c.Crawl.RequestsPerMinute,
		MaxBodyBytes:      c.Crawl.MaxBodyBytes,
		MaxLinks:          c.Crawl.MaxLinks,
	}
}

// SelectSites keeps only the named sites, preserving configured order.
func (c *Config) SelectSites(names []string) ([]crawler.SiteProfile, error) {
	if len(names) == 0 {
		return c.Sites, nil
	}
	byName := make(map[string]crawler.SiteProfile, len(c.Sites))
	for _, s := range c.Sites {
		byName[s.Name] = s
	}
	wanted := map[string]struct{}{}
	for _, n := range names {
		if _, ok := byName[n]; !ok {
			return nil, fmt.Errorf("unknown site %q", n)
		}
		wanted[n] = struct{}{}
	}
	out := make([]crawler.SiteProfile, 0, len(wanted))
	for _, s := range c.Sites {
		if _, ok := wanted[s.Name]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}
