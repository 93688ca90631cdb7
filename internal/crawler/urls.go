package crawler

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// parseSeedURL checks that raw is an absolute http(s) URL with a host.
func parseSeedURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("seed URL is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid seed URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.New("seed URL must include a host")
	}
	return parsed, nil
}

// joinOrigin builds an absolute link from a relative href by plain
// concatenation. The profile's pattern decides whether href starts with "/".
func joinOrigin(origin, href string) string {
	return origin + href
}
