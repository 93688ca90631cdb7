package crawler

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Validate reports every problem with the profile joined into one error.
func (p SiteProfile) Validate() error {
	var errs []error
	if _, err := parseSeedURL(p.SeedURL); err != nil {
		errs = append(errs, err)
	}
	if _, err := regexp.Compile(p.LinkPattern); err != nil {
		errs = append(errs, fmt.Errorf("invalid link pattern: %w", err))
	}
	selectors := []struct {
		name  string
		value string
	}{
		{"title", p.TitleSelector},
		{"body", p.BodySelector},
		{"author", p.AuthorSelector},
		{"date", p.DateSelector},
	}
	for _, s := range selectors {
		if strings.TrimSpace(s.value) == "" {
			errs = append(errs, fmt.Errorf("%s selector is required", s.name))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("site %q: %w", p.Name, err)
	}
	return nil
}

// compiledProfile is a validated profile with its pattern ready for matching.
type compiledProfile struct {
	SiteProfile
	pattern *regexp.Regexp
	origin  string
}

func compileProfile(p SiteProfile) (*compiledProfile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	seed, err := parseSeedURL(p.SeedURL)
	if err != nil {
		return nil, err
	}
	return &compiledProfile{
		SiteProfile: p,
		pattern:     regexp.MustCompile(p.LinkPattern),
		origin:      seed.Scheme + "://" + seed.Host,
	}, nil
}
