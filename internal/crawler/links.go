package crawler

import (
	"iter"
	"regexp"
	"strings"
)

// DiscoverLinks yields, in document order, the absolute URL of every anchor
// whose href matches pattern. Relative hrefs are appended to origin as-is.
// Duplicates are yielded as often as they appear.
func DiscoverLinks(page *Page, pattern *regexp.Regexp, isAbsolute bool, origin string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if page == nil || pattern == nil {
			return
		}
		for _, href := range page.Anchors() {
			if !pattern.MatchString(href) {
				continue
			}
			link := href
			if !isAbsolute {
				link = joinOrigin(origin, href)
			}
			if strings.TrimSpace(link) == "" {
				continue
			}
			if !yield(link) {
				return
			}
		}
	}
}

func (p *compiledProfile) discover(page *Page) iter.Seq[string] {
	return DiscoverLinks(page, p.pattern, p.IsAbsoluteLink, p.origin)
}
