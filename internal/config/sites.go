package config

import "articlecrawl/internal/crawler"

// BuiltinSites returns the profiles crawled when no sites are configured.
func BuiltinSites() []crawler.SiteProfile {
	return []crawler.SiteProfile{
		{
			Name:           "Oxford",
			SeedURL:        "https://www.ox.ac.uk/news-and-events",
			LinkPattern:    `https://www.ox.ac.uk/news/`,
			IsAbsoluteLink: true,
			TitleSelector:  "h1",
			BodySelector:   "div span.field-item-single",
			AuthorSelector: "author",
			DateSelector:   "time",
		},
		{
			Name:           "CNN",
			SeedURL:        "https://edition.cnn.com",
			LinkPattern:    `^\/\d{4}`,
			IsAbsoluteLink: false,
			TitleSelector:  "h1",
			BodySelector:   "div.article__content",
			AuthorSelector: "byline__name",
			DateSelector:   "div.timestamp",
		},
		{
			Name:           "BBC",
			SeedURL:        "https://www.bbc.com",
			LinkPattern:    `^/news/articles`,
			IsAbsoluteLink: false,
			TitleSelector:  "h1",
			BodySelector:   "div.sc-18fde0d6-0.dlWCEZ p",
			AuthorSelector: "span.sc-2b5e3b35-7.bZCrck",
			DateSelector:   "time.sc-2b5e3b35-2",
		},
	}
}
