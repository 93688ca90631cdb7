package crawler

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page is a parsed HTML document.
type Page struct {
	URL string
	doc *goquery.Document
}

// ParsePage parses HTML read from r.
func ParsePage(pageURL string, r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Page{URL: pageURL, doc: doc}, nil
}

// ParsePageString parses an HTML string.
func ParsePageString(pageURL, html string) (*Page, error) {
	return ParsePage(pageURL, strings.NewReader(html))
}

// Select returns every element matching the CSS selector. An invalid
// selector matches nothing.
func (p *Page) Select(selector string) *goquery.Selection {
	if p == nil || p.doc == nil {
		return &goquery.Selection{}
	}
	return p.doc.Find(selector)
}

// Anchors returns the href of every anchor element in document order.
func (p *Page) Anchors() []string {
	if p == nil || p.doc == nil {
		return nil
	}
	var hrefs []string
	p.doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			hrefs = append(hrefs, href)
		}
	})
	return hrefs
}
