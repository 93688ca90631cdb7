package crawler

import (
	"errors"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Extract applies the profile's selectors to page. Title, body and author
// join the text of every match with newlines; date takes the first match only.
// FetchedAt is left zero so the same input always yields the same record.
func Extract(pageURL string, page *Page, p SiteProfile) Record {
	title, titleOK := joinAll(page.Select(p.TitleSelector))
	body, bodyOK := joinAll(page.Select(p.BodySelector))
	author, authorOK := joinAll(page.Select(p.AuthorSelector))

	date := DateNotFound
	dateSel := page.Select(p.DateSelector).First()
	dateOK := dateSel.Length() > 0
	if dateOK {
		date = visibleText(dateSel)
	}

	status := StatusOK
	if !titleOK && !bodyOK && !authorOK && !dateOK {
		status = StatusParseEmpty
	}

	return Record{
		Site:     p.Name,
		URL:      pageURL,
		Title:    title,
		Body:     body,
		Author:   author,
		Date:     date,
		Status:   status,
		BodyHTML: outerHTML(page.Select(p.BodySelector)),
	}
}

// ExtractAt is Extract with the record's FetchedAt set to at.
func ExtractAt(pageURL string, page *Page, p SiteProfile, at time.Time) Record {
	rec := Extract(pageURL, page, p)
	rec.FetchedAt = at
	return rec
}

// FailedRecord is the record emitted for a URL that could not be fetched.
func FailedRecord(site, pageURL string, err error, at time.Time) Record {
	rec := Record{
		Site:      site,
		URL:       pageURL,
		Title:     TitleNotFound,
		Status:    StatusFetchFailed,
		FetchedAt: at,
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		rec.FetchError = fe.Reason()
	} else if err != nil {
		rec.FetchError = err.Error()
	}
	return rec
}

func joinAll(sel *goquery.Selection) (string, bool) {
	if sel.Length() == 0 {
		return "", false
	}
	parts := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		parts = append(parts, visibleText(s))
	})
	return strings.Join(parts, "\n"), true
}

// visibleText returns the readable text under sel: every text node with its
// whitespace collapsed, empty ones dropped, joined by single spaces. Script,
// style and noscript contents are not text a reader sees.
func visibleText(sel *goquery.Selection) string {
	var words []string
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, node *goquery.Selection) {
			switch goquery.NodeName(node) {
			case "#text":
				if text := normalizeText(node.Text()); text != "" {
					words = append(words, text)
				}
			case "script", "style", "noscript", "#comment":
			default:
				walk(node)
			}
		})
	}
	walk(sel)
	return strings.Join(words, " ")
}

// normalizeText collapses whitespace runs into single spaces and trims.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func outerHTML(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	var b strings.Builder
	sel.Each(func(_ int, s *goquery.Selection) {
		html, err := goquery.OuterHtml(s)
		if err != nil {
			return
		}
		b.WriteString(html)
		b.WriteString("\n")
	})
	return b.String()
}
