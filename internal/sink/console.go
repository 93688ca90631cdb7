package sink

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"articlecrawl/internal/crawler"
)

// Console prints every field of a record as plain text.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole writes to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Accept implements crawler.Sink.
func (c *Console) Accept(rec crawler.Record) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Scraped %s\n", rec.URL)
	fmt.Fprintf(&b, "URL: %s\n\n", rec.URL)
	fmt.Fprintf(&b, "TITLE: %s\n", rec.Title)
	fmt.Fprintf(&b, "AUTHOR: %s\n\n", rec.Author)
	fmt.Fprintf(&b, "Date: %s\n\n", rec.Date)
	fmt.Fprintf(&b, "BODY: %s\n\n", strings.Trim(rec.Body, "\n"))

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := io.WriteString(c.w, b.String())
	return err
}
