// Package sink holds the destinations that completed article records are written to.
package sink

import (
	"errors"

	"articlecrawl/internal/crawler"
)

// Multi forwards each record to every sink and joins their errors.
type Multi []crawler.Sink

// Accept implements crawler.Sink.
func (m Multi) Accept(rec crawler.Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Accept(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Closer is a sink that holds resources.
type Closer interface {
	crawler.Sink
	Close() error
}
