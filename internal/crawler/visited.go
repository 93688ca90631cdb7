package crawler

import (
	"sort"
	"sync"
)

// VisitedSet maps each URL seen in one session to its record. A URL is
// reserved when first discovered and completed once its record exists.
type VisitedSet struct {
	mu      sync.Mutex
	entries map[string]*Record
}

// NewVisitedSet returns an empty set.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{entries: map[string]*Record{}}
}

// Reserve marks url as seen. It reports false if url was already present.
func (v *VisitedSet) Reserve(url string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, seen := v.entries[url]; seen {
		return false
	}
	v.entries[url] = nil
	return true
}

// Has reports whether url was reserved or completed.
func (v *VisitedSet) Has(url string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.entries[url]
	return ok
}

// Store attaches rec to its URL. A URL keeps its first record.
func (v *VisitedSet) Store(rec Record) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if existing := v.entries[rec.URL]; existing != nil {
		return false
	}
	stored := rec
	v.entries[rec.URL] = &stored
	return true
}

// Get returns the record stored for url.
func (v *VisitedSet) Get(url string) (Record, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	rec := v.entries[url]
	if rec == nil {
		return Record{}, false
	}
	return *rec, true
}

// Len counts URLs that have a record.
func (v *VisitedSet) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := 0
	for _, rec := range v.entries {
		if rec != nil {
			n++
		}
	}
	return n
}

// Keys lists URLs that have a record, sorted.
func (v *VisitedSet) Keys() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	keys := make([]string, 0, len(v.entries))
	for url, rec := range v.entries {
		if rec != nil {
			keys = append(keys, url)
		}
	}
	sort.Strings(keys)
	return keys
}
