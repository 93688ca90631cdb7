package crawler

import "time"

func (s *Session) recordDiscovered() {
	s.mu.Lock()
	s.stats.LinksDiscovered++
	s.mu.Unlock()
}

func (s *Session) recordDuplicate() {
	s.mu.Lock()
	s.stats.DuplicatesSkipped++
	s.mu.Unlock()
}

func (s *Session) recordSkippedLimit() {
	s.mu.Lock()
	s.stats.SkippedByLimit++
	s.mu.Unlock()
}

func (s *Session) recordSinkError() {
	s.mu.Lock()
	s.stats.SinkErrors++
	s.mu.Unlock()
}

func (s *Session) recordEmitted(status Status) {
	s.mu.Lock()
	s.stats.RecordsEmitted++
	switch status {
	case StatusFetchFailed:
		s.stats.FetchFailed++
	case StatusParseEmpty:
		s.stats.ParseEmpty++
	}
	s.mu.Unlock()
}

func (s *Session) collectStats(duration time.Duration) Stats {
	unique := s.visited.Len()
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := s.stats
	stats.UniqueLinks = unique
	stats.Duration = duration
	return stats
}
