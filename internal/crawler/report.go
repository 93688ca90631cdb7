package crawler

// Failed returns the sessions that ended with an error.
func (r *Report) Failed() []SessionReport {
	var failed []SessionReport
	for _, s := range r.Sessions {
		if s.Err != nil {
			failed = append(failed, s)
		}
	}
	return failed
}

// Totals sums the counters of every session.
func (r *Report) Totals() Stats {
	var total Stats
	for _, s := range r.Sessions {
		total.LinksDiscovered += s.Stats.LinksDiscovered
		total.UniqueLinks += s.Stats.UniqueLinks
		total.DuplicatesSkipped += s.Stats.DuplicatesSkipped
		total.SkippedByLimit += s.Stats.SkippedByLimit
		total.RecordsEmitted += s.Stats.RecordsEmitted
		total.FetchFailed += s.Stats.FetchFailed
		total.ParseEmpty += s.Stats.ParseEmpty
		total.SinkErrors += s.Stats.SinkErrors
	}
	total.Duration = r.FinishedAt.Sub(r.StartedAt)
	return total
}
