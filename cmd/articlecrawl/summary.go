package main

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"articlecrawl/internal/crawler"
)

func printSummary(w io.Writer, report *crawler.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Site", "State", "Links", "Duplicates", "Records", "Fetch failed", "Parse empty", "Duration", "Error"})
	for _, s := range report.Sessions {
		errText := ""
		if s.Err != nil {
			errText = s.Err.Error()
		}
		t.AppendRow(table.Row{
			s.Site,
			string(s.State),
			s.Stats.LinksDiscovered,
			s.Stats.DuplicatesSkipped,
			s.Stats.RecordsEmitted,
			s.Stats.FetchFailed,
			s.Stats.ParseEmpty,
			s.Stats.Duration.Round(time.Millisecond).String(),
			errText,
		})
	}
	totals := report.Totals()
	t.AppendFooter(table.Row{
		"Total",
		fmt.Sprintf("%d failed", len(report.Failed())),
		totals.LinksDiscovered,
		totals.DuplicatesSkipped,
		totals.RecordsEmitted,
		totals.FetchFailed,
		totals.ParseEmpty,
		totals.Duration.Round(time.Millisecond).String(),
		"",
	})
	t.Render()
}

func printSites(w io.Writer, profiles []crawler.SiteProfile) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Name", "Seed URL", "Link pattern", "Absolute"})
	for _, p := range profiles {
		t.AppendRow(table.Row{p.Name, p.SeedURL, p.LinkPattern, p.IsAbsoluteLink})
	}
	t.Render()
}
