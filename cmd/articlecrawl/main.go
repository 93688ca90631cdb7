// Command articlecrawl discovers and extracts news articles from the
// configured sites and writes one record per article to the selected outputs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
)

// CLI flags. Non-zero values override the configuration file.
type CLI struct {
	Config      string        `help:"Path to YAML configuration file." short:"c" type:"existingfile"`
	Site        []string      `help:"Only crawl the named sites (repeatable)." short:"s"`
	Workers     int           `help:"Concurrent article fetches per site." short:"w"`
	Parallel    int           `help:"Number of sites crawled at the same time." short:"p"`
	Timeout     time.Duration `help:"Timeout for every single request."`
	RPM         int           `name:"rpm" help:"Maximum article requests per minute per site (0 = unlimited)."`
	MaxLinks    int           `name:"max-links" help:"Maximum unique article links per site (0 = unlimited)."`
	JSONL       string        `name:"jsonl" help:"Append records as JSON lines to this file."`
	MarkdownDir string        `name:"markdown-dir" help:"Write one Markdown file per record under this directory."`
	SQLite      string        `name:"sqlite" help:"Store records in this SQLite database."`
	Quiet       bool          `help:"Do not print records to stdout." short:"q"`
	LogLevel    string        `name:"log-level" help:"Log level (debug, info, warn, error)."`
	ListSites   bool          `name:"list-sites" help:"Print the configured sites and exit."`
	NoSummary   bool          `name:"no-summary" help:"Skip the per-site summary table."`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("articlecrawl"),
		kong.Description("Crawl news sites and extract articles using per-site selector profiles."),
		kong.UsageOnError(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cli, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "articlecrawl: %v\n", err)
		os.Exit(1)
	}
}
