package sink

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"gopkg.in/yaml.v3"

	"articlecrawl/internal/crawler"
)

const emptyContentNote = "*No textual content extracted.*"

// ErrUnchanged is returned by Markdown.Write when the file on disk already
// holds the same content.
var ErrUnchanged = errors.New("unchanged content")

// Markdown writes each record to <dir>/<host>/<path>.md with YAML front matter.
type Markdown struct {
	dir string
	mu  sync.Mutex
}

// NewMarkdown writes under dir.
func NewMarkdown(dir string) *Markdown {
	return &Markdown{dir: strings.TrimSpace(dir)}
}

// Accept implements crawler.Sink. Unchanged files are left alone.
func (m *Markdown) Accept(rec crawler.Record) error {
	_, err := m.Write(rec)
	if errors.Is(err, ErrUnchanged) {
		return nil
	}
	return err
}

// Write stores rec and returns the file path.
func (m *Markdown) Write(rec crawler.Record) (string, error) {
	target, err := m.filePath(rec.URL)
	if err != nil {
		return "", fmt.Errorf("markdown path: %w", err)
	}

	text := recordMarkdown(rec)
	sum := sha256.Sum256([]byte(rec.Title + "\n" + rec.Author + "\n" + rec.Date + "\n" + text))
	hash := hex.EncodeToString(sum[:])

	m.mu.Lock()
	defer m.mu.Unlock()

	if meta, err := readFrontMatter(target); err == nil && meta.Hash == hash {
		return target, ErrUnchanged
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create markdown dir: %w", err)
	}
	content, err := buildMarkdownDocument(rec, text, hash)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write markdown: %w", err)
	}
	return target, nil
}

// recordMarkdown prefers converting the body's HTML so paragraphs and links
// survive; the plain body text is the fallback.
func recordMarkdown(rec crawler.Record) string {
	if rec.BodyHTML != "" {
		var opts []converter.ConvertOptionFunc
		if u, err := url.Parse(rec.URL); err == nil && u.Host != "" {
			opts = append(opts, converter.WithDomain(u.Scheme+"://"+u.Host))
		}
		if md, err := htmltomarkdown.ConvertString(rec.BodyHTML, opts...); err == nil {
			if trimmed := strings.TrimSpace(md); trimmed != "" {
				return trimmed
			}
		}
	}
	if body := strings.TrimSpace(rec.Body); body != "" {
		return body
	}
	return emptyContentNote
}

// frontMatter is the YAML header of every Markdown file.
type frontMatter struct {
	URL       string    `yaml:"url"`
	Site      string    `yaml:"site"`
	Status    string    `yaml:"status"`
	Title     string    `yaml:"title"`
	Author    string    `yaml:"author"`
	Date      string    `yaml:"date"`
	FetchedAt time.Time `yaml:"fetched_at,omitempty"`
	Hash      string    `yaml:"content_sha256"`
	Words     int       `yaml:"word_count"`
	Error     string    `yaml:"error,omitempty"`
}

const frontMatterFence = "---\n"

func buildMarkdownDocument(rec crawler.Record, body, hash string) (string, error) {
	meta := frontMatter{
		URL:    rec.URL,
		Site:   rec.Site,
		Status: string(rec.Status),
		Title:  rec.Title,
		Author: rec.Author,
		Date:   rec.Date,
		Hash:   hash,
		Words:  len(strings.Fields(body)),
		Error:  rec.FetchError,
	}
	if !rec.FetchedAt.IsZero() {
		meta.FetchedAt = rec.FetchedAt.UTC()
	}
	header, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("encode front matter: %w", err)
	}

	var doc strings.Builder
	doc.Grow(len(header) + len(body) + len(rec.Title) + 16)
	doc.WriteString(frontMatterFence)
	doc.Write(header)
	doc.WriteString(frontMatterFence)
	doc.WriteString("\n")
	if rec.Title != "" {
		fmt.Fprintf(&doc, "# %s\n\n", rec.Title)
	}
	doc.WriteString(body)
	doc.WriteString("\n")
	return doc.String(), nil
}

func (m *Markdown) filePath(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	host := sanitizeSegment(parsed.Host)
	if host == "" {
		host = "unknown-host"
	}

	segments := make([]string, 0, 4)
	trimmedPath := strings.Trim(parsed.Path, "/")
	if trimmedPath == "" {
		segments = append(segments, "index")
	} else {
		for _, part := range strings.Split(trimmedPath, "/") {
			part = sanitizeSegment(part)
			if part == "" {
				part = "section"
			}
			segments = append(segments, part)
		}
	}

	base := segments[len(segments)-1]
	if parsed.RawQuery != "" {
		base = fmt.Sprintf("%s__%s", base, sanitizeSegment(parsed.RawQuery))
	}
	segments[len(segments)-1] = base + ".md"

	parts := append([]string{m.dir, host}, segments...)
	return filepath.Join(parts...), nil
}

// sanitizeSegment keeps ASCII letters, digits, '-', '_' and '.', replacing
// anything else with '-'.
func sanitizeSegment(input string) string {
	safe := strings.Map(func(r rune) rune {
		if r < 0x80 && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.') {
			return r
		}
		return '-'
	}, input)
	return strings.Trim(safe, "-")
}

// readFrontMatter decodes the YAML header of the Markdown file at path.
func readFrontMatter(path string) (frontMatter, error) {
	var meta frontMatter
	data, err := os.ReadFile(path)
	if err != nil {
		return meta, err
	}
	rest, ok := strings.CutPrefix(string(data), frontMatterFence)
	if !ok {
		return meta, errors.New("no front matter")
	}
	header, _, ok := strings.Cut(rest, "\n"+frontMatterFence)
	if !ok {
		return meta, errors.New("unterminated front matter")
	}
	if err := yaml.Unmarshal([]byte(header), &meta); err != nil {
		return meta, fmt.Errorf("decode front matter: %w", err)
	}
	return meta, nil
}
