package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"articlecrawl/internal/crawler"
)

// JSONLines appends one JSON object per record to a file.
type JSONLines struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// OpenJSONLines opens path for appending, creating parent directories.
func OpenJSONLines(path string) (*JSONLines, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create jsonl dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open jsonl: %w", err)
	}
	return &JSONLines{file: f, enc: json.NewEncoder(f)}, nil
}

// Accept implements crawler.Sink.
func (j *JSONLines) Accept(rec crawler.Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.enc.Encode(rec); err != nil {
		return fmt.Errorf("write jsonl record: %w", err)
	}
	return nil
}

// Close flushes and closes the file.
func (j *JSONLines) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.file.Sync(); err != nil {
		_ = j.file.Close()
		return err
	}
	return j.file.Close()
}
