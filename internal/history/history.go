// Package history records release runs in a JSON state file.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Status values for a recorded run.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusDryRun    = "dry-run"
)

// Entry is one recorded release run.
type Entry struct {
	Time       time.Time `json:"time"`
	Version    string    `json:"version"`
	Source     string    `json:"source"`
	Status     string    `json:"status"`
	DurationMS int64     `json:"duration_ms"`
	Artifacts  int       `json:"artifacts"`
	ReleaseURL string    `json:"release_url,omitempty"`
}

// Log reads and writes the release history for one project. Appends are
// best effort at the call sites: a failed history write warns and never
// fails a release.
type Log struct {
	path string
	max  int
}

// New returns a Log stored under stateDir. Each project gets its own
// file so a shared state dir stays readable.
func New(stateDir, project string, maxEntries int) *Log {
	if project == "" {
		project = "default"
	}
	return &Log{
		path: filepath.Join(stateDir, project+".history.json"),
		max:  maxEntries,
	}
}

// Path returns the state file location.
func (l *Log) Path() string {
	return l.path
}

// Append records one run, pruning the oldest entries beyond the
// configured maximum.
func (l *Log) Append(entry Entry) error {
	entries, err := l.read()
	if err != nil {
		return err
	}
	entries = append(entries, entry)
	if l.max > 0 && len(entries) > l.max {
		entries = entries[len(entries)-l.max:]
	}
	return l.write(entries)
}

// Entries returns recorded runs, latest first.
func (l *Log) Entries() ([]Entry, error) {
	entries, err := l.read()
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// read returns entries oldest first, with a missing file reading as an
// empty history.
func (l *Log) read() ([]Entry, error) {
	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading history file: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing history file %s: %w", l.path, err)
	}
	return entries, nil
}

// write persists entries with a temp file + rename so a crash never
// leaves a truncated history behind.
func (l *Log) write(entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}
	tmpPath := l.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, l.path); err != nil {
		os.Remove(tmpPath) // Best effort cleanup
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
