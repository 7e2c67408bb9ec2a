package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/verte-zerg/typetest/internal/model"
)

// JSONStore keeps results as a JSON array in a single file.
type JSONStore struct {
	mu      sync.Mutex
	path    string
	results []model.TestResult
}

// errCorruptHistory marks a history file that exists but cannot be decoded.
var errCorruptHistory = errors.New("history file is corrupt")

// OpenJSON loads the history file at path. A missing, unreadable or corrupt
// file yields an empty store.
func OpenJSON(path string) *JSONStore {
	s := &JSONStore{path: path}
	s.results, _ = s.load()
	return s
}

// Reload re-reads the file, keeping the current results if it cannot be read.
func (s *JSONStore) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if results, err := s.load(); err == nil {
		s.results = results
	}
}

// Append adds result and rewrites the file. Results already on disk written
// by another process are picked up first. A corrupt file is moved aside
// before it is replaced. A write failure is logged and the result is kept
// in memory for the rest of the process.
func (s *JSONStore) Append(result model.TestResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	results, err := s.load()
	switch {
	case err == nil:
		s.results = results
	case errors.Is(err, errCorruptHistory):
		if _, merr := moveAside(s.path); merr != nil {
			slog.Warn("failed to move corrupt history aside, not saving", "path", s.path, "err", merr)
			s.results = append(s.results, result)
			return
		}
	}
	s.results = append(s.results, result)
	if err := s.write(); err != nil {
		slog.Warn("failed to save history", "path", s.path, "err", err)
	}
}

// Recent implements History.
func (s *JSONStore) Recent(n int) []model.TestResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return recent(s.results, n)
}

// ByDuration implements History.
func (s *JSONStore) ByDuration(d int) []model.TestResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return byDuration(s.results, d)
}

// AverageWPM implements History.
func (s *JSONStore) AverageWPM() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return averageWPM(s.results)
}

// All implements History.
func (s *JSONStore) All() []model.TestResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.results)
}

// Close implements Store.
func (s *JSONStore) Close() error {
	return nil
}

// load returns an empty list for a missing file. On error the returned list
// is empty and the error wraps errCorruptHistory when the file could be read
// but not decoded.
func (s *JSONStore) load() ([]model.TestResult, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.TestResult{}, nil
		}
		slog.Warn("failed to read history", "path", s.path, "err", err)
		return []model.TestResult{}, fmt.Errorf("failed to read history: %w", err)
	}
	var results []model.TestResult
	if err := json.Unmarshal(data, &results); err != nil {
		slog.Warn("history file is corrupt, starting empty", "path", s.path, "err", err)
		return []model.TestResult{}, fmt.Errorf("%w: %v", errCorruptHistory, err)
	}
	if results == nil {
		results = []model.TestResult{}
	}
	return results, nil
}

func (s *JSONStore) write() error {
	data, err := json.MarshalIndent(s.results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create history dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "history-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp history: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close history: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace history: %w", err)
	}
	return nil
}
