package history

import (
	"sync"

	"github.com/verte-zerg/typetest/internal/model"
)

// MemoryStore keeps results in process memory only.
type MemoryStore struct {
	mu      sync.Mutex
	results []model.TestResult
}

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{}
}

// Append adds a result.
func (s *MemoryStore) Append(result model.TestResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
}

// Recent implements History.
func (s *MemoryStore) Recent(n int) []model.TestResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return recent(s.results, n)
}

// ByDuration implements History.
func (s *MemoryStore) ByDuration(d int) []model.TestResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return byDuration(s.results, d)
}

// AverageWPM implements History.
func (s *MemoryStore) AverageWPM() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return averageWPM(s.results)
}

// All implements History.
func (s *MemoryStore) All() []model.TestResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.results)
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}
