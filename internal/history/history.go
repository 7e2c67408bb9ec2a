// Package history stores finished test results.
package history

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/verte-zerg/typetest/internal/model"
)

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// History is an append-only log of results.
//
// Append never fails from the caller's point of view: a persistence error
// loses durability of that result, nothing else.
type History interface {
	Append(result model.TestResult)
	// Recent returns up to n most recently appended results, newest last.
	Recent(n int) []model.TestResult
	// ByDuration returns results with exactly duration d, in append order.
	ByDuration(d int) []model.TestResult
	// AverageWPM is the mean raw WPM of all results, or 0 when empty.
	AverageWPM() float64
	All() []model.TestResult
}

// Store is a History backed by a closable resource.
type Store interface {
	History
	Close() error
}

// Open opens the store for the named backend.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "", BackendJSON:
		return OpenJSON(path), nil
	case BackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown history backend %q", backend)
	}
}

func recent(results []model.TestResult, n int) []model.TestResult {
	if n <= 0 || len(results) == 0 {
		return []model.TestResult{}
	}
	if n > len(results) {
		n = len(results)
	}
	return clone(results[len(results)-n:])
}

func byDuration(results []model.TestResult, d int) []model.TestResult {
	out := []model.TestResult{}
	for _, r := range results {
		if r.Duration == d {
			out = append(out, r)
		}
	}
	return out
}

func averageWPM(results []model.TestResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		sum += r.WPM
	}
	return sum / float64(len(results))
}

func clone(results []model.TestResult) []model.TestResult {
	out := make([]model.TestResult, len(results))
	copy(out, results)
	return out
}

// moveAside renames an unreadable history file to a timestamped .corrupt
// sibling so a fresh one can take its place.
func moveAside(path string) (string, error) {
	dest := fmt.Sprintf("%s.corrupt-%s", path, time.Now().Format("20060102T150405.000000000"))
	if err := os.Rename(path, dest); err != nil {
		return "", fmt.Errorf("failed to move %s aside: %w", path, err)
	}
	slog.Warn("moved unreadable history aside", "path", path, "backup", dest)
	return dest, nil
}
