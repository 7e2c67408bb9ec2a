package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/verte-zerg/typetest/internal/model"
)

// SQLiteStore keeps results in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

const resultColumns = `timestamp, duration, text_sample_id, wpm, adjusted_wpm, accuracy_percent,
	peak_wpm, consistency_score, total_characters, total_words, errors, error_details`

// OpenSQLite opens or creates the database and applies migrations. A file
// that is not a usable database is moved aside and a new one is created.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history dir: %w", err)
	}
	store, err := openSQLite(path)
	if err == nil || !isCorrupt(err) {
		return store, err
	}
	slog.Warn("history db is corrupt, starting empty", "path", path, "err", err)
	if _, merr := moveAside(path); merr != nil {
		return nil, merr
	}
	return openSQLite(path)
}

func openSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}
	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			slog.Warn("failed to close history db", "err", cerr)
		}
		return nil, fmt.Errorf("failed to migrate history db: %w", err)
	}
	return store, nil
}

// isCorrupt reports whether err is SQLite refusing the file itself.
func isCorrupt(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() & 0xff {
	case sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_CORRUPT:
		return true
	}
	return false
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS results (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			timestamp TEXT NOT NULL,
			duration INTEGER NOT NULL,
			text_sample_id INTEGER NOT NULL,
			wpm REAL NOT NULL,
			adjusted_wpm REAL NOT NULL,
			accuracy_percent REAL NOT NULL,
			peak_wpm REAL NOT NULL,
			consistency_score REAL NOT NULL,
			total_characters INTEGER NOT NULL,
			total_words INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			error_details TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_results_duration ON results(duration);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Append inserts result. Failures are logged, not returned.
func (s *SQLiteStore) Append(result model.TestResult) {
	if err := s.insert(context.Background(), result); err != nil {
		slog.Warn("failed to save result", "err", err)
	}
}

func (s *SQLiteStore) insert(ctx context.Context, r model.TestResult) error {
	details := r.ErrorDetails
	if details == nil {
		details = []model.ErrorRecord{}
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode error details: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO results (id, `+resultColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		model.FormatTimestamp(r.Timestamp),
		r.Duration,
		r.SampleID,
		r.WPM,
		r.AdjustedWPM,
		r.AccuracyPercent,
		r.PeakWPM,
		r.ConsistencyScore,
		r.TotalCharacters,
		r.TotalWords,
		r.Errors,
		string(detailsJSON),
	)
	return err
}

// Recent implements History.
func (s *SQLiteStore) Recent(n int) []model.TestResult {
	if n <= 0 {
		return []model.TestResult{}
	}
	results := s.query(`SELECT `+resultColumns+` FROM (
		SELECT * FROM results ORDER BY seq DESC LIMIT ?
	) ORDER BY seq ASC`, n)
	return results
}

// ByDuration implements History.
func (s *SQLiteStore) ByDuration(d int) []model.TestResult {
	return s.query(`SELECT `+resultColumns+` FROM results WHERE duration = ? ORDER BY seq ASC`, d)
}

// All implements History.
func (s *SQLiteStore) All() []model.TestResult {
	return s.query(`SELECT ` + resultColumns + ` FROM results ORDER BY seq ASC`)
}

// AverageWPM implements History.
func (s *SQLiteStore) AverageWPM() float64 {
	var avg float64
	row := s.db.QueryRowContext(context.Background(), `SELECT COALESCE(AVG(wpm), 0) FROM results`)
	if err := row.Scan(&avg); err != nil {
		slog.Warn("failed to average wpm", "err", err)
		return 0
	}
	return avg
}

// query logs failures and returns whatever rows were read.
func (s *SQLiteStore) query(query string, args ...any) []model.TestResult {
	results, err := s.scan(context.Background(), query, args...)
	if err != nil {
		slog.Warn("failed to read history", "err", err)
	}
	return results
}

func (s *SQLiteStore) scan(ctx context.Context, query string, args ...any) ([]model.TestResult, error) {
	results := []model.TestResult{}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return results, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	for rows.Next() {
		var r model.TestResult
		var ts, details string
		if err := rows.Scan(&ts, &r.Duration, &r.SampleID, &r.WPM, &r.AdjustedWPM, &r.AccuracyPercent,
			&r.PeakWPM, &r.ConsistencyScore, &r.TotalCharacters, &r.TotalWords, &r.Errors, &details); err != nil {
			return results, err
		}
		parsed, err := model.ParseTimestamp(ts)
		if err != nil {
			return results, err
		}
		r.Timestamp = parsed
		if err := json.Unmarshal([]byte(details), &r.ErrorDetails); err != nil {
			return results, fmt.Errorf("failed to decode error details: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
