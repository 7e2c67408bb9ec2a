// Package model defines shared data structures.
package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Durations lists the supported test lengths in seconds.
var Durations = []int{30, 60, 120}

// ValidDuration reports whether seconds is one of Durations.
func ValidDuration(seconds int) bool {
	for _, d := range Durations {
		if d == seconds {
			return true
		}
	}
	return false
}

// Config defines typing test settings.
type Config struct {
	Duration    int
	Samples     int
	Source      string
	SamplesFile string
	WordsFile   string
	Words       int
}

// HistoryConfig selects the history backend.
type HistoryConfig struct {
	Backend string
	Path    string
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Duration    int
	Last        int
	CurveWindow int
	Watch       bool
}

// ErrorRecord describes one mismatched or unmatched typed character.
// Expected is empty when the typed character has no reference counterpart.
type ErrorRecord struct {
	Position int
	Typed    string
	Expected string
}

// MarshalJSON encodes the record as a [position, typed, expected] triple.
func (e ErrorRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.Position, e.Typed, e.Expected})
}

// UnmarshalJSON decodes a [position, typed, expected] triple.
func (e *ErrorRecord) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("error record: expected 3 fields, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &e.Position); err != nil {
		return fmt.Errorf("error record position: %w", err)
	}
	if err := json.Unmarshal(raw[1], &e.Typed); err != nil {
		return fmt.Errorf("error record typed: %w", err)
	}
	if err := json.Unmarshal(raw[2], &e.Expected); err != nil {
		return fmt.Errorf("error record expected: %w", err)
	}
	return nil
}

// TestResult is the finalized record of one completed test.
type TestResult struct {
	Timestamp        time.Time
	Duration         int
	SampleID         int
	WPM              float64
	AdjustedWPM      float64
	AccuracyPercent  float64
	PeakWPM          float64
	ConsistencyScore float64
	TotalCharacters  int
	TotalWords       int
	Errors           int
	ErrorDetails     []ErrorRecord
}

type testResultJSON struct {
	Timestamp        string        `json:"timestamp"`
	Duration         int           `json:"duration"`
	SampleID         int           `json:"text_sample_id"`
	WPM              float64       `json:"wpm"`
	AdjustedWPM      float64       `json:"adjusted_wpm"`
	AccuracyPercent  float64       `json:"accuracy_percent"`
	PeakWPM          float64       `json:"peak_wpm"`
	ConsistencyScore float64       `json:"consistency_score"`
	TotalCharacters  int           `json:"total_characters"`
	TotalWords       int           `json:"total_words"`
	Errors           int           `json:"errors"`
	ErrorDetails     []ErrorRecord `json:"error_details"`
}

// Layouts accepted when reading timestamps. Naive ISO-8601 values are
// interpreted in the local zone.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// FormatTimestamp renders t as an ISO-8601 string.
func FormatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// ParseTimestamp parses an ISO-8601 timestamp with or without zone.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// MarshalJSON encodes the result in the history file format.
func (r TestResult) MarshalJSON() ([]byte, error) {
	details := r.ErrorDetails
	if details == nil {
		details = []ErrorRecord{}
	}
	return json.Marshal(testResultJSON{
		Timestamp:        FormatTimestamp(r.Timestamp),
		Duration:         r.Duration,
		SampleID:         r.SampleID,
		WPM:              r.WPM,
		AdjustedWPM:      r.AdjustedWPM,
		AccuracyPercent:  r.AccuracyPercent,
		PeakWPM:          r.PeakWPM,
		ConsistencyScore: r.ConsistencyScore,
		TotalCharacters:  r.TotalCharacters,
		TotalWords:       r.TotalWords,
		Errors:           r.Errors,
		ErrorDetails:     details,
	})
}

// UnmarshalJSON decodes a result from the history file format.
func (r *TestResult) UnmarshalJSON(data []byte) error {
	var raw testResultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var ts time.Time
	if raw.Timestamp != "" {
		parsed, err := ParseTimestamp(raw.Timestamp)
		if err != nil {
			return err
		}
		ts = parsed
	}
	*r = TestResult{
		Timestamp:        ts,
		Duration:         raw.Duration,
		SampleID:         raw.SampleID,
		WPM:              raw.WPM,
		AdjustedWPM:      raw.AdjustedWPM,
		AccuracyPercent:  raw.AccuracyPercent,
		PeakWPM:          raw.PeakWPM,
		ConsistencyScore: raw.ConsistencyScore,
		TotalCharacters:  raw.TotalCharacters,
		TotalWords:       raw.TotalWords,
		Errors:           raw.Errors,
		ErrorDetails:     raw.ErrorDetails,
	}
	return nil
}
