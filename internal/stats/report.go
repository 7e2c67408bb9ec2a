package stats

import (
	"github.com/verte-zerg/typetest/internal/history"
	"github.com/verte-zerg/typetest/internal/model"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Results  []model.TestResult
	Summary  Summary
	Mistakes []MistakeAggregate
	// Average raw WPM over the whole history, ignoring filters.
	AllTimeWPM float64
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(h history.History, cfg model.StatsConfig) Report {
	var results []model.TestResult
	if cfg.Duration > 0 {
		results = h.ByDuration(cfg.Duration)
	} else {
		results = h.All()
	}
	if cfg.Last > 0 && len(results) > cfg.Last {
		results = results[len(results)-cfg.Last:]
	}
	return Report{
		Results:    results,
		Summary:    Aggregate(results),
		Mistakes:   MistypedChars(results),
		AllTimeWPM: h.AverageWPM(),
	}
}
