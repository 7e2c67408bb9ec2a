// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/typetest/internal/model"
)

// CharsPerWord is the conventional word length used for WPM.
const CharsPerWord = 5.0

const sparkChars = " .:-=+*#%@"

// Summarize builds the finalized result of a test. It has no side effects
// and never fails for a non-negative duration.
func Summarize(typed string, errs []model.ErrorRecord, durationSeconds int, wpmSamples []float64, timestamp time.Time, sampleID int) model.TestResult {
	totalChars := len([]rune(typed))
	errorCount := len(errs)

	wpm := RawWPM(totalChars, float64(durationSeconds))
	peak := wpm
	if len(wpmSamples) > 0 {
		peak = wpmSamples[0]
		for _, v := range wpmSamples[1:] {
			if v > peak {
				peak = v
			}
		}
	}

	details := make([]model.ErrorRecord, len(errs))
	copy(details, errs)

	return model.TestResult{
		Timestamp:        timestamp,
		Duration:         durationSeconds,
		SampleID:         sampleID,
		WPM:              Round1(wpm),
		AdjustedWPM:      Round1(AdjustedWPM(totalChars, errorCount, float64(durationSeconds))),
		AccuracyPercent:  Round1(AccuracyPercent(totalChars, errorCount)),
		PeakWPM:          Round1(peak),
		ConsistencyScore: Round1(StdDev(wpmSamples)),
		TotalCharacters:  totalChars,
		TotalWords:       len(strings.Fields(typed)),
		Errors:           errorCount,
		ErrorDetails:     details,
	}
}

// RawWPM returns (chars/5) per minute, or 0 for a non-positive duration.
func RawWPM(chars int, seconds float64) float64 {
	if seconds <= 0 {
		return 0
	}
	return (float64(chars) / CharsPerWord) / (seconds / 60)
}

// AdjustedWPM subtracts one word per error before dividing by time.
func AdjustedWPM(chars, errors int, seconds float64) float64 {
	if seconds <= 0 {
		return 0
	}
	return math.Max(0, (float64(chars)/CharsPerWord-float64(errors))/(seconds/60))
}

// AccuracyPercent returns the share of typed characters without an error
// record. Callers keep errors <= chars; the value is not clamped.
func AccuracyPercent(chars, errors int) float64 {
	if chars <= 0 {
		return 0
	}
	return float64(chars-errors) / float64(chars) * 100
}

// InstantWPM is the speed so far, used for the periodic samples.
func InstantWPM(chars int, elapsed time.Duration) float64 {
	return RawWPM(chars, elapsed.Seconds())
}

// StdDev returns the sample standard deviation, or 0 for fewer than two values.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)-1))
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := minMax(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

func minMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	return minVal, maxVal
}

// Summary aggregates a list of results.
type Summary struct {
	Count          int
	AvgWPM         float64
	BestWPM        float64
	AvgAdjustedWPM float64
	AvgAccuracy    float64
	AvgConsistency float64
}

// Aggregate computes aggregate values over results.
func Aggregate(results []model.TestResult) Summary {
	s := Summary{Count: len(results)}
	if len(results) == 0 {
		return s
	}
	for _, r := range results {
		s.AvgWPM += r.WPM
		s.AvgAdjustedWPM += r.AdjustedWPM
		s.AvgAccuracy += r.AccuracyPercent
		s.AvgConsistency += r.ConsistencyScore
		if r.WPM > s.BestWPM {
			s.BestWPM = r.WPM
		}
	}
	n := float64(len(results))
	s.AvgWPM /= n
	s.AvgAdjustedWPM /= n
	s.AvgAccuracy /= n
	s.AvgConsistency /= n
	return s
}

// RenderSummary prints a summary block for results.
func RenderSummary(w io.Writer, results []model.TestResult) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results found.")
		return err
	}
	s := Aggregate(results)
	lines := []string{
		"Summary",
		fmt.Sprintf("Tests: %d", s.Count),
		fmt.Sprintf("Avg WPM: %.1f", s.AvgWPM),
		fmt.Sprintf("Best WPM: %.1f", s.BestWPM),
		fmt.Sprintf("Avg Adjusted WPM: %.1f", s.AvgAdjustedWPM),
		fmt.Sprintf("Avg Accuracy: %.1f%%", s.AvgAccuracy),
		fmt.Sprintf("Avg Consistency: %.1f", s.AvgConsistency),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints WPM and accuracy learning curves.
func RenderCurves(w io.Writer, results []model.TestResult, window, totalWidth, height int) error {
	if len(results) == 0 {
		return nil
	}
	wpms := make([]float64, len(results))
	adjusted := make([]float64, len(results))
	accs := make([]float64, len(results))
	for i, r := range results {
		wpms[i] = r.WPM
		adjusted[i] = r.AdjustedWPM
		accs[i] = r.AccuracyPercent
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	if err := PlotSeries(w, "WPM", []Series{
		{Name: "WPM", Values: MovingAverage(wpms, window)},
		{Name: "Adjusted", Values: MovingAverage(adjusted, window)},
	}, width, height); err != nil {
		return err
	}
	return PlotSeries(w, "Accuracy", []Series{
		{Name: "Accuracy %", Values: MovingAverage(accs, window)},
	}, width, height)
}

// RenderResult prints the metrics of a single result.
func RenderResult(w io.Writer, r model.TestResult) error {
	headers := []string{"Metric", "Value"}
	rows := [][]string{
		{"WPM", fmt.Sprintf("%.1f", r.WPM)},
		{"Adjusted WPM", fmt.Sprintf("%.1f", r.AdjustedWPM)},
		{"Accuracy", fmt.Sprintf("%.1f%%", r.AccuracyPercent)},
		{"Peak WPM", fmt.Sprintf("%.1f", r.PeakWPM)},
		{"Consistency", fmt.Sprintf("%.1f", r.ConsistencyScore)},
		{"Characters", fmt.Sprintf("%d", r.TotalCharacters)},
		{"Words", fmt.Sprintf("%d", r.TotalWords)},
		{"Errors", fmt.Sprintf("%d", r.Errors)},
	}
	for _, line := range formatTable(headers, rows, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
