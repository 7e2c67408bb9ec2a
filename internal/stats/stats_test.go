package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/typetest/internal/model"
)

func errorsN(n int) []model.ErrorRecord {
	out := make([]model.ErrorRecord, n)
	for i := range out {
		out[i] = model.ErrorRecord{Position: i, Typed: "a", Expected: "b"}
	}
	return out
}

func TestSummarizeSpeed(t *testing.T) {
	typed := strings.Repeat("a", 300)
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	clean := Summarize(typed, nil, 60, []float64{60}, ts, 4)
	if clean.WPM != 60 || clean.AdjustedWPM != 60 {
		t.Fatalf("expected 60/60, got %v/%v", clean.WPM, clean.AdjustedWPM)
	}
	if clean.AccuracyPercent != 100 {
		t.Fatalf("expected 100%% accuracy, got %v", clean.AccuracyPercent)
	}
	if clean.SampleID != 4 || !clean.Timestamp.Equal(ts) || clean.Duration != 60 {
		t.Fatalf("metadata not carried: %+v", clean)
	}

	sloppy := Summarize(typed, errorsN(10), 60, []float64{60}, ts, 4)
	if sloppy.AdjustedWPM != 50 {
		t.Fatalf("expected adjusted 50, got %v", sloppy.AdjustedWPM)
	}
	if sloppy.Errors != 10 || len(sloppy.ErrorDetails) != 10 {
		t.Fatalf("expected 10 errors, got %d", sloppy.Errors)
	}
}

func TestSummarizeAccuracy(t *testing.T) {
	r := Summarize(strings.Repeat("a", 100), errorsN(8), 60, nil, time.Now(), 1)
	if r.AccuracyPercent != 92 {
		t.Fatalf("expected 92%% accuracy, got %v", r.AccuracyPercent)
	}
}

func TestSummarizeCounts(t *testing.T) {
	r := Summarize("Hello  world ", nil, 60, []float64{50, 55, 60}, time.Now(), 1)
	if r.TotalCharacters != 13 || r.TotalWords != 2 || r.Errors != 0 {
		t.Fatalf("unexpected counts: %+v", r)
	}
	if r.ErrorDetails == nil {
		t.Fatalf("expected non-nil error details")
	}
}

func TestSummarizePeakAndConsistency(t *testing.T) {
	steady := Summarize("test", nil, 60, []float64{50, 50, 50, 50}, time.Now(), 1)
	if steady.ConsistencyScore != 0 {
		t.Fatalf("expected 0 consistency, got %v", steady.ConsistencyScore)
	}
	varied := Summarize("test", nil, 60, []float64{50, 75, 60, 55}, time.Now(), 1)
	if varied.PeakWPM != 75 {
		t.Fatalf("expected peak 75, got %v", varied.PeakWPM)
	}
	// Sample standard deviation of 50, 75, 60, 55.
	if varied.ConsistencyScore != 10.8 {
		t.Fatalf("expected consistency 10.8, got %v", varied.ConsistencyScore)
	}
	single := Summarize("test", nil, 60, []float64{42}, time.Now(), 1)
	if single.ConsistencyScore != 0 {
		t.Fatalf("expected 0 consistency for one sample, got %v", single.ConsistencyScore)
	}
	none := Summarize(strings.Repeat("a", 300), nil, 60, nil, time.Now(), 1)
	if none.PeakWPM != none.WPM {
		t.Fatalf("expected peak to fall back to raw wpm, got %v", none.PeakWPM)
	}
}

func TestSummarizeZeroGuards(t *testing.T) {
	r := Summarize("", nil, 0, nil, time.Now(), 1)
	if r.WPM != 0 || r.AdjustedWPM != 0 || r.AccuracyPercent != 0 || r.PeakWPM != 0 {
		t.Fatalf("expected zeros, got %+v", r)
	}
	r = Summarize("abc", errorsN(3), 0, nil, time.Now(), 1)
	if r.WPM != 0 || r.AdjustedWPM != 0 {
		t.Fatalf("expected zero speed for zero duration, got %+v", r)
	}
}

func TestAdjustedWPMFloorsAtZero(t *testing.T) {
	if got := AdjustedWPM(10, 5, 60); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestRawWPMMonotonic(t *testing.T) {
	prev := -1.0
	for chars := 0; chars < 500; chars += 7 {
		got := RawWPM(chars, 30)
		if got < prev {
			t.Fatalf("raw wpm decreased at %d chars", chars)
		}
		prev = got
	}
}

func TestInstantWPM(t *testing.T) {
	if got := InstantWPM(50, 30*time.Second); got != 20 {
		t.Fatalf("expected 20, got %v", got)
	}
	if got := InstantWPM(50, 0); got != 0 {
		t.Fatalf("expected 0 for zero elapsed, got %v", got)
	}
}

func TestRound1(t *testing.T) {
	cases := map[float64]float64{
		72.44: 72.4,
		72.46: 72.5,
		-0.04: 0,
		100:   100,
	}
	for in, want := range cases {
		if got := Round1(in); got != want {
			t.Fatalf("Round1(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected moving average: %v", got)
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{1, 1, 1}); got != "+++" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
	got := Sparkline([]float64{0, 10})
	if got != " @" {
		t.Fatalf("unexpected sparkline %q", got)
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "No results") {
		t.Fatalf("expected empty notice, got %q", buf.String())
	}
	buf.Reset()
	err := RenderSummary(&buf, []model.TestResult{
		{WPM: 60, AdjustedWPM: 55, AccuracyPercent: 96},
		{WPM: 80, AdjustedWPM: 75, AccuracyPercent: 98},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"Tests: 2", "Avg WPM: 70.0", "Best WPM: 80.0", "Avg Accuracy: 97.0%"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("summary missing %q: %s", want, buf.String())
		}
	}
}
