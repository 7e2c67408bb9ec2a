package session

import (
	"errors"
	"testing"
	"time"
)

var t0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func TestLifecycle(t *testing.T) {
	s := New("cat dog", 3, 60)
	if s.State() != Idle {
		t.Fatalf("expected idle, got %s", s.State())
	}
	if _, err := s.SetInput("c"); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning before start, got %v", err)
	}
	if _, err := s.Sample(t0); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning for sample before start, got %v", err)
	}
	if _, err := s.Finish(t0); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning for finish before start, got %v", err)
	}

	if err := s.Start(t0); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.Start(t0); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("expected ErrAlreadyStarted, got %v", err)
	}

	res, err := s.SetInput("cat dig")
	if err != nil {
		t.Fatalf("set input: %v", err)
	}
	if len(res.Errors) != 1 || res.Errors[0].Position != 5 {
		t.Fatalf("unexpected alignment: %+v", res.Errors)
	}

	wpm, err := s.Sample(t0.Add(30 * time.Second))
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	// 7 chars / 5 over half a minute.
	if wpm < 2.79 || wpm > 2.81 {
		t.Fatalf("unexpected sample %v", wpm)
	}

	result, err := s.Finish(t0.Add(60 * time.Second))
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if result.Errors != 1 || result.TotalCharacters != 7 || result.SampleID != 3 || result.Duration != 60 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.PeakWPM != 2.8 {
		t.Fatalf("expected peak from samples, got %v", result.PeakWPM)
	}

	again, err := s.Finish(t0.Add(90 * time.Second))
	if !errors.Is(err, ErrFinished) {
		t.Fatalf("expected ErrFinished, got %v", err)
	}
	if !again.Timestamp.Equal(result.Timestamp) {
		t.Fatalf("second finish must return the original result")
	}
	if _, err := s.SetInput("cat dog"); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected input to be rejected after finish, got %v", err)
	}
	if err := s.Start(t0); !errors.Is(err, ErrFinished) {
		t.Fatalf("expected ErrFinished on restart without reset, got %v", err)
	}
}

func TestFinishEarlyFreezesSamples(t *testing.T) {
	s := New("a b c", 1, 30)
	if err := s.Start(t0); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := s.SetInput("a b"); err != nil {
		t.Fatalf("set input: %v", err)
	}
	if _, err := s.Sample(t0.Add(time.Second)); err != nil {
		t.Fatalf("sample: %v", err)
	}
	if _, err := s.Finish(t0.Add(5 * time.Second)); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if _, err := s.Sample(t0.Add(6 * time.Second)); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected samples to stop after finish, got %v", err)
	}
	if got := len(s.Samples()); got != 1 {
		t.Fatalf("expected 1 frozen sample, got %d", got)
	}
	r, ok := s.Result()
	if !ok || r.Duration != 30 {
		t.Fatalf("expected configured duration in result, got %+v", r)
	}
}

func TestRemainingAndExpired(t *testing.T) {
	s := New("abc", 1, 30)
	if got := s.Remaining(t0); got != 30*time.Second {
		t.Fatalf("idle remaining = %v", got)
	}
	if err := s.Start(t0); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := s.Remaining(t0.Add(10 * time.Second)); got != 20*time.Second {
		t.Fatalf("running remaining = %v", got)
	}
	if s.Expired(t0.Add(29 * time.Second)) {
		t.Fatalf("should not be expired yet")
	}
	if !s.Expired(t0.Add(30 * time.Second)) {
		t.Fatalf("should be expired")
	}
	if got := s.Remaining(t0.Add(45 * time.Second)); got != 0 {
		t.Fatalf("remaining must not go negative, got %v", got)
	}
}

func TestReset(t *testing.T) {
	s := New("abc", 1, 30)
	_ = s.Start(t0)
	_, _ = s.SetInput("ab")
	_, _ = s.Sample(t0.Add(time.Second))
	_, _ = s.Finish(t0.Add(2 * time.Second))

	s.Reset("xyz", 2, 120)
	if s.State() != Idle || s.Typed() != "" || len(s.Samples()) != 0 {
		t.Fatalf("reset did not clear state")
	}
	if s.Reference() != "xyz" || s.Duration() != 120 {
		t.Fatalf("reset did not apply new passage")
	}
	if _, ok := s.Result(); ok {
		t.Fatalf("reset session must not report a result")
	}
	if err := s.Start(t0); err != nil {
		t.Fatalf("start after reset: %v", err)
	}
}
