// Package session runs the lifecycle of a single timed typing test.
//
// A test moves Idle -> Running -> Finished. Keystrokes and WPM samples are
// only accepted while Running, and Finish computes the result exactly once.
// All methods take the current time from the caller.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/verte-zerg/typetest/internal/align"
	"github.com/verte-zerg/typetest/internal/model"
	"github.com/verte-zerg/typetest/internal/stats"
)

// State is the lifecycle phase of a test.
type State int

const (
	Idle State = iota
	Running
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

var (
	// ErrNotRunning is returned for input or samples outside Running.
	ErrNotRunning = errors.New("test is not running")
	// ErrAlreadyStarted is returned by Start after the test began.
	ErrAlreadyStarted = errors.New("test already started")
	// ErrFinished is returned by Finish after the result was computed.
	ErrFinished = errors.New("test already finished")
)

// Session holds the state of one test. It is safe for concurrent use; each
// method holds the lock for its whole duration.
type Session struct {
	mu sync.Mutex

	reference string
	sampleID  int
	duration  int

	state     State
	startedAt time.Time
	typed     string
	alignment align.Result
	samples   []float64
	result    model.TestResult
}

// New returns an idle session over reference lasting durationSeconds.
func New(reference string, sampleID, durationSeconds int) *Session {
	return &Session{
		reference: reference,
		sampleID:  sampleID,
		duration:  durationSeconds,
	}
}

// Reset returns the session to Idle with a new reference.
func (s *Session) Reset(reference string, sampleID, durationSeconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reference = reference
	s.sampleID = sampleID
	s.duration = durationSeconds
	s.state = Idle
	s.startedAt = time.Time{}
	s.typed = ""
	s.alignment = align.Result{}
	s.samples = nil
	s.result = model.TestResult{}
}

// State returns the current phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reference returns the passage being typed.
func (s *Session) Reference() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reference
}

// Duration returns the configured length in seconds.
func (s *Session) Duration() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// Start moves an idle session to Running.
func (s *Session) Start(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case Running:
		return ErrAlreadyStarted
	case Finished:
		return ErrFinished
	}
	s.state = Running
	s.startedAt = now
	s.samples = nil
	return nil
}

// SetInput replaces the typed buffer and re-aligns it against the reference.
func (s *Session) SetInput(text string) (align.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Running {
		return align.Result{}, ErrNotRunning
	}
	s.typed = text
	s.alignment = align.Classify(s.reference, text)
	return s.alignment, nil
}

// Typed returns the current buffer.
func (s *Session) Typed() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typed
}

// Alignment returns the classification of the current buffer.
func (s *Session) Alignment() align.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alignment
}

// Sample records the instantaneous WPM at now.
func (s *Session) Sample(now time.Time) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Running {
		return 0, ErrNotRunning
	}
	wpm := stats.InstantWPM(len([]rune(s.typed)), now.Sub(s.startedAt))
	s.samples = append(s.samples, wpm)
	return wpm, nil
}

// Samples returns a copy of the recorded WPM samples.
func (s *Session) Samples() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]float64, len(s.samples))
	copy(out, s.samples)
	return out
}

// Remaining returns the time left. An idle test has its full duration left.
func (s *Session) Remaining(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := time.Duration(s.duration) * time.Second
	switch s.state {
	case Idle:
		return total
	case Finished:
		return 0
	}
	return max(0, total-now.Sub(s.startedAt))
}

// Expired reports whether a running test has used up its duration.
func (s *Session) Expired(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == Running && now.Sub(s.startedAt) >= time.Duration(s.duration)*time.Second
}

// Finish ends a running test and computes its result. Statistics always use
// the configured duration, also when the test is ended early. Calling Finish
// again returns the same result with ErrFinished.
func (s *Session) Finish(now time.Time) (model.TestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case Idle:
		return model.TestResult{}, ErrNotRunning
	case Finished:
		return s.result, ErrFinished
	}
	s.state = Finished
	s.result = stats.Summarize(s.typed, s.alignment.Errors, s.duration, s.samples, now, s.sampleID)
	return s.result, nil
}

// Result returns the computed result once the test is finished.
func (s *Session) Result() (model.TestResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.state == Finished
}
