package tui

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/typetest/internal/history"
	"github.com/verte-zerg/typetest/internal/model"
	"github.com/verte-zerg/typetest/internal/samples"
	"github.com/verte-zerg/typetest/internal/session"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func newTestModel(t *testing.T, h history.History) (*Model, *fakeClock) {
	t.Helper()
	provider, err := samples.NewCollection([]samples.Sample{{ID: 7, Text: "cat dog"}}, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("collection: %v", err)
	}
	m, err := NewModel(model.Config{Duration: 30, Samples: 1}, h, provider)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	m.now = clock.now
	return m, clock
}

func typeText(m *Model, text string) tea.Cmd {
	var last tea.Cmd
	for _, r := range text {
		msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
		if r == ' ' {
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		}
		_, cmd := m.Update(msg)
		if cmd != nil {
			last = cmd
		}
	}
	return last
}

func TestFooterShowsLastAndAllTime(t *testing.T) {
	h := history.NewMemory()
	h.Append(model.TestResult{Duration: 30, WPM: 40, AccuracyPercent: 95})
	h.Append(model.TestResult{Duration: 30, WPM: 60, AccuracyPercent: 90})
	m, _ := newTestModel(t, h)

	footer := m.renderFooter()
	if !strings.Contains(footer, "Last 60.0 WPM · 90.0%") {
		t.Fatalf("expected last result in footer, got %q", footer)
	}
	if !strings.Contains(footer, "All-time 50.0 WPM") {
		t.Fatalf("expected all-time average in footer, got %q", footer)
	}
	if !strings.Contains(footer, "tab: duration") {
		t.Fatalf("expected idle hints in footer, got %q", footer)
	}
}

func TestFooterWithoutHistory(t *testing.T) {
	m, _ := newTestModel(t, history.NewMemory())
	footer := m.renderFooter()
	if strings.Contains(footer, "Last") {
		t.Fatalf("expected no last result, got %q", footer)
	}
	if !strings.Contains(footer, "All-time 0.0 WPM") {
		t.Fatalf("expected zero average, got %q", footer)
	}
}

func TestTabCyclesDurationWhileIdle(t *testing.T) {
	m, _ := newTestModel(t, history.NewMemory())
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.session.Duration() != 60 {
		t.Fatalf("expected 60s after one tab, got %d", m.session.Duration())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.session.Duration() != 30 {
		t.Fatalf("expected wrap back to 30s, got %d", m.session.Duration())
	}
}

func TestFirstKeyStartsAndEscFinishes(t *testing.T) {
	h := history.NewMemory()
	m, clock := newTestModel(t, h)

	cmd := typeText(m, "c")
	if m.session.State() != session.Running {
		t.Fatalf("expected running after first key, got %s", m.session.State())
	}
	if cmd == nil {
		t.Fatalf("expected tick to be scheduled on start")
	}

	typeText(m, "at dig")
	clock.t = clock.t.Add(10 * time.Second)
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	if m.session.State() != session.Finished {
		t.Fatalf("expected finished after esc, got %s", m.session.State())
	}
	all := h.All()
	if len(all) != 1 {
		t.Fatalf("expected one stored result, got %d", len(all))
	}
	got := all[0]
	if got.Duration != 30 || got.SampleID != 7 {
		t.Fatalf("unexpected result metadata: %+v", got)
	}
	if got.Errors != 1 || got.TotalCharacters != 7 {
		t.Fatalf("unexpected counts: errors=%d chars=%d", got.Errors, got.TotalCharacters)
	}
	if !strings.Contains(m.renderFooter(), "enter: new test") {
		t.Fatalf("expected finished hints")
	}
}

func TestBackspaceAndDeleteWord(t *testing.T) {
	m, _ := newTestModel(t, history.NewMemory())
	typeText(m, "cat dox")
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if string(m.input) != "cat do" {
		t.Fatalf("unexpected input after backspace: %q", string(m.input))
	}
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlW})
	if string(m.input) != "cat " {
		t.Fatalf("unexpected input after delete word: %q", string(m.input))
	}
	if m.session.Typed() != "cat " {
		t.Fatalf("session not updated: %q", m.session.Typed())
	}
}

func TestTickSamplesAndExpires(t *testing.T) {
	h := history.NewMemory()
	m, clock := newTestModel(t, h)
	start := clock.t
	typeText(m, "cat")

	m.Update(tickMsg{id: m.tickID, at: start.Add(time.Second)})
	if len(m.session.Samples()) != 1 {
		t.Fatalf("expected one sample, got %d", len(m.session.Samples()))
	}
	if m.lastWPM <= 0 {
		t.Fatalf("expected live wpm to update")
	}

	m.Update(tickMsg{id: m.tickID - 1, at: start.Add(2 * time.Second)})
	if len(m.session.Samples()) != 1 {
		t.Fatalf("stale tick should be ignored")
	}

	clock.t = start.Add(30 * time.Second)
	_, cmd := m.Update(tickMsg{id: m.tickID, at: clock.t})
	if cmd != nil {
		t.Fatalf("expected no further tick after expiry")
	}
	if m.session.State() != session.Finished {
		t.Fatalf("expected finished at expiry, got %s", m.session.State())
	}
	if len(h.All()) != 1 {
		t.Fatalf("expected result to be stored once")
	}
}

func TestEnterStartsNewTest(t *testing.T) {
	m, _ := newTestModel(t, history.NewMemory())
	typeText(m, "cat")
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.session.State() != session.Idle {
		t.Fatalf("expected idle after restart, got %s", m.session.State())
	}
	if len(m.input) != 0 {
		t.Fatalf("expected input cleared")
	}
	if !m.hasLast || m.last.TotalCharacters != 3 {
		t.Fatalf("expected last result kept for footer")
	}
}

func TestMultilinePassageIsTypeable(t *testing.T) {
	provider, err := samples.NewCollection([]samples.Sample{{ID: 1, Text: "ab\ncd"}}, nil)
	if err != nil {
		t.Fatalf("collection: %v", err)
	}
	m, err := NewModel(model.Config{Duration: 30, Samples: 1}, history.NewMemory(), provider)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	typeText(m, "ab cd")
	if got := m.session.Reference(); got != "ab cd" {
		t.Fatalf("unexpected reference %q", got)
	}
	if errs := m.session.Alignment().Errors; len(errs) != 0 {
		t.Fatalf("expected no errors, got %+v", errs)
	}
}
