// Package tui provides the Bubble Tea typing test interface.
package tui

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typetest/internal/align"
	"github.com/verte-zerg/typetest/internal/history"
	"github.com/verte-zerg/typetest/internal/model"
	"github.com/verte-zerg/typetest/internal/samples"
	"github.com/verte-zerg/typetest/internal/session"
	statsPkg "github.com/verte-zerg/typetest/internal/stats"
)

const sampleInterval = time.Second

// tickMsg drives the countdown and the WPM samples. Ticks from a previous
// test carry an old id and are dropped.
type tickMsg struct {
	id int
	at time.Time
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	config   model.Config
	history  history.History
	provider samples.Provider
	now      func() time.Time

	session  *session.Session
	passage  samples.Passage
	duration int
	input    []rune
	tickID   int
	lastWPM  float64
	errMsg   string

	width  int
	height int

	hasLast    bool
	last       model.TestResult
	allTimeWPM float64
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	overflowFarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5A5A5A"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	doneStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#4F6F4F"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle      = pendingStyle.Underline(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	inputBoxStyle    = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A")).
				Padding(0, 1)
	resultBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(0, 1)
)

// NewModel constructs a typing TUI model and picks the first passage.
func NewModel(cfg model.Config, h history.History, provider samples.Provider) (*Model, error) {
	m := &Model{
		config:   cfg,
		history:  h,
		provider: provider,
		now:      time.Now,
		duration: cfg.Duration,
	}
	if err := m.resetSession(); err != nil {
		return nil, err
	}
	m.loadFooterStats()
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		return m, m.handleTick(msg)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.session.State() {
		case session.Idle:
			return m.updateIdle(msg)
		case session.Running:
			return m.updateRunning(msg)
		default:
			return m.updateFinished(msg)
		}
	default:
		return m, nil
	}
}

func (m *Model) updateIdle(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyTab:
		m.duration = nextDuration(m.duration)
		m.session.Reset(m.passage.Text, m.passage.PrimaryID(), m.duration)
		return m, nil
	case tea.KeySpace, tea.KeyRunes:
		if err := m.session.Start(m.now()); err != nil {
			slog.Warn("failed to start test", "err", err)
			return m, nil
		}
		m.tickID++
		m.handleRunes(keyRunes(msg))
		return m, m.scheduleTick()
	default:
		return m, nil
	}
}

func (m *Model) updateRunning(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.finishSession()
		return m, nil
	case tea.KeyBackspace, tea.KeyDelete:
		m.handleBackspace()
		return m, nil
	case tea.KeyCtrlW:
		m.handleDeleteWord()
		return m, nil
	case tea.KeySpace, tea.KeyRunes:
		m.handleRunes(keyRunes(msg))
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) updateFinished(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc || msg.String() == "q":
		return m, tea.Quit
	case msg.Type == tea.KeyEnter || msg.String() == "r":
		if err := m.resetSession(); err != nil {
			m.errMsg = err.Error()
		}
		return m, nil
	default:
		return m, nil
	}
}

func keyRunes(msg tea.KeyMsg) []rune {
	if msg.Type == tea.KeySpace {
		return []rune{' '}
	}
	return msg.Runes
}

func (m *Model) scheduleTick() tea.Cmd {
	id := m.tickID
	return tea.Tick(sampleInterval, func(t time.Time) tea.Msg {
		return tickMsg{id: id, at: t}
	})
}

func (m *Model) handleTick(msg tickMsg) tea.Cmd {
	if msg.id != m.tickID || m.session.State() != session.Running {
		return nil
	}
	wpm, err := m.session.Sample(msg.at)
	if err != nil {
		return nil
	}
	m.lastWPM = wpm
	if m.session.Expired(msg.at) {
		m.finishSession()
		return nil
	}
	return m.scheduleTick()
}

func (m *Model) handleRunes(runes []rune) {
	m.input = append(m.input, runes...)
	m.applyInput()
}

func (m *Model) handleBackspace() {
	if len(m.input) == 0 {
		return
	}
	m.input = m.input[:len(m.input)-1]
	m.applyInput()
}

// handleDeleteWord removes trailing whitespace and the word before it.
func (m *Model) handleDeleteWord() {
	i := len(m.input)
	for i > 0 && m.input[i-1] == ' ' {
		i--
	}
	for i > 0 && m.input[i-1] != ' ' {
		i--
	}
	m.input = m.input[:i]
	m.applyInput()
}

func (m *Model) applyInput() {
	if _, err := m.session.SetInput(string(m.input)); err != nil {
		slog.Warn("input rejected", "err", err)
	}
}

// finishSession stops the ticker and records the result.
func (m *Model) finishSession() {
	m.tickID++
	result, err := m.session.Finish(m.now())
	if err != nil {
		slog.Warn("failed to finish test", "err", err)
		return
	}
	m.history.Append(result)
	m.last = result
	m.hasLast = true
	m.allTimeWPM = m.history.AverageWPM()
}

func (m *Model) resetSession() error {
	count := m.config.Samples
	if count <= 0 {
		count = 1
	}
	passage, err := m.provider.Pick(count)
	if err != nil {
		return fmt.Errorf("failed to pick sample: %w", err)
	}
	m.passage = passage
	m.input = nil
	m.lastWPM = 0
	m.errMsg = ""
	m.tickID++
	if m.session == nil {
		m.session = session.New(passage.Text, passage.PrimaryID(), m.duration)
	} else {
		m.session.Reset(passage.Text, passage.PrimaryID(), m.duration)
	}
	return nil
}

func (m *Model) loadFooterStats() {
	recent := m.history.Recent(1)
	if len(recent) > 0 {
		m.last = recent[0]
		m.hasLast = true
	}
	m.allTimeWPM = m.history.AverageWPM()
}

func nextDuration(current int) int {
	for i, d := range model.Durations {
		if d == current {
			return model.Durations[(i+1)%len(model.Durations)]
		}
	}
	return model.Durations[0]
}

// View implements tea.Model.
func (m *Model) View() string {
	contentWidth := m.contentWidth()
	sections := []string{m.renderHeader()}
	if m.errMsg != "" {
		sections = append(sections, errorStyle.Render(m.errMsg))
	}

	ref := m.session.Reference()
	refRunes := buildReferenceRunes(ref, align.CurrentToken(string(m.input)))
	sections = append(sections, wrapStyledRunes(refRunes, contentWidth))

	if m.session.State() == session.Finished {
		if result, ok := m.session.Result(); ok {
			sections = append(sections, m.renderResult(result))
		}
	} else {
		alignment := m.session.Alignment()
		typedRunes := buildTypedRunes(m.input, alignment.Classes, m.session.State() == session.Running)
		box := inputBoxStyle.Width(max(1, contentWidth-2))
		sections = append(sections, box.Render(wrapStyledRunes(typedRunes, max(1, contentWidth-4))))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return content + "\n" + footer
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 80
	}
	return max(20, int(float64(m.width)*0.70))
}

func (m *Model) renderHeader() string {
	remaining := m.session.Remaining(m.now())
	secs := int(remaining.Round(time.Second).Seconds())
	parts := []string{
		fmt.Sprintf("%ds test", m.session.Duration()),
		fmt.Sprintf("%d:%02d", secs/60, secs%60),
	}
	switch m.session.State() {
	case session.Idle:
		parts = append(parts, "start typing to begin")
	case session.Running:
		parts = append(parts, fmt.Sprintf("%.0f WPM", m.lastWPM))
	case session.Finished:
		parts = append(parts, "done")
	}
	return headerStyle.Render(strings.Join(parts, "  "))
}

func (m *Model) renderResult(result model.TestResult) string {
	var buf bytes.Buffer
	if err := statsPkg.RenderResult(&buf, result); err != nil {
		return errorStyle.Render(err.Error())
	}
	return resultBoxStyle.Render(strings.TrimRight(buf.String(), "\n"))
}

func (m *Model) renderFooter() string {
	segments := []string{}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %.1f WPM · %.1f%%", m.last.WPM, m.last.AccuracyPercent))
	}
	segments = append(segments, fmt.Sprintf("All-time %.1f WPM", m.allTimeWPM))
	switch m.session.State() {
	case session.Idle:
		segments = append(segments, "tab: duration", "esc: quit")
	case session.Running:
		segments = append(segments, "esc: end test")
	case session.Finished:
		segments = append(segments, "enter: new test", "q: quit")
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
