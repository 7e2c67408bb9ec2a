package tui

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/typetest/internal/align"
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

func newStyledRune(style lipgloss.Style, r rune, isSpace bool) styledRune {
	return styledRune{
		s:       style.Render(string(r)),
		width:   runewidth.RuneWidth(r),
		isSpace: isSpace,
	}
}

// buildReferenceRunes styles the passage by token: tokens before current are
// done, the current word token is highlighted, the rest are pending.
func buildReferenceRunes(reference string, current int) []styledRune {
	tokens := align.Tokenize(reference)
	out := make([]styledRune, 0, len(reference))
	for idx, tok := range tokens {
		style := pendingStyle
		switch {
		case idx < current:
			style = doneStyle
		case idx == current && !tok.IsSpace:
			style = currentWordStyle
		}
		for _, r := range tok.Text {
			out = append(out, newStyledRune(style, displayRune(r), tok.IsSpace))
		}
	}
	return out
}

// buildTypedRunes styles the typed buffer by its classification and appends
// a cursor cell when showCursor is set.
func buildTypedRunes(input []rune, classes []align.Class, showCursor bool) []styledRune {
	out := make([]styledRune, 0, len(input)+1)
	for i, r := range input {
		class := align.Correct
		if i < len(classes) {
			class = classes[i]
		}
		displayed := displayRune(r)
		style := correctStyle
		switch class {
		case align.Incorrect, align.OverflowNear:
			style = incorrectStyle
			if unicode.IsSpace(r) {
				displayed = '•'
			}
		case align.OverflowFar:
			style = overflowFarStyle
		}
		out = append(out, newStyledRune(style, displayed, displayed == ' '))
	}
	if showCursor {
		out = append(out, newStyledRune(cursorStyle, ' ', false))
	}
	return out
}

// displayRune maps whitespace that would break layout to a plain space.
func displayRune(r rune) rune {
	if unicode.IsSpace(r) {
		return ' '
	}
	return r
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
