package tui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/typetest/internal/align"
)

func TestBuildReferenceRunesHighlightsCurrentWord(t *testing.T) {
	runes := buildReferenceRunes("one two three", 2)
	if len(runes) != 13 {
		t.Fatalf("expected 13 runes, got %d", len(runes))
	}
	if runes[0].s != doneStyle.Render("o") {
		t.Fatalf("expected done style for first word")
	}
	if runes[3].s != doneStyle.Render(" ") {
		t.Fatalf("expected done style for first space")
	}
	if runes[4].s != currentWordStyle.Render("t") {
		t.Fatalf("expected current word style for second word")
	}
	if runes[8].s != pendingStyle.Render("t") {
		t.Fatalf("expected pending style for third word")
	}
}

func TestBuildTypedRunesClasses(t *testing.T) {
	input := []rune("ab c d")
	classes := []align.Class{
		align.Correct, align.Incorrect, align.Incorrect, align.OverflowNear, align.OverflowFar, align.OverflowFar,
	}
	runes := buildTypedRunes(input, classes, true)
	if len(runes) != 7 {
		t.Fatalf("expected 6 runes plus cursor, got %d", len(runes))
	}
	if runes[0].s != correctStyle.Render("a") {
		t.Fatalf("expected correct style")
	}
	if runes[1].s != incorrectStyle.Render("b") {
		t.Fatalf("expected incorrect style")
	}
	if runes[2].s != incorrectStyle.Render("•") || runes[2].isSpace {
		t.Fatalf("expected red dot for wrong space")
	}
	if runes[3].s != incorrectStyle.Render("c") {
		t.Fatalf("expected error style for near overflow")
	}
	if runes[5].s != overflowFarStyle.Render("d") {
		t.Fatalf("expected muted style for far overflow")
	}
	if runes[6].s != cursorStyle.Render(" ") {
		t.Fatalf("expected trailing cursor")
	}
	if got := buildTypedRunes(input, classes, false); len(got) != 6 {
		t.Fatalf("expected no cursor when not running")
	}
}

func TestWrapStyledRunesBreaksAtSpaces(t *testing.T) {
	runes := plainRunes("aaa bbb ccc")
	out := wrapStyledRunes(runes, 7)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 || lines[0] != "aaa" || lines[1] != "bbb ccc" {
		t.Fatalf("unexpected wrap: %q", lines)
	}
}

func TestWrapStyledRunesHardBreak(t *testing.T) {
	out := wrapStyledRunes(plainRunes("abcdefgh"), 3)
	if out != "abc\ndef\ngh" {
		t.Fatalf("unexpected hard wrap: %q", out)
	}
}

func TestWrapStyledRunesWideRunes(t *testing.T) {
	runes := plainRunes("日本 語")
	if runes[0].width != 2 {
		t.Fatalf("expected width 2 for wide rune")
	}
	out := wrapStyledRunes(runes, 5)
	if out != "日本\n語" {
		t.Fatalf("unexpected wide wrap: %q", out)
	}
}

func plainRunes(s string) []styledRune {
	out := make([]styledRune, 0, len(s))
	for _, r := range s {
		out = append(out, styledRune{s: string(r), width: runewidth.RuneWidth(r), isSpace: r == ' '})
	}
	return out
}
