package samples

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuiltinSamples(t *testing.T) {
	c, err := Builtin()
	if err != nil {
		t.Fatalf("builtin: %v", err)
	}
	list := c.Samples()
	if len(list) < 20 {
		t.Fatalf("expected at least 20 samples, got %d", len(list))
	}
	seen := map[int]bool{}
	for _, s := range list {
		if s.Text == "" || s.Source == "" {
			t.Fatalf("sample %d missing text or source", s.ID)
		}
		if strings.Contains(s.Text, "\n") {
			t.Fatalf("sample %d contains a newline", s.ID)
		}
		if seen[s.ID] {
			t.Fatalf("duplicate id %d", s.ID)
		}
		seen[s.ID] = true
	}
}

func TestCollectionPickConcatenates(t *testing.T) {
	c, err := NewCollection([]Sample{
		{ID: 1, Text: "alpha", Source: "a"},
		{ID: 2, Text: "beta", Source: "b"},
		{ID: 3, Text: "gamma", Source: "c"},
	}, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("new collection: %v", err)
	}
	p, err := c.Pick(2)
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	if len(p.IDs) != 2 || p.IDs[0] == p.IDs[1] {
		t.Fatalf("expected 2 distinct ids, got %v", p.IDs)
	}
	if len(strings.Fields(p.Text)) != 2 {
		t.Fatalf("expected two samples joined by a space, got %q", p.Text)
	}
	if p.PrimaryID() != p.IDs[0] {
		t.Fatalf("primary id should be the first sample")
	}

	all, _ := c.Pick(10)
	if len(all.IDs) != 3 {
		t.Fatalf("expected pick to clamp to 3, got %d", len(all.IDs))
	}
	one, _ := c.Pick(0)
	if len(one.IDs) != 1 {
		t.Fatalf("expected pick to clamp to 1, got %d", len(one.IDs))
	}
}

func TestNewCollectionRejectsBadInput(t *testing.T) {
	if _, err := NewCollection(nil, nil); !errors.Is(err, ErrNoSamples) {
		t.Fatalf("expected ErrNoSamples, got %v", err)
	}
	if _, err := NewCollection([]Sample{{ID: 1, Text: "  "}}, nil); err == nil {
		t.Fatalf("expected error for empty text")
	}
	if _, err := NewCollection([]Sample{{ID: 1, Text: "a"}, {ID: 1, Text: "b"}}, nil); err == nil {
		t.Fatalf("expected error for duplicate id")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.yaml")
	data := "- id: 7\n  text: hello world\n  source: test\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	p, _ := c.Pick(1)
	if p.Text != "hello world" || p.PrimaryID() != 7 {
		t.Fatalf("unexpected passage: %+v", p)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("- id: 1\n  txt: typo\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFile(bad); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestWordsProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "en.txt")
	if err := os.WriteFile(path, []byte("the\n\nquick\n  fox  \n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	w, err := LoadWords(path, 5)
	if err != nil {
		t.Fatalf("load words: %v", err)
	}
	p, err := w.Pick(2)
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	words := strings.Fields(p.Text)
	if len(words) != 10 {
		t.Fatalf("expected 10 words, got %d", len(words))
	}
	for _, word := range words {
		if word != "the" && word != "quick" && word != "fox" {
			t.Fatalf("unexpected word %q", word)
		}
	}
	if p.PrimaryID() != 0 {
		t.Fatalf("expected id 0 for generated passage")
	}

	empty := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(empty, []byte("\n\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadWords(empty, 5); err == nil {
		t.Fatalf("expected error for empty word list")
	}
}

func TestNewCollectionCollapsesWhitespace(t *testing.T) {
	c, err := NewCollection([]Sample{{ID: 1, Text: "  ab\ncd\t\tef  \n"}}, nil)
	if err != nil {
		t.Fatalf("collection: %v", err)
	}
	p, err := c.Pick(1)
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	if p.Text != "ab cd ef" {
		t.Fatalf("expected collapsed text, got %q", p.Text)
	}
}

func TestLoadFileLiteralBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.yaml")
	data := "- id: 1\n  source: poem\n  text: |\n    ab\n    cd\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := c.Samples()[0].Text; got != "ab cd" {
		t.Fatalf("expected newline to become a space, got %q", got)
	}
}
