// Package samples provides reference passages for typing tests.
package samples

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed builtin.yaml
var builtinYAML []byte

// Sample is a single reference text.
type Sample struct {
	ID     int    `yaml:"id"`
	Text   string `yaml:"text"`
	Source string `yaml:"source"`
}

// Passage is the reference handed to a test: one or more samples joined by
// a single space.
type Passage struct {
	IDs     []int
	Text    string
	Sources []string
}

// PrimaryID is the id recorded with results, the first sample's id.
func (p Passage) PrimaryID() int {
	if len(p.IDs) == 0 {
		return 0
	}
	return p.IDs[0]
}

// Provider selects passages.
type Provider interface {
	Samples() []Sample
	Pick(n int) (Passage, error)
}

// ErrNoSamples is returned when a provider has nothing to pick from.
var ErrNoSamples = errors.New("no samples available")

// Collection picks from a fixed list of samples.
type Collection struct {
	samples []Sample
	rnd     *rand.Rand
}

// NewCollection validates samples and returns a provider over them. Runs of
// whitespace inside a text, including newlines and tabs, become one space.
func NewCollection(samples []Sample, rnd *rand.Rand) (*Collection, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	samples = append([]Sample(nil), samples...)
	seen := make(map[int]struct{}, len(samples))
	for i, s := range samples {
		if strings.TrimSpace(s.Text) == "" {
			return nil, fmt.Errorf("sample %d has empty text", s.ID)
		}
		if _, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("duplicate sample id %d", s.ID)
		}
		seen[s.ID] = struct{}{}
		samples[i].Text = strings.Join(strings.Fields(s.Text), " ")
	}
	if rnd == nil {
		rnd = newRand()
	}
	return &Collection{samples: samples, rnd: rnd}, nil
}

// Builtin returns the embedded sample collection.
func Builtin() (*Collection, error) {
	list, err := decode(strings.NewReader(string(builtinYAML)))
	if err != nil {
		return nil, fmt.Errorf("failed to decode builtin samples: %w", err)
	}
	return NewCollection(list, nil)
}

// LoadFile reads a YAML list of {id, text, source} entries.
func LoadFile(path string) (*Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open samples file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close for read-only samples file.
			_ = cerr
		}
	}()
	list, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return NewCollection(list, nil)
}

func decode(r io.Reader) ([]Sample, error) {
	var list []Sample
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&list); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoSamples
		}
		return nil, err
	}
	return list, nil
}

// Samples returns a copy of the collection.
func (c *Collection) Samples() []Sample {
	out := make([]Sample, len(c.samples))
	copy(out, c.samples)
	return out
}

// Pick selects n distinct samples at random. n is clamped to [1, len].
func (c *Collection) Pick(n int) (Passage, error) {
	n = max(1, min(n, len(c.samples)))
	var p Passage
	texts := make([]string, 0, n)
	for _, idx := range c.rnd.Perm(len(c.samples))[:n] {
		s := c.samples[idx]
		p.IDs = append(p.IDs, s.ID)
		p.Sources = append(p.Sources, s.Source)
		texts = append(texts, s.Text)
	}
	p.Text = strings.Join(texts, " ")
	return p, nil
}

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
