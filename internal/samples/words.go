package samples

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strings"
)

// Words generates passages of random words from a word list.
type Words struct {
	path    string
	words   []string
	perPick int
	rnd     *rand.Rand
}

// LoadWords reads one word per line from path; blank lines are skipped.
// Each picked sample holds perPick words.
func LoadWords(path string, perPick int) (*Words, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word list: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}
	return NewWords(path, words, perPick, nil)
}

// NewWords returns a provider over an in-memory word list.
func NewWords(path string, words []string, perPick int, rnd *rand.Rand) (*Words, error) {
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	if perPick <= 0 {
		return nil, fmt.Errorf("words per sample must be > 0")
	}
	if rnd == nil {
		rnd = newRand()
	}
	return &Words{path: path, words: words, perPick: perPick, rnd: rnd}, nil
}

// Samples returns nothing; word passages are generated on demand.
func (w *Words) Samples() []Sample {
	return nil
}

// Pick generates n*perPick uniformly chosen words. The passage id is 0.
func (w *Words) Pick(n int) (Passage, error) {
	count := max(1, n) * w.perPick
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, w.words[w.rnd.Intn(len(w.words))])
	}
	return Passage{
		IDs:     []int{0},
		Text:    strings.Join(out, " "),
		Sources: []string{w.path},
	}, nil
}
