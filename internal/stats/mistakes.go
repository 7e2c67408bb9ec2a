package stats

import (
	"sort"

	"github.com/verte-zerg/typetest/internal/model"
)

// ExtraLabel names errors with no expected character.
const ExtraLabel = "<extra>"

// MistakeAggregate counts errors for one expected character.
type MistakeAggregate struct {
	Char      string
	Count     int
	CommonSub string
}

// MistypedChars groups error records by expected character, most frequent
// first. CommonSub is the character most often typed instead.
func MistypedChars(results []model.TestResult) []MistakeAggregate {
	counts := map[string]int{}
	subs := map[string]map[string]int{}
	for _, r := range results {
		for _, e := range r.ErrorDetails {
			key := e.Expected
			if key == "" {
				key = ExtraLabel
			}
			counts[key]++
			if subs[key] == nil {
				subs[key] = map[string]int{}
			}
			subs[key][e.Typed]++
		}
	}
	out := make([]MistakeAggregate, 0, len(counts))
	for ch, n := range counts {
		out = append(out, MistakeAggregate{Char: ch, Count: n, CommonSub: mostCommon(subs[ch])})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Char < out[j].Char
		}
		return out[i].Count > out[j].Count
	})
	return out
}

// TopMistyped returns the first n aggregates.
func TopMistyped(aggs []MistakeAggregate, n int) []MistakeAggregate {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	return aggs[:min(n, len(aggs))]
}

func mostCommon(counts map[string]int) string {
	best := ""
	bestN := 0
	for ch, n := range counts {
		if n > bestN || (n == bestN && ch < best) {
			best, bestN = ch, n
		}
	}
	return best
}

// charLabel makes whitespace visible in tables.
func charLabel(ch string) string {
	switch ch {
	case " ":
		return "<space>"
	case "\t":
		return "<tab>"
	case "\n":
		return "<newline>"
	default:
		return ch
	}
}
