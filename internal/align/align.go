// Package align classifies typed text against a reference passage.
//
// Both texts are split into maximal whitespace and non-whitespace runs.
// The Nth typed token is compared with the Nth reference token, character by
// character. Alignment is positional: once the typed token count diverges
// from the reference (an extra or missing word), every later token is
// compared against a shifted reference token. No realignment is attempted.
package align

import (
	"unicode"

	"github.com/verte-zerg/typetest/internal/model"
)

// Class tags a typed character for rendering.
type Class int

const (
	// Correct matches the reference character at the same position.
	Correct Class = iota
	// Incorrect differs from the reference or runs past the reference token.
	Incorrect
	// OverflowNear belongs to a token at most two positions past the last
	// reference token.
	OverflowNear
	// OverflowFar belongs to a token further past the reference end.
	OverflowFar
)

// nearOverflow is how many token positions past the last reference token
// still count as OverflowNear.
const nearOverflow = 2

// String returns the tag name.
func (c Class) String() string {
	switch c {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	case OverflowNear:
		return "overflow-near"
	case OverflowFar:
		return "overflow-far"
	default:
		return "unknown"
	}
}

// Token is a maximal run of whitespace or non-whitespace characters.
// Start is the rune offset of the token in the tokenized string.
type Token struct {
	Text    string
	Start   int
	IsSpace bool
}

// Runes returns the token text as runes.
func (t Token) Runes() []rune {
	return []rune(t.Text)
}

// Tokenize splits s into whitespace and non-whitespace runs, preserving the
// exact original substrings.
func Tokenize(s string) []Token {
	var tokens []Token
	runes := []rune(s)
	start := 0
	for i := 1; i <= len(runes); i++ {
		if i < len(runes) && unicode.IsSpace(runes[i]) == unicode.IsSpace(runes[start]) {
			continue
		}
		tokens = append(tokens, Token{
			Text:    string(runes[start:i]),
			Start:   start,
			IsSpace: unicode.IsSpace(runes[start]),
		})
		start = i
	}
	return tokens
}

// Result holds one class per typed rune and the error records in typing order.
type Result struct {
	Classes []Class
	Errors  []model.ErrorRecord
}

// Correct counts typed characters classified as Correct.
func (r Result) Correct() int {
	n := 0
	for _, c := range r.Classes {
		if c == Correct {
			n++
		}
	}
	return n
}

// Classify compares typed against reference and returns a fresh Result.
// It keeps no state between calls.
func Classify(reference, typed string) Result {
	refTokens := Tokenize(reference)
	typedTokens := Tokenize(typed)

	res := Result{Classes: make([]Class, 0, len([]rune(typed)))}
	for idx, tok := range typedTokens {
		if idx >= len(refTokens) {
			class := OverflowFar
			if idx-(len(refTokens)-1) <= nearOverflow {
				class = OverflowNear
			}
			for i, r := range tok.Runes() {
				res.Classes = append(res.Classes, class)
				res.Errors = append(res.Errors, model.ErrorRecord{
					Position: tok.Start + i,
					Typed:    string(r),
				})
			}
			continue
		}

		expected := refTokens[idx].Runes()
		for i, r := range tok.Runes() {
			switch {
			case i >= len(expected):
				res.Classes = append(res.Classes, Incorrect)
				res.Errors = append(res.Errors, model.ErrorRecord{
					Position: tok.Start + i,
					Typed:    string(r),
				})
			case r == expected[i]:
				res.Classes = append(res.Classes, Correct)
			default:
				res.Classes = append(res.Classes, Incorrect)
				res.Errors = append(res.Errors, model.ErrorRecord{
					Position: tok.Start + i,
					Typed:    string(r),
					Expected: string(expected[i]),
				})
			}
		}
	}
	return res
}

// CurrentToken returns the index of the reference token the typist is on.
// An empty buffer points at the first token.
func CurrentToken(typed string) int {
	tokens := Tokenize(typed)
	if len(tokens) == 0 {
		return 0
	}
	return len(tokens) - 1
}
