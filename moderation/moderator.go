// Package moderation censors forbidden words in relayed text.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Moderator replaces censored words with a mask character while
// preserving the original spacing and punctuation around them.
// A Moderator built from an empty word list passes text through
// unchanged.
type Moderator struct {
	matcher  *goahocorasick.Machine
	maskChar rune
}

// NewModerator builds the Aho-Corasick automaton over the normalized
// word list. Matching ignores case, punctuation and whitespace so that
// "b a.d" still matches "bad".
func NewModerator(words []string, maskChar rune) (*Moderator, error) {
	if len(words) == 0 {
		return &Moderator{maskChar: maskChar}, nil
	}
	patterns := make([][]rune, 0, len(words))
	for _, w := range words {
		if norm, _ := normalize(w); len(norm) > 0 {
			patterns = append(patterns, norm)
		}
	}
	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: m, maskChar: maskChar}, nil
}

// Censor returns the input with every censored span masked.
func (m *Moderator) Censor(original string) string {
	if m.matcher == nil {
		return original
	}
	norm, origIdx := normalize(original)
	if len(norm) == 0 {
		return original
	}
	spans := m.matcher.MultiPatternSearch(norm, false)
	if len(spans) == 0 {
		return original
	}

	out := []rune(original)
	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(origIdx) {
			continue
		}
		// Mask from the first to the last original rune of the match,
		// covering any noise characters in between.
		for i := origIdx[start]; i <= origIdx[end-1]; i++ {
			out[i] = m.maskChar
		}
	}
	return string(out)
}

// normalize lowercases the input and strips noise runes, keeping a
// mapping from normalized positions back to original rune positions.
func normalize(input string) ([]rune, []int) {
	runes := []rune(input)
	norm := make([]rune, 0, len(runes))
	origIdx := make([]int, 0, len(runes))
	for i, r := range runes {
		if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
			continue
		}
		norm = append(norm, unicode.ToLower(r))
		origIdx = append(origIdx, i)
	}
	return norm, origIdx
}
