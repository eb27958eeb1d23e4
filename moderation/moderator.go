package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"

	apperrors "messagely/errors"
)

// Moderator screens outgoing message bodies against a configured word list.
// The whole matching span, separators included, is replaced with the
// replacement character; the rest of the body is preserved.
type Moderator struct {
	matcher     *goahocorasick.Machine
	replacement rune
}

// NewModerator builds the Aho-Corasick automaton over a normalized version
// of the word list.
func NewModerator(words []string, replacement rune) (*Moderator, error) {
	if len(words) == 0 {
		return nil, apperrors.ErrEmptyWords
	}

	patterns := make([][]rune, 0, len(words))
	for _, word := range words {
		norm, _ := normalize(word)
		if len(norm) == 0 {
			continue
		}
		patterns = append(patterns, norm)
	}
	if len(patterns) == 0 {
		return nil, apperrors.ErrEmptyWords
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, apperrors.Internal(err)
	}
	return &Moderator{matcher: m, replacement: replacement}, nil
}

// Censor stars out every forbidden span in body. The search runs over a
// lowercased stream with separators removed, so "s p a m" still matches
// "spam"; the index map carries matches back to the original runes.
func (m *Moderator) Censor(body string) string {
	norm, origIdx := normalize(body)
	if len(norm) == 0 {
		return body
	}

	spans := m.matcher.MultiPatternSearch(norm, false)
	if len(spans) == 0 {
		return body
	}

	runes := []rune(body)
	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(origIdx) {
			continue
		}
		for i := origIdx[start]; i <= origIdx[end-1]; i++ {
			runes[i] = m.replacement
		}
	}
	return string(runes)
}

// normalize lowercases the input and drops separator runes, recording for
// each kept rune its index in the original string.
func normalize(input string) ([]rune, []int) {
	orig := []rune(input)
	norm := make([]rune, 0, len(orig))
	origIdx := make([]int, 0, len(orig))
	for i, r := range orig {
		if unicode.IsSpace(r) || unicode.IsPunct(r) {
			continue
		}
		norm = append(norm, unicode.ToLower(r))
		origIdx = append(origIdx, i)
	}
	return norm, origIdx
}
