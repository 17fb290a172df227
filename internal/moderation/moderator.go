package moderation

import (
	_ "embed"
	"slices"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

//go:embed words.txt
var defaultWords string

// DefaultWords returns the built-in profanity list.
func DefaultWords() []string {
	return strings.Fields(defaultWords)
}

// Moderator flags text containing any word of its dictionary. Matching is on
// whole words after leet-speak folding, so "class" is not flagged for "ass".
type Moderator struct {
	matcher *goahocorasick.Machine
}

// NewModerator builds the Aho-Corasick automaton from a normalized version
// of words. An empty dictionary yields a moderator that flags nothing.
func NewModerator(words []string) (*Moderator, error) {
	patterns := make([][]rune, 0, len(words))
	for _, w := range words {
		if p := normalizeRunes([]rune(w)); len(p) > 0 {
			patterns = append(patterns, p)
		}
	}
	if len(patterns) == 0 {
		return &Moderator{}, nil
	}

	slices.SortFunc(patterns, func(a, b []rune) int {
		return strings.Compare(string(a), string(b))
	})
	patterns = slices.CompactFunc(patterns, func(a, b []rune) bool {
		return string(a) == string(b)
	})

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: m}, nil
}

// IsProfane reports whether any word of text is in the dictionary.
func (m *Moderator) IsProfane(text string) bool {
	if m == nil || m.matcher == nil {
		return false
	}

	for _, word := range splitWords(text) {
		for _, term := range m.matcher.MultiPatternSearch(word, false) {
			if term.Pos == 0 && len(term.Word) == len(word) {
				return true
			}
		}
	}
	return false
}

// splitWords folds text and cuts it on every rune that is neither a letter
// nor a digit.
func splitWords(text string) [][]rune {
	var (
		words   [][]rune
		current []rune
	)
	for _, r := range foldRunes([]rune(text)) {
		if isWordRune(r) {
			current = append(current, unicode.ToLower(r))
			continue
		}
		if len(current) > 0 {
			words = append(words, current)
			current = nil
		}
	}
	if len(current) > 0 {
		words = append(words, current)
	}
	return words
}

func normalizeRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range foldRunes(input) {
		if isWordRune(r) {
			out = append(out, unicode.ToLower(r))
		}
	}
	return out
}

// foldRunes applies simplifyRune to every rune. A '!' stands for 'i' only
// between two word runes, so "d!ck" folds while "snake!" keeps its
// punctuation.
func foldRunes(input []rune) []rune {
	out := make([]rune, len(input))
	for i, r := range input {
		out[i] = simplifyRune(r)
	}
	for i, r := range input {
		if r == '!' && i > 0 && i < len(input)-1 && isWordRune(out[i-1]) && isWordRune(out[i+1]) {
			out[i] = 'i'
		}
	}
	return out
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// simplifyRune maps common leet speak characters back to letters.
func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}
