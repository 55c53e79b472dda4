package rag

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ScoringConfig holds the lexical relevance weights.
type ScoringConfig struct {
	// PhraseMatch is added when the document contains the whole question.
	PhraseMatch int
	// FilenameMatch is added per keyword found in the document name.
	FilenameMatch int
	// PerOccurrence is added per whole-word keyword occurrence in the text. Leading and
	// trailing punctuation of a keyword is ignored, so "policy?" counts "policy".
	PerOccurrence int
	// FrequencyCap bounds the occurrence points of a single keyword.
	FrequencyCap int
	// ProximityBonus is added once when located keywords sit close together.
	ProximityBonus int
	// ProximityWindow is the span, in characters, under which ProximityBonus applies.
	ProximityWindow int
}

// DefaultScoring returns the historical weights.
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		PhraseMatch:     200,
		FilenameMatch:   100,
		PerOccurrence:   15,
		FrequencyCap:    150,
		ProximityBonus:  50,
		ProximityWindow: 500,
	}
}

// Query is a question prepared for scoring. Build it once per ask with NewQuery.
type Query struct {
	// Phrase is the trimmed, lower-cased question.
	Phrase string
	// Keywords are the extracted keywords.
	Keywords []string

	// words are the keywords without leading and trailing punctuation, used for whole-word counts.
	words []string
}

// NewQuery extracts keywords from question and prepares their whole-word forms.
func NewQuery(question string) Query {
	q := Query{
		Phrase:   strings.ToLower(strings.TrimSpace(question)),
		Keywords: ExtractKeywords(question),
	}
	q.words = make([]string, len(q.Keywords))
	for i, kw := range q.Keywords {
		q.words[i] = strings.TrimFunc(kw, func(r rune) bool { return !isWordRune(r) })
	}
	return q
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// countWholeWord counts the non-overlapping occurrences of word in text that are not
// preceded or followed by a letter, digit or underscore.
func countWholeWord(text, word string) int {
	if word == "" {
		return 0
	}
	count := 0
	for offset := 0; offset <= len(text)-len(word); {
		idx := strings.Index(text[offset:], word)
		if idx < 0 {
			break
		}
		start := offset + idx
		end := start + len(word)
		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if (start == 0 || !isWordRune(before)) && (end == len(text) || !isWordRune(after)) {
			count++
			offset = end
		} else {
			_, size := utf8.DecodeRuneInString(text[start:])
			offset = start + size
		}
	}
	return count
}

// Score computes the relevance of doc for q. The second result is false when the document has no text.
func (c ScoringConfig) Score(q Query, doc Document) (int, bool) {
	if strings.TrimSpace(doc.Text) == "" {
		return 0, false
	}

	text := strings.ToLower(doc.Text)
	name := strings.ToLower(doc.Name)
	score := 0

	if q.Phrase != "" && strings.Contains(text, q.Phrase) {
		score += c.PhraseMatch
	}

	positions := make([]int, 0, len(q.Keywords))
	for i, kw := range q.Keywords {
		if strings.Contains(name, kw) {
			score += c.FilenameMatch
		}

		if matches := countWholeWord(text, q.words[i]); matches > 0 {
			score += min(matches*c.PerOccurrence, c.FrequencyCap)
		}

		// Proximity looks at the first occurrence of each keyword, whole word or not.
		if idx := strings.Index(text, kw); idx >= 0 {
			positions = append(positions, utf8.RuneCountInString(text[:idx]))
		}
	}

	if len(positions) >= 2 {
		lo, hi := positions[0], positions[0]
		for _, p := range positions[1:] {
			lo = min(lo, p)
			hi = max(hi, p)
		}
		if hi-lo < c.ProximityWindow {
			score += c.ProximityBonus
		}
	}

	return score, true
}
