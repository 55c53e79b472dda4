package rag

import (
	"strings"
	"unicode/utf8"
)

// minKeywordLen is the shortest token kept as a keyword; shorter tokens carry no signal.
const minKeywordLen = 3

var stopwords = map[string]struct{}{
	"the":  {},
	"and":  {},
	"for":  {},
	"are":  {},
	"but":  {},
	"not":  {},
	"you":  {},
	"with": {},
	"this": {},
	"that": {},
	"from": {},
	"have": {},
	"has":  {},
}

// ExtractKeywords lower-cases the question, splits it on whitespace and drops short tokens and stopwords.
// Punctuation is kept attached to its token. The result preserves question order.
func ExtractKeywords(question string) []string {
	fields := strings.Fields(strings.ToLower(question))
	keywords := make([]string, 0, len(fields))
	for _, word := range fields {
		if utf8.RuneCountInString(word) < minKeywordLen {
			continue
		}
		if _, ok := stopwords[word]; ok {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}
