package rag

import (
	"fmt"
	"strings"
)

// MaxChunkChars is the per-document character cap of the context window.
const MaxChunkChars = 4000

// AssembleContext turns the selected documents into prompt chunks, in order.
// Text is cut hard at maxChars characters; documents without a name are labelled "Document N".
func AssembleContext(docs []Document, maxChars int) []ContextChunk {
	if maxChars <= 0 {
		maxChars = MaxChunkChars
	}
	chunks := make([]ContextChunk, len(docs))
	for i, d := range docs {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			name = fmt.Sprintf("Document %d", i+1)
		}
		text, _ := truncateRunes(d.Text, maxChars)
		chunks[i] = ContextChunk{Name: name, Text: text}
	}
	return chunks
}

// truncateRunes returns the first n runes of s and whether anything was cut.
func truncateRunes(s string, n int) (string, bool) {
	count := 0
	for i := range s {
		if count == n {
			return s[:i], true
		}
		count++
	}
	return s, false
}
