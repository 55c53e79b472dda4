package rag

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// RefusalSentence is what the model must answer when the documents do not contain the answer.
	RefusalSentence = "I cannot find this information in the uploaded documents."

	// FallbackExcerptChars is the length of excerpts synthesized from context chunks.
	FallbackExcerptChars = 150

	groundingV1       = "grounding/v1"
	sourcesMarkerV1   = "SOURCES USED:"
	documentSeparator = "----------------------------------------"
)

// GroundingTemplate renders the grounding prompt and parses the model's reply. The prompt's
// sources block and the parser's patterns are one versioned unit and change together.
type GroundingTemplate struct {
	version string
	marker  string

	markerRE *regexp.Regexp
	lineRE   *regexp.Regexp
}

// ParsedAnswer is a model reply split into answer text and citations.
type ParsedAnswer struct {
	Answer    string
	Citations []Citation
}

// NewGroundingTemplate returns the current grounding template.
func NewGroundingTemplate() *GroundingTemplate {
	return &GroundingTemplate{
		version:  groundingV1,
		marker:   sourcesMarkerV1,
		markerRE: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(sourcesMarkerV1)),
		// Optional list bullet or number, optional bold and brackets around the name,
		// then a colon and a straight or curly quoted excerpt. Unterminated quotes do not match.
		lineRE: regexp.MustCompile(`^\s*(?:[-*•]\s+|\d+[.)]\s+)?\**\[?\s*(.+?)\s*\]?\**\s*:\s*["“”](.*?)["“”]\s*$`),
	}
}

// Version identifies the template and parser pair.
func (t *GroundingTemplate) Version() string {
	return t.version
}

// Render builds the prompt for question over chunks. Chunks are numbered from 1 in order.
func (t *GroundingTemplate) Render(question string, chunks []ContextChunk) string {
	var b strings.Builder

	b.WriteString("You are a precise document assistant. Your ONLY job is to answer questions using the provided documents.\n\n")
	b.WriteString("STRICT RULES:\n")
	b.WriteString("1. Answer ONLY using information explicitly stated in the documents below.\n")
	fmt.Fprintf(&b, "2. If the information is not in the documents, respond exactly: %q\n", RefusalSentence)
	b.WriteString("3. Be specific and quote key phrases when relevant.\n")
	b.WriteString("4. If documents conflict, mention both perspectives.\n")
	b.WriteString("5. Keep answers concise but complete (2-4 sentences ideal).\n")
	fmt.Fprintf(&b, "6. After the answer, ALWAYS add a line containing only %q, then one line per document you used, in exactly this form:\n", t.marker)
	b.WriteString("DocumentName: \"verbatim excerpt from that document\"\n")
	b.WriteString("Use the document names exactly as written in the DOCUMENT headers.\n\n")

	for i, c := range chunks {
		b.WriteString(documentSeparator + "\n")
		fmt.Fprintf(&b, "DOCUMENT %d: %s\n", i+1, c.Name)
		b.WriteString(documentSeparator + "\n")
		b.WriteString(c.Text)
		b.WriteString("\n\n")
	}

	b.WriteString(documentSeparator + "\n")
	fmt.Fprintf(&b, "USER QUESTION: %s\n", question)
	b.WriteString(documentSeparator + "\n\n")
	fmt.Fprintf(&b, "YOUR ANSWER (followed by %s):", t.marker)

	return b.String()
}

// Parse splits raw into the answer and its verified citations. Every citation names one of chunks.
// When the sources block is missing or nothing in it resolves, Parse returns the whole reply as the
// answer with one fallback citation per chunk, and false.
func (t *GroundingTemplate) Parse(raw string, chunks []ContextChunk) (ParsedAnswer, bool) {
	loc := t.markerRE.FindStringIndex(raw)
	if loc == nil {
		return fallbackAnswer(raw, chunks), false
	}

	var citations []Citation
	for _, line := range strings.Split(raw[loc[1]:], "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		m := t.lineRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		cited := strings.TrimSpace(m[1])
		if cited == "" {
			continue
		}
		chunk, ok := resolveChunk(cited, chunks)
		if !ok {
			continue
		}
		citations = append(citations, Citation{
			DocumentName: chunk.Name,
			Excerpt:      strings.TrimSpace(m[2]),
		})
	}

	if len(citations) == 0 {
		return fallbackAnswer(raw, chunks), false
	}

	return ParsedAnswer{
		Answer:    trimAnswer(raw[:loc[0]]),
		Citations: citations,
	}, true
}

// resolveChunk finds the first chunk whose name contains, or is contained in, cited (case-insensitive).
func resolveChunk(cited string, chunks []ContextChunk) (ContextChunk, bool) {
	want := strings.ToLower(cited)
	for _, c := range chunks {
		name := strings.ToLower(c.Name)
		if name == "" {
			continue
		}
		if strings.Contains(name, want) || strings.Contains(want, name) {
			return c, true
		}
	}
	return ContextChunk{}, false
}

// trimAnswer drops surrounding whitespace and a trailing token made only of markdown emphasis or
// heading markers, such as the "**" left over from "**SOURCES USED:**". "C#" is kept.
func trimAnswer(s string) string {
	s = strings.TrimSpace(s)
	for s != "" {
		i := strings.LastIndexAny(s, " \t\r\n")
		if strings.Trim(s[i+1:], "*#") != "" {
			break
		}
		s = strings.TrimSpace(s[:i+1])
	}
	return s
}

func fallbackAnswer(raw string, chunks []ContextChunk) ParsedAnswer {
	return ParsedAnswer{
		Answer:    strings.TrimSpace(raw),
		Citations: FallbackCitations(chunks),
	}
}

// FallbackCitations synthesizes one citation per chunk from the head of its text.
func FallbackCitations(chunks []ContextChunk) []Citation {
	citations := make([]Citation, len(chunks))
	for i, c := range chunks {
		excerpt, cut := truncateRunes(strings.TrimSpace(c.Text), FallbackExcerptChars)
		if cut {
			excerpt += "..."
		}
		citations[i] = Citation{DocumentName: c.Name, Excerpt: excerpt}
	}
	return citations
}
