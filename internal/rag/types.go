package rag

// StatusReady marks a document whose text has been extracted and can be searched.
const StatusReady = "ready"

// Document is a candidate document supplied by the caller.
type Document struct {
	// ID is the opaque document identifier.
	ID string `json:"id"`
	// Name is the display name (usually the uploaded file name).
	Name string `json:"name"`
	// Text is the full extracted plain text.
	Text string `json:"text"`
	// Status is the processing status; only StatusReady documents are eligible.
	Status string `json:"status"`
}

// Eligible reports whether the document can take part in retrieval.
func (d Document) Eligible() bool {
	return d.Status == StatusReady && d.Text != ""
}

// ScoredDocument pairs a document with its relevance score.
type ScoredDocument struct {
	Document Document
	Score    int
}

// ContextChunk is the labelled, truncated view of a selected document that goes into the prompt.
type ContextChunk struct {
	Name string
	Text string
}

// Citation attributes part of an answer to a document of the context window.
type Citation struct {
	// DocumentName is the canonical name of the cited context chunk.
	DocumentName string `json:"docName"`
	// Excerpt is the quoted passage, or the head of the chunk text for fallback citations.
	Excerpt string `json:"excerpt"`
}

// Outcome tags the terminal state of an ask.
type Outcome string

const (
	// OutcomeAnswered means the model answered and its cited sources were verified.
	OutcomeAnswered Outcome = "answered"
	// OutcomeFallbackCited means the model answered but citations were synthesized from the context.
	OutcomeFallbackCited Outcome = "fallback_cited"
	// OutcomeNoDocuments means there was nothing to search.
	OutcomeNoDocuments Outcome = "no_documents"
	// OutcomeUpstreamUnavailable means generation failed or retries were exhausted.
	OutcomeUpstreamUnavailable Outcome = "upstream_unavailable"
	// OutcomeUpstreamAuth means the model credential was rejected.
	OutcomeUpstreamAuth Outcome = "upstream_auth"
	// OutcomeUpstreamQuota means the model account quota is exhausted.
	OutcomeUpstreamQuota Outcome = "upstream_quota"
)

// AskRequest represents a grounded question over a set of documents.
type AskRequest struct {
	// Question is the user's question to answer.
	Question string `json:"question"`
	// Documents are the caller's candidate documents. Ineligible ones are ignored.
	Documents []Document `json:"-"`
	// Debug enables debug mode, returning detailed retrieval information.
	Debug bool `json:"debug,omitempty"`
}

// AnswerResult is the outcome of a single ask.
type AnswerResult struct {
	// Answer is the user-facing answer text.
	Answer string `json:"answer"`
	// Citations are the verified (or fallback) sources of the answer.
	Citations []Citation `json:"references"`
	// Outcome is the terminal state of the ask.
	Outcome Outcome `json:"outcome"`
	// Debug contains retrieval details when debug mode is enabled.
	Debug *DebugInfo `json:"debug,omitempty"`
}

// DebugInfo contains detailed retrieval information for debugging and evaluation.
type DebugInfo struct {
	// Keywords are the extracted query keywords in question order.
	Keywords []string `json:"keywords"`
	// Scored lists every document that scored above zero, best first.
	Scored []ScoredEntry `json:"scored"`
	// Fallback is true when no document scored and the first eligible documents were used.
	Fallback bool `json:"fallback"`
	// Stats are the diagnostic counters over the supplied documents.
	Stats Stats `json:"stats"`
	// PromptVersion identifies the grounding template and parser pair.
	PromptVersion string `json:"promptVersion"`
	// Attempts is the number of generation calls made.
	Attempts int `json:"attempts"`
}

// ScoredEntry is the debug view of a scored document.
type ScoredEntry struct {
	// Rank is the 1-based position after sorting.
	Rank  int    `json:"rank"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}
