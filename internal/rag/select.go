package rag

import "slices"

// DefaultLimit is the maximum number of documents placed in the context window.
const DefaultLimit = 5

// Selection is the result of ranking.
type Selection struct {
	// Documents are the selected documents in context order.
	Documents []Document
	// Scored lists every document that scored above zero, best first.
	Scored []ScoredDocument
	// Fallback is true when nothing scored and the first eligible documents were taken instead.
	Fallback bool
	// Eligible is the number of eligible documents considered.
	Eligible int
}

// EligibleDocuments returns the ready, non-empty documents of docs in their original order.
func EligibleDocuments(docs []Document) []Document {
	eligible := make([]Document, 0, len(docs))
	for _, d := range docs {
		if d.Eligible() {
			eligible = append(eligible, d)
		}
	}
	return eligible
}

// Select scores the eligible documents, sorts them by descending score and keeps the top limit.
// Ties keep the caller's order. When the query has no keywords or nothing scores, the first limit
// eligible documents are returned instead.
func Select(q Query, docs []Document, cfg ScoringConfig, limit int) Selection {
	if limit <= 0 {
		limit = DefaultLimit
	}
	eligible := EligibleDocuments(docs)
	sel := Selection{Eligible: len(eligible)}

	if len(q.Keywords) > 0 {
		for _, d := range eligible {
			score, ok := cfg.Score(q, d)
			if !ok || score <= 0 {
				continue
			}
			sel.Scored = append(sel.Scored, ScoredDocument{Document: d, Score: score})
		}
		slices.SortStableFunc(sel.Scored, func(a, b ScoredDocument) int {
			return b.Score - a.Score
		})
	}

	if len(sel.Scored) == 0 {
		sel.Fallback = true
		sel.Documents = eligible[:min(limit, len(eligible))]
		return sel
	}

	top := sel.Scored[:min(limit, len(sel.Scored))]
	sel.Documents = make([]Document, len(top))
	for i, s := range top {
		sel.Documents[i] = s.Document
	}
	return sel
}
