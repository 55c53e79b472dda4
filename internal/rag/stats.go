package rag

import (
	"math"
	"strings"
	"unicode/utf8"
)

// minValidChars is the trimmed length below which a document is counted as invalid.
const minValidChars = 20

// Stats are diagnostic counters over a document set.
type Stats struct {
	Total          int `json:"total"`
	Valid          int `json:"valid"`
	Invalid        int `json:"invalid"`
	TotalChars     int `json:"totalChars"`
	AvgCharsPerDoc int `json:"avgCharsPerDoc"`
}

// ComputeStats counts valid documents (at least 20 characters of trimmed text) and their size.
func ComputeStats(docs []Document) Stats {
	s := Stats{Total: len(docs)}
	for _, d := range docs {
		if utf8.RuneCountInString(strings.TrimSpace(d.Text)) < minValidChars {
			continue
		}
		s.Valid++
		s.TotalChars += utf8.RuneCountInString(d.Text)
	}
	s.Invalid = s.Total - s.Valid
	if s.Valid > 0 {
		s.AvgCharsPerDoc = int(math.Round(float64(s.TotalChars) / float64(s.Valid)))
	}
	return s
}
