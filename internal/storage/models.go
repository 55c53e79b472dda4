package storage

import "time"

// Document statuses.
const (
	StatusProcessing = "processing"
	StatusReady      = "ready"
	StatusError      = "error"
)

// DocumentRecord represents an uploaded document in the database.
type DocumentRecord struct {
	ID        string // UUID
	UserID    string // Owner, from the bearer token's id claim
	Name      string // Original file name
	Type      string // "txt" or "md"
	Text      string // Extracted plain text; empty in list results
	Status    string // StatusProcessing, StatusReady or StatusError
	FileSize  int64  // Upload size in bytes
	CreatedAt time.Time
}

// CitationRecord is a stored citation of a history entry.
type CitationRecord struct {
	DocumentName string `json:"docName"`
	Excerpt      string `json:"excerpt"`
}

// HistoryRecord represents an answered question in the database.
type HistoryRecord struct {
	ID        string // UUID
	UserID    string
	Question  string
	Answer    string
	Citations []CitationRecord // Stored as a JSON array
	Outcome   string           // Terminal state of the ask, e.g. "answered"
	CreatedAt time.Time
}
