package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_history_store.go -package=mocks dochub/internal/storage HistoryStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MaxHistoryEntries bounds a history listing.
const MaxHistoryEntries = 100

// HistoryStore defines the interface for query history operations.
type HistoryStore interface {
	// Create records an answered question. ID and CreatedAt are filled in when empty.
	Create(ctx context.Context, entry *HistoryRecord) error
	// ListByUser returns up to limit entries for the user, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]HistoryRecord, error)
}

// HistoryRepo provides methods for query history operations.
// It implements the HistoryStore interface.
type HistoryRepo struct {
	db *sql.DB
}

// NewHistoryRepo creates a new HistoryRepo.
func NewHistoryRepo(db *sql.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

// Create records an answered question.
func (r *HistoryRepo) Create(ctx context.Context, entry *HistoryRecord) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	citations := entry.Citations
	if citations == nil {
		citations = []CitationRecord{}
	}
	raw, err := json.Marshal(citations)
	if err != nil {
		return fmt.Errorf("failed to encode citations: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO query_history (id, user_id, question, answer, citations, outcome, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.Question, entry.Answer, string(raw), entry.Outcome, formatTimestamp(entry.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	return nil
}

// ListByUser returns up to limit entries, newest first. A limit outside 1..MaxHistoryEntries
// is clamped to MaxHistoryEntries.
func (r *HistoryRepo) ListByUser(ctx context.Context, userID string, limit int) ([]HistoryRecord, error) {
	if limit <= 0 || limit > MaxHistoryEntries {
		limit = MaxHistoryEntries
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, question, answer, citations, outcome, created_at
		 FROM query_history WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	entries := []HistoryRecord{}
	for rows.Next() {
		var entry HistoryRecord
		var citations, createdAt string
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Question, &entry.Answer, &citations, &entry.Outcome, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		if err := json.Unmarshal([]byte(citations), &entry.Citations); err != nil {
			return nil, fmt.Errorf("failed to decode citations of %s: %w", entry.ID, err)
		}
		if entry.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return entries, nil
}
