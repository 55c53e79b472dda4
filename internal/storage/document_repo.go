package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks dochub/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// DocumentStore defines the interface for document storage operations.
// Every lookup is scoped to the owning user.
type DocumentStore interface {
	// Create inserts a document. ID and CreatedAt are filled in when empty.
	Create(ctx context.Context, doc *DocumentRecord) error
	// ListByUser returns the user's documents, newest first, without their text.
	ListByUser(ctx context.Context, userID string) ([]DocumentRecord, error)
	// ListReady returns the user's ready documents with text, oldest first.
	ListReady(ctx context.Context, userID string) ([]DocumentRecord, error)
	// Delete removes a document. Returns ErrNotFound if the user has no such document.
	Delete(ctx context.Context, userID, id string) error
}

// DocumentRepo provides methods for document operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Create inserts a document.
func (r *DocumentRepo) Create(ctx context.Context, doc *DocumentRecord) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	if doc.Status == "" {
		doc.Status = StatusProcessing
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id, user_id, name, type, text, status, file_size, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.UserID, doc.Name, doc.Type, doc.Text, doc.Status, doc.FileSize, formatTimestamp(doc.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// ListByUser returns the user's documents, newest first, without their text.
func (r *DocumentRepo) ListByUser(ctx context.Context, userID string) ([]DocumentRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, type, '', status, file_size, created_at
		 FROM documents WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	return scanDocuments(rows)
}

// ListReady returns the user's ready documents with text in upload order.
func (r *DocumentRepo) ListReady(ctx context.Context, userID string) ([]DocumentRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, type, text, status, file_size, created_at
		 FROM documents WHERE user_id = ? AND status = ? ORDER BY created_at ASC, rowid ASC`,
		userID, StatusReady,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query ready documents: %w", err)
	}
	return scanDocuments(rows)
}

// Delete removes one of the user's documents.
func (r *DocumentRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDocuments(rows *sql.Rows) ([]DocumentRecord, error) {
	defer func() {
		_ = rows.Close()
	}()

	docs := []DocumentRecord{}
	for rows.Next() {
		var doc DocumentRecord
		var createdAt string
		if err := rows.Scan(&doc.ID, &doc.UserID, &doc.Name, &doc.Type, &doc.Text, &doc.Status, &doc.FileSize, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		t, err := parseTimestamp(createdAt)
		if err != nil {
			return nil, err
		}
		doc.CreatedAt = t
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return docs, nil
}

// timestampLayout is fixed width so that text order matches time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// parseTimestamp reads a DATETIME column. The driver hands DATETIME values back as time.Time,
// which database/sql renders as RFC 3339 when scanning into a string.
func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}
	// SQLite's CURRENT_TIMESTAMP format
	t, err = time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}
	return t, nil
}
