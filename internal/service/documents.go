package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_service.go -package=mocks dochub/internal/service DocumentService

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dochub/internal/contextutil"
	"dochub/internal/extract"
	"dochub/internal/metrics"
	"dochub/internal/rag"
	"dochub/internal/storage"
)

// DocumentService defines the interface for document and question operations.
// Every operation is scoped to the user named in its request.
type DocumentService interface {
	// Upload extracts the text of a .txt or .md file and stores it as a ready document.
	Upload(ctx context.Context, req UploadRequest) (UploadResult, error)
	// Ask answers a question from the user's ready documents and records it in history.
	Ask(ctx context.Context, req AskRequest) (rag.AnswerResult, error)
	// List returns the user's documents, newest first.
	List(ctx context.Context, userID string) ([]DocumentSummary, error)
	// Delete removes one of the user's documents. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, userID, id string) error
	// History returns the user's most recent questions, newest first.
	History(ctx context.Context, userID string) ([]HistoryEntry, error)
}

// UploadRequest carries an uploaded file.
type UploadRequest struct {
	UserID   string
	FileName string
	Data     []byte
}

// UploadResult describes a stored upload.
type UploadResult struct {
	DocumentID string `json:"documentId"`
	Name       string `json:"name"`
	TextLength int    `json:"textLength"`
}

// AskRequest carries a question from a user.
type AskRequest struct {
	UserID   string
	Question string
	Debug    bool
}

// DocumentSummary is a document listing entry. It never carries the document text.
type DocumentSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	FileSize  int64     `json:"fileSize"`
	CreatedAt time.Time `json:"createdAt"`
}

// HistoryEntry is a previously asked question.
type HistoryEntry struct {
	ID         string         `json:"id"`
	Question   string         `json:"question"`
	Answer     string         `json:"answer"`
	References []rag.Citation `json:"references"`
	Outcome    string         `json:"outcome"`
	CreatedAt  time.Time      `json:"createdAt"`
}

type documentService struct {
	docs    storage.DocumentStore
	history storage.HistoryStore
	engine  rag.Engine
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(docs storage.DocumentStore, history storage.HistoryStore, engine rag.Engine) DocumentService {
	return &documentService{
		docs:    docs,
		history: history,
		engine:  engine,
	}
}

// Upload extracts and stores an uploaded file.
func (s *documentService) Upload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	name := strings.TrimSpace(req.FileName)
	if name == "" {
		return UploadResult{}, &ValidationError{Field: "file", Message: "no file uploaded"}
	}

	fileType, err := extract.TypeFromName(name)
	if err != nil {
		return UploadResult{}, &ValidationError{Field: "file", Message: "only .txt and .md files are supported"}
	}

	text, err := extract.Text(fileType, req.Data)
	if errors.Is(err, extract.ErrNoText) {
		return UploadResult{}, &ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("could not extract text from file (need at least %d characters)", extract.MinTextChars),
		}
	}
	if err != nil {
		return UploadResult{}, WrapError(err, "failed to extract text")
	}

	doc := &storage.DocumentRecord{
		UserID:   req.UserID,
		Name:     name,
		Type:     fileType,
		Text:     text,
		Status:   storage.StatusReady,
		FileSize: int64(len(req.Data)),
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		logger.ErrorContext(ctx, "failed to store document", "name", name, "error", err)
		return UploadResult{}, WrapError(err, "failed to store document")
	}
	metrics.RecordUpload(fileType)

	textLength := len([]rune(text))
	logger.InfoContext(ctx, "document uploaded",
		"document_id", doc.ID,
		"name", name,
		"type", fileType,
		"size", doc.FileSize,
		"text_length", textLength,
	)

	return UploadResult{DocumentID: doc.ID, Name: name, TextLength: textLength}, nil
}

// Ask answers a question from the user's ready documents.
func (s *documentService) Ask(ctx context.Context, req AskRequest) (rag.AnswerResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return rag.AnswerResult{}, &ValidationError{Field: "question", Message: "question is required"}
	}

	records, err := s.docs.ListReady(ctx, req.UserID)
	if err != nil {
		return rag.AnswerResult{}, WrapError(err, "failed to load documents")
	}

	docs := make([]rag.Document, 0, len(records))
	for _, r := range records {
		docs = append(docs, rag.Document{ID: r.ID, Name: r.Name, Text: r.Text, Status: r.Status})
	}

	stats := rag.ComputeStats(docs)
	logger.DebugContext(ctx, "document stats",
		"total", stats.Total,
		"valid", stats.Valid,
		"invalid", stats.Invalid,
		"avg_chars", stats.AvgCharsPerDoc,
	)

	result, err := s.engine.Ask(ctx, rag.AskRequest{
		Question:  question,
		Documents: docs,
		Debug:     req.Debug,
	})
	if errors.Is(err, rag.ErrEmptyQuestion) {
		return rag.AnswerResult{}, &ValidationError{Field: "question", Message: "question is required"}
	}
	if err != nil {
		return rag.AnswerResult{}, WrapError(err, "failed to answer question")
	}

	if result.Outcome != rag.OutcomeNoDocuments {
		s.recordHistory(ctx, req.UserID, question, result)
	}

	return result, nil
}

// recordHistory stores an answered question. Failures are logged only.
func (s *documentService) recordHistory(ctx context.Context, userID, question string, result rag.AnswerResult) {
	citations := make([]storage.CitationRecord, 0, len(result.Citations))
	for _, c := range result.Citations {
		citations = append(citations, storage.CitationRecord{DocumentName: c.DocumentName, Excerpt: c.Excerpt})
	}

	entry := &storage.HistoryRecord{
		UserID:    userID,
		Question:  question,
		Answer:    result.Answer,
		Citations: citations,
		Outcome:   string(result.Outcome),
	}
	if err := s.history.Create(ctx, entry); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to save query history", "error", err)
	}
}

// List returns the user's documents.
func (s *documentService) List(ctx context.Context, userID string) ([]DocumentSummary, error) {
	records, err := s.docs.ListByUser(ctx, userID)
	if err != nil {
		return nil, WrapError(err, "failed to list documents")
	}

	out := make([]DocumentSummary, 0, len(records))
	for _, r := range records {
		out = append(out, DocumentSummary{
			ID:        r.ID,
			Name:      r.Name,
			Type:      r.Type,
			Status:    r.Status,
			FileSize:  r.FileSize,
			CreatedAt: r.CreatedAt,
		})
	}
	return out, nil
}

// Delete removes one of the user's documents.
func (s *documentService) Delete(ctx context.Context, userID, id string) error {
	if strings.TrimSpace(id) == "" {
		return &ValidationError{Field: "id", Message: "document id is required"}
	}

	err := s.docs.Delete(ctx, userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return WrapError(err, "failed to delete document")
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "document deleted", "document_id", id)
	return nil
}

// History returns the user's most recent questions.
func (s *documentService) History(ctx context.Context, userID string) ([]HistoryEntry, error) {
	records, err := s.history.ListByUser(ctx, userID, storage.MaxHistoryEntries)
	if err != nil {
		return nil, WrapError(err, "failed to load history")
	}

	out := make([]HistoryEntry, 0, len(records))
	for _, r := range records {
		refs := make([]rag.Citation, 0, len(r.Citations))
		for _, c := range r.Citations {
			refs = append(refs, rag.Citation{DocumentName: c.DocumentName, Excerpt: c.Excerpt})
		}
		out = append(out, HistoryEntry{
			ID:         r.ID,
			Question:   r.Question,
			Answer:     r.Answer,
			References: refs,
			Outcome:    r.Outcome,
			CreatedAt:  r.CreatedAt,
		})
	}
	return out, nil
}
