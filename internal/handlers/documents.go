package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dochub/internal/contextutil"
	"dochub/internal/service"
)

// DocumentHandler handles document upload, listing, deletion and history.
type DocumentHandler struct {
	docService     service.DocumentService
	maxUploadBytes int64
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(docService service.DocumentService, maxUploadBytes int64) *DocumentHandler {
	return &DocumentHandler{
		docService:     docService,
		maxUploadBytes: maxUploadBytes,
	}
}

// UploadResponse is returned after a successful upload.
type UploadResponse struct {
	Message string `json:"message"`
	service.UploadResult
}

// Upload stores the multipart "file" field.
//
// POST /api/docs/upload
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	userID := contextutil.UserIDFromContext(ctx)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "Access token required")
		return
	}

	// Allow room for the multipart envelope around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		logger.WarnContext(ctx, "missing upload", "error", err)
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large (max %d bytes)", h.maxUploadBytes))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		logger.ErrorContext(ctx, "failed to read upload", "error", err)
		writeError(w, http.StatusBadRequest, "Failed to read file")
		return
	}
	if int64(len(data)) > h.maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large (max %d bytes)", h.maxUploadBytes))
		return
	}

	result, err := h.docService.Upload(ctx, service.UploadRequest{
		UserID:   userID,
		FileName: header.Filename,
		Data:     data,
	})
	if err != nil {
		logger.ErrorContext(ctx, "upload failed", "file", header.Filename, "error", err)
		status, msg := statusForError(err, "Failed to process document")
		writeError(w, status, msg)
		return
	}

	_ = writeJSON(w, http.StatusOK, UploadResponse{
		Message:      "Document uploaded and processed successfully",
		UploadResult: result,
	})
}

// List returns the caller's documents, newest first.
//
// GET /api/docs/list
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := contextutil.UserIDFromContext(ctx)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "Access token required")
		return
	}

	docs, err := h.docService.List(ctx, userID)
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "list failed", "error", err)
		status, msg := statusForError(err, "Failed to list documents")
		writeError(w, status, msg)
		return
	}
	_ = writeJSON(w, http.StatusOK, docs)
}

// Delete removes one of the caller's documents.
//
// DELETE /api/docs/{id}
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := contextutil.UserIDFromContext(ctx)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "Access token required")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.docService.Delete(ctx, userID, id); err != nil {
		if !errors.Is(err, service.ErrNotFound) {
			contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "delete failed", "document_id", id, "error", err)
		}
		status, msg := statusForError(err, "Failed to delete document")
		writeError(w, status, msg)
		return
	}
	_ = writeJSON(w, http.StatusOK, MessageResponse{Message: "Document deleted successfully"})
}

// History returns the caller's recent questions, newest first.
//
// GET /api/docs/history
func (h *DocumentHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := contextutil.UserIDFromContext(ctx)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "Access token required")
		return
	}

	entries, err := h.docService.History(ctx, userID)
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "history failed", "error", err)
		status, msg := statusForError(err, "Failed to load history")
		writeError(w, status, msg)
		return
	}
	_ = writeJSON(w, http.StatusOK, entries)
}
