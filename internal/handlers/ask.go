package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"dochub/internal/contextutil"
	"dochub/internal/rag"
	"dochub/internal/service"
)

// AskHandler handles HTTP requests for grounded questions.
type AskHandler struct {
	docService service.DocumentService
	timeout    time.Duration
}

// NewAskHandler creates a new AskHandler. Each ask is bounded by timeout when it is positive.
func NewAskHandler(docService service.DocumentService, timeout time.Duration) *AskHandler {
	return &AskHandler{
		docService: docService,
		timeout:    timeout,
	}
}

// AskRequest represents the HTTP request payload for a question.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse represents the HTTP response payload for a question.
type AskResponse struct {
	// The generated answer, or a fixed message for the failure outcomes
	Answer string `json:"answer"`

	// Sources of the answer
	References []ReferenceResponse `json:"references"`

	// Terminal state of the ask, e.g. "answered" or "fallback_cited"
	Outcome string `json:"outcome"`

	// Retrieval details, present with ?debug=true
	Debug *rag.DebugInfo `json:"debug,omitempty"`
}

// ReferenceResponse represents a reference in the HTTP response.
type ReferenceResponse struct {
	DocName string `json:"docName"`
	Excerpt string `json:"excerpt"`
}

// ServeHTTP answers a question from the caller's documents.
//
// POST /api/docs/ask
//
// Upstream model failures still answer 200 with a fixed message and an upstream_* outcome.
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		logger.WarnContext(ctx, "empty question in request")
		writeError(w, http.StatusBadRequest, "Question is required")
		return
	}

	userID := contextutil.UserIDFromContext(ctx)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "Access token required")
		return
	}

	debugParam := r.URL.Query().Get("debug")
	debug := strings.EqualFold(debugParam, "true") || debugParam == "1"

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	result, err := h.docService.Ask(ctx, service.AskRequest{
		UserID:   userID,
		Question: req.Question,
		Debug:    debug,
	})
	if err != nil {
		logger.ErrorContext(ctx, "ask failed", "error", err)
		status, msg := statusForError(err, "Failed to process question")
		writeError(w, status, msg)
		return
	}

	references := make([]ReferenceResponse, len(result.Citations))
	for i, c := range result.Citations {
		references[i] = ReferenceResponse{DocName: c.DocumentName, Excerpt: c.Excerpt}
	}

	resp := AskResponse{
		Answer:     result.Answer,
		References: references,
		Outcome:    string(result.Outcome),
		Debug:      result.Debug,
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
