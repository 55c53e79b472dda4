package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"dochub/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is returned by operations that have nothing else to report.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(v)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	_ = writeJSON(w, statusCode, ErrorResponse{Error: message})
}

// statusForError maps service errors to HTTP status codes and client messages.
func statusForError(err error, defaultMsg string) (int, string) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "Document not found"
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, "Access token required"
	default:
		return http.StatusInternalServerError, defaultMsg
	}
}
