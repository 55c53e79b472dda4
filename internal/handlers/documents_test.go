package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"dochub/internal/contextutil"
	"dochub/internal/service"
	"dochub/internal/service/mocks"
)

func multipartRequest(t *testing.T, field, fileName string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		fw, err := mw.CreateFormFile(field, fileName)
		if err != nil {
			t.Fatalf("CreateFormFile() error = %v", err)
		}
		if _, err := fw.Write(content); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	req := authedRequest(http.MethodPost, "/api/docs/upload", body.Bytes())
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestDocumentHandler_Upload(t *testing.T) {
	content := []byte("Our refund policy allows returns within 30 days.")

	tests := []struct {
		name           string
		req            func(t *testing.T) *http.Request
		maxBytes       int64
		mockSetup      func(m *mocks.MockDocumentService)
		expectedStatus int
	}{
		{
			name: "accepted",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "file", "policy.txt", content)
			},
			mockSetup: func(m *mocks.MockDocumentService) {
				m.EXPECT().
					Upload(gomock.Any(), service.UploadRequest{UserID: "user-1", FileName: "policy.txt", Data: content}).
					Return(service.UploadResult{DocumentID: "d1", Name: "policy.txt", TextLength: len(content)}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "missing file field",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "", "", nil)
			},
			mockSetup:      func(m *mocks.MockDocumentService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unsupported type",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "file", "scan.pdf", []byte("%PDF"))
			},
			mockSetup: func(m *mocks.MockDocumentService) {
				m.EXPECT().Upload(gomock.Any(), gomock.Any()).
					Return(service.UploadResult{}, &service.ValidationError{Field: "file", Message: "only .txt and .md files are supported"})
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "too large",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "file", "big.txt", bytes.Repeat([]byte("a"), 64))
			},
			maxBytes:       16,
			mockSetup:      func(m *mocks.MockDocumentService) {},
			expectedStatus: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := mocks.NewMockDocumentService(ctrl)
			tt.mockSetup(svc)
			maxBytes := tt.maxBytes
			if maxBytes == 0 {
				maxBytes = 1 << 20
			}
			handler := NewDocumentHandler(svc, maxBytes)

			w := httptest.NewRecorder()
			handler.Upload(w, tt.req(t))

			if w.Code != tt.expectedStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.expectedStatus, w.Body.String())
			}
			if w.Code == http.StatusOK {
				var resp map[string]any
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if resp["documentId"] != "d1" || resp["message"] == "" {
					t.Errorf("response = %v", resp)
				}
			}
		})
	}
}

func TestDocumentHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockDocumentService(ctrl)
	svc.EXPECT().List(gomock.Any(), "user-1").Return([]service.DocumentSummary{
		{ID: "d2", Name: "b.md", Type: "md", Status: "ready", FileSize: 12},
	}, nil)

	w := httptest.NewRecorder()
	NewDocumentHandler(svc, 1<<20).List(w, authedRequest(http.MethodGet, "/api/docs/list", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got []service.DocumentSummary
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got) != 1 || got[0].ID != "d2" || got[0].FileSize != 12 {
		t.Errorf("List() = %+v", got)
	}
}

func TestDocumentHandler_Delete(t *testing.T) {
	tests := []struct {
		name           string
		serviceErr     error
		expectedStatus int
	}{
		{name: "deleted", expectedStatus: http.StatusOK},
		{name: "not found", serviceErr: service.ErrNotFound, expectedStatus: http.StatusNotFound},
		{name: "store failure", serviceErr: errors.New("database is locked"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := mocks.NewMockDocumentService(ctrl)
			svc.EXPECT().Delete(gomock.Any(), "user-1", "d1").Return(tt.serviceErr)

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", "d1")
			req := authedRequest(http.MethodDelete, "/api/docs/d1", nil)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			NewDocumentHandler(svc, 1<<20).Delete(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}
		})
	}
}

func TestDocumentHandler_History(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockDocumentService(ctrl)
	svc.EXPECT().History(gomock.Any(), "user-1").Return([]service.HistoryEntry{
		{ID: "h1", Question: "q?", Answer: "a.", Outcome: "answered"},
	}, nil)

	w := httptest.NewRecorder()
	NewDocumentHandler(svc, 1<<20).History(w, authedRequest(http.MethodGet, "/api/docs/history", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"question":"q?"`)) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestDocumentHandler_Anonymous(t *testing.T) {
	ctrl := gomock.NewController(t)
	handler := NewDocumentHandler(mocks.NewMockDocumentService(ctrl), 1<<20)

	for name, fn := range map[string]http.HandlerFunc{
		"list":    handler.List,
		"history": handler.History,
		"delete":  handler.Delete,
	} {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/docs/x", nil)
			fn(w, req.WithContext(contextutil.WithUserID(context.Background(), "")))
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
		})
	}
}
