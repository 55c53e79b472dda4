package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(ctx context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name         string
		method       string
		pingErr      error
		wantStatus   int
		wantStatusJS string
		wantDatabase string
	}{
		{name: "healthy", method: http.MethodGet, wantStatus: http.StatusOK, wantStatusJS: "healthy", wantDatabase: "ok"},
		{name: "database down", method: http.MethodGet, pingErr: errors.New("sql: database is closed"), wantStatus: http.StatusServiceUnavailable, wantStatusJS: "unhealthy", wantDatabase: "error"},
		{name: "wrong method", method: http.MethodPost, wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(fakePinger{err: tt.pingErr})
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(tt.method, "/api/health", nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatusJS == "" {
				return
			}
			var resp HealthResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Status != tt.wantStatusJS || resp.Checks["database"] != tt.wantDatabase {
				t.Errorf("response = %+v", resp)
			}
			if resp.Timestamp == "" {
				t.Error("timestamp is empty")
			}
		})
	}
}
