package service_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"dochub/internal/contextutil"
	"dochub/internal/rag"
	ragmocks "dochub/internal/rag/mocks"
	"dochub/internal/service"
	"dochub/internal/storage"
	storagemocks "dochub/internal/storage/mocks"

	"go.uber.org/mock/gomock"
)

func testContext() context.Context {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return contextutil.WithLogger(context.Background(), logger)
}

type fixture struct {
	docs    *storagemocks.MockDocumentStore
	history *storagemocks.MockHistoryStore
	engine  *ragmocks.MockEngine
	svc     service.DocumentService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := fixture{
		docs:    storagemocks.NewMockDocumentStore(ctrl),
		history: storagemocks.NewMockHistoryStore(ctrl),
		engine:  ragmocks.NewMockEngine(ctrl),
	}
	f.svc = service.NewDocumentService(f.docs, f.history, f.engine)
	return f
}

func isValidation(field string) func(error) bool {
	return func(err error) bool {
		var ve *service.ValidationError
		return errors.As(err, &ve) && ve.Field == field
	}
}

func TestDocumentService_Upload(t *testing.T) {
	tests := []struct {
		name         string
		req          service.UploadRequest
		mockSetup    func(f fixture)
		wantErr      bool
		checkErrType func(error) bool
		want         service.UploadResult
	}{
		{
			name: "markdown upload",
			req: service.UploadRequest{
				UserID:   "user-1",
				FileName: "policy.md",
				Data:     []byte("# Refunds\n\nReturns accepted within **30** days."),
			},
			mockSetup: func(f fixture) {
				f.docs.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, doc *storage.DocumentRecord) error {
						if doc.UserID != "user-1" || doc.Type != "md" || doc.Status != storage.StatusReady {
							t.Errorf("Create() got record %+v", doc)
						}
						if doc.Text != "Refunds Returns accepted within 30 days." {
							t.Errorf("Create() text = %q", doc.Text)
						}
						doc.ID = "doc-1"
						return nil
					})
			},
			want: service.UploadResult{DocumentID: "doc-1", Name: "policy.md", TextLength: 40},
		},
		{
			name:         "missing file name",
			req:          service.UploadRequest{UserID: "user-1", Data: []byte("some content here")},
			mockSetup:    func(f fixture) {},
			wantErr:      true,
			checkErrType: isValidation("file"),
		},
		{
			name:         "unsupported type",
			req:          service.UploadRequest{UserID: "user-1", FileName: "scan.pdf", Data: []byte("%PDF-1.4 binary")},
			mockSetup:    func(f fixture) {},
			wantErr:      true,
			checkErrType: isValidation("file"),
		},
		{
			name:         "too little text",
			req:          service.UploadRequest{UserID: "user-1", FileName: "tiny.txt", Data: []byte("  hi \n")},
			mockSetup:    func(f fixture) {},
			wantErr:      true,
			checkErrType: isValidation("file"),
		},
		{
			name: "store error",
			req:  service.UploadRequest{UserID: "user-1", FileName: "notes.txt", Data: []byte("meeting notes for tuesday")},
			mockSetup: func(f fixture) {
				f.docs.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
			},
			wantErr: true,
			checkErrType: func(err error) bool {
				return !errors.Is(err, service.ErrInvalidInput)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.mockSetup(f)

			got, err := f.svc.Upload(testContext(), tt.req)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Upload() expected error, got nil")
				}
				if tt.checkErrType != nil && !tt.checkErrType(err) {
					t.Errorf("Upload() error type mismatch: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Upload() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Upload() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDocumentService_Ask(t *testing.T) {
	ready := []storage.DocumentRecord{
		{ID: "d1", UserID: "user-1", Name: "policy.txt", Text: "Our refund policy allows returns within 30 days.", Status: storage.StatusReady},
	}
	answered := rag.AnswerResult{
		Answer:    "Returns are accepted within 30 days.",
		Citations: []rag.Citation{{DocumentName: "policy.txt", Excerpt: "returns within 30 days"}},
		Outcome:   rag.OutcomeAnswered,
	}

	t.Run("answers and records history", func(t *testing.T) {
		f := newFixture(t)
		f.docs.EXPECT().ListReady(gomock.Any(), "user-1").Return(ready, nil)
		f.engine.EXPECT().
			Ask(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, req rag.AskRequest) (rag.AnswerResult, error) {
				if req.Question != "What is the refund policy?" {
					t.Errorf("engine question = %q", req.Question)
				}
				if len(req.Documents) != 1 || req.Documents[0].Name != "policy.txt" || !req.Documents[0].Eligible() {
					t.Errorf("engine documents = %+v", req.Documents)
				}
				return answered, nil
			})
		f.history.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, entry *storage.HistoryRecord) error {
				if entry.UserID != "user-1" || entry.Outcome != "answered" || len(entry.Citations) != 1 {
					t.Errorf("history entry = %+v", entry)
				}
				if entry.Citations[0].DocumentName != "policy.txt" {
					t.Errorf("history citation = %+v", entry.Citations[0])
				}
				return nil
			})

		got, err := f.svc.Ask(testContext(), service.AskRequest{UserID: "user-1", Question: "  What is the refund policy?  "})
		if err != nil {
			t.Fatalf("Ask() unexpected error: %v", err)
		}
		if got.Answer != answered.Answer || got.Outcome != rag.OutcomeAnswered {
			t.Errorf("Ask() = %+v", got)
		}
	})

	t.Run("blank question is rejected before loading documents", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Ask(testContext(), service.AskRequest{UserID: "user-1", Question: " \t\n"})
		if !isValidation("question")(err) {
			t.Errorf("Ask() error = %v, want question ValidationError", err)
		}
	})

	t.Run("no documents is not recorded", func(t *testing.T) {
		f := newFixture(t)
		f.docs.EXPECT().ListReady(gomock.Any(), "user-1").Return(nil, nil)
		f.engine.EXPECT().Ask(gomock.Any(), gomock.Any()).Return(rag.AnswerResult{
			Answer:    rag.MessageNoDocuments,
			Citations: []rag.Citation{},
			Outcome:   rag.OutcomeNoDocuments,
		}, nil)

		got, err := f.svc.Ask(testContext(), service.AskRequest{UserID: "user-1", Question: "anything?"})
		if err != nil {
			t.Fatalf("Ask() unexpected error: %v", err)
		}
		if got.Answer != rag.MessageNoDocuments {
			t.Errorf("Ask() answer = %q", got.Answer)
		}
	})

	t.Run("history failure does not fail the ask", func(t *testing.T) {
		f := newFixture(t)
		f.docs.EXPECT().ListReady(gomock.Any(), "user-1").Return(ready, nil)
		f.engine.EXPECT().Ask(gomock.Any(), gomock.Any()).Return(answered, nil)
		f.history.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("database is locked"))

		got, err := f.svc.Ask(testContext(), service.AskRequest{UserID: "user-1", Question: "refund policy"})
		if err != nil {
			t.Fatalf("Ask() unexpected error: %v", err)
		}
		if got.Outcome != rag.OutcomeAnswered {
			t.Errorf("Ask() outcome = %q", got.Outcome)
		}
	})

	t.Run("document load error", func(t *testing.T) {
		f := newFixture(t)
		f.docs.EXPECT().ListReady(gomock.Any(), "user-1").Return(nil, errors.New("no such table"))

		if _, err := f.svc.Ask(testContext(), service.AskRequest{UserID: "user-1", Question: "refund policy"}); err == nil {
			t.Error("Ask() expected error, got nil")
		}
	})
}

func TestDocumentService_List(t *testing.T) {
	f := newFixture(t)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.docs.EXPECT().ListByUser(gomock.Any(), "user-1").Return([]storage.DocumentRecord{
		{ID: "d2", Name: "b.md", Type: "md", Status: storage.StatusReady, FileSize: 42, CreatedAt: created},
		{ID: "d1", Name: "a.txt", Type: "txt", Status: storage.StatusReady, FileSize: 10, CreatedAt: created.Add(-time.Hour)},
	}, nil)

	got, err := f.svc.List(testContext(), "user-1")
	if err != nil {
		t.Fatalf("List() unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "d2" || got[1].ID != "d1" {
		t.Fatalf("List() = %+v", got)
	}
	if got[0].FileSize != 42 || !got[0].CreatedAt.Equal(created) {
		t.Errorf("List()[0] = %+v", got[0])
	}
}

func TestDocumentService_Delete(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		mockSetup func(f fixture)
		wantErr   error
	}{
		{
			name: "deleted",
			id:   "d1",
			mockSetup: func(f fixture) {
				f.docs.EXPECT().Delete(gomock.Any(), "user-1", "d1").Return(nil)
			},
		},
		{
			name: "not found",
			id:   "missing",
			mockSetup: func(f fixture) {
				f.docs.EXPECT().Delete(gomock.Any(), "user-1", "missing").Return(storage.ErrNotFound)
			},
			wantErr: service.ErrNotFound,
		},
		{
			name:      "blank id",
			id:        " ",
			mockSetup: func(f fixture) {},
			wantErr:   service.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.mockSetup(f)

			err := f.svc.Delete(testContext(), "user-1", tt.id)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Delete() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Delete() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDocumentService_History(t *testing.T) {
	f := newFixture(t)
	f.history.EXPECT().ListByUser(gomock.Any(), "user-1", storage.MaxHistoryEntries).Return([]storage.HistoryRecord{
		{
			ID:        "h1",
			Question:  "What is the refund policy?",
			Answer:    "30 days.",
			Citations: []storage.CitationRecord{{DocumentName: "policy.txt", Excerpt: "within 30 days"}},
			Outcome:   "answered",
		},
		{ID: "h0", Question: "hello?", Answer: "fallback", Outcome: "upstream_unavailable"},
	}, nil)

	got, err := f.svc.History(testContext(), "user-1")
	if err != nil {
		t.Fatalf("History() unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("History() returned %d entries, want 2", len(got))
	}
	if got[0].References[0].DocumentName != "policy.txt" {
		t.Errorf("History()[0].References = %+v", got[0].References)
	}
	if got[1].References == nil {
		t.Error("History()[1].References should be an empty slice, not nil")
	}
}
