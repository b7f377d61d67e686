package processing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"docproc-backend/internal/documents"
)

func seedDocument(t *testing.T, repo documents.Repo) documents.Document {
	t.Helper()
	doc := documents.Document{
		ID:                     "doc-1",
		UserID:                 "user-1",
		UploadDate:             time.Now().UTC(),
		StorageKey:             "abc.pdf",
		Filename:               "report.pdf",
		Status:                 documents.StatusProcessing,
		CallbackToken:          "token-1",
		CallbackTokenExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("create document: %v", err)
	}
	return doc
}

func newTestDispatcher(repo documents.Repo, webhookURL string) *Dispatcher {
	return &Dispatcher{
		Repo:          repo,
		Client:        &http.Client{},
		WebhookURL:    webhookURL,
		PublicBaseURL: "http://localhost:8080",
		Timeout:       2 * time.Second,
		MaxAttempts:   1,
	}
}

func TestDispatchSuccessMarksDispatched(t *testing.T) {
	repo := documents.NewMemoryRepo()
	doc := seedDocument(t, repo)

	var payload dispatchPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := newTestDispatcher(repo, srv.URL)
	d.Dispatch(context.Background(), doc)

	got, err := repo.GetAny(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("GetAny: %v", err)
	}
	if got.Status != documents.StatusDispatched {
		t.Fatalf("expected status %q, got %q", documents.StatusDispatched, got.Status)
	}
	if payload.DocID != doc.ID {
		t.Fatalf("expected doc_id %q in payload, got %q", doc.ID, payload.DocID)
	}
	if payload.CallbackToken != doc.CallbackToken {
		t.Fatalf("expected callback token in payload")
	}
	if payload.FileURL != "http://localhost:8080/uploads/abc.pdf" {
		t.Fatalf("unexpected file url %q", payload.FileURL)
	}
	if payload.OriginalPath != "uploads/abc.pdf" {
		t.Fatalf("unexpected original path %q", payload.OriginalPath)
	}
}

func TestDispatchNon2xxMarksErrorWithCode(t *testing.T) {
	repo := documents.NewMemoryRepo()
	doc := seedDocument(t, repo)

	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := newTestDispatcher(repo, srv.URL)
	d.MaxAttempts = 3
	d.Dispatch(context.Background(), doc)

	got, err := repo.GetAny(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("GetAny: %v", err)
	}
	if got.Status != documents.StatusDispatchError {
		t.Fatalf("expected status %q, got %q", documents.StatusDispatchError, got.Status)
	}
	if got.StatusDetail != "500" {
		t.Fatalf("expected status detail 500, got %q", got.StatusDetail)
	}
	if attempts != 1 {
		t.Fatalf("a non-2xx response must not be retried, saw %d attempts", attempts)
	}
}

func TestDispatchUnreachableMarksConnectionFailed(t *testing.T) {
	repo := documents.NewMemoryRepo()
	doc := seedDocument(t, repo)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	d := newTestDispatcher(repo, srv.URL)
	d.Dispatch(context.Background(), doc)

	got, err := repo.GetAny(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("GetAny: %v", err)
	}
	if got.Status != documents.StatusConnectionFailed {
		t.Fatalf("expected status %q, got %q", documents.StatusConnectionFailed, got.Status)
	}
	if got.StatusDetail == "" {
		t.Fatalf("expected a diagnostic detail for the transport failure")
	}
}

func TestDispatchRetriesTransportFailures(t *testing.T) {
	repo := documents.NewMemoryRepo()
	doc := seedDocument(t, repo)

	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			// Drop the first connection so the client sees a transport error.
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Errorf("server does not support hijacking")
				return
			}
			conn, _, err := hj.Hijack()
			if err != nil {
				t.Errorf("hijack: %v", err)
				return
			}
			conn.Close()
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := newTestDispatcher(repo, srv.URL)
	d.MaxAttempts = 3
	d.Dispatch(context.Background(), doc)

	got, err := repo.GetAny(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("GetAny: %v", err)
	}
	if got.Status != documents.StatusDispatched {
		t.Fatalf("expected retry to recover, got status %q", got.Status)
	}
	if attempts < 2 {
		t.Fatalf("expected at least 2 attempts, saw %d", attempts)
	}
}

func TestDispatchWithoutWebhookMarksConnectionFailed(t *testing.T) {
	repo := documents.NewMemoryRepo()
	doc := seedDocument(t, repo)

	d := newTestDispatcher(repo, "")
	d.Dispatch(context.Background(), doc)

	got, err := repo.GetAny(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("GetAny: %v", err)
	}
	if got.Status != documents.StatusConnectionFailed {
		t.Fatalf("expected status %q, got %q", documents.StatusConnectionFailed, got.Status)
	}
}
