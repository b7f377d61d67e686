package exports

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"docproc-backend/internal/documents"
	"docproc-backend/internal/tags"
)

func newExportRouter(t *testing.T, userID string) (*gin.Engine, documents.Repo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := documents.NewMemoryRepo()
	svc := &documents.Service{
		Repo: repo,
		Tags: tags.NewService(tags.NewMemoryRepo()),
	}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(&r.RouterGroup)
	return r, repo
}

func seedExportDoc(t *testing.T, repo documents.Repo, correctedHTML, rawText string) documents.Document {
	t.Helper()
	doc := documents.Document{
		ID:            "doc-1",
		UserID:        "user-1",
		UploadDate:    time.Now().UTC(),
		StorageKey:    "abc.pdf",
		Filename:      "report.pdf",
		RawText:       rawText,
		CorrectedHTML: correctedHTML,
		Status:        documents.StatusReady,
	}
	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("create document: %v", err)
	}
	return doc
}

func TestExportPDFReturnsAttachment(t *testing.T) {
	router, repo := newExportRouter(t, "user-1")
	doc := seedExportDoc(t, repo, "<h1>Title</h1><p>Body</p>", "")

	req := httptest.NewRequest(http.MethodGet, "/export/"+doc.ID+"/pdf", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := resp.Header().Get("Content-Disposition"); !strings.Contains(cd, `attachment; filename="report.pdf"`) {
		t.Fatalf("unexpected content disposition %q", cd)
	}
	if !bytes.HasPrefix(resp.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("expected PDF bytes")
	}
}

func TestExportDOCXReturnsAttachment(t *testing.T) {
	router, repo := newExportRouter(t, "user-1")
	doc := seedExportDoc(t, repo, "<p>Body</p>", "")

	req := httptest.NewRequest(http.MethodGet, "/export/"+doc.ID+"/docx", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if cd := resp.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="report.docx"`) {
		t.Fatalf("unexpected content disposition %q", cd)
	}
	// DOCX packages are zip archives.
	if !bytes.HasPrefix(resp.Body.Bytes(), []byte("PK")) {
		t.Fatalf("expected zip magic bytes")
	}
}

func TestExportFallsBackToRawText(t *testing.T) {
	router, repo := newExportRouter(t, "user-1")
	doc := seedExportDoc(t, repo, "", "plain extracted text")

	req := httptest.NewRequest(http.MethodGet, "/export/"+doc.ID+"/docx", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	content := readPart(t, resp.Body.Bytes(), "word/document.xml")
	if !strings.Contains(content, "plain extracted text") {
		t.Fatalf("expected raw text content in export")
	}
}

func TestExportByNonOwnerIs404(t *testing.T) {
	router, repo := newExportRouter(t, "someone-else")
	doc := seedExportDoc(t, repo, "<p>Body</p>", "")

	req := httptest.NewRequest(http.MethodGet, "/export/"+doc.ID+"/pdf", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
