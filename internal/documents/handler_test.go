package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"docproc-backend/internal/tags"
	"docproc-backend/internal/versions"
)

func newDocRouter(t *testing.T, userID string) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := &Service{
		Store:            newFakeStore(),
		Repo:             NewMemoryRepo(),
		Tags:             tags.NewService(tags.NewMemoryRepo()),
		Versions:         versions.NewMemoryRepo(),
		CallbackTokenTTL: time.Hour,
	}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(&r.RouterGroup)
	return r, svc
}

func multipartUpload(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func doUpload(t *testing.T, router *gin.Engine) string {
	t.Helper()
	body, contentType := multipartUpload(t, "report.pdf", "file content")
	req := httptest.NewRequest(http.MethodPost, "/upload_and_convert", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", resp.Code, resp.Body.String())
	}
	var out struct {
		Message    string `json:"message"`
		DocumentID string `json:"document_id"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if out.DocumentID == "" {
		t.Fatalf("expected a document id")
	}
	return out.DocumentID
}

func TestUploadEndpointReturns202AndDocumentIsRetrievable(t *testing.T) {
	router, _ := newDocRouter(t, "user-1")
	docID := doUpload(t, router)

	req := httptest.NewRequest(http.MethodGet, "/documents/"+docID, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var doc DocumentResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if doc.Status != StatusProcessing {
		t.Fatalf("expected status %q, got %q", StatusProcessing, doc.Status)
	}
	if !strings.HasPrefix(doc.OriginalPath, "uploads/") {
		t.Fatalf("unexpected original path %q", doc.OriginalPath)
	}
	if doc.Filename != "report.pdf" {
		t.Fatalf("unexpected filename %q", doc.Filename)
	}
	if doc.Tags == nil {
		t.Fatalf("tags must serialize as an empty list, not null")
	}
}

func TestUploadEndpointRequiresFile(t *testing.T) {
	router, _ := newDocRouter(t, "user-1")

	req := httptest.NewRequest(http.MethodPost, "/upload_and_convert", strings.NewReader(""))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestListEndpointHonorsSkipAndLimit(t *testing.T) {
	router, _ := newDocRouter(t, "user-1")

	for range [3]struct{}{} {
		doUpload(t, router)
	}

	req := httptest.NewRequest(http.MethodGet, "/documents?skip=1&limit=1", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var list []DocumentResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 document, got %d", len(list))
	}
}

func TestGetEndpointNonOwnerIs404(t *testing.T) {
	router, svc := newDocRouter(t, "user-1")
	docID := doUpload(t, router)

	otherRouter := gin.New()
	otherRouter.Use(func(c *gin.Context) {
		c.Set("userId", "user-2")
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(&otherRouter.RouterGroup)

	req := httptest.NewRequest(http.MethodGet, "/documents/"+docID, nil)
	resp := httptest.NewRecorder()
	otherRouter.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for non-owner, got %d", resp.Code)
	}
}

func TestUpdateEndpointEditsContent(t *testing.T) {
	router, _ := newDocRouter(t, "user-1")
	docID := doUpload(t, router)

	payload := `{"corrected_html":"<div>edited</div>","filename":"renamed.pdf"}`
	req := httptest.NewRequest(http.MethodPut, "/documents/"+docID, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var doc DocumentResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.CorrectedHTML != "<div>edited</div>" || doc.Filename != "renamed.pdf" {
		t.Fatalf("unexpected document %+v", doc)
	}
}

func TestUpdateEndpointEmptyBodyIs400(t *testing.T) {
	router, _ := newDocRouter(t, "user-1")
	docID := doUpload(t, router)

	req := httptest.NewRequest(http.MethodPut, "/documents/"+docID, strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestDeleteEndpointRemovesDocument(t *testing.T) {
	router, _ := newDocRouter(t, "user-1")
	docID := doUpload(t, router)

	req := httptest.NewRequest(http.MethodDelete, "/documents/"+docID, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if resp.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", resp.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/documents/"+docID, nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.Code)
	}
}

func TestTagRoutesAttachAndDetach(t *testing.T) {
	router, _ := newDocRouter(t, "user-1")
	docID := doUpload(t, router)

	req := httptest.NewRequest(http.MethodPost, "/documents/"+docID+"/tags/invoices", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("attach: expected 200, got %d", resp.Code)
	}

	var out DocumentResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode attach response: %v", err)
	}
	if out.ID != docID || out.Status != StatusProcessing {
		t.Fatalf("expected the full document back, got %+v", out)
	}
	if len(out.Tags) != 1 || out.Tags[0].Name != "invoices" {
		t.Fatalf("unexpected tag set %+v", out.Tags)
	}

	req = httptest.NewRequest(http.MethodDelete, "/documents/"+docID+"/tags/"+out.Tags[0].ID, nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("detach: expected 200, got %d", resp.Code)
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode detach response: %v", err)
	}
	if out.ID != docID {
		t.Fatalf("expected the full document back, got %+v", out)
	}
	if len(out.Tags) != 0 {
		t.Fatalf("expected empty tag set after detach, got %+v", out.Tags)
	}
}

func TestVersionsEndpointListsSnapshots(t *testing.T) {
	router, svc := newDocRouter(t, "user-1")
	docID := doUpload(t, router)

	stored, err := svc.Repo.GetAny(context.Background(), docID)
	if err != nil {
		t.Fatalf("GetAny: %v", err)
	}
	if err := svc.Repo.ApplyCallback(context.Background(), docID, stored.CallbackToken, CallbackResult{
		RawText:       "raw",
		CorrectedHTML: "<div>v1</div>",
		Status:        StatusReady,
	}); err != nil {
		t.Fatalf("ApplyCallback: %v", err)
	}

	payload := `{"corrected_html":"<div>v2</div>"}`
	req := httptest.NewRequest(http.MethodPut, "/documents/"+docID, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/documents/"+docID+"/versions", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("versions: expected 200, got %d", resp.Code)
	}

	var history []versions.DocumentVersion
	if err := json.Unmarshal(resp.Body.Bytes(), &history); err != nil {
		t.Fatalf("decode versions: %v", err)
	}
	if len(history) != 1 || history[0].CorrectedHTML != "<div>v1</div>" {
		t.Fatalf("unexpected history %+v", history)
	}
}
