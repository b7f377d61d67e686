package processing

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"docproc-backend/internal/documents"
	"docproc-backend/internal/shared/metrics"
	"docproc-backend/internal/shared/server/respond"
	"docproc-backend/internal/shared/telemetry"
)

// Handler ingests callbacks from the processing webhook. Callbacks must
// carry the single-use token issued at dispatch time; an unknown document,
// wrong token or expired token all answer 404 so callers cannot enumerate
// document ids.
type Handler struct {
	Repo documents.Repo
	Now  func() time.Time
}

func NewHandler(repo documents.Repo) *Handler {
	return &Handler{Repo: repo, Now: time.Now}
}

// RegisterRoutes attaches the callback route to the unauthenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/n8n/callback", h.callback)
}

type callbackRequest struct {
	DocID         string  `json:"doc_id"`
	CallbackToken string  `json:"callback_token"`
	RawText       string  `json:"raw_text"`
	CorrectedHTML *string `json:"corrected_html"`
	Status        *string `json:"status"`
}

func (h *Handler) callback(c *gin.Context) {
	metrics.IncCallbackReceived()

	var req callbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.IncCallbackRejected()
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.DocID == "" {
		metrics.IncCallbackRejected()
		respond.Error(c, http.StatusBadRequest, "validation_error", "doc_id is required", nil)
		return
	}

	status := documents.StatusReady
	if req.Status != nil {
		if !documents.KnownStatus(*req.Status) {
			metrics.IncCallbackRejected()
			respond.Error(c, http.StatusBadRequest, "validation_error", "unknown status", nil)
			return
		}
		status = *req.Status
	}

	doc, err := h.Repo.GetAny(c.Request.Context(), req.DocID)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			metrics.IncCallbackRejected()
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process callback", nil)
		return
	}

	if !doc.CallbackTokenValid(req.CallbackToken, h.Now().UTC()) {
		metrics.IncCallbackRejected()
		telemetry.Error("callback.token_rejected", map[string]any{
			"documentId": req.DocID,
		})
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		return
	}

	correctedHTML := fallbackHTML(req.RawText)
	if req.CorrectedHTML != nil && *req.CorrectedHTML != "" {
		// Caller-supplied HTML is stored verbatim. The webhook is the only
		// party holding the callback token, so its output is trusted.
		correctedHTML = *req.CorrectedHTML
	}

	err = h.Repo.ApplyCallback(c.Request.Context(), req.DocID, req.CallbackToken, documents.CallbackResult{
		RawText:       req.RawText,
		CorrectedHTML: correctedHTML,
		Status:        status,
	})
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			metrics.IncCallbackRejected()
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process callback", nil)
		return
	}

	telemetry.Info("callback.applied", map[string]any{
		"documentId": req.DocID,
		"status":     status,
	})
	respond.JSON(c, http.StatusOK, gin.H{"status": "success"})
}

// fallbackHTML derives a display fragment from plain text when the webhook
// sends no corrected_html: angle brackets are escaped and newlines become
// line breaks.
func fallbackHTML(rawText string) string {
	s := strings.ReplaceAll(rawText, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\n", "<br>")
	return "<div>" + s + "</div>"
}
