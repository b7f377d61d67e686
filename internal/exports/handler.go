package exports

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docproc-backend/internal/documents"
	"docproc-backend/internal/shared/server/middleware"
	"docproc-backend/internal/shared/server/respond"
	"docproc-backend/internal/shared/telemetry"
	"docproc-backend/internal/shared/util"
)

// Handler serves document exports as binary attachments.
type Handler struct {
	Docs *documents.Service
}

func NewHandler(docs *documents.Service) *Handler {
	return &Handler{Docs: docs}
}

// RegisterRoutes attaches export routes to the authenticated router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/export/:id/pdf", h.exportPDF)
	rg.GET("/export/:id/docx", h.exportDOCX)
}

func (h *Handler) exportPDF(c *gin.Context) {
	doc, ok := h.fetch(c)
	if !ok {
		return
	}

	data, err := RenderPDF(doc.Filename, contentBlocks(doc))
	if err != nil {
		telemetry.Error("export.pdf_failed", map[string]any{
			"documentId": doc.ID,
			"error":      err.Error(),
		})
		respond.Error(c, http.StatusInternalServerError, "render_failed", "failed to generate export", nil)
		return
	}

	serveAttachment(c, util.AttachmentName(doc.Filename, ".pdf"), "application/pdf", data)
}

func (h *Handler) exportDOCX(c *gin.Context) {
	doc, ok := h.fetch(c)
	if !ok {
		return
	}

	data, err := RenderDOCX(contentBlocks(doc))
	if err != nil {
		telemetry.Error("export.docx_failed", map[string]any{
			"documentId": doc.ID,
			"error":      err.Error(),
		})
		respond.Error(c, http.StatusInternalServerError, "render_failed", "failed to generate export", nil)
		return
	}

	serveAttachment(c,
		util.AttachmentName(doc.Filename, ".docx"),
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		data,
	)
}

func (h *Handler) fetch(c *gin.Context) (documents.Document, bool) {
	userID := middleware.UserIDFromContext(c)
	docID := c.Param("id")

	doc, err := h.Docs.Get(c.Request.Context(), userID, docID)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch document", nil)
		}
		return documents.Document{}, false
	}
	return doc, true
}

// contentBlocks picks the richest stored content: corrected HTML when
// present, otherwise extracted raw text, otherwise nothing.
func contentBlocks(doc documents.Document) []Block {
	if doc.CorrectedHTML != "" {
		return ParseBlocks(doc.CorrectedHTML)
	}
	if doc.RawText != "" {
		return BlocksFromPlainText(doc.RawText)
	}
	return []Block{}
}

func serveAttachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}
