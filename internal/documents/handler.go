package documents

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docproc-backend/internal/shared/server/middleware"
	"docproc-backend/internal/shared/server/respond"
	"docproc-backend/internal/tags"
)

const maxUploadSize = 20 << 20 // 20MB

// Handler wires HTTP handlers to the documents service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the authenticated router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload_and_convert", h.upload)
	rg.GET("/documents", h.list)
	rg.GET("/documents/:id", h.get)
	rg.PUT("/documents/:id", h.update)
	rg.DELETE("/documents/:id", h.remove)
	rg.GET("/documents/:id/versions", h.listVersions)
	rg.POST("/documents/:id/tags/:name", h.attachTag)
	rg.DELETE("/documents/:id/tags/:tag_id", h.detachTag)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	doc, err := h.Svc.Upload(ctx, userID, fileHeader.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "filename is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to upload document", nil)
		}
		return
	}

	respond.JSON(c, http.StatusAccepted, gin.H{
		"message":     "Upload accepted, processing started",
		"document_id": doc.ID,
	})
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	skip := 0
	limit := 100

	if v := c.Query("skip"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			skip = parsed
		}
	}
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	docs, err := h.Svc.List(c.Request.Context(), userID, skip, limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		tagList, err := h.Svc.TagsFor(c.Request.Context(), doc.ID)
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
			return
		}
		resp = append(resp, toResponse(doc, tagList))
	}

	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	docID := c.Param("id")

	doc, err := h.Svc.Get(c.Request.Context(), userID, docID)
	if err != nil {
		h.respondDocError(c, err, "failed to fetch document")
		return
	}

	tagList, err := h.Svc.TagsFor(c.Request.Context(), doc.ID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch document", nil)
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(doc, tagList))
}

type updateDocumentRequest struct {
	CorrectedHTML *string `json:"corrected_html"`
	Filename      *string `json:"filename"`
}

func (h *Handler) update(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	docID := c.Param("id")

	var req updateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.CorrectedHTML == nil && req.Filename == nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "no updatable fields supplied", nil)
		return
	}

	doc, err := h.Svc.Update(c.Request.Context(), userID, docID, ContentUpdate{
		CorrectedHTML: req.CorrectedHTML,
		Filename:      req.Filename,
	})
	if err != nil {
		h.respondDocError(c, err, "failed to update document")
		return
	}

	tagList, err := h.Svc.TagsFor(c.Request.Context(), doc.ID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update document", nil)
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(doc, tagList))
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	docID := c.Param("id")

	if err := h.Svc.Delete(c.Request.Context(), userID, docID); err != nil {
		h.respondDocError(c, err, "failed to delete document")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) listVersions(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	docID := c.Param("id")

	list, err := h.Svc.ListVersions(c.Request.Context(), userID, docID)
	if err != nil {
		h.respondDocError(c, err, "failed to list versions")
		return
	}

	respond.JSON(c, http.StatusOK, list)
}

func (h *Handler) attachTag(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	docID := c.Param("id")
	name := c.Param("name")

	doc, tagList, err := h.Svc.AttachTagByName(c.Request.Context(), userID, docID, name)
	if err != nil {
		switch {
		case errors.Is(err, tags.ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "tag name is required", nil)
		default:
			h.respondDocError(c, err, "failed to attach tag")
		}
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(doc, tagList))
}

func (h *Handler) detachTag(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	docID := c.Param("id")
	tagID := c.Param("tag_id")

	doc, tagList, err := h.Svc.DetachTag(c.Request.Context(), userID, docID, tagID)
	if err != nil {
		h.respondDocError(c, err, "failed to detach tag")
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(doc, tagList))
}

func (h *Handler) respondDocError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
