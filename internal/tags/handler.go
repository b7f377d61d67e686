package tags

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docproc-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the tag service. Document-scoped attach
// and detach routes live with the documents handler, which owns the
// ownership check.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches tag routes to the authenticated router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/tags", h.createTag)
}

type createTagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (h *Handler) createTag(c *gin.Context) {
	var req createTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	tag, err := h.Svc.CreateOrGet(c.Request.Context(), req.Name, req.Color)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "tag name is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create tag", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, tag)
}
