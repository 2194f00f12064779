package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/idp-tracker/idp-api/internal/models"
	"github.com/idp-tracker/idp-api/internal/services"
)

// TemplateHandler handles the read-only task template catalog
type TemplateHandler struct {
	service services.TemplateServiceInterface
}

// NewTemplateHandler creates a new TemplateHandler
func NewTemplateHandler(service services.TemplateServiceInterface) *TemplateHandler {
	return &TemplateHandler{service: service}
}

// Categories handles GET /api/v1/templates/categories
func (h *TemplateHandler) Categories(c *gin.Context) {
	categories, err := h.service.Categories(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

// ByCategory handles GET /api/v1/templates/by-category/:category
func (h *TemplateHandler) ByCategory(c *gin.Context) {
	category := strings.TrimSpace(c.Param("category"))
	if category == "" {
		respondError(c, http.StatusBadRequest, "Category is required", nil)
		return
	}

	templates, err := h.service.ByCategory(c.Request.Context(), category)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, templates)
}

// Search handles GET /api/v1/templates/search.
// All filters are optional; with none set the full catalog is returned
// ordered by category and skill name.
func (h *TemplateHandler) Search(c *gin.Context) {
	var q models.TemplateSearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	templates, err := h.service.Search(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, templates)
}

// GetByID handles GET /api/v1/templates/:id
func (h *TemplateHandler) GetByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid template id", err)
		return
	}

	template, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, template)
}
