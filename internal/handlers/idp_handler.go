package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/idp-tracker/idp-api/internal/middleware"
	"github.com/idp-tracker/idp-api/internal/models"
	"github.com/idp-tracker/idp-api/internal/services"
)

// IDPHandler handles development plan endpoints
type IDPHandler struct {
	service services.IDPServiceInterface
}

// NewIDPHandler creates a new IDPHandler
func NewIDPHandler(service services.IDPServiceInterface) *IDPHandler {
	return &IDPHandler{service: service}
}

// Create handles POST /api/v1/idps
// Mentor-only. Creates the plan and the mentee account in one step.
func (h *IDPHandler) Create(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authenticated", err)
		return
	}

	var req models.CreateIDPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	idp, err := h.service.Create(c.Request.Context(), user, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, idp)
}

// List handles GET /api/v1/idps
// Returns the caller's plans; ?include_all=true adds completed and archived ones
func (h *IDPHandler) List(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authenticated", err)
		return
	}

	includeAll := c.Query("include_all") == "true"

	idps, err := h.service.List(c.Request.Context(), user, includeAll)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, idps)
}

// GetByID handles GET /api/v1/idps/:id
func (h *IDPHandler) GetByID(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authenticated", err)
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid plan id", err)
		return
	}

	idp, err := h.service.GetByID(c.Request.Context(), user, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, idp)
}

// ListMentees handles GET /api/v1/idps/mentees/list
// Mentor-only. Returns the mentees the caller has an active plan with.
func (h *IDPHandler) ListMentees(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authenticated", err)
		return
	}

	mentees, err := h.service.ListMentees(c.Request.Context(), user)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, mentees)
}

// Close handles PATCH /api/v1/idps/:id/close
// Mentor-only. Marks the plan completed.
func (h *IDPHandler) Close(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authenticated", err)
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid plan id", err)
		return
	}

	if err := h.service.Close(c.Request.Context(), user, id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Delete handles DELETE /api/v1/idps/:id
// Mentor-only. Removes the plan together with its tasks and comments.
func (h *IDPHandler) Delete(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authenticated", err)
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid plan id", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), user, id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
