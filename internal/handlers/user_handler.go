package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/idp-tracker/idp-api/internal/middleware"
	"github.com/idp-tracker/idp-api/internal/models"
	"github.com/idp-tracker/idp-api/internal/services"
)

// UserHandler handles the caller's own profile
type UserHandler struct {
	service services.UserServiceInterface
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service services.UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// Me handles GET /api/v1/users/me
// Returns the authenticated user as resolved by the session middleware
func (h *UserHandler) Me(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authenticated", err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateMe handles PATCH /api/v1/users/me
// Patches the caller's profile; omitted fields are left unchanged
func (h *UserHandler) UpdateMe(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authenticated", err)
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	updated, err := h.service.UpdateProfile(c.Request.Context(), user, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}
