package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/idp-tracker/idp-api/internal/middleware"
	"github.com/idp-tracker/idp-api/internal/models"
	"github.com/idp-tracker/idp-api/internal/services"
)

// CommentHandler handles task comment endpoints
type CommentHandler struct {
	service services.CommentServiceInterface
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(service services.CommentServiceInterface) *CommentHandler {
	return &CommentHandler{service: service}
}

// Create handles POST /api/v1/comments
func (h *CommentHandler) Create(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authenticated", err)
		return
	}

	var req models.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	comment, err := h.service.Create(c.Request.Context(), user, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// ListByTask handles GET /api/v1/comments/task/:taskId
func (h *CommentHandler) ListByTask(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authenticated", err)
		return
	}

	taskID, err := parseIDParam(c, "taskId")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid task id", err)
		return
	}

	comments, err := h.service.ListByTask(c.Request.Context(), user, taskID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, comments)
}

// Update handles PATCH /api/v1/comments/:id
// Author-only
func (h *CommentHandler) Update(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authenticated", err)
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid comment id", err)
		return
	}

	var req models.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	comment, err := h.service.Update(c.Request.Context(), user, id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// Delete handles DELETE /api/v1/comments/:id
// Author-only
func (h *CommentHandler) Delete(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authenticated", err)
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid comment id", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), user, id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
