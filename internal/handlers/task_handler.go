package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/idp-tracker/idp-api/internal/middleware"
	"github.com/idp-tracker/idp-api/internal/models"
	"github.com/idp-tracker/idp-api/internal/services"
)

// TaskHandler handles task endpoints
type TaskHandler struct {
	service services.TaskServiceInterface
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(service services.TaskServiceInterface) *TaskHandler {
	return &TaskHandler{service: service}
}

// Create handles POST /api/v1/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authenticated", err)
		return
	}

	var req models.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	task, err := h.service.Create(c.Request.Context(), user, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// ListByIDP handles GET /api/v1/tasks/idp/:idpId
func (h *TaskHandler) ListByIDP(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authenticated", err)
		return
	}

	idpID, err := parseIDParam(c, "idpId")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid plan id", err)
		return
	}

	tasks, err := h.service.ListByIDP(c.Request.Context(), user, idpID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// GetByID handles GET /api/v1/tasks/:id
func (h *TaskHandler) GetByID(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authenticated", err)
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid task id", err)
		return
	}

	task, err := h.service.GetByID(c.Request.Context(), user, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// Update handles PATCH /api/v1/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authenticated", err)
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid task id", err)
		return
	}

	var req models.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	task, err := h.service.Update(c.Request.Context(), user, id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// Delete handles DELETE /api/v1/tasks/:id
// Mentor-only within the task's plan
func (h *TaskHandler) Delete(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authenticated", err)
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid task id", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), user, id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
