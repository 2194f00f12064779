package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/idp-tracker/idp-api/pkg/errors"
)

// attachError attaches err to the gin context so the observability middleware
// can include the reason in the request log. c.Error() returns *gin.Error (not
// the error interface), so we suppress errcheck here intentionally.
func attachError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
	}
}

// respondError sends an error JSON response and attaches the error to the gin context
// so the observability middleware can include the reason in the request log.
func respondError(c *gin.Context, status int, message string, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"error": message})
}

// respondErrorWithDetails sends an error response with an additional details field.
func respondErrorWithDetails(c *gin.Context, status int, message string, details any, err error) { //nolint:unparam
	attachError(c, err)
	c.JSON(status, gin.H{"error": message, "details": details})
}

// respondServiceError maps service-layer errors to HTTP responses. Conflicts
// respond with 400 so clients treat them like any other rejected input.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		respondError(c, http.StatusNotFound, "Not found", err)
	case apperrors.Is(err, apperrors.ErrAccessDenied):
		respondError(c, http.StatusForbidden, "Access denied", err)
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		respondError(c, http.StatusUnauthorized, "Not authenticated", err)
	case apperrors.Is(err, apperrors.ErrConflict):
		respondError(c, http.StatusBadRequest, userFacingMessage(err, "Conflict with existing data"), err)
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, userFacingMessage(err, "Invalid input"), err)
	default:
		respondError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}

// userFacingMessage returns the error text for error kinds that are safe to
// show to clients, or the fallback when the error carries no text
func userFacingMessage(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
