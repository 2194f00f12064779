package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/idp-tracker/idp-api/config"
	"github.com/idp-tracker/idp-api/internal/middleware"
	"github.com/idp-tracker/idp-api/internal/models"
	"github.com/idp-tracker/idp-api/internal/services"
)

// AuthHandler handles login, registration, and logout
type AuthHandler struct {
	service    services.AuthServiceInterface
	sessionCfg config.SessionConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service services.AuthServiceInterface, sessionCfg config.SessionConfig) *AuthHandler {
	return &AuthHandler{
		service:    service,
		sessionCfg: sessionCfg,
	}
}

// Login handles POST /api/v1/auth/login
// Accepts mentor credentials (email+password) or a mentee access code,
// sets the session cookie, and returns the token for header-based clients
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	middleware.SetSessionCookie(c, token, h.service.SessionTTLSeconds(), h.sessionCfg)

	c.JSON(http.StatusOK, models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	})
}

// Register handles POST /api/v1/auth/register
// Creates a mentor account. Mentees never register; their accounts are
// created when a mentor starts a plan with them.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	user, err := h.service.RegisterMentor(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Logout handles POST /api/v1/auth/logout
// Revokes the session in storage and clears the cookie. Safe to call with
// an already-dead token.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.ExtractSessionToken(c, h.sessionCfg.CookieName)
	if token != "" {
		if err := h.service.RevokeSession(c.Request.Context(), token); err != nil {
			attachError(c, err)
		}
	}

	middleware.ClearSessionCookie(c, h.sessionCfg)

	c.JSON(http.StatusOK, gin.H{"success": true})
}
