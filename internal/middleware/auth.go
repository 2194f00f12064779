package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/idp-tracker/idp-api/config"
	"github.com/idp-tracker/idp-api/internal/models"
	"github.com/idp-tracker/idp-api/internal/services"
	apperrors "github.com/idp-tracker/idp-api/pkg/errors"
)

// CurrentUserContextKey is the key used to store the authenticated user in context
const CurrentUserContextKey = "current_user"

var (
	ErrUserNotInContext = errors.New("user not found in context")
	ErrInvalidUserType  = errors.New("invalid user type in context")
)

// SessionMiddleware authenticates the request against the sessions table.
// The token comes from the session cookie when present, otherwise from an
// Authorization: Bearer header. Validity is checked in storage on every
// request so revocation takes effect immediately.
func SessionMiddleware(authService services.AuthServiceInterface, sessionCfg config.SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractSessionToken(c, sessionCfg.CookieName)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			c.Abort()
			return
		}

		user, err := authService.ResolveSession(c.Request.Context(), token)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrUnauthorized) {
				// Clear the dead cookie so clients stop resending it
				clearSessionCookie(c, sessionCfg)
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired or invalid"})
			} else {
				_ = c.Error(fmt.Errorf("session resolution failed: %w", err)) //nolint:errcheck
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			c.Abort()
			return
		}

		c.Set(CurrentUserContextKey, user)
		c.Next()
	}
}

// ExtractSessionToken prefers the session cookie and falls back to a
// bearer header. Logout uses it too, so it lives here with the middleware.
func ExtractSessionToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

// GetCurrentUser extracts the authenticated user from context
func GetCurrentUser(c *gin.Context) (*models.User, error) {
	val, exists := c.Get(CurrentUserContextKey)
	if !exists {
		return nil, ErrUserNotInContext
	}

	user, ok := val.(*models.User)
	if !ok {
		return nil, ErrInvalidUserType
	}

	return user, nil
}

// SetSessionCookie sets the session cookie on login
func SetSessionCookie(c *gin.Context, token string, ttlSeconds int, sessionCfg config.SessionConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		sessionCfg.CookieName,
		token,
		ttlSeconds,
		"/",
		sessionCfg.CookieDomain,
		sessionCfg.CookieSecure,
		true, // HttpOnly
	)
}

// ClearSessionCookie clears the session cookie on logout
func ClearSessionCookie(c *gin.Context, sessionCfg config.SessionConfig) {
	clearSessionCookie(c, sessionCfg)
}

func clearSessionCookie(c *gin.Context, sessionCfg config.SessionConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		sessionCfg.CookieName,
		"",
		-1,
		"/",
		sessionCfg.CookieDomain,
		sessionCfg.CookieSecure,
		true, // HttpOnly
	)
}
