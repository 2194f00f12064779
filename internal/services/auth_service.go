package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/idp-tracker/idp-api/config"
	"github.com/idp-tracker/idp-api/internal/models"
	"github.com/idp-tracker/idp-api/internal/repository"
	"github.com/idp-tracker/idp-api/pkg/auth"
	apperrors "github.com/idp-tracker/idp-api/pkg/errors"
	"github.com/idp-tracker/idp-api/pkg/logger"
	"github.com/idp-tracker/idp-api/pkg/metrics"
)

var (
	// ErrMissingCredentials is returned when a login request carries
	// neither mentor credentials nor a mentee access code
	ErrMissingCredentials = apperrors.InvalidInputError("credentials", "either email+password or access_code is required")

	// ErrInvalidCredentials is returned for any failed login attempt.
	// The message is the same for unknown users and wrong passwords.
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", apperrors.ErrUnauthorized)

	// ErrUnauthenticated is returned when a session token is missing,
	// expired, or revoked
	ErrUnauthenticated = fmt.Errorf("not authenticated: %w", apperrors.ErrUnauthorized)
)

// AuthService handles login, registration, and session lifecycle
type AuthService struct {
	userRepo    repository.UserRepositoryInterface
	sessionRepo repository.SessionRepositoryInterface
	cfg         *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepositoryInterface,
	sessionRepo repository.SessionRepositoryInterface,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		cfg:         cfg,
	}
}

// Login authenticates a user and issues a session token. Mentors present
// email+password, mentees an access code. A request carrying both forms is
// resolved as a mentor login.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, string, error) {
	user, method, err := s.authenticate(ctx, req)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues(method, "failure").Inc()
		return nil, "", err
	}

	token, err := s.issueSession(ctx, user.ID)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues(method, "failure").Inc()
		return nil, "", err
	}

	metrics.LoginAttempts.WithLabelValues(method, "success").Inc()
	logger.Info("user logged in",
		zap.Int64("user_id", user.ID),
		zap.String("role", string(user.Role)),
		zap.String("method", method))

	return user, token, nil
}

func (s *AuthService) authenticate(ctx context.Context, req *models.LoginRequest) (*models.User, string, error) {
	switch {
	case req.Email != "" && req.Password != "":
		user, err := s.authenticateMentor(ctx, req.Email, req.Password)
		return user, "password", err
	case req.AccessCode != "":
		user, err := s.authenticateMentee(ctx, req.AccessCode)
		return user, "access_code", err
	default:
		return nil, "none", ErrMissingCredentials
	}
}

func (s *AuthService) authenticateMentor(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetMentorByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up mentor: %w", err)
	}
	if user.PasswordHash == nil || !auth.VerifyPassword(password, *user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) authenticateMentee(ctx context.Context, accessCode string) (*models.User, error) {
	user, err := s.userRepo.GetMenteeByAccessCode(ctx, strings.TrimSpace(accessCode))
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up mentee: %w", err)
	}
	return user, nil
}

// RegisterMentor creates a mentor account with a bcrypt-hashed password
// and returns the created user. Duplicate emails surface as a conflict.
func (s *AuthService) RegisterMentor(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		metrics.MentorRegistrations.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.userRepo.CreateMentor(ctx, req.FullName, email, hash, req.Position, req.Grade)
	if err != nil {
		metrics.MentorRegistrations.WithLabelValues("failure").Inc()
		return nil, err
	}

	metrics.MentorRegistrations.WithLabelValues("success").Inc()
	logger.Info("mentor registered", zap.Int64("user_id", user.ID))
	return user, nil
}

// issueSession mints an opaque token and persists the session row
func (s *AuthService) issueSession(ctx context.Context, userID int64) (string, error) {
	token, err := auth.GenerateSessionToken()
	if err != nil {
		return "", err
	}

	session := &models.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Duration(s.cfg.Session.TTLHours) * time.Hour),
		IsActive:  true,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", fmt.Errorf("failed to persist session: %w", err)
	}

	metrics.SessionsIssued.Inc()
	return token, nil
}

// ResolveSession maps a token to its user. Expired, revoked, and unknown
// tokens all resolve the same way so callers cannot distinguish them.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	session, err := s.sessionRepo.GetActiveByToken(ctx, token)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			// Session outlived its user; treat as unauthenticated
			logger.Warn("active session references missing user",
				zap.Int64("user_id", session.UserID))
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}

	return user, nil
}

// RevokeSession deactivates the session for the given token. Revoking an
// unknown token is not an error.
func (s *AuthService) RevokeSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessionRepo.Deactivate(ctx, token); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	metrics.SessionsRevoked.Inc()
	return nil
}

// SessionTTLSeconds exposes the configured session lifetime for cookie max-age
func (s *AuthService) SessionTTLSeconds() int {
	return s.cfg.SessionTTLSeconds()
}
