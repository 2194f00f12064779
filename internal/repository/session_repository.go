package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/idp-tracker/idp-api/internal/models"
	apperrors "github.com/idp-tracker/idp-api/pkg/errors"
)

// SessionRepository handles session data access. Session validity is a
// storage-level question: lookups only return rows that are active and
// unexpired, so revocation and expiry take effect on the next request.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create inserts a new session row
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (token, user_id, expires_at, is_active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING id, created_at
	`
	err := r.pool.QueryRow(ctx, query, session.Token, session.UserID, session.ExpiresAt).
		Scan(&session.ID, &session.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	session.IsActive = true
	return nil
}

// GetActiveByToken returns the session for token if it is active and
// unexpired. Expiry is evaluated against the database clock.
func (r *SessionRepository) GetActiveByToken(ctx context.Context, token string) (*models.Session, error) {
	query := `
		SELECT id, token, user_id, expires_at, is_active, created_at
		FROM sessions
		WHERE token = $1 AND is_active = TRUE AND expires_at > now()
	`
	start := time.Now()
	var s models.Session
	err := r.pool.QueryRow(ctx, query, token).
		Scan(&s.ID, &s.Token, &s.UserID, &s.ExpiresAt, &s.IsActive, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// A dead token is a normal outcome, not a database error
			recordDBOperation("session_lookup", start, nil)
			return nil, apperrors.NotFoundError("session")
		}
		recordDBOperation("session_lookup", start, err)
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	recordDBOperation("session_lookup", start, nil)
	return &s, nil
}

// Deactivate soft-revokes a session. Unknown tokens are a no-op.
func (r *SessionRepository) Deactivate(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, "UPDATE sessions SET is_active = FALSE WHERE token = $1", token)
	if err != nil {
		return fmt.Errorf("failed to deactivate session: %w", err)
	}
	return nil
}
