package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/idp-tracker/idp-api/pkg/errors"
	"github.com/idp-tracker/idp-api/internal/models"
)

const userColumns = "id, full_name, email, password_hash, role, access_code, position, grade, created_at"

// UserRepository handles user data access
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Role,
		&u.AccessCode, &u.Position, &u.Grade, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundError("user")
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

// GetByID loads a user by primary key
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns)
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail loads a user by email regardless of role
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE email = $1", userColumns)
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

// GetMentorByEmail loads a mentor account by email. Mentee accounts with
// the same email are not considered valid login targets.
func (r *UserRepository) GetMentorByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE email = $1 AND role = 'mentor'", userColumns)
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

// GetMenteeByAccessCode loads a mentee account by access code
func (r *UserRepository) GetMenteeByAccessCode(ctx context.Context, accessCode string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE access_code = $1 AND role = 'mentee'", userColumns)
	return scanUser(r.pool.QueryRow(ctx, query, accessCode))
}

// CreateMentor inserts a new mentor account
func (r *UserRepository) CreateMentor(ctx context.Context, fullName, email, passwordHash, position, grade string) (*models.User, error) {
	query := fmt.Sprintf(`
		INSERT INTO users (full_name, email, password_hash, role, position, grade)
		VALUES ($1, $2, $3, 'mentor', NULLIF($4, ''), NULLIF($5, ''))
		RETURNING %s`, userColumns)

	user, err := scanUser(r.pool.QueryRow(ctx, query, fullName, email, passwordHash, position, grade))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.ConflictError("email already registered")
		}
		return nil, fmt.Errorf("failed to create mentor: %w", err)
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields of req to the user's row and
// returns the updated user.
func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, req *models.UpdateProfileRequest) (*models.User, error) {
	sets := []string{}
	args := []any{id}

	addSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.FullName != nil {
		addSet("full_name", *req.FullName)
	}
	if req.Email != nil {
		addSet("email", *req.Email)
	}
	if req.Position != nil {
		addSet("position", *req.Position)
	}
	if req.Grade != nil {
		addSet("grade", *req.Grade)
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $1 RETURNING %s",
		strings.Join(sets, ", "), userColumns)

	user, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.ConflictError("email already in use")
		}
		return nil, err
	}
	return user, nil
}

// EmailTakenByOther reports whether another user already owns the email
func (r *UserRepository) EmailTakenByOther(ctx context.Context, email string, excludeID int64) (bool, error) {
	var taken bool
	query := "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND id <> $2)"
	if err := r.pool.QueryRow(ctx, query, email, excludeID).Scan(&taken); err != nil {
		return false, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	return taken, nil
}
