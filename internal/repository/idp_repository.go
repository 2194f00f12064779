package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/idp-tracker/idp-api/internal/models"
	apperrors "github.com/idp-tracker/idp-api/pkg/errors"
)

var (
	// ErrDuplicateActivePlan is returned when the mentor/mentee pair
	// already has an active development plan.
	ErrDuplicateActivePlan = apperrors.ConflictError("active plan already exists for this pair")

	// ErrAccessCodeCollision is returned when a freshly generated mentee
	// access code collides with an existing one. Callers may regenerate
	// and retry.
	ErrAccessCodeCollision = errors.New("access code collision")
)

// IDPRepository handles development plan data access
type IDPRepository struct {
	pool *pgxpool.Pool
}

// NewIDPRepository creates a new development plan repository
func NewIDPRepository(pool *pgxpool.Pool) *IDPRepository {
	return &IDPRepository{pool: pool}
}

// CreateWithMentee creates a development plan inside a single transaction:
// the mentee is looked up by email and refreshed, or created with the
// provided access code; then the plan row is inserted. The partial unique
// index on (mentor_id, mentee_id) WHERE status='active' backstops the
// duplicate check under concurrent writers.
func (r *IDPRepository) CreateWithMentee(ctx context.Context, mentorID int64, mentee MenteeUpsert) (*models.IDP, error) {
	start := time.Now()
	idp, err := r.createWithMentee(ctx, mentorID, mentee)
	recordDBOperation("idp_create", start, err)
	return idp, err
}

func (r *IDPRepository) createWithMentee(ctx context.Context, mentorID int64, mentee MenteeUpsert) (*models.IDP, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	menteeRow, err := r.upsertMentee(ctx, tx, mentee)
	if err != nil {
		return nil, err
	}

	// Application-level duplicate check first for a clean error message;
	// the unique index catches the concurrent case below.
	var exists bool
	err = tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM idps WHERE mentor_id = $1 AND mentee_id = $2 AND status = 'active')",
		mentorID, menteeRow.ID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check for active plan: %w", err)
	}
	if exists {
		return nil, ErrDuplicateActivePlan
	}

	var idp models.IDP
	err = tx.QueryRow(ctx, `
		INSERT INTO idps (mentor_id, mentee_id, status)
		VALUES ($1, $2, 'active')
		RETURNING id, mentor_id, mentee_id, status, created_at`,
		mentorID, menteeRow.ID).
		Scan(&idp.ID, &idp.MentorID, &idp.MenteeID, &idp.Status, &idp.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateActivePlan
		}
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit plan creation: %w", err)
	}

	idp.Mentee = menteeRow
	idp.Tasks = []models.Task{}
	return &idp, nil
}

// upsertMentee finds the mentee by email and refreshes the profile fields,
// minting an access code if the account has none; or creates a fresh
// mentee account.
func (r *IDPRepository) upsertMentee(ctx context.Context, tx pgx.Tx, mentee MenteeUpsert) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE email = $1", userColumns)
	existing, err := scanUser(tx.QueryRow(ctx, query, mentee.Email))
	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		update := fmt.Sprintf(`
			UPDATE users SET
				full_name = $2,
				position = COALESCE(NULLIF($3, ''), position),
				grade = COALESCE(NULLIF($4, ''), grade),
				access_code = COALESCE(access_code, $5)
			WHERE id = $1
			RETURNING %s`, userColumns)

		updated, uerr := scanUser(tx.QueryRow(ctx, update,
			existing.ID, mentee.FullName, mentee.Position, mentee.Grade, mentee.AccessCode))
		if uerr != nil {
			return nil, mapAccessCodeError(uerr)
		}
		return updated, nil
	}

	insert := fmt.Sprintf(`
		INSERT INTO users (full_name, email, role, access_code, position, grade)
		VALUES ($1, $2, 'mentee', $3, NULLIF($4, ''), NULLIF($5, ''))
		RETURNING %s`, userColumns)

	created, err := scanUser(tx.QueryRow(ctx, insert,
		mentee.FullName, mentee.Email, mentee.AccessCode, mentee.Position, mentee.Grade))
	if err != nil {
		return nil, mapAccessCodeError(err)
	}
	return created, nil
}

func mapAccessCodeError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if pgErr.ConstraintName == "users_access_code_key" {
			return ErrAccessCodeCollision
		}
		return apperrors.ConflictError("email already registered")
	}
	return err
}

// GetByID loads a plan with its mentor, mentee and tasks
func (r *IDPRepository) GetByID(ctx context.Context, id int64) (*models.IDP, error) {
	var idp models.IDP
	err := r.pool.QueryRow(ctx,
		"SELECT id, mentor_id, mentee_id, status, created_at FROM idps WHERE id = $1", id).
		Scan(&idp.ID, &idp.MentorID, &idp.MenteeID, &idp.Status, &idp.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundError("plan")
		}
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}

	if err := r.attachParticipants(ctx, &idp); err != nil {
		return nil, err
	}
	return &idp, nil
}

// ListByUser returns plans where the user is mentor or mentee. Only
// active plans are returned unless includeAll is set.
func (r *IDPRepository) ListByUser(ctx context.Context, userID int64, role models.UserRole, includeAll bool) ([]*models.IDP, error) {
	column := "mentee_id"
	if role == models.RoleMentor {
		column = "mentor_id"
	}

	query := fmt.Sprintf("SELECT id, mentor_id, mentee_id, status, created_at FROM idps WHERE %s = $1", column)
	if !includeAll {
		query += " AND status = 'active'"
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	idps := []*models.IDP{}
	for rows.Next() {
		var idp models.IDP
		if err := rows.Scan(&idp.ID, &idp.MentorID, &idp.MenteeID, &idp.Status, &idp.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		idps = append(idps, &idp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plans: %w", err)
	}

	for _, idp := range idps {
		if err := r.attachParticipants(ctx, idp); err != nil {
			return nil, err
		}
	}
	return idps, nil
}

func (r *IDPRepository) attachParticipants(ctx context.Context, idp *models.IDP) error {
	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns)

	mentor, err := scanUser(r.pool.QueryRow(ctx, query, idp.MentorID))
	if err != nil {
		return fmt.Errorf("failed to load plan mentor: %w", err)
	}
	mentee, err := scanUser(r.pool.QueryRow(ctx, query, idp.MenteeID))
	if err != nil {
		return fmt.Errorf("failed to load plan mentee: %w", err)
	}
	idp.Mentor = mentor
	idp.Mentee = mentee

	tasks, err := listTasks(ctx, r.pool, idp.ID)
	if err != nil {
		return err
	}
	idp.Tasks = tasks
	return nil
}

// ListMentees returns the mentees of the mentor's active plans
func (r *IDPRepository) ListMentees(ctx context.Context, mentorID int64) ([]*models.User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users u
		JOIN idps i ON i.mentee_id = u.id
		WHERE i.mentor_id = $1 AND i.status = 'active'
		ORDER BY u.full_name`, prefixedUserColumns("u"))

	rows, err := r.pool.Query(ctx, query, mentorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list mentees: %w", err)
	}
	defer rows.Close()

	mentees := []*models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Role,
			&u.AccessCode, &u.Position, &u.Grade, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan mentee: %w", err)
		}
		mentees = append(mentees, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate mentees: %w", err)
	}
	return mentees, nil
}

// UpdateStatus moves a plan to a new lifecycle status
func (r *IDPRepository) UpdateStatus(ctx context.Context, id int64, status models.IDPStatus) error {
	tag, err := r.pool.Exec(ctx, "UPDATE idps SET status = $2 WHERE id = $1", id, status)
	if err != nil {
		return fmt.Errorf("failed to update plan status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFoundError("plan")
	}
	return nil
}

// Delete removes a plan. Tasks and their comments go with it via FK cascade.
func (r *IDPRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM idps WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFoundError("plan")
	}
	return nil
}

func prefixedUserColumns(alias string) string {
	return fmt.Sprintf("%s.id, %s.full_name, %s.email, %s.password_hash, %s.role, %s.access_code, %s.position, %s.grade, %s.created_at",
		alias, alias, alias, alias, alias, alias, alias, alias, alias)
}
