package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/idp-tracker/idp-api/internal/models"
	"github.com/idp-tracker/idp-api/internal/repository"
	"github.com/idp-tracker/idp-api/pkg/auth"
	apperrors "github.com/idp-tracker/idp-api/pkg/errors"
	"github.com/idp-tracker/idp-api/pkg/logger"
	"github.com/idp-tracker/idp-api/pkg/metrics"
)

// Access codes are short, so a freshly minted one can already be taken.
// Creation retries with a new code this many times before giving up.
const accessCodeAttempts = 3

var (
	// ErrMentorOnly is returned when a mentee calls a mentor-only operation
	ErrMentorOnly = apperrors.AccessDeniedError("mentor role required")

	// ErrNotPlanMember is returned when the caller is neither the mentor
	// nor the mentee of the plan
	ErrNotPlanMember = apperrors.AccessDeniedError("not a member of this plan")
)

// IDPService handles development plan operations
type IDPService struct {
	idpRepo repository.IDPRepositoryInterface
}

// NewIDPService creates a new IDP service
func NewIDPService(idpRepo repository.IDPRepositoryInterface) *IDPService {
	return &IDPService{idpRepo: idpRepo}
}

// Create makes an active plan pairing the calling mentor with the mentee
// identified by email. The mentee account is created on first use and
// receives an access code; an existing mentee keeps their code and gets
// their name refreshed.
func (s *IDPService) Create(ctx context.Context, actor *models.User, req *models.CreateIDPRequest) (*models.IDP, error) {
	if actor.Role != models.RoleMentor {
		return nil, ErrMentorOnly
	}

	mentee := repository.MenteeUpsert{
		FullName: strings.TrimSpace(req.MenteeFullName),
		Email:    strings.ToLower(strings.TrimSpace(req.MenteeEmail)),
		Position: strings.TrimSpace(req.MenteePosition),
		Grade:    strings.TrimSpace(req.MenteeGrade),
	}

	var idp *models.IDP
	for attempt := 0; attempt < accessCodeAttempts; attempt++ {
		code, err := auth.GenerateAccessCode()
		if err != nil {
			metrics.IDPCreations.WithLabelValues("failure").Inc()
			return nil, err
		}
		mentee.AccessCode = code

		idp, err = s.idpRepo.CreateWithMentee(ctx, actor.ID, mentee)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrAccessCodeCollision) {
			logger.Warn("access code collision, retrying",
				zap.Int64("mentor_id", actor.ID),
				zap.Int("attempt", attempt+1))
			continue
		}
		metrics.IDPCreations.WithLabelValues("failure").Inc()
		return nil, err
	}
	if idp == nil {
		metrics.IDPCreations.WithLabelValues("failure").Inc()
		return nil, apperrors.InternalError("could not allocate a unique access code")
	}

	metrics.IDPCreations.WithLabelValues("success").Inc()
	logger.Info("plan created",
		zap.Int64("idp_id", idp.ID),
		zap.Int64("mentor_id", idp.MentorID),
		zap.Int64("mentee_id", idp.MenteeID))

	return idp, nil
}

// List returns the caller's plans, newest first. Mentees and mentors see
// the plans they participate in; only active plans unless includeAll is set.
func (s *IDPService) List(ctx context.Context, actor *models.User, includeAll bool) ([]*models.IDP, error) {
	return s.idpRepo.ListByUser(ctx, actor.ID, actor.Role, includeAll)
}

// GetByID returns one plan with participants and tasks attached. Existence
// is checked before membership, so outsiders probing an id learn whether it
// exists but nothing more.
func (s *IDPService) GetByID(ctx context.Context, actor *models.User, id int64) (*models.IDP, error) {
	idp, err := s.idpRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := planMemberCheck(actor, idp); err != nil {
		return nil, err
	}
	return idp, nil
}

// ListMentees returns the mentees the calling mentor has an active plan with
func (s *IDPService) ListMentees(ctx context.Context, actor *models.User) ([]*models.User, error) {
	if actor.Role != models.RoleMentor {
		return nil, ErrMentorOnly
	}
	return s.idpRepo.ListMentees(ctx, actor.ID)
}

// Close marks a plan completed. Only the plan's mentor may close it.
func (s *IDPService) Close(ctx context.Context, actor *models.User, id int64) error {
	idp, err := s.idpRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if idp.MentorID != actor.ID {
		return ErrNotPlanMember
	}

	if err := s.idpRepo.UpdateStatus(ctx, id, models.IDPStatusCompleted); err != nil {
		return fmt.Errorf("failed to close plan: %w", err)
	}
	logger.Info("plan closed", zap.Int64("idp_id", id), zap.Int64("mentor_id", actor.ID))
	return nil
}

// Delete removes a plan and, via cascade, its tasks and comments. Only the
// plan's mentor may delete it.
func (s *IDPService) Delete(ctx context.Context, actor *models.User, id int64) error {
	idp, err := s.idpRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if idp.MentorID != actor.ID {
		return ErrNotPlanMember
	}

	if err := s.idpRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("plan deleted", zap.Int64("idp_id", id), zap.Int64("mentor_id", actor.ID))
	return nil
}

// planMemberCheck rejects callers that are neither side of the plan
func planMemberCheck(actor *models.User, idp *models.IDP) error {
	if actor.ID != idp.MentorID && actor.ID != idp.MenteeID {
		return ErrNotPlanMember
	}
	return nil
}
