package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/idp-tracker/idp-api/internal/models"
	"github.com/idp-tracker/idp-api/internal/repository"
	apperrors "github.com/idp-tracker/idp-api/pkg/errors"
	"github.com/idp-tracker/idp-api/pkg/logger"
)

// ErrEmailTaken is returned when a profile update asks for an email that
// another account already uses
var ErrEmailTaken = apperrors.ConflictError("email already in use")

// UserService handles profile operations
type UserService struct {
	userRepo repository.UserRepositoryInterface
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepositoryInterface) *UserService {
	return &UserService{userRepo: userRepo}
}

// UpdateProfile patches the caller's own profile. Email changes are
// checked for uniqueness against other accounts first.
func (s *UserService) UpdateProfile(ctx context.Context, actor *models.User, req *models.UpdateProfileRequest) (*models.User, error) {
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &email

		taken, err := s.userRepo.EmailTakenByOther(ctx, email, actor.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailTaken
		}
	}

	user, err := s.userRepo.UpdateProfile(ctx, actor.ID, req)
	if err != nil {
		return nil, err
	}

	logger.Info("profile updated", zap.Int64("user_id", user.ID))
	return user, nil
}
