package service

import (
	"context"
	"fmt"

	"connecto/internal/models"
	"connecto/internal/repository"
	"connecto/internal/validation"
)

type UserService struct {
	userRepo repository.UserRepository
}

// EditProfileInput carries the full editable profile. Name and IsPrivate are
// required; the other fields overwrite what is stored, including with "".
type EditProfileInput struct {
	UserID     uint
	Name       string
	Gender     string
	Location   string
	Bio        string
	PictureURL string
	IsPrivate  *bool
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// EditProfile overwrites the caller's profile. Switching from private to
// public leaves pending follow requests in place.
func (s *UserService) EditProfile(ctx context.Context, in EditProfileInput) (*models.User, error) {
	if err := validation.ValidateProfile(in.Name, in.Location, in.Bio); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if in.IsPrivate == nil {
		return nil, models.NewValidationError("is_private is required")
	}
	gender, err := validation.NormalizeGender(in.Gender)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	user.Name = in.Name
	user.Gender = gender
	user.Location = in.Location
	user.Bio = in.Bio
	user.PictureURL = in.PictureURL
	user.IsPrivate = *in.IsPrivate

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// SetRole changes a user's authorization tier.
func (s *UserService) SetRole(ctx context.Context, targetID uint, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, models.NewValidationError(fmt.Sprintf("unknown role %q", role))
	}
	if err := s.userRepo.SetRole(ctx, targetID, role); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, targetID)
}

// ListAdmins returns every account above the USER tier.
func (s *UserService) ListAdmins(ctx context.Context) ([]models.User, error) {
	return s.userRepo.ListByRoles(ctx, models.RoleAdmin, models.RoleSuperAdmin)
}
