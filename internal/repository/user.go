// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"

	"connecto/internal/cache"
	"connecto/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	IsBanned(ctx context.Context, id uint) (bool, error)
	SetRole(ctx context.Context, id uint, role models.Role) error
	ListByRoles(ctx context.Context, roles ...models.Role) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetByID loads a user through the cache. A missing user is NOT_FOUND.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail returns (nil, nil) when no user has the address.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// profileColumns are the user-editable columns. Credentials, role and ban
// state are never written through Update.
var profileColumns = []string{"name", "gender", "birth_date", "location", "bio", "picture_url", "is_private"}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Model(user).Select(profileColumns).Updates(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

// IsBanned reads the flag from the primary, bypassing the profile cache.
func (r *userRepository) IsBanned(ctx context.Context, id uint) (bool, error) {
	var banned []bool
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Pluck("is_banned", &banned).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	if len(banned) == 0 {
		return false, models.NewNotFoundError("User", id)
	}
	return banned[0], nil
}

func (r *userRepository) SetRole(ctx context.Context, id uint, role models.Role) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) ListByRoles(ctx context.Context, roles ...models.Role) ([]models.User, error) {
	var users []models.User
	if err := readDB(r.db).WithContext(ctx).
		Where("role IN ?", roles).
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
