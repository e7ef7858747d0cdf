package repository

import (
	"context"

	"connecto/internal/models"
	"connecto/internal/observability"

	"gorm.io/gorm"
)

// FollowRepository stores directed follower -> followed edges.
type FollowRepository interface {
	Create(ctx context.Context, followerID, followedID uint) error
	Exists(ctx context.Context, followerID, followedID uint) (bool, error)
	Delete(ctx context.Context, followerID, followedID uint) error
	ListFollowing(ctx context.Context, userID uint, page, size int) (*models.Page[models.UserSummary], error)
	ListFollowers(ctx context.Context, userID uint, page, size int) (*models.Page[models.UserSummary], error)
	SuggestUsers(ctx context.Context, actorID uint, page, size int) (*models.Page[models.UserSummary], error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(ctx context.Context, followerID, followedID uint) error {
	follow := models.Follow{FollowerID: followerID, FollowedID: followedID}
	if err := r.db.WithContext(ctx).Create(&follow).Error; err != nil {
		return translateWriteError(err, "already following this user")
	}
	return nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followedID uint) (bool, error) {
	return edgeExists(ctx, r.db, &models.Follow{}, "follower_id = ? AND followed_id = ?", followerID, followedID)
}

// Delete is idempotent.
func (r *followRepository) Delete(ctx context.Context, followerID, followedID uint) error {
	if err := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Follow{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *followRepository) ListFollowing(ctx context.Context, userID uint, page, size int) (*models.Page[models.UserSummary], error) {
	return listEdgeUsers(ctx, readDB(r.db), "follows", "followed_id", "follower_id", userID, page, size)
}

func (r *followRepository) ListFollowers(ctx context.Context, userID uint, page, size int) (*models.Page[models.UserSummary], error) {
	return listEdgeUsers(ctx, readDB(r.db), "follows", "follower_id", "followed_id", userID, page, size)
}

// suggestionFilter selects users followed by someone the actor follows,
// excluding the actor, users the actor already follows or has requested,
// and users on either side of a block with the actor.
const suggestionFilter = `
FROM users u
WHERE u.id <> @actor
  AND EXISTS (
    SELECT 1 FROM follows f1
    WHERE f1.followed_id = u.id
      AND f1.follower_id IN (SELECT f0.followed_id FROM follows f0 WHERE f0.follower_id = @actor)
  )
  AND NOT EXISTS (SELECT 1 FROM follows f2 WHERE f2.follower_id = @actor AND f2.followed_id = u.id)
  AND NOT EXISTS (SELECT 1 FROM follow_requests fr WHERE fr.follower_id = @actor AND fr.followed_id = u.id)
  AND NOT EXISTS (
    SELECT 1 FROM blocks b
    WHERE (b.blocker_id = @actor AND b.blocked_id = u.id)
       OR (b.blocker_id = u.id AND b.blocked_id = @actor)
  )`

func (r *followRepository) SuggestUsers(ctx context.Context, actorID uint, page, size int) (*models.Page[models.UserSummary], error) {
	defer observability.TrackQuery("suggest", "follows")()
	db := readDB(r.db).WithContext(ctx)
	args := map[string]interface{}{
		"actor":  actorID,
		"limit":  size,
		"offset": pageOffset(page, size),
	}

	var total int64
	if err := db.Raw("SELECT COUNT(*) "+suggestionFilter, args).Scan(&total).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	var items []models.UserSummary
	if total > 0 {
		if err := db.Raw("SELECT u.id, u.name, u.picture_url, u.is_private "+suggestionFilter+
			"\nORDER BY u.id ASC LIMIT @limit OFFSET @offset", args).
			Scan(&items).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
	}
	return models.NewPage(items, page, size, total), nil
}

func edgeExists(ctx context.Context, db *gorm.DB, model interface{}, where string, args ...interface{}) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(model).Where(where, args...).Limit(1).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// listEdgeUsers pages the users on the far side (joinColumn) of edges whose
// anchorColumn equals userID, newest edge first.
func listEdgeUsers(ctx context.Context, db *gorm.DB, table, joinColumn, anchorColumn string, userID uint, page, size int) (*models.Page[models.UserSummary], error) {
	defer observability.TrackQuery("list", table)()
	db = db.WithContext(ctx)

	var total int64
	if err := db.Table(table).Where(anchorColumn+" = ?", userID).Count(&total).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	var items []models.UserSummary
	if total > 0 {
		err := db.Table(table+" e").
			Select("u.id, u.name, u.picture_url, u.is_private, e.created_at AS since").
			Joins("JOIN users u ON u.id = e."+joinColumn).
			Where("e."+anchorColumn+" = ?", userID).
			Order("e.created_at DESC, e.id DESC").
			Limit(size).
			Offset(pageOffset(page, size)).
			Scan(&items).Error
		if err != nil {
			return nil, models.NewInternalError(err)
		}
	}
	return models.NewPage(items, page, size, total), nil
}
