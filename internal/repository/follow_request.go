package repository

import (
	"context"

	"connecto/internal/models"

	"gorm.io/gorm"
)

// ResolveOutcome is the result of resolving a pending follow request.
type ResolveOutcome int

const (
	// ResolveRejected means the request was deleted without creating a follow.
	ResolveRejected ResolveOutcome = iota
	// ResolveAccepted means the request was deleted and a follow was created.
	ResolveAccepted
	// ResolveAlreadyFollowing means the request was deleted and the follow already existed.
	ResolveAlreadyFollowing
)

// FollowRequestRepository stores pending requests to follow private users.
type FollowRequestRepository interface {
	Create(ctx context.Context, followerID, followedID uint) error
	Exists(ctx context.Context, followerID, followedID uint) (bool, error)
	Delete(ctx context.Context, followerID, followedID uint) (int64, error)
	ListSent(ctx context.Context, followerID uint, page, size int) (*models.Page[models.UserSummary], error)
	ListReceived(ctx context.Context, followedID uint, page, size int) (*models.Page[models.UserSummary], error)
	Resolve(ctx context.Context, requesterID, targetID uint, accept bool) (ResolveOutcome, error)
}

type followRequestRepository struct {
	db *gorm.DB
}

// NewFollowRequestRepository creates a new follow request repository
func NewFollowRequestRepository(db *gorm.DB) FollowRequestRepository {
	return &followRequestRepository{db: db}
}

func (r *followRequestRepository) Create(ctx context.Context, followerID, followedID uint) error {
	req := models.FollowRequest{FollowerID: followerID, FollowedID: followedID}
	if err := r.db.WithContext(ctx).Create(&req).Error; err != nil {
		return translateWriteError(err, "already sent a follow request")
	}
	return nil
}

func (r *followRequestRepository) Exists(ctx context.Context, followerID, followedID uint) (bool, error) {
	return edgeExists(ctx, r.db, &models.FollowRequest{}, "follower_id = ? AND followed_id = ?", followerID, followedID)
}

// Delete is idempotent and reports how many rows it removed.
func (r *followRequestRepository) Delete(ctx context.Context, followerID, followedID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.FollowRequest{})
	if result.Error != nil {
		return 0, models.NewInternalError(result.Error)
	}
	return result.RowsAffected, nil
}

func (r *followRequestRepository) ListSent(ctx context.Context, followerID uint, page, size int) (*models.Page[models.UserSummary], error) {
	return listEdgeUsers(ctx, readDB(r.db), "follow_requests", "followed_id", "follower_id", followerID, page, size)
}

func (r *followRequestRepository) ListReceived(ctx context.Context, followedID uint, page, size int) (*models.Page[models.UserSummary], error) {
	return listEdgeUsers(ctx, readDB(r.db), "follow_requests", "follower_id", "followed_id", followedID, page, size)
}

// Resolve deletes FollowRequest(requester -> target) and, when accepting,
// creates Follow(requester -> target) unless it already exists. Both happen in
// one transaction; a request that vanished concurrently is NOT_FOUND.
func (r *followRequestRepository) Resolve(ctx context.Context, requesterID, targetID uint, accept bool) (ResolveOutcome, error) {
	outcome := ResolveRejected

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("follower_id = ? AND followed_id = ?", requesterID, targetID).
			Delete(&models.FollowRequest{})
		if result.Error != nil {
			return models.NewInternalError(result.Error)
		}
		if result.RowsAffected == 0 {
			return models.NewNotFoundMessage("follow request not found")
		}
		if !accept {
			return nil
		}

		following, err := edgeExists(ctx, tx, &models.Follow{}, "follower_id = ? AND followed_id = ?", requesterID, targetID)
		if err != nil {
			return err
		}
		if following {
			outcome = ResolveAlreadyFollowing
			return nil
		}

		// savepoint, so a concurrent duplicate does not abort the outer transaction
		err = tx.Transaction(func(sp *gorm.DB) error {
			return sp.Create(&models.Follow{FollowerID: requesterID, FollowedID: targetID}).Error
		})
		if err != nil {
			if isUniqueConstraintError(err) {
				outcome = ResolveAlreadyFollowing
				return nil
			}
			return models.NewInternalError(err)
		}
		outcome = ResolveAccepted
		return nil
	})
	if err != nil {
		return ResolveRejected, err
	}
	return outcome, nil
}
