package repository

import (
	"context"

	"connecto/internal/models"

	"gorm.io/gorm"
)

// BlockRepository stores directed blocker -> blocked edges.
type BlockRepository interface {
	Exists(ctx context.Context, blockerID, blockedID uint) (bool, error)
	BlockAndSever(ctx context.Context, blockerID, blockedID uint) error
	Delete(ctx context.Context, blockerID, blockedID uint) error
	ListBlocked(ctx context.Context, blockerID uint, page, size int) (*models.Page[models.UserSummary], error)
}

type blockRepository struct {
	db *gorm.DB
}

// NewBlockRepository creates a new block repository
func NewBlockRepository(db *gorm.DB) BlockRepository {
	return &blockRepository{db: db}
}

func (r *blockRepository) Exists(ctx context.Context, blockerID, blockedID uint) (bool, error) {
	return edgeExists(ctx, r.db, &models.Block{}, "blocker_id = ? AND blocked_id = ?", blockerID, blockedID)
}

// BlockAndSever inserts Block(blocker -> blocked) and removes every follow and
// follow request between the two users, in either direction, atomically.
func (r *blockRepository) BlockAndSever(ctx context.Context, blockerID, blockedID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.Block{BlockerID: blockerID, BlockedID: blockedID}).Error; err != nil {
			return translateWriteError(err, "already blocked")
		}

		pair := "(follower_id = ? AND followed_id = ?) OR (follower_id = ? AND followed_id = ?)"
		if err := tx.Where(pair, blockerID, blockedID, blockedID, blockerID).
			Delete(&models.Follow{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Where(pair, blockerID, blockedID, blockedID, blockerID).
			Delete(&models.FollowRequest{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
}

// Delete is idempotent.
func (r *blockRepository) Delete(ctx context.Context, blockerID, blockedID uint) error {
	if err := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.Block{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *blockRepository) ListBlocked(ctx context.Context, blockerID uint, page, size int) (*models.Page[models.UserSummary], error) {
	return listEdgeUsers(ctx, readDB(r.db), "blocks", "blocked_id", "blocker_id", blockerID, page, size)
}
