package repository

import (
	"context"
	"errors"

	"connecto/internal/cache"
	"connecto/internal/models"
	"connecto/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post, repost, bookmark and reaction data
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	ListByUser(ctx context.Context, userID uint, page, size int) (*models.Page[models.PostView], error)

	CreateRepost(ctx context.Context, repost *models.Repost) error
	GetRepost(ctx context.Context, id uint) (*models.Repost, error)
	DeleteRepost(ctx context.Context, id uint) error
	ListReposters(ctx context.Context, postID, viewerID uint, page, size int) (*models.Page[models.UserSummary], error)

	Save(ctx context.Context, userID, postID uint) error
	Unsave(ctx context.Context, userID, postID uint) error
	SetReaction(ctx context.Context, userID, postID uint, reaction models.ReactionType) (bool, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Model(post).Update("content", post.Content).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint, page, size int) (*models.Page[models.PostView], error) {
	db := readDB(r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&models.Post{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	var items []models.PostView
	if total > 0 {
		err := db.Table("posts p").
			Select("p.id, p.content, p.user_id, u.name AS user_name, p.created_at").
			Joins("JOIN users u ON u.id = p.user_id").
			Where("p.user_id = ?", userID).
			Order("p.created_at DESC, p.id DESC").
			Limit(size).
			Offset(pageOffset(page, size)).
			Scan(&items).Error
		if err != nil {
			return nil, models.NewInternalError(err)
		}
	}
	return models.NewPage(items, page, size, total), nil
}

func (r *postRepository) CreateRepost(ctx context.Context, repost *models.Repost) error {
	if err := r.db.WithContext(ctx).Create(repost).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetRepost(ctx context.Context, id uint) (*models.Repost, error) {
	var repost models.Repost
	if err := r.db.WithContext(ctx).First(&repost, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Repost", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &repost, nil
}

func (r *postRepository) DeleteRepost(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Repost{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// reposterFilter hides reposters on either side of a block with the viewer.
const reposterFilter = `NOT EXISTS (
    SELECT 1 FROM blocks b
    WHERE (b.blocker_id = ? AND b.blocked_id = rp.reposter_id)
       OR (b.blocker_id = rp.reposter_id AND b.blocked_id = ?)
  )`

func (r *postRepository) ListReposters(ctx context.Context, postID, viewerID uint, page, size int) (*models.Page[models.UserSummary], error) {
	defer observability.TrackQuery("list", "reposts")()
	db := readDB(r.db).WithContext(ctx)

	var total int64
	if err := db.Table("reposts rp").
		Where("rp.post_id = ?", postID).
		Where(reposterFilter, viewerID, viewerID).
		Count(&total).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	var items []models.UserSummary
	if total > 0 {
		err := db.Table("reposts rp").
			Select("u.id, u.name, u.picture_url, u.is_private, rp.created_at AS since").
			Joins("JOIN users u ON u.id = rp.reposter_id").
			Where("rp.post_id = ?", postID).
			Where(reposterFilter, viewerID, viewerID).
			Order("rp.created_at DESC, rp.id DESC").
			Limit(size).
			Offset(pageOffset(page, size)).
			Scan(&items).Error
		if err != nil {
			return nil, models.NewInternalError(err)
		}
	}
	return models.NewPage(items, page, size, total), nil
}

// Save is idempotent.
func (r *postRepository) Save(ctx context.Context, userID, postID uint) error {
	saved := models.SavedPost{UserID: userID, PostID: postID}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&saved).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Unsave is idempotent.
func (r *postRepository) Unsave(ctx context.Context, userID, postID uint) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.SavedPost{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// SetReaction stores the user's reaction, replacing an opposite one. It
// reports whether anything changed.
func (r *postRepository) SetReaction(ctx context.Context, userID, postID uint, reaction models.ReactionType) (bool, error) {
	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.PostReaction
		err := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error
		switch {
		case err == nil:
			if existing.Type == reaction {
				return nil
			}
			if err := tx.Model(&existing).Update("type", reaction).Error; err != nil {
				return models.NewInternalError(err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			row := models.PostReaction{UserID: userID, PostID: postID, Type: reaction}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"type", "updated_at"}),
			}).Create(&row).Error; err != nil {
				return models.NewInternalError(err)
			}
		default:
			return models.NewInternalError(err)
		}
		changed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}
