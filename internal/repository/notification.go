package repository

import (
	"context"

	"connecto/internal/cache"
	"connecto/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository persists notifications and answers inbox queries.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListForReceiver(ctx context.Context, receiverID uint, page, size int) (*models.Page[models.NotificationView], error)
	CountUnread(ctx context.Context, receiverID uint) (int64, error)
	MarkAllRead(ctx context.Context, receiverID uint) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUnreadCount(ctx, notification.ReceiverID)
	return nil
}

func (r *notificationRepository) ListForReceiver(ctx context.Context, receiverID uint, page, size int) (*models.Page[models.NotificationView], error) {
	db := readDB(r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&models.Notification{}).Where("receiver_id = ?", receiverID).Count(&total).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	var items []models.NotificationView
	if total > 0 {
		err := db.Table("notifications n").
			Select("n.id, n.sender_id, u.name AS sender_name, n.type, n.reference_id, n.is_read, n.created_at").
			Joins("JOIN users u ON u.id = n.sender_id").
			Where("n.receiver_id = ?", receiverID).
			Order("n.created_at DESC, n.id DESC").
			Limit(size).
			Offset(pageOffset(page, size)).
			Scan(&items).Error
		if err != nil {
			return nil, models.NewInternalError(err)
		}
	}
	return models.NewPage(items, page, size, total), nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, receiverID uint) (int64, error) {
	var count int64
	err := cache.Aside(ctx, cache.UnreadCountKey(receiverID), &count, cache.UnreadCountTTL, func() error {
		if err := r.db.WithContext(ctx).Model(&models.Notification{}).
			Where("receiver_id = ? AND is_read = ?", receiverID, false).
			Count(&count).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, receiverID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("receiver_id = ? AND is_read = ?", receiverID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, models.NewInternalError(result.Error)
	}
	cache.InvalidateUnreadCount(ctx, receiverID)
	return result.RowsAffected, nil
}
