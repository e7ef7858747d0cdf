package service

import (
	"context"

	"connecto/internal/models"
	"connecto/internal/repository"
)

// NotificationService serves a user's notification inbox.
type NotificationService struct {
	repo repository.NotificationRepository
}

// NewNotificationService returns a new NotificationService.
func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// List returns the receiver's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, receiverID uint, page, size int) (*models.Page[models.NotificationView], error) {
	return s.repo.ListForReceiver(ctx, receiverID, page, size)
}

func (s *NotificationService) CountUnread(ctx context.Context, receiverID uint) (int64, error) {
	return s.repo.CountUnread(ctx, receiverID)
}

// MarkAllRead flags every unread notification as read and reports how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, receiverID uint) (int64, error) {
	return s.repo.MarkAllRead(ctx, receiverID)
}
