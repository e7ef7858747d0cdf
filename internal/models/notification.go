package models

import (
	"time"
)

// NotificationType enumerates the events a user can be notified about.
type NotificationType string

const (
	NotificationLikedPost       NotificationType = "LIKED_POST"
	NotificationLikedComment    NotificationType = "LIKED_COMMENT"
	NotificationDislikedPost    NotificationType = "DISLIKED_POST"
	NotificationDislikedComment NotificationType = "DISLIKED_COMMENT"
	NotificationSharedPost      NotificationType = "SHARED_POST"
	NotificationComment         NotificationType = "COMMENT"
	NotificationNewFollower     NotificationType = "NEW_FOLLOWER"
	NotificationFollowRequest   NotificationType = "FOLLOW_REQUEST"
	NotificationFollowAccepted  NotificationType = "FOLLOW_ACCEPTED"
)

// Notification is a persisted notice delivered to ReceiverID.
type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	ReceiverID  uint             `gorm:"not null;index:idx_notifications_receiver" json:"receiver_id"`
	SenderID    uint             `gorm:"not null" json:"sender_id"`
	Type        NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	ReferenceID *uint            `json:"reference_id,omitempty"`
	IsRead      bool             `gorm:"not null;default:false;index:idx_notifications_receiver" json:"is_read"`
	CreatedAt   time.Time        `gorm:"index" json:"created_at"`

	Sender User `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}

// NotificationView is the API representation of a notification.
type NotificationView struct {
	ID          uint             `json:"id"`
	SenderID    uint             `json:"sender_id"`
	SenderName  string           `json:"sender_name"`
	Type        NotificationType `json:"type"`
	ReferenceID *uint            `json:"reference_id,omitempty"`
	IsRead      bool             `json:"is_read"`
	CreatedAt   time.Time        `json:"created_at"`
}
