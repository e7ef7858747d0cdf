package models

import (
	"time"
)

// Post is a piece of content authored by UserID.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Post) TableName() string {
	return "posts"
}

// PostView is the API representation of a post.
type PostView struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	UserID    uint      `json:"user_id"`
	UserName  string    `json:"user_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Repost records that ReposterID shared PostID.
type Repost struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ReposterID uint      `gorm:"not null;index" json:"reposter_id"`
	PostID     uint      `gorm:"not null;index" json:"post_id"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`

	Reposter User `gorm:"foreignKey:ReposterID;constraint:OnDelete:CASCADE" json:"-"`
	Post     Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (Repost) TableName() string {
	return "reposts"
}

// SavedPost is a bookmark of PostID by UserID.
type SavedPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_saved_posts_pair" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_saved_posts_pair" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`

	Post Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (SavedPost) TableName() string {
	return "saved_posts"
}

// ReactionType is the kind of reaction left on a post.
type ReactionType string

const (
	ReactionLike    ReactionType = "LIKE"
	ReactionDislike ReactionType = "DISLIKE"
)

// PostReaction is a single user's reaction to a post.
type PostReaction struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	UserID    uint         `gorm:"not null;uniqueIndex:idx_post_reactions_pair" json:"user_id"`
	PostID    uint         `gorm:"not null;uniqueIndex:idx_post_reactions_pair" json:"post_id"`
	Type      ReactionType `gorm:"type:varchar(10);not null" json:"type"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	Post Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (PostReaction) TableName() string {
	return "post_reactions"
}
