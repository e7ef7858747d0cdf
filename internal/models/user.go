// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Role is the authorization tier of an account.
type Role string

const (
	// RoleUser is a regular member account.
	RoleUser Role = "USER"
	// RoleAdmin is a moderator-tier account.
	RoleAdmin Role = "ADMIN"
	// RoleSuperAdmin is the top-level administrator account.
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// User represents an account in the Connecto application.
type User struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Name       string     `gorm:"size:100;not null" json:"name"`
	Email      string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password   string     `gorm:"not null" json:"-"`
	Gender     string     `gorm:"size:20" json:"gender,omitempty"`
	BirthDate  *time.Time `json:"birth_date,omitempty"`
	Location   string     `gorm:"size:100" json:"location,omitempty"`
	Bio        string     `gorm:"type:text" json:"bio,omitempty"`
	PictureURL string     `json:"picture_url,omitempty"`
	IsPrivate  bool       `gorm:"not null;default:false" json:"is_private"`
	IsBanned   bool       `gorm:"not null;default:false" json:"-"`
	Role       Role       `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// IsAdminTier reports whether the user holds any role above USER.
func (u *User) IsAdminTier() bool {
	return u.Role != "" && u.Role != RoleUser
}

// UserSummary is the public projection of a user used in relationship listings.
type UserSummary struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	PictureURL string    `json:"picture_url,omitempty"`
	IsPrivate  bool      `json:"is_private"`
	Since      time.Time `json:"since,omitzero"`
}

// Summary projects the user into a UserSummary.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:         u.ID,
		Name:       u.Name,
		PictureURL: u.PictureURL,
		IsPrivate:  u.IsPrivate,
	}
}
