package database

import "connecto/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Order matters for AutoMigrate: referenced tables come first.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Follow{},
		&models.FollowRequest{},
		&models.Block{},
		&models.Post{},
		&models.Repost{},
		&models.SavedPost{},
		&models.PostReaction{},
		&models.Notification{},
	}
}
