// Package testutil provides shared fixtures for backend tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"connecto/internal/cache"
	"connecto/internal/database"
	"connecto/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var userSeq atomic.Uint64

// NewTestDB returns a migrated in-memory SQLite database. The pool is pinned
// to one connection since every :memory: connection is a separate database.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: database.NewGormLogger(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// NewTestRedis starts miniredis and installs it as the cache client until the
// test ends.
func NewTestRedis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	prev := cache.GetClient()
	cache.SetClient(rdb)
	t.Cleanup(func() {
		cache.SetClient(prev)
		_ = rdb.Close()
	})
	return mr, rdb
}

// UserOption customises a user created by CreateUser.
type UserOption func(*models.User)

// Private marks the user's account as private.
func Private() UserOption {
	return func(u *models.User) { u.IsPrivate = true }
}

// WithRole sets the user's role.
func WithRole(role models.Role) UserOption {
	return func(u *models.User) { u.Role = role }
}

// Banned marks the user as banned.
func Banned() UserOption {
	return func(u *models.User) { u.IsBanned = true }
}

// CreateUser inserts a user with a unique name and email.
func CreateUser(t testing.TB, db *gorm.DB, opts ...UserOption) *models.User {
	t.Helper()

	n := userSeq.Add(1)
	u := &models.User{
		Name:     fmt.Sprintf("user%d", n),
		Email:    fmt.Sprintf("user%d@example.com", n),
		Password: "x",
		Role:     models.RoleUser,
	}
	for _, opt := range opts {
		opt(u)
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// Follow inserts Follow(follower -> followed).
func Follow(t testing.TB, db *gorm.DB, followerID, followedID uint) {
	t.Helper()
	require.NoError(t, db.Create(&models.Follow{FollowerID: followerID, FollowedID: followedID}).Error)
}

// Request inserts FollowRequest(follower -> followed).
func Request(t testing.TB, db *gorm.DB, followerID, followedID uint) {
	t.Helper()
	require.NoError(t, db.Create(&models.FollowRequest{FollowerID: followerID, FollowedID: followedID}).Error)
}

// Block inserts Block(blocker -> blocked).
func Block(t testing.TB, db *gorm.DB, blockerID, blockedID uint) {
	t.Helper()
	require.NoError(t, db.Create(&models.Block{BlockerID: blockerID, BlockedID: blockedID}).Error)
}

// Count returns the number of rows of model matching where.
func Count(t testing.TB, db *gorm.DB, model interface{}, where string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Where(where, args...).Count(&n).Error)
	return n
}
