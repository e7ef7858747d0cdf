package database

import (
	"context"
	"testing"

	"connecto/internal/config"
	"connecto/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: NewGormLogger(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// each :memory: connection is its own database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestConfigurePool(t *testing.T) {
	db := openSQLite(t)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestConfigurePool_Defaults(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, configurePool(db, &config.Config{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 25, sqlDB.Stats().MaxOpenConnections)
}

func TestGetReadDB_FallsBackToPrimary(t *testing.T) {
	prevDB, prevRead := DB, ReadDB
	t.Cleanup(func() { DB, ReadDB = prevDB, prevRead })

	primary := openSQLite(t)
	DB, ReadDB = primary, nil
	assert.Same(t, primary, GetReadDB())

	replica := openSQLite(t)
	ReadDB = replica
	assert.Same(t, replica, GetReadDB())
}

func TestPing(t *testing.T) {
	assert.Error(t, Ping(context.Background(), nil))
	assert.NoError(t, Ping(context.Background(), openSQLite(t)))
}

func TestAutoMigrate_CreatesSocialGraphTables(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, AutoMigrate(db))

	for _, table := range []string{"users", "follows", "follow_requests", "blocks", "posts", "reposts", "saved_posts", "post_reactions", "notifications"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex(&models.Follow{}, "idx_follows_pair"))
	assert.True(t, db.Migrator().HasIndex(&models.FollowRequest{}, "idx_follow_requests_pair"))
	assert.True(t, db.Migrator().HasIndex(&models.Block{}, "idx_blocks_pair"))
}

func TestAutoMigrate_PairIndexRejectsDuplicates(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, AutoMigrate(db))

	a := models.User{Name: "a", Email: "a@example.com", Password: "x"}
	b := models.User{Name: "b", Email: "b@example.com", Password: "x"}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&b).Error)

	require.NoError(t, db.Create(&models.Follow{FollowerID: a.ID, FollowedID: b.ID}).Error)
	assert.Error(t, db.Create(&models.Follow{FollowerID: a.ID, FollowedID: b.ID}).Error)
	assert.NoError(t, db.Create(&models.Follow{FollowerID: b.ID, FollowedID: a.ID}).Error)
}
