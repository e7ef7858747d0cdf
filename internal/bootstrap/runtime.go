package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connecto/internal/cache"
	"connecto/internal/config"
	"connecto/internal/database"
	"connecto/internal/middleware"
	"connecto/internal/models"
	"connecto/internal/seed"
	"connecto/internal/validation"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemoData populates an empty database with the default seed preset.
	SeedDemoData bool
}

// InitRuntime connects to DB and Redis, ensures the development root admin
// and optionally seeds demo data.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := ensureDevRootAdmin(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development root admin: %w", err)
	}

	if opts.SeedDemoData {
		if err := seedIfEmpty(db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}

func seedIfEmpty(db *gorm.DB) error {
	var posts int64
	if err := db.Model(&models.Post{}).Count(&posts).Error; err != nil {
		return err
	}
	if posts > 0 {
		return nil
	}
	opts := seed.DefaultOptions()
	opts.ShouldClean = false
	return seed.Seed(db, opts)
}

func ensureDevRootAdmin(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapRoot {
		return nil
	}

	name := strings.TrimSpace(cfg.DevRootName)
	if name == "" {
		name = "connecto_root"
	}
	email := strings.TrimSpace(strings.ToLower(cfg.DevRootEmail))
	if email == "" {
		email = "root@connecto.local"
	}
	if err := validation.ValidateEmail(email); err != nil {
		return fmt.Errorf("DEV_ROOT_EMAIL: %w", err)
	}
	password := cfg.DevRootPassword
	if password == "" {
		return fmt.Errorf("DEV_ROOT_PASSWORD must be set when DEV_BOOTSTRAP_ROOT is enabled")
	}
	if err := validation.ValidatePassword(password); err != nil {
		return fmt.Errorf("DEV_ROOT_PASSWORD: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash root password: %w", err)
	}

	var rootID uint
	if err := db.Transaction(func(tx *gorm.DB) error {
		var root models.User
		findErr := tx.Where("email = ?", email).First(&root).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			root = models.User{
				Name:     name,
				Email:    email,
				Password: string(hashedPassword),
				Role:     models.RoleSuperAdmin,
			}
			if err := tx.Create(&root).Error; err != nil {
				return err
			}
		case findErr != nil:
			return findErr
		default:
			if err := tx.Model(&root).Update("role", models.RoleSuperAdmin).Error; err != nil {
				return err
			}
		}
		rootID = root.ID
		return nil
	}); err != nil {
		return err
	}

	middleware.Logger.Info("development root admin ensured",
		slog.Uint64("user_id", uint64(rootID)),
		slog.String("email", email),
	)
	return nil
}
