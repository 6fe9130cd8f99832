// Package bootstrap wires up runtime dependencies for commands and tests.
package bootstrap

import (
	"errors"
	"fmt"
	"strings"

	"stanhub/internal/cache"
	"stanhub/internal/config"
	"stanhub/internal/database"
	"stanhub/internal/models"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// InitRuntime connects to the database and Redis and prepares the runtime
// for a command. A nil Redis client means caching is disabled.
func InitRuntime(cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := ensureDevRootAdmin(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development root admin: %w", err)
	}

	return db, r, nil
}

// rootAdminID is the fixed row the development bootstrap owns. Seeding and
// clean-up treat this ID as reserved.
const rootAdminID = 1

// ensureDevRootAdmin guarantees a usable admin account in development so a
// fresh database is immediately operable. Production never runs this path.
func ensureDevRootAdmin(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapRoot {
		return nil
	}
	if cfg.DevRootPassword == "" {
		return errors.New("DEV_ROOT_PASSWORD must be set when DEV_BOOTSTRAP_ROOT is enabled")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.DevRootPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash root password: %w", err)
	}

	nickname := valueOr(cfg.DevRootNickname, "stanhub_root")
	email := strings.ToLower(valueOr(cfg.DevRootEmail, "root@stanhub.local"))

	return db.Transaction(func(tx *gorm.DB) error {
		var root models.User
		err := tx.First(&root, rootAdminID).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			root = models.User{
				ID:       rootAdminID,
				Nickname: nickname,
				Email:    email,
				Password: string(hash),
				Role:     models.RoleAdmin,
			}
			if err := tx.Create(&root).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			// Row exists. Always restore the admin role; overwrite the
			// credentials only when explicitly asked to.
			updates := map[string]any{"role": models.RoleAdmin}
			if cfg.DevRootForceCredentials {
				updates["nickname"] = nickname
				updates["email"] = email
				updates["password"] = string(hash)
			}
			if err := tx.Model(&models.User{}).Where("id = ?", rootAdminID).Updates(updates).Error; err != nil {
				return err
			}
		}

		return advanceUsersSequence(tx)
	})
}

// advanceUsersSequence keeps the users ID sequence ahead of the explicit-ID
// insert on PostgreSQL. Other dialects (sqlite in tests) skip it.
func advanceUsersSequence(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	err := tx.Exec(
		`SELECT setval(pg_get_serial_sequence('users', 'id'),
		               GREATEST((SELECT COALESCE(MAX(id), 1) FROM users), 1), true)`,
	).Error
	if err != nil {
		return fmt.Errorf("failed to reset users sequence: %w", err)
	}
	return nil
}

func valueOr(v, fallback string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return fallback
}
