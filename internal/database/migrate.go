package database

import (
	"stanhub/internal/models"

	"gorm.io/gorm"
)

// RegisteredModels lists every model auto-migrated at startup. Tests reuse
// this registry against an in-memory database.
func RegisteredModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.ForumPost{},
		&models.ForumReply{},
		&models.ForumPostLike{},
		&models.ForumReport{},
		&models.Album{},
		&models.MediaItem{},
		&models.TimelineEvent{},
		&models.Charm{},
		&models.HomeContent{},
	}
}

// Migrate runs GORM auto-migration for all registered models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(RegisteredModels()...)
}
