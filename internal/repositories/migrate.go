package repositories

import (
	"github.com/anonto42/nano-forum/backend/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the forum schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Topic{},
		&models.Comment{},
		&models.Like{},
		&models.Session{},
	)
}
