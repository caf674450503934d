package database

import (
	"github.com/quillbase/blogserver/internal/model"
	"gorm.io/gorm"
)

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Tag{},
		&model.BlogPost{},
		&model.MediaFile{},
	)
}
