package database

import (
	"lola-discovery-be/internal/model"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the sessions and answers tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.Session{}, &model.Answer{})
}
