package repository

import (
	"churrasco/internal/domain"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table owned by this package.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userModel{},
		&domain.Service{},
		&bookingModel{},
		&domain.Review{},
		&domain.Conversation{},
		&domain.Message{},
		&domain.RevokedToken{},
		&domain.PasswordReset{},
	)
}
