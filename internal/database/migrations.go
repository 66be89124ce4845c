package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/charlesng35/authflow/internal/models"
)

// schema lists the models owned by the simulated backend and the client store, in creation order.
var schema = []any{
	&models.User{},
	&models.EmailVerification{},
	&models.PasswordResetToken{},
	&models.StorageEntry{},
}

// AutoMigrate creates or updates the table of every model in schema.
func AutoMigrate(db *gorm.DB) error {
	for _, model := range schema {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migrate %T: %w", model, err)
		}
	}
	return nil
}
