package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/authflow/internal/models"
	"github.com/charlesng35/authflow/pkg/crypto"
)

// DemoAccount describes the verified account created at startup.
type DemoAccount struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// SeedDemoAccount creates the demo account when it does not exist yet. It reports whether a row was created.
func SeedDemoAccount(ctx context.Context, db *gorm.DB, account DemoAccount) (bool, error) {
	email := normaliseEmail(account.Email)
	if email == "" || account.Password == "" {
		return false, nil
	}

	var existing models.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("backend: lookup demo account: %w", err)
	}

	hashed, err := crypto.HashPassword(account.Password)
	if err != nil {
		return false, fmt.Errorf("backend: hash demo password: %w", err)
	}

	now := time.Now()
	user := models.User{
		Email:           email,
		Password:        hashed,
		FirstName:       strings.TrimSpace(account.FirstName),
		LastName:        strings.TrimSpace(account.LastName),
		AcceptedTermsAt: &now,
		EmailVerifiedAt: &now,
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return false, nil
		}
		return false, fmt.Errorf("backend: create demo account: %w", err)
	}
	return true, nil
}
