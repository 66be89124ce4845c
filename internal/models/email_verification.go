package models

import "time"

// EmailVerification stores an issued six-digit code. Only the digest of the code is kept.
type EmailVerification struct {
	BaseModel

	UserID     string     `gorm:"type:uuid;not null;index" json:"user_id"`
	CodeHash   string     `gorm:"not null" json:"-"`
	ExpiresAt  time.Time  `gorm:"index" json:"expires_at"`
	Attempts   int        `gorm:"default:0" json:"attempts"`
	VerifiedAt *time.Time `json:"verified_at"`
}
