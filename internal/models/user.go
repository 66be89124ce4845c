package models

import "time"

// User is an account known to the simulated authentication backend.
type User struct {
	BaseModel

	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	AcceptedTermsAt      *time.Time `json:"accepted_terms_at"`
	ReceiveNotifications bool       `gorm:"default:false" json:"receive_notifications"`

	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	LastLoginAt     *time.Time `json:"last_login_at"`
}

// EmailVerified reports whether the account completed email verification.
func (u *User) EmailVerified() bool {
	return u != nil && u.EmailVerifiedAt != nil
}
