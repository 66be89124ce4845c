package models

import (
	"time"
)

// StorageEntry is a key-value row backing client storage when the database backend is selected.
// A zero ExpiresAt means the entry does not expire.
type StorageEntry struct {
	Key       string    `gorm:"primaryKey;size:256"`
	Value     []byte
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
