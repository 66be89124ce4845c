package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/authflow/internal/database"
)

// TestDBOption prepares a freshly opened test database.
type TestDBOption func(t *testing.T, db *gorm.DB)

// WithAutoMigrate creates every table before the database is handed to the test.
func WithAutoMigrate() TestDBOption {
	return func(t *testing.T, db *gorm.DB) {
		t.Helper()
		require.NoError(t, database.Migrate(db))
	}
}

// MustOpenTestDB opens an in-memory SQLite database private to the calling test and closes it on cleanup.
func MustOpenTestDB(t *testing.T, opts ...TestDBOption) *gorm.DB {
	t.Helper()

	db, err := database.Open(database.Config{Driver: "sqlite", Path: ":memory:", Name: uuid.NewString()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	for _, opt := range opts {
		opt(t, db)
	}
	return db
}
