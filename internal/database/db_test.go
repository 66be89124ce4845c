package database

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/charlesng35/authflow/internal/models"
)

func TestOpenSQLiteMemory(t *testing.T) {
	db := openTestDB(t)

	if err := db.Exec("SELECT 1").Error; err != nil {
		t.Fatalf("expected health query to succeed: %v", err)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(Config{Driver: "oracle"}); err == nil {
		t.Fatal("expected unsupported driver error")
	}
}

func TestMigrateCreatesTables(t *testing.T) {
	db := openTestDB(t)

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	migrator := db.Migrator()
	for _, model := range []any{&models.User{}, &models.EmailVerification{}, &models.PasswordResetToken{}, &models.StorageEntry{}} {
		if !migrator.HasTable(model) {
			t.Fatalf("expected table for %T", model)
		}
	}
}

func TestNamedMemoryDatabasesAreIsolated(t *testing.T) {
	first := openTestDB(t)
	second := openTestDB(t)

	if err := Migrate(first); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if second.Migrator().HasTable(&models.User{}) {
		t.Fatal("expected second database to be empty")
	}
}

func TestMigrateRejectsNilHandle(t *testing.T) {
	if err := Migrate(nil); err == nil {
		t.Fatal("expected error for nil handle")
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(Config{Driver: "sqlite", Path: ":memory:", Name: uuid.NewString()})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	t.Cleanup(func() {
		_ = Close(db)
	})

	return db
}
