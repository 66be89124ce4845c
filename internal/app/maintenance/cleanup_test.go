package maintenance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	testutil "github.com/charlesng35/authflow/internal/database/testutil"
	"github.com/charlesng35/authflow/internal/models"
	"github.com/charlesng35/authflow/internal/storage"
	"github.com/charlesng35/authflow/pkg/crypto"
)

func TestCleanupTokens(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	now := time.Date(2024, 2, 10, 15, 0, 0, 0, time.UTC)
	user := seedUser(t, db, "tokens@example.com")
	used := now.Add(-time.Minute)

	require.NoError(t, db.Create(&models.PasswordResetToken{UserID: user.ID, TokenHash: "reset-expired", ExpiresAt: now.Add(-time.Hour)}).Error)
	require.NoError(t, db.Create(&models.PasswordResetToken{UserID: user.ID, TokenHash: "reset-used", ExpiresAt: now.Add(time.Hour), UsedAt: &used}).Error)
	require.NoError(t, db.Create(&models.PasswordResetToken{UserID: user.ID, TokenHash: "reset-active", ExpiresAt: now.Add(time.Hour)}).Error)

	require.NoError(t, db.Create(&models.EmailVerification{UserID: user.ID, CodeHash: "verify-expired", ExpiresAt: now.Add(-time.Hour)}).Error)
	require.NoError(t, db.Create(&models.EmailVerification{UserID: user.ID, CodeHash: "verify-active", ExpiresAt: now.Add(time.Hour)}).Error)

	stats, err := CleanupTokens(context.Background(), db, now)
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.PasswordResets)
	require.Equal(t, int64(1), stats.EmailVerifications)

	assertRemaining := func(model any, expected int64) {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		require.Equal(t, expected, count)
	}

	assertRemaining(&models.PasswordResetToken{}, 1)
	assertRemaining(&models.EmailVerification{}, 1)

	_, err = CleanupTokens(context.Background(), nil, now)
	require.Error(t, err)
}

func TestCleanerRunOnce(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	clock := fixedClock{current: time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)}
	user := seedUser(t, db, "cleanup@example.com")

	require.NoError(t, db.Create(&models.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: "reset-expired",
		ExpiresAt: clock.Now().Add(-time.Hour),
	}).Error)
	require.NoError(t, db.Create(&models.EmailVerification{
		UserID:    user.ID,
		CodeHash:  "verify-expired",
		ExpiresAt: clock.Now().Add(-time.Hour),
	}).Error)

	store := storage.NewDatabaseStore(db)
	ctx := context.Background()
	require.NoError(t, db.Create(&models.StorageEntry{Key: "client:a:toast", Value: []byte("{}"), ExpiresAt: clock.Now().Add(-time.Minute)}).Error)
	require.NoError(t, store.Set(ctx, "client:a:token", []byte("kept"), 0))

	c := NewCleaner(db, store,
		WithNow(clock.Now),
		WithCron(cron.New(cron.WithLogger(cron.DiscardLogger))),
	)
	require.NoError(t, c.RunOnce(ctx))

	var count int64
	require.NoError(t, db.Model(&models.PasswordResetToken{}).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&models.EmailVerification{}).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&models.StorageEntry{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	value, ok, err := store.Get(ctx, "client:a:token")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "kept", string(value))
}

type failingPurger struct{}

func (failingPurger) PurgeExpired(context.Context, time.Time) (int64, error) {
	return 0, errors.New("store offline")
}

func TestCleanerRunOnceAggregatesErrors(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	c := NewCleaner(db, failingPurger{})
	err = c.RunOnce(context.Background())
	require.Error(t, err)
	require.Len(t, multierr.Errors(err), 2)
	require.Contains(t, err.Error(), "store offline")
}

func TestCleanerStartAndStop(t *testing.T) {
	c := NewCleaner(nil, storage.NewMemoryStore(), WithSchedule("@every 1h"))
	require.NoError(t, c.Start())
	<-c.Stop().Done()

	bad := NewCleaner(nil, storage.NewMemoryStore(), WithSchedule("not a schedule"))
	require.Error(t, bad.Start())

	idle := NewCleaner(nil, nil)
	require.NoError(t, idle.Start())
	require.NoError(t, idle.RunOnce(context.Background()))
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := crypto.HashPassword("Password123!")
	require.NoError(t, err)

	user := &models.User{
		Email:    email,
		Password: hash,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

type fixedClock struct {
	current time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.current
}
